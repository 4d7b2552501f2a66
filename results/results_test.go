package results

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestingDB(t *testing.T) *Database {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "testing.sqlite"))
	require.NoError(t, err)
	require.NoError(t, db.Init())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInitIsIdempotent(t *testing.T) {
	db := openTestingDB(t)
	assert.NoError(t, db.Init())
}

func TestAddAndGetTrials(t *testing.T) {
	db := openTestingDB(t)
	expID, err := db.CreateExperiment(Experiment{Task: "classification", FeatureMode: "instfreq", NumFeatures: 12, SelfTest: true})
	require.NoError(t, err)
	assert.NotEmpty(t, expID)

	require.NoError(t, db.StartTx())
	for i, score := range []float64{0.5, 0.75} {
		require.NoError(t, db.AddTrial(Trial{
			ExperimentID: expID,
			Model:        "KNN",
			Trial:        i,
			Score:        score,
			Latency:      2 * time.Millisecond,
			TrainSize:    8,
			TestSize:     2,
		}))
	}
	require.NoError(t, db.AddTrial(Trial{ExperimentID: expID, Model: "Yes Man", Trial: 0, Score: 0.1}))
	require.NoError(t, db.CommitTx())

	recs, err := db.GetTrials(TrialFilter{})
	require.NoError(t, err)
	assert.Len(t, recs, 3)

	recs, err = db.GetTrials(TrialFilter{}.SetExperimentID(expID).SetModel("KNN"))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 0.75, recs[1].Score)
	assert.Equal(t, 2*time.Millisecond, recs[0].Latency)
	assert.Equal(t, 8, recs[0].TrainSize)

	avg, err := db.GetModelAvgScore(expID, "KNN")
	require.NoError(t, err)
	assert.InDelta(t, 0.625, avg, 1e-12)

	avg, err = db.GetModelAvgScore(expID, "Random Forest")
	require.NoError(t, err)
	assert.Equal(t, -1.0, avg)
}

func TestRollback(t *testing.T) {
	db := openTestingDB(t)
	require.NoError(t, db.StartTx())
	require.NoError(t, db.AddTrial(Trial{ExperimentID: "x", Model: "KNN"}))
	require.NoError(t, db.RollbackTx())
	recs, err := db.GetTrials(TrialFilter{})
	require.NoError(t, err)
	assert.Empty(t, recs)
}
