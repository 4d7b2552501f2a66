// Copyright 2024 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2024 Institute of the Czech National Corpus,
// Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package results

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

type Database struct {
	db *sql.DB
	tx *sql.Tx
}

func (database *Database) createExperimentTable() error {
	_, err := database.db.Exec(
		"CREATE TABLE experiment (" +
			"id TEXT PRIMARY KEY NOT NULL, " +
			"datetime INTEGER NOT NULL, " +
			"task TEXT NOT NULL, " +
			"feature_mode TEXT NOT NULL, " +
			"num_features INTEGER NOT NULL, " +
			"self_test INT NOT NULL DEFAULT 1, " +
			"comment TEXT" +
			")",
	)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	log.Info().Msg("created table `experiment`")
	return nil
}

func (database *Database) createTrialTable() error {
	_, err := database.db.Exec(
		"CREATE TABLE trial (" +
			"experiment_id TEXT NOT NULL, " +
			"model TEXT NOT NULL, " +
			"trial INTEGER NOT NULL, " +
			"score FLOAT NOT NULL, " +
			"latency FLOAT NOT NULL, " +
			"train_size INTEGER NOT NULL, " +
			"test_size INTEGER NOT NULL, " +
			"PRIMARY KEY(experiment_id, model, trial) " +
			")",
	)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	log.Info().Msg("created table `trial`")
	return nil
}

func (database *Database) tableExists(tn string) (bool, error) {
	ans := database.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name = ?", tn)
	var nm sql.NullString
	err := ans.Scan(&nm)
	if err == sql.ErrNoRows {
		return false, nil

	} else if err != nil {
		return false, fmt.Errorf("failed to determine existence of table %s: %w", tn, err)
	}
	return true, nil
}

func (database *Database) Init() error {
	tables := []struct {
		name   string
		create func() error
	}{
		{"experiment", database.createExperimentTable},
		{"trial", database.createTrialTable},
	}
	for _, tbl := range tables {
		ex, err := database.tableExists(tbl.name)
		if err != nil {
			return fmt.Errorf("failed to init table %s: %w", tbl.name, err)
		}
		if ex {
			log.Debug().Str("table", tbl.name).Msg("table already exists")

		} else {
			if err := tbl.create(); err != nil {
				return fmt.Errorf("failed to create table %s: %w", tbl.name, err)
			}
		}
	}
	return nil
}

// CreateExperiment stores a new experiment and returns its generated ID
func (database *Database) CreateExperiment(exp Experiment) (string, error) {
	if exp.ID == "" {
		exp.ID = uuid.New().String()
	}
	if exp.Datetime == 0 {
		exp.Datetime = time.Now().Unix()
	}
	_, err := database.db.Exec(
		"INSERT INTO experiment (id, datetime, task, feature_mode, num_features, self_test, comment) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?)",
		exp.ID,
		exp.Datetime,
		exp.Task,
		exp.FeatureMode,
		exp.NumFeatures,
		exp.SelfTest,
		exp.Comment,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment: %w", err)
	}
	return exp.ID, nil
}

func (database *Database) StartTx() error {
	if database.tx != nil {
		panic("a transaction is already running")
	}
	var err error
	database.tx, err = database.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	return nil
}

func (database *Database) CommitTx() error {
	if database.tx == nil {
		panic("no transaction running")
	}
	err := database.tx.Commit()
	database.tx = nil
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (database *Database) RollbackTx() error {
	if database.tx == nil {
		panic("no transaction running")
	}
	err := database.tx.Rollback()
	database.tx = nil
	if err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// AddTrial stores a single trial result. If a transaction is
// running, the record is written within it.
func (database *Database) AddTrial(rec Trial) error {
	query := "INSERT OR REPLACE INTO trial " +
		"(experiment_id, model, trial, score, latency, train_size, test_size) " +
		"VALUES (?, ?, ?, ?, ?, ?, ?)"
	args := []any{
		rec.ExperimentID,
		rec.Model,
		rec.Trial,
		rec.Score,
		rec.Latency.Seconds(),
		rec.TrainSize,
		rec.TestSize,
	}
	var err error
	if database.tx != nil {
		_, err = database.tx.Exec(query, args...)

	} else {
		_, err = database.db.Exec(query, args...)
	}
	if err != nil {
		return fmt.Errorf("failed to add trial: %w", err)
	}
	return nil
}

// GetTrials loads stored trials ordered by experiment, model and trial number
func (database *Database) GetTrials(filter TrialFilter) ([]Trial, error) {
	query := "SELECT experiment_id, model, trial, score, latency, train_size, test_size " +
		"FROM trial WHERE %s ORDER BY experiment_id, model, trial"
	whereChunks := make([]string, 0, 3)
	whereChunks = append(whereChunks, "1 = 1")
	args := make([]any, 0, 2)
	if filter.ExperimentID != nil {
		whereChunks = append(whereChunks, "experiment_id = ?")
		args = append(args, *filter.ExperimentID)
	}
	if filter.Model != nil {
		whereChunks = append(whereChunks, "model = ?")
		args = append(args, *filter.Model)
	}
	rows, err := database.db.Query(fmt.Sprintf(query, strings.Join(whereChunks, " AND ")), args...)
	if err != nil {
		return []Trial{}, fmt.Errorf("failed to fetch trials: %w", err)
	}
	defer rows.Close()
	ans := make([]Trial, 0, 100)
	for rows.Next() {
		var rec Trial
		var latency float64
		err := rows.Scan(
			&rec.ExperimentID,
			&rec.Model,
			&rec.Trial,
			&rec.Score,
			&latency,
			&rec.TrainSize,
			&rec.TestSize,
		)
		if err != nil {
			return []Trial{}, fmt.Errorf("failed to fetch trials: %w", err)
		}
		rec.Latency = time.Duration(math.Round(latency * float64(time.Second)))
		ans = append(ans, rec)
	}
	return ans, rows.Err()
}

// GetModelAvgScore returns the average score of a model within an experiment,
// or -1 if there are no trials.
func (database *Database) GetModelAvgScore(experimentID, model string) (float64, error) {
	row := database.db.QueryRow(
		"SELECT AVG(score) FROM trial WHERE experiment_id = ? AND model = ?",
		experimentID, model,
	)
	var ans sql.NullFloat64
	if err := row.Scan(&ans); err != nil {
		return -1, err
	}
	if ans.Valid {
		return ans.Float64, nil
	}
	return -1, nil
}

func (database *Database) Close() error {
	return database.db.Close()
}

func NewDatabase(path string) (*Database, error) {
	dbConn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}
	return &Database{db: dbConn}, nil
}
