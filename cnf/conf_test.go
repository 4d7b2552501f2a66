package cnf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestParseJSONConfig(t *testing.T) {
	p := writeFile(t, t.TempDir(), "conf.json", `{
		"featureMode": "blocks",
		"worthStep": 0.25,
		"excludedBenchmarks": ["durbin", "lu"],
		"estimators": [{"name": "Random Forest", "numTrees": 30}]
	}`)
	conf, err := parseConfig(p)
	require.NoError(t, err)
	assert.Equal(t, FeatureModeBlocks, conf.FeatureMode)
	assert.Equal(t, 0.25, conf.WorthStep)
	assert.Equal(t, []string{"durbin", "lu"}, conf.ExcludedBenchmarks)
	assert.Len(t, conf.Estimators, 1)
	assert.Equal(t, 30, conf.Estimators[0].NumTrees)
	assert.Equal(t, p, conf.SrcPath())
}

func TestParseYAMLConfig(t *testing.T) {
	p := writeFile(t, t.TempDir(), "conf.yaml", `
featureMode: instfreq
numTrials: 12
boostFail: 3
estimators:
  - name: KNN
    k: 7
  - name: Multilayer Perceptron
    hiddenLayers: [16, 8]
`)
	conf, err := parseConfig(p)
	require.NoError(t, err)
	assert.Equal(t, 12, conf.NumTrials)
	require.NotNil(t, conf.BoostFail)
	assert.Equal(t, 3, *conf.BoostFail)
	assert.Equal(t, 7, conf.Estimators[0].K)
	assert.Equal(t, []int{16, 8}, conf.Estimators[1].HiddenLayers)
}

func TestParseBrokenConfig(t *testing.T) {
	p := writeFile(t, t.TempDir(), "conf.json", `{"featureMode": `)
	_, err := parseConfig(p)
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	conf := &Conf{}
	ValidateAndDefaults(conf)
	assert.Equal(t, FeatureModeInstFreq, conf.FeatureMode)
	assert.Equal(t, "B", conf.BlockPrefix)
	assert.Equal(t, 2, conf.MaxBlockID)
	assert.Equal(t, 0.2, conf.WorthStep)
	assert.Equal(t, 0.8, conf.TrainFraction)
	assert.Equal(t, 100, conf.NumTrials)
	require.NotNil(t, conf.BoostFail)
	assert.Equal(t, 5, *conf.BoostFail)
	assert.Equal(t, "saved_model.bin", conf.ModelFile)
	assert.Equal(t, []string{"durbin"}, conf.ExcludedBenchmarks)
}

func TestEmptyExclusionListIsKept(t *testing.T) {
	conf := &Conf{ExcludedBenchmarks: []string{}}
	ValidateAndDefaults(conf)
	assert.Empty(t, conf.ExcludedBenchmarks)
}

func TestEnvOverridesMLFeatPath(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", EnvMLFeatPath+"=/opt/taffo/mlfeat\n")
	t.Setenv(EnvMLFeatPath, "")
	os.Unsetenv(EnvMLFeatPath)
	conf := &Conf{MLFeatPath: "/usr/bin/mlfeat"}
	applyEnv(conf, envFile)
	assert.Equal(t, "/opt/taffo/mlfeat", conf.MLFeatPath)
}

func TestExplicitZeroBoostFailIsKept(t *testing.T) {
	p := writeFile(t, t.TempDir(), "conf.json", `{"boostFail": 0}`)
	conf, err := parseConfig(p)
	require.NoError(t, err)
	ValidateAndDefaults(conf)
	assert.Equal(t, 0, *conf.BoostFail)
}

func TestNegativeBoostFailFallsBackToDefault(t *testing.T) {
	conf := &Conf{BoostFail: new(int)}
	*conf.BoostFail = -2
	ValidateAndDefaults(conf)
	assert.Equal(t, 5, *conf.BoostFail)
}
