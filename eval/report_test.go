package eval

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporterOrdering(t *testing.T) {
	reporter := &Reporter{MisclassBenchOutPath: filepath.Join(t.TempDir(), "misclass.txt")}
	reporter.AddMisclassified("gemm/O2", 1, -1)
	reporter.AddMisclassified("atax/O3", 0, 1)
	reporter.AddMisclassified("atax/O3", -1, 1)
	reporter.AddMisclassified("mvt/O2", -1, 0)
	reporter.AddMisclassified("mvt/O2", 1, 0)
	assert.Equal(t, 3, reporter.NumMisclassified())

	require.NoError(t, reporter.SaveMisclassified())
	data, err := os.ReadFile(reporter.MisclassBenchOutPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "atax/O3\t1.00\t-0.50\tFN(2)", lines[0])
	assert.Equal(t, "mvt/O2\t0.00\t0.00\t*(2)", lines[1])
	assert.Equal(t, "gemm/O2\t-1.00\t1.00\tFP(1)", lines[2])
}

func TestReporterNoPath(t *testing.T) {
	reporter := &Reporter{}
	assert.Error(t, reporter.SaveMisclassified())
}
