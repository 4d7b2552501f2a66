// Package synth writes synthetic measurement directories
// in the layout expected by the measurement loaders.
package synth

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Run is a single benchmark run with counters and
// profile values of both variants.
type Run struct {
	Tag          string
	Bench        string
	FixCounters  map[string]float64
	FltCounters  map[string]float64
	FixProfile   map[string]float64
	FloatProfile map[string]float64
}

func formatValues(values map[string]float64) []byte {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	var ans strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&ans, "%s %v\n", k, values[k])
	}
	return []byte(ans.String())
}

func writeFile(path string, values map[string]float64) error {
	if values == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to write synthetic data: %w", err)
	}
	if err := os.WriteFile(path, formatValues(values), 0644); err != nil {
		return fmt.Errorf("failed to write synthetic data: %w", err)
	}
	return nil
}

// CounterFilePaths returns paths of the fix and float counter files of a run
func CounterFilePaths(dir string, run Run) (string, string) {
	base := filepath.Join(dir, run.Tag, run.Bench)
	return base + ".fix.mlfeat.txt", base + ".float.mlfeat.txt"
}

// Write stores all the runs into dir using the current layout
func Write(dir string, runs ...Run) error {
	for _, run := range runs {
		fixPath, fltPath := CounterFilePaths(dir, run)
		if err := writeFile(fixPath, run.FixCounters); err != nil {
			return err
		}
		if err := writeFile(fltPath, run.FltCounters); err != nil {
			return err
		}
		base := filepath.Join(dir, run.Tag, run.Bench)
		if err := writeFile(base+".fix.prof.txt", run.FixProfile); err != nil {
			return err
		}
		if err := writeFile(base+".float.prof.txt", run.FloatProfile); err != nil {
			return err
		}
	}
	return nil
}

// WriteLegacy stores counter files of all the runs using the legacy
// layout (<dir>/<date>-<tag>/<bench>_ic_<variant>). Profiles are
// written the same way as in Write.
func WriteLegacy(dir string, runs ...Run) error {
	for _, run := range runs {
		sub := filepath.Join(dir, "20180911-"+run.Tag)
		if err := writeFile(filepath.Join(sub, run.Bench+"_ic_fix"), run.FixCounters); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(sub, run.Bench+"_ic_flt"), run.FltCounters); err != nil {
			return err
		}
		base := filepath.Join(dir, run.Tag, run.Bench)
		if err := writeFile(base+".fix.prof.txt", run.FixProfile); err != nil {
			return err
		}
		if err := writeFile(base+".float.prof.txt", run.FloatProfile); err != nil {
			return err
		}
	}
	return nil
}
