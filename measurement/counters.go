// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Department of Linguistics,
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

package measurement

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// CounterFileProcessor receives named values read from a counter file
type CounterFileProcessor interface {
	ProcessCounter(name string, value float64) error
}

type counterMap map[string]float64

func (cm counterMap) ProcessCounter(name string, value float64) error {
	if _, ok := cm[name]; ok {
		return fmt.Errorf("duplicate counter %s", name)
	}
	cm[name] = value
	return nil
}

// ReadCounters reads whitespace separated "name value" lines.
// Empty lines are ignored, malformed lines are logged and skipped.
func ReadCounters(ctx context.Context, src io.Reader, srcName string, processor CounterFileProcessor) error {
	scanner := bufio.NewScanner(src)
	lineNum := 0
	numProc := 0
	numFailed := 0
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			log.Warn().Str("file", srcName).Int("line", lineNum).Msg("missing counter value, skipping")
			numFailed++
			continue
		}
		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			log.Warn().Err(err).Str("file", srcName).Int("line", lineNum).Msg("invalid counter value, skipping")
			numFailed++
			continue
		}
		if err := processor.ProcessCounter(fields[0], value); err != nil {
			log.Warn().Err(err).Str("file", srcName).Int("line", lineNum).Msg("failed to process counter, skipping")
			numFailed++
			continue
		}
		numProc++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading %s: %w", srcName, err)
	}
	log.Debug().
		Str("file", srcName).
		Int("numProcessed", numProc).
		Int("numFailed", numFailed).
		Msg("read counter file")
	return nil
}

// ReadCounterMap reads counters into a name -> value map
func ReadCounterMap(ctx context.Context, src io.Reader, srcName string) (map[string]float64, error) {
	ans := make(counterMap)
	if err := ReadCounters(ctx, src, srcName, ans); err != nil {
		return nil, err
	}
	return ans, nil
}

// ReadCounterFile loads a single counter file into a name -> value map
func ReadCounterFile(ctx context.Context, path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open counter file: %w", err)
	}
	defer f.Close()
	return ReadCounterMap(ctx, f, path)
}
