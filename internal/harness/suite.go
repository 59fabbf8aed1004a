package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SuiteResult contains results from running a directory of scenarios.
type SuiteResult struct {
	TotalScenarios int            `json:"total_scenarios"`
	Passed         int            `json:"passed"`
	Failed         int            `json:"failed"`
	Failures       []SuiteFailure `json:"failures,omitempty"`
}

// SuiteFailure represents one failed scenario within a suite run.
type SuiteFailure struct {
	Scenario     string `json:"scenario"`
	ScenarioPath string `json:"scenario_path"`
	Error        string `json:"error"`
}

// RunSuite loads and executes every *.yaml scenario under dir, in file
// name order, each against its own fresh in-memory database.
//
// A scenario that fails to load or execute is recorded as a failure
// rather than aborting the suite, so one broken file never hides the
// verdicts of the rest. The returned error covers suite-level problems
// only (unreadable directory, no scenario files).
func RunSuite(dir string) (*SuiteResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}

	result := &SuiteResult{}
	for _, path := range paths {
		result.TotalScenarios++

		scenario, err := LoadScenario(path)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, SuiteFailure{
				Scenario:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
				ScenarioPath: path,
				Error:        fmt.Sprintf("failed to load scenario: %v", err),
			})
			continue
		}

		runResult, err := Run(scenario)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, SuiteFailure{
				Scenario:     scenario.Name,
				ScenarioPath: path,
				Error:        fmt.Sprintf("scenario execution failed: %v", err),
			})
			continue
		}

		if !runResult.Pass {
			result.Failed++
			result.Failures = append(result.Failures, SuiteFailure{
				Scenario:     scenario.Name,
				ScenarioPath: path,
				Error:        strings.Join(runResult.Errors, "; "),
			})
			continue
		}

		result.Passed++
	}

	return result, nil
}
