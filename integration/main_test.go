//go:build integration
// +build integration

package integration

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jwebster45206/text-adventure-client/integration/runner"
	"github.com/jwebster45206/text-adventure-client/internal/config"
)

var caseFlag = flag.String("case", "", "Name of test case to run (from integration/cases/)")
var errFlag = flag.String("err", "continue", "Error handling mode: 'continue' (run all steps) or 'exit' (stop on first failure)")

func TestMain(m *testing.M) {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Running Text Adventure Integration Tests\n")
	fmt.Printf("   API Base URL: %s\n", apiBaseURL())
	fmt.Printf("   Start screen: %s\n", cfg.StartScreenID)

	os.Exit(m.Run())
}

func newRunner(t *testing.T) *runner.Runner {
	t.Helper()
	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("Invalid configuration: %v", err)
	}

	r := runner.NewRunner(apiBaseURL(), cfg.StartScreenID)
	r.Timeout = cfg.HTTPTimeout
	r.ErrorHandlingMode = runner.ErrorHandlingMode(*errFlag)
	r.Logger = func(format string, args ...interface{}) {
		fmt.Printf(format+"\n", args...)
	}
	return r
}

// apiBaseURL defaults to a local dev server, which is what the cases in
// cases/ are written against.
func apiBaseURL() string {
	if v := os.Getenv("API_BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func TestIntegrationSuites(t *testing.T) {
	if *caseFlag != "" {
		t.Skip("running a single case; see TestSingleSuite")
	}
	testRunner := newRunner(t)

	testFiles, err := discoverTestFiles("cases")
	if err != nil {
		t.Fatalf("Failed to discover test files: %v", err)
	}
	if len(testFiles) == 0 {
		t.Fatal("No test files found in cases directory")
	}

	var jobs []runner.TestJob
	for _, file := range testFiles {
		suite, err := runner.LoadTestSuite(file)
		if err != nil {
			t.Errorf("Failed to load test suite %s: %v", file, err)
			continue
		}
		// Sequences only regroup other case files, which run on their own.
		if suite.IsSequence() {
			continue
		}
		jobs = append(jobs, runner.TestJob{Name: suite.Name, Suite: suite, CaseFile: file})
	}

	if len(jobs) == 0 {
		t.Fatal("No valid test suites loaded")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var failed []string
	for i, job := range jobs {
		t.Logf("[%d/%d] Starting test suite: %s (%d steps)", i+1, len(jobs), job.Name, len(job.Suite.Steps))

		result, err := testRunner.RunSuite(ctx, job.Suite)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", job.Name, err))
			t.Errorf("[%d/%d] FAILED: Test suite '%s' failed: %v", i+1, len(jobs), job.Name, err)
			continue
		}

		t.Logf("[%d/%d] PASSED: Test suite '%s' completed in %v (final screen %s)", i+1, len(jobs), job.Name, result.Duration, result.FinalScreenID)
		for _, stepResult := range result.Results {
			if stepResult.IsReset {
				t.Logf("   ↻ %s (%v)", stepResult.StepName, stepResult.Duration)
			} else {
				t.Logf("   ✓ %s (%v)", stepResult.StepName, stepResult.Duration)
			}
		}
	}

	t.Logf("Integration Test Summary:")
	t.Logf("   Passed: %d", len(jobs)-len(failed))
	t.Logf("   Failed: %d", len(failed))
	if len(failed) > 0 {
		t.Logf("   Failures:\n      %s", strings.Join(failed, "\n      "))
	}
}

func TestSingleSuite(t *testing.T) {
	if *caseFlag == "" {
		t.Skip("no -case given")
	}
	testRunner := newRunner(t)

	name := *caseFlag
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}

	jobs, err := runner.LoadTestSuiteWithExpansion(filepath.Join("cases", name), "cases")
	if err != nil {
		t.Fatalf("Failed to load test suite: %v", err)
	}

	for _, job := range jobs {
		result, err := testRunner.RunSuite(context.Background(), job.Suite)
		if err != nil {
			t.Errorf("Test suite '%s' failed: %v", job.Name, err)
			continue
		}
		t.Logf("PASSED: %s in %v", job.Name, result.Duration)
	}
}

func discoverTestFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
