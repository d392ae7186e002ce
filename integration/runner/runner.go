package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/jwebster45206/text-adventure-client/internal/client"
	"github.com/jwebster45206/text-adventure-client/internal/game"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner plays walkthrough suites against a running text-adventure API
type Runner struct {
	BaseURL           string
	StartScreenID     string
	Client            *http.Client
	Timeout           time.Duration // per step
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode

	// Log receives the client's structured logs. Discarded when nil.
	Log *slog.Logger
}

// NewRunner creates a new test runner
func NewRunner(baseURL, startScreenID string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		StartScreenID:     startScreenID,
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           30 * time.Second,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite plays every step of suite in one fresh session
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	g := r.newGame(suite)
	if err := r.startGame(ctx, g); err != nil {
		result.Error = fmt.Errorf("failed to start game: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}

	for i, step := range suite.Steps {
		r.log("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, g, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.log("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.log("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.FinalScreenID = g.ScreenID()
	result.Duration = time.Since(start)
	return result, result.Error
}

func (r *Runner) newGame(suite TestSuite) *game.Game {
	logger := r.Log
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	startID := r.StartScreenID
	if suite.StartScreenID != "" {
		startID = suite.StartScreenID
	}
	return game.New(client.New(r.BaseURL, r.Client, logger), startID, logger)
}

func (r *Runner) startGame(ctx context.Context, g *game.Game) error {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()
	_, err := g.Start(ctx)
	return err
}

// runStep executes a single test step and checks expectations
// A RESTART step starts a new session instead of sending a command
func (r *Runner) runStep(ctx context.Context, g *game.Game, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{
		StepName: step.Name,
	}

	if step.Command == RestartCommand {
		if err := r.startGame(ctx, g); err != nil {
			result.Error = fmt.Errorf("failed to restart game: %w", err)
			result.Duration = time.Since(start)
			return result
		}
		result.IsReset = true
		result.ResponseText = strings.Join(g.ScreenBody(), "\n")
	} else {
		stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
		render, err := g.IssueCommand(stepCtx, step.Command)
		cancel()

		if err != nil {
			result.Outcome = OutcomeError
			result.ResponseText = err.Error()
		} else {
			result.Outcome = render.Kind.String()
			result.ResponseText = strings.Join(render.Text(), "\n")
		}
	}

	if err := checkExpectations(step.Expectations, g, result.Outcome, result.ResponseText); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}
	if result.Outcome == OutcomeError && step.Expectations.Outcome != OutcomeError {
		result.Error = errors.New(result.ResponseText)
		result.Duration = time.Since(start)
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// checkExpectations validates the expectations against the session after a step
func checkExpectations(exp Expectations, g *game.Game, outcome, responseText string) error {
	if exp.Outcome != "" && outcome != exp.Outcome {
		return fmt.Errorf("expected outcome %s, got %s (%s)", exp.Outcome, outcome, responseText)
	}

	if exp.ScreenID != nil && g.ScreenID() != *exp.ScreenID {
		return fmt.Errorf("expected screen %s, got %s", *exp.ScreenID, g.ScreenID())
	}

	// Full inventory check, in order
	if exp.Inventory != nil {
		if actual := g.Inventory(); !slices.Equal(*exp.Inventory, actual) {
			return fmt.Errorf("expected inventory %v, got %v", *exp.Inventory, actual)
		}
	}

	if len(exp.State) > 0 {
		gs := g.Session().State
		for key, want := range exp.State {
			got, ok := gs.Lookup(key)
			if !ok {
				return fmt.Errorf("expected state field %s to be set, but it doesn't exist", key)
			}
			var wantBuf bytes.Buffer
			if err := json.Compact(&wantBuf, want); err != nil {
				return fmt.Errorf("invalid expected value for state field %s: %w", key, err)
			}
			if !bytes.Equal(wantBuf.Bytes(), got) {
				return fmt.Errorf("expected state field %s to be %s, got %s", key, wantBuf.String(), got)
			}
		}
	}

	if len(exp.ResponseContains) > 0 {
		lowerResponse := strings.ToLower(responseText)
		for _, expectedText := range exp.ResponseContains {
			if !strings.Contains(lowerResponse, strings.ToLower(expectedText)) {
				return fmt.Errorf("expected response to contain '%s', got %q", expectedText, responseText)
			}
		}
	}

	if len(exp.ResponseNotContains) > 0 {
		lowerResponse := strings.ToLower(responseText)
		for _, unexpectedText := range exp.ResponseNotContains {
			if strings.Contains(lowerResponse, strings.ToLower(unexpectedText)) {
				return fmt.Errorf("expected response to NOT contain '%s', but it did", unexpectedText)
			}
		}
	}

	if exp.ResponseRegex != "" {
		matched, err := regexp.MatchString(exp.ResponseRegex, responseText)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		if !matched {
			return fmt.Errorf("response didn't match regex pattern: %s", exp.ResponseRegex)
		}
	}

	return nil
}

func (r *Runner) log(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger(format, args...)
	}
}
