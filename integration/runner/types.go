package runner

import (
	"encoding/json"
	"time"
)

// Special command values that trigger non-game actions
const (
	RestartCommand = "RESTART"
)

// Outcome names used in expectations. They match protocol.Kind.String, plus
// "error" for commands that failed to produce an outcome.
const (
	OutcomeMessage    = "message"
	OutcomeNavigation = "navigation"
	OutcomeFailure    = "failure"
	OutcomeError      = "error"
)

// TestSuite defines a complete walkthrough
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name          string     `json:"name"`
	StartScreenID string     `json:"start_screen_id,omitempty"` // Overrides the runner's start screen
	Steps         []TestStep `json:"steps,omitempty"`
	Cases         []string   `json:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep is one command and what should hold after it.
// Use command: "RESTART" to start a fresh session on the start screen.
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	Command      string       `json:"command"`
	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	Outcome   string                     `json:"outcome,omitempty"`      // message, navigation, failure or error
	ScreenID  *string                    `json:"screen_id,omitempty"`    // Current screen after the step
	Inventory *[]string                  `json:"inventory,omitempty"`    // Full inventory contents, in order
	State     map[string]json.RawMessage `json:"state_fields,omitempty"` // Uninterpreted state fields, compared as JSON

	// Response Analysis
	ResponseContains    []string `json:"response_contains,omitempty"`
	ResponseNotContains []string `json:"response_not_contains,omitempty"`
	ResponseRegex       string   `json:"response_regex,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	Outcome      string
	ResponseText string
	IsReset      bool // True for RESTART steps (not counted toward pass/fail metrics)
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job           TestJob
	Results       []TestResult
	Error         error
	Duration      time.Duration
	FinalScreenID string
}
