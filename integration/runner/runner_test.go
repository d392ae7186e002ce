package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jwebster45206/text-adventure-client/internal/devserver"
	"github.com/jwebster45206/text-adventure-client/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const startScreenID = "0290922a-59ce-458b-8dbc-1c33f646580a"

func setupRunner(t *testing.T) *Runner {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	srv := httptest.NewServer(devserver.NewServer(devserver.NewWorld(startScreenID), logger).Routes())
	t.Cleanup(srv.Close)

	r := NewRunner(srv.URL+"/", startScreenID)
	r.Client = srv.Client()
	r.Logger = t.Logf
	return r
}

func TestRunner_CasesPassAgainstDevServer(t *testing.T) {
	r := setupRunner(t)

	jobs, err := LoadTestSuiteWithExpansion(filepath.Join("..", "cases", "all.json"), filepath.Join("..", "cases"))
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	for _, job := range jobs {
		t.Run(job.Name, func(t *testing.T) {
			result, err := r.RunSuite(context.Background(), job.Suite)
			require.NoError(t, err)
			for _, step := range result.Results {
				assert.True(t, step.Success, "%s: %v", step.StepName, step.Error)
			}
		})
	}
}

func TestRunner_ReportsFailedExpectations(t *testing.T) {
	r := setupRunner(t)
	cave := devserver.CaveScreenID
	suite := TestSuite{
		Name: "wrong expectations",
		Steps: []TestStep{
			{Name: "wrong outcome", Command: "fly", Expectations: Expectations{Outcome: OutcomeMessage}},
			{Name: "wrong screen", Command: "look", Expectations: Expectations{ScreenID: &cave}},
			{Name: "right", Command: "take lamp", Expectations: Expectations{Inventory: &[]string{"lamp"}}},
		},
	}

	result, err := r.RunSuite(context.Background(), suite)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 0 (wrong outcome) failed")
	require.Len(t, result.Results, 3)
	assert.False(t, result.Results[0].Success)
	assert.Equal(t, OutcomeFailure, result.Results[0].Outcome)
	assert.False(t, result.Results[1].Success)
	assert.True(t, result.Results[2].Success)

	r.ErrorHandlingMode = ErrorHandlingExit
	result, err = r.RunSuite(context.Background(), suite)
	require.Error(t, err)
	assert.Len(t, result.Results, 1)
}

func TestRunner_StartFailure(t *testing.T) {
	r := setupRunner(t)
	suite := TestSuite{
		Name:  "bad start",
		Steps: []TestStep{{Command: "look"}},
	}
	suite.StartScreenID = "does-not-exist"

	_, err := r.RunSuite(context.Background(), suite)
	assert.ErrorContains(t, err, "failed to start game")
}

func TestCheckExpectations_StateFields(t *testing.T) {
	r := setupRunner(t)
	suite := TestSuite{
		Name: "state fields",
		Steps: []TestStep{
			{Command: "look", Expectations: Expectations{State: map[string]json.RawMessage{"turns": json.RawMessage(" 1 ")}}},
			{Command: "look", Expectations: Expectations{State: map[string]json.RawMessage{"turns": json.RawMessage("5")}}},
			{Command: "look", Expectations: Expectations{State: map[string]json.RawMessage{"missing": json.RawMessage("1")}}},
		},
	}

	result, _ := r.RunSuite(context.Background(), suite)
	require.Len(t, result.Results, 3)
	assert.True(t, result.Results[0].Success)
	assert.ErrorContains(t, result.Results[1].Error, "expected state field turns to be 5, got 2")
	assert.ErrorContains(t, result.Results[2].Error, "doesn't exist")
}

func TestCheckExpectations_InventoryOrder(t *testing.T) {
	token := state.Encode(state.GameState{Inventory: []string{"lamp", "key"}})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /screen/start", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"start","body":["A room."]}`)
	})
	mux.HandleFunc("POST /command", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"success":true,"printMessage":["Taken."],"state":%q,"itemsAdded":["lamp","key"],"itemsRemoved":[]}`, token)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	r := NewRunner(srv.URL, "start")
	r.Client = srv.Client()
	suite := TestSuite{
		Name: "inventory order",
		Steps: []TestStep{
			{Command: "take all", Expectations: Expectations{Inventory: &[]string{"lamp", "key"}}},
			{Command: "take all", Expectations: Expectations{Inventory: &[]string{"key", "lamp"}}},
		},
	}

	result, _ := r.RunSuite(context.Background(), suite)
	require.Len(t, result.Results, 2)
	assert.True(t, result.Results[0].Success, "%v", result.Results[0].Error)
	assert.False(t, result.Results[1].Success)
	assert.ErrorContains(t, result.Results[1].Error, "expected inventory [key lamp], got [lamp key]")
}
