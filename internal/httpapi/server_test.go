package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/aaronromeo/fitcoach/internal/auth"
	"github.com/aaronromeo/fitcoach/internal/llm"
	"github.com/aaronromeo/fitcoach/internal/llm/provider"
	"github.com/aaronromeo/fitcoach/internal/metrics"
)

type stubProvider struct {
	mu    sync.Mutex
	reply string
	calls int
}

func (s *stubProvider) Complete(ctx context.Context, req provider.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.reply, nil
}

func (s *stubProvider) Validate() error { return nil }

type testServer struct {
	app      *fiber.App
	provider *stubProvider
	metrics  *metrics.Metrics
}

func newTestServer(t *testing.T, reply, apiKey string) *testServer {
	t.Helper()
	return newTestServerWithLogger(t, reply, apiKey, slog.Default())
}

func newTestServerWithLogger(t *testing.T, reply, apiKey string, logger *slog.Logger) *testServer {
	t.Helper()
	sp := &stubProvider{reply: reply}
	creds := llm.NewCredentials(
		func() (string, error) { return apiKey, nil },
		func(string) (provider.Provider, error) { return sp, nil },
	)
	coach, err := llm.New(llm.WithCredentials(creds), llm.WithLogger(logger))
	if err != nil {
		t.Fatalf("llm.New: %v", err)
	}
	verifier, err := auth.ParseStaticTokens("good-token:uid-1")
	if err != nil {
		t.Fatalf("ParseStaticTokens: %v", err)
	}
	m := metrics.New()
	app := NewServer(Deps{Coach: coach, Verifier: verifier, Metrics: m, Logger: logger})
	return &testServer{app: app, provider: sp, metrics: m}
}

type callableResponse struct {
	Result map[string]json.RawMessage `json:"result"`
	Error  *callableError             `json:"error"`
}

func (ts *testServer) call(t *testing.T, path, token, body string) (int, callableResponse, http.Header) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Fatalf("close response body error: %v", err)
		}
	}()

	var out callableResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.StatusCode, out, resp.Header
}

const programBody = `{"data": {"objective": "hypertrophy", "level": "intermediate", "frequency": 4, "splitType": "PPL"}}`

func TestCallable_Success(t *testing.T) {
	ts := newTestServer(t, `{"weeklySchedule":[{"day":"Lundi"}]}`, "sk-test")

	status, out, header := ts.call(t, "/generateWorkoutProgram", "good-token", programBody)
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%+v)", status, out.Error)
	}
	if string(out.Result["success"]) != "true" {
		t.Fatalf("expected success true, got %s", out.Result["success"])
	}
	if string(out.Result["program"]) != `{"weeklySchedule":[{"day":"Lundi"}]}` {
		t.Fatalf("unexpected program: %s", out.Result["program"])
	}
	if len(out.Result["generatedAt"]) == 0 {
		t.Fatal("expected generatedAt")
	}
	if header.Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}
}

func TestCallable_AllOperations(t *testing.T) {
	cases := []struct {
		path  string
		body  string
		field string
		ts    string
	}{
		{"/generateWorkoutProgram", programBody, "program", "generatedAt"},
		{"/getExerciseRecommendation", `{"data": {"userProfile": {"objective": "strength"}, "currentSession": {"type": "PUSH", "exercisesDone": [], "muscleGroupsWorked": []}, "exerciseHistory": {}, "recentTrends": {"last4WeeksVolume": 1000, "progressionRate": 0.05, "plateauDetected": false}}}`, "recommendation", "timestamp"},
		{"/analyzeProgression", `{"data": {"userProfile": {"objective": "strength", "level": "advanced"}, "exerciseHistory": {}, "weeklyStats": []}}`, "analysis", "analyzedAt"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			ts := newTestServer(t, `{"ok":true}`, "sk-test")
			status, out, _ := ts.call(t, tc.path, "good-token", tc.body)
			if status != http.StatusOK {
				t.Fatalf("expected status 200, got %d (%+v)", status, out.Error)
			}
			if string(out.Result[tc.field]) != `{"ok":true}` {
				t.Fatalf("unexpected %s: %s", tc.field, out.Result[tc.field])
			}
			if len(out.Result[tc.ts]) == 0 {
				t.Fatalf("expected %s", tc.ts)
			}
		})
	}
}

func TestCallable_Unauthenticated(t *testing.T) {
	for _, token := range []string{"", "forged-token"} {
		ts := newTestServer(t, `{}`, "sk-test")
		status, out, _ := ts.call(t, "/analyzeProgression", token, `{"data": {}}`)
		if status != http.StatusUnauthorized {
			t.Fatalf("token %q: expected status 401, got %d", token, status)
		}
		if out.Error == nil || out.Error.Status != "UNAUTHENTICATED" || out.Error.Message != "User must be authenticated" {
			t.Fatalf("token %q: unexpected error body %+v", token, out.Error)
		}
		if ts.provider.calls != 0 {
			t.Fatalf("token %q: provider called %d times", token, ts.provider.calls)
		}
	}
}

func TestCallable_BadRequest(t *testing.T) {
	for _, body := range []string{`not json`, `{}`, `{"data": "text"}`, `{"data": {"level": 3}}`} {
		ts := newTestServer(t, `{}`, "sk-test")
		status, out, _ := ts.call(t, "/generateWorkoutProgram", "good-token", body)
		if status != http.StatusBadRequest {
			t.Fatalf("body %q: expected status 400, got %d", body, status)
		}
		if out.Error == nil || out.Error.Status != "INVALID_ARGUMENT" {
			t.Fatalf("body %q: unexpected error body %+v", body, out.Error)
		}
	}
}

func TestCallable_InternalErrors(t *testing.T) {
	t.Run("malformed completion", func(t *testing.T) {
		ts := newTestServer(t, "Désolé, je ne peux pas.", "sk-test")
		status, out, _ := ts.call(t, "/getExerciseRecommendation", "good-token", `{"data": {}}`)
		if status != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", status)
		}
		if out.Error == nil || out.Error.Status != "INTERNAL" || out.Error.Message != "Failed to get exercise recommendation" {
			t.Fatalf("unexpected error body %+v", out.Error)
		}
	})

	t.Run("missing api key", func(t *testing.T) {
		ts := newTestServer(t, `{}`, "")
		status, out, _ := ts.call(t, "/generateWorkoutProgram", "good-token", programBody)
		if status != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", status)
		}
		if out.Error == nil || out.Error.Message != "internal" {
			t.Fatalf("unexpected error body %+v", out.Error)
		}
		if ts.provider.calls != 0 {
			t.Fatal("provider called without a key")
		}
	})
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, `{}`, "sk-test")
	ts.call(t, "/analyzeProgression", "", `{"data": {}}`)

	resp, err := ts.app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	resp, err = ts.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Fatalf("close response body error: %v", err)
		}
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	want := `fitcoach_calls_total{operation="analyzeProgression",outcome="unauthenticated"} 1`
	if !strings.Contains(string(body), want) {
		t.Fatalf("metrics missing %q:\n%s", want, body)
	}
}

func TestCallable_MissingRequiredGroups(t *testing.T) {
	cases := []struct {
		path    string
		body    string
		message string
	}{
		{"/getExerciseRecommendation", `{"data": {}}`, "Failed to get exercise recommendation"},
		{"/getExerciseRecommendation", `{"data": {"userProfile": {"objective": "strength"}, "currentSession": null, "recentTrends": {}}}`, "Failed to get exercise recommendation"},
		{"/analyzeProgression", `{"data": {"exerciseHistory": {}}}`, "Failed to analyze progression"},
	}
	for _, tc := range cases {
		ts := newTestServer(t, `{}`, "sk-test")
		status, out, _ := ts.call(t, tc.path, "good-token", tc.body)
		if status != http.StatusInternalServerError {
			t.Fatalf("%s %s: expected status 500, got %d", tc.path, tc.body, status)
		}
		if out.Error == nil || out.Error.Status != "INTERNAL" || out.Error.Message != tc.message {
			t.Fatalf("%s %s: unexpected error body %+v", tc.path, tc.body, out.Error)
		}
		if ts.provider.calls != 0 {
			t.Fatalf("%s %s: provider called %d times", tc.path, tc.body, ts.provider.calls)
		}
	}
}

func TestCallable_FrequencyAcceptsAnyScalar(t *testing.T) {
	for _, freq := range []string{`4`, `4.0`, `"4"`} {
		ts := newTestServer(t, `{}`, "sk-test")
		body := `{"data": {"objective": "hypertrophy", "level": "intermediate", "frequency": ` + freq + `, "splitType": "PPL"}}`
		status, out, _ := ts.call(t, "/generateWorkoutProgram", "good-token", body)
		if status != http.StatusOK {
			t.Fatalf("frequency %s: expected status 200, got %d (%+v)", freq, status, out.Error)
		}
		if ts.provider.calls != 1 {
			t.Fatalf("frequency %s: provider calls = %d; want 1", freq, ts.provider.calls)
		}
	}
}

func TestCallable_FailureLoggedOnceWithRequestID(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	ts := newTestServerWithLogger(t, `{}`, "", logger)

	status, _, header := ts.call(t, "/generateWorkoutProgram", "good-token", programBody)
	if status != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", status)
	}
	var errorLines []string
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		if strings.Contains(line, `"level":"ERROR"`) {
			errorLines = append(errorLines, line)
		}
	}
	if len(errorLines) != 1 {
		t.Fatalf("expected one error line, got %d:\n%s", len(errorLines), logs.String())
	}
	if !strings.Contains(errorLines[0], `"request_id":"`+header.Get("X-Request-ID")+`"`) {
		t.Fatalf("error line missing request id: %s", errorLines[0])
	}
}
