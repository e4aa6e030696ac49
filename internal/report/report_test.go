package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/timvw/rao-eval/internal/model"
)

func TestWriteResults(t *testing.T) {
	tests := []struct {
		name    string
		results map[string]string
		want    string
	}{
		{
			name:    "sorted keys, two-space indent",
			results: map[string]string{"t-010": "6", "t-001": "3", "t-002": "0"},
			want:    "{\n  \"t-001\": \"3\",\n  \"t-002\": \"0\",\n  \"t-010\": \"6\"\n}\n",
		},
		{
			name:    "empty",
			results: map[string]string{},
			want:    "{}\n",
		},
		{
			name:    "nil",
			results: nil,
			want:    "{}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteResults(&buf, tt.results); err != nil {
				t.Fatalf("WriteResults: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", buf.String(), tt.want)
			}
		})
	}
}

func TestWriteResults_RoundTrips(t *testing.T) {
	in := map[string]string{"a": "1", "b": "2"}
	var buf bytes.Buffer
	if err := WriteResults(&buf, in); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	var out map[string]string
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(out) != 2 || out["a"] != "1" || out["b"] != "2" {
		t.Errorf("decoded %v", out)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteResults_WriteError(t *testing.T) {
	err := WriteResults(failingWriter{}, map[string]string{"a": "1"})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
}

func TestWriteDetails(t *testing.T) {
	tasks := []model.TaskResult{
		{TaskID: "a", Outcome: model.OutcomeLegal, Move: "3", Expected: "3"},
		{TaskID: "b", Outcome: model.OutcomeRequestError, Error: "HTTP 429: slow down", RateLimited: true},
	}
	var buf bytes.Buffer
	if err := WriteDetails(&buf, tasks); err != nil {
		t.Fatalf("WriteDetails: %v", err)
	}

	want := `{"task_id":"a","outcome":"answered-legal","move":"3","expected":"3"}` + "\n" +
		`{"task_id":"b","outcome":"request-error","error":"HTTP 429: slow down","rate_limited":true}` + "\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestRenderSummary(t *testing.T) {
	s := model.Summary{Total: 10, Answered: 7, Errored: 3, Illegal: 1, Unparseable: 2, Scored: 5, Correct: 4}
	out := RenderSummary(s, DarkTheme())

	for _, want := range []string{"Evaluation summary", "processed", "7/10", "errors", "unparseable", "illegal", "correct", "4/5"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSummary_LabelsSeparatedFromValues(t *testing.T) {
	s := model.Summary{Total: 10, Answered: 7, Errored: 3, Illegal: 1, Unparseable: 2, Scored: 5, Correct: 4}
	out := RenderSummary(s, DarkTheme())

	for _, row := range []string{"processed", "errors", "unparseable", "illegal", "correct"} {
		re := regexp.MustCompile(`\b` + row + ` +\d`)
		if !re.MatchString(out) {
			t.Errorf("label %q not followed by a space and its value:\n%s", row, out)
		}
	}
}

func TestRenderSummary_OmitsCorrectWithoutSolutions(t *testing.T) {
	out := RenderSummary(model.Summary{Total: 2, Answered: 2}, LightTheme())
	if strings.Contains(out, "correct") {
		t.Errorf("unscored run should not show a correct row:\n%s", out)
	}
	if !strings.Contains(out, "2/2") {
		t.Errorf("summary missing processed count:\n%s", out)
	}
}

func TestSummary_WritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := Summary(&buf, model.Summary{Total: 1, Answered: 1}, DarkTheme()); err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "\n") || !strings.Contains(buf.String(), "1/1") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestThemeByName(t *testing.T) {
	if ThemeByName("light") != LightTheme() {
		t.Error("light theme not selected")
	}
	if ThemeByName("") != DarkTheme() || ThemeByName("neon") != DarkTheme() {
		t.Error("dark theme should be the default")
	}
}
