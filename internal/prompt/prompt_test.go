package prompt

import (
	"strings"
	"testing"

	"github.com/timvw/rao-eval/internal/model"
)

func TestFormatUser(t *testing.T) {
	task := model.Task{
		ID:      "t-001",
		Board:   []string{"AB.....", "......."},
		Columns: []string{"0", "1", "2", "3", "4", "5", "6"},
	}

	want := strings.Join([]string{
		"Board (top row first):",
		"",
		"Col:  0  1  2  3  4  5  6",
		"      -  -  -  -  -  -  -",
		"Row 0: A  B  .  .  .  .  .",
		"Row 1: .  .  .  .  .  .  .",
		"",
		"Current player: A",
		"Legal columns: 2, 3, 4, 5, 6",
	}, "\n")

	got := FormatUser(task)
	if got != want {
		t.Errorf("FormatUser() =\n%s\nwant:\n%s", got, want)
	}
	if again := FormatUser(task); again != got {
		t.Error("FormatUser is not stable for identical input")
	}
}

func TestFormatUser_FullBoard(t *testing.T) {
	task := model.Task{
		Board:   []string{"ABABABA", "BABABAB", "ABABABA", "BABABAB", "ABABABA", "BABABAB"},
		Columns: []string{"0", "1", "2", "3", "4", "5", "6"},
	}

	got := FormatUser(task)
	if !strings.HasSuffix(got, "Legal columns: ") {
		t.Errorf("expected empty legal column list, got:\n%s", got)
	}
	if !strings.Contains(got, "Row 5: B  A  B  A  B  A  B") {
		t.Errorf("expected bottom row rendered, got:\n%s", got)
	}
}

func TestParseRegime(t *testing.T) {
	tests := []struct {
		in      string
		want    Regime
		wantErr bool
	}{
		{in: "minimal", want: Minimal},
		{in: "cot", want: Reasoning},
		{in: " COT ", want: Reasoning},
		{in: "chain", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseRegime(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRegime(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRegime(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSystemPrompts(t *testing.T) {
	minimal := System(Minimal)
	reasoning := System(Reasoning)

	if minimal == "" || reasoning == "" {
		t.Fatal("system prompt is empty, embed directive may have failed")
	}
	if !strings.HasSuffix(minimal, "Nothing else.") {
		t.Errorf("minimal prompt should end with the answer instruction, got %q", minimal[len(minimal)-20:])
	}
	if !strings.Contains(reasoning, "ANSWER: <column>") {
		t.Error("reasoning prompt must describe the ANSWER marker")
	}
	if strings.Contains(minimal, "ANSWER:") {
		t.Error("minimal prompt must not ask for the ANSWER marker")
	}
}

func TestMaxTokens(t *testing.T) {
	if got := MaxTokens(Minimal); got != 32 {
		t.Errorf("MaxTokens(minimal) = %d, want 32", got)
	}
	if got := MaxTokens(Reasoning); got != 512 {
		t.Errorf("MaxTokens(cot) = %d, want 512", got)
	}
}
