package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"xsim/internal/model"
)

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	s := model.Summary{
		Operator:    "Ada Lovelace",
		Score:       3,
		Hits:        3,
		FalseAlarms: 1,
		Efficiency:  75,
		Credit:      16,
		TimeUsed:    90 * time.Second,
		CategoryStats: map[int]model.CategoryStat{
			1: {Hits: 2, Total: 2},
			4: {Hits: 1, Total: 2},
		},
		WrongAnswers: []model.WrongAnswer{{BaggageID: 12, Code: "2026-X", Correct: "KNIFE", User: "MISSED"}},
		FinishedAt:   time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC),
	}

	if err := NewMarkdownWriter(&buf).WriteSummary(s, CategoryNames{1: "CLEAR"}); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"# Screening Session Summary",
		"Ada Lovelace",
		"75.0%",
		"16 min",
		"CLEAR",
		"#4",
		"50%",
		"MISSED",
		"mermaid",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewMarkdownWriter(&buf).WriteSummary(model.Summary{}, nil); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "No bags were graded.") || !strings.Contains(out, "None.") {
		t.Errorf("empty summary output:\n%s", out)
	}
	if strings.Contains(out, "mermaid") {
		t.Error("chart written for an empty session")
	}
}

func TestWriteHistory(t *testing.T) {
	var buf bytes.Buffer
	sessions := []model.Summary{
		{Score: 9, Efficiency: 90, Credit: 20, Corrective: true, Area: 2},
		{Score: 1, Efficiency: 20},
	}
	if err := NewMarkdownWriter(&buf).WriteHistory(sessions); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "corrective / area 2") || !strings.Contains(out, "90.0%") {
		t.Errorf("history output:\n%s", out)
	}

	buf.Reset()
	if err := NewMarkdownWriter(&buf).WriteHistory(nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No sessions recorded.") {
		t.Errorf("empty history output:\n%s", buf.String())
	}
}
