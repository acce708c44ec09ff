package screen

import (
	"strings"
	"testing"
	"time"

	"xsim/internal/model"
)

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{20 * time.Minute, "20:00"},
		{65 * time.Second, "01:05"},
		{1500 * time.Millisecond, "00:02"},
		{0, "00:00"},
		{-time.Second, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatRemaining(tt.in); got != tt.want {
			t.Errorf("FormatRemaining(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSummaryLines(t *testing.T) {
	sum := model.Summary{
		Score:       3,
		Hits:        3,
		FalseAlarms: 1,
		Efficiency:  75,
		Credit:      16,
		Corrective:  true,
		TimeUsed:    90 * time.Second,
		CategoryStats: map[int]model.CategoryStat{
			2: {Hits: 1, Total: 2},
			1: {Hits: 2, Total: 2},
		},
		WrongAnswers: []model.WrongAnswer{{BaggageID: 4, Code: "X-4", Correct: "Guns", User: model.MissedAnswer}},
	}
	text := strings.Join(SummaryLines(sum, map[int]string{1: "CLEAR", 2: "GUNS"}), "\n")

	for _, want := range []string{"Efficiency    75.0%", "Time used     01:30", "Time earned   16 min", "X-4", "MISSED"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
	if strings.Index(text, "CLEAR") > strings.Index(text, "GUNS") {
		t.Error("categories not sorted by id")
	}

	sum.Corrective = false
	if strings.Contains(strings.Join(SummaryLines(sum, nil), "\n"), "Time earned") {
		t.Error("training summary shows earned time")
	}
}
