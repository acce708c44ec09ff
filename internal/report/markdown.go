// Package report renders session summaries as Markdown.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"xsim/internal/model"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// CategoryNames maps category ids to display labels.
type CategoryNames map[int]string

func (n CategoryNames) label(id int) string {
	if name, ok := n[id]; ok && name != "" {
		return name
	}
	return "#" + strconv.Itoa(id)
}

// MarkdownWriter writes session reports.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to w.
func NewMarkdownWriter(w io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: w}
}

// WriteSummary writes one session summary.
func (w *MarkdownWriter) WriteSummary(s model.Summary, names CategoryNames) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("Screening Session Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Operator", valueOr(s.Operator, "unknown")},
			{"Mode", mode(s)},
			{"Finished", formatTime(s.FinishedAt)},
			{"Time Used", s.TimeUsed.Round(time.Second).String()},
			{"Score", strconv.Itoa(s.Score)},
			{"Hits", strconv.Itoa(s.Hits)},
			{"False Alarms", strconv.Itoa(s.FalseAlarms)},
			{"Efficiency", fmt.Sprintf("%.1f%%", s.Efficiency)},
			{"Credit", fmt.Sprintf("%d min", s.Credit)},
			{"Reaction Time", fmt.Sprintf("%.2fs ± %.2fs", s.ReactionMean, s.ReactionStdDev)},
			{"Ended By", valueOr(s.Reason, "-")},
		},
	})
	md.PlainText("")

	if s.Graded() > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Answers"),
			piechart.WithShowData(true),
		)
		if s.Hits > 0 {
			chart.LabelAndIntValue("Hits", uint64(s.Hits))
		}
		if s.FalseAlarms > 0 {
			chart.LabelAndIntValue("False Alarms", uint64(s.FalseAlarms))
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	md.H2("Per Category")
	md.PlainText("")
	if len(s.CategoryStats) == 0 {
		md.PlainText("No bags were graded.")
	} else {
		ids := make([]int, 0, len(s.CategoryStats))
		for id := range s.CategoryStats {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		rows := make([][]string, 0, len(ids))
		for _, id := range ids {
			st := s.CategoryStats[id]
			rows = append(rows, []string{names.label(id), strconv.Itoa(st.Hits), strconv.Itoa(st.Total), percent(st.Hits, st.Total)})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Category", "Hits", "Total", "Rate"},
			Rows:   rows,
		})
	}
	md.PlainText("")

	md.H2("Wrong Answers")
	md.PlainText("")
	if len(s.WrongAnswers) == 0 {
		md.PlainText("None.")
	} else {
		rows := make([][]string, 0, len(s.WrongAnswers))
		for _, wa := range s.WrongAnswers {
			rows = append(rows, []string{strconv.Itoa(wa.BaggageID), valueOr(wa.Code, "-"), wa.Correct, wa.User})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Bag", "Code", "Correct", "Answered"},
			Rows:   rows,
		})
	}
	md.PlainText("")

	return md.Build()
}

// WriteHistory writes a table of past sessions, newest first.
func (w *MarkdownWriter) WriteHistory(sessions []model.Summary) error {
	md := markdown.NewMarkdown(w.output)
	md.H2("History")
	md.PlainText("")
	if len(sessions) == 0 {
		md.PlainText("No sessions recorded.")
		md.PlainText("")
		return md.Build()
	}

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			formatTime(s.FinishedAt),
			mode(s),
			strconv.Itoa(s.Score),
			strconv.Itoa(s.FalseAlarms),
			fmt.Sprintf("%.1f%%", s.Efficiency),
			strconv.Itoa(s.Credit),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Finished", "Mode", "Score", "False Alarms", "Efficiency", "Credit"},
		Rows:   rows,
	})
	md.PlainText("")
	return md.Build()
}

func mode(s model.Summary) string {
	m := "training"
	if s.Corrective {
		m = "corrective"
	}
	if s.Area > 0 {
		m += " / area " + strconv.Itoa(s.Area)
	}
	return m
}

func percent(hits, total int) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", float64(hits)/float64(total)*100)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04 MST")
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
