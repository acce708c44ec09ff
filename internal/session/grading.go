package session

import (
	"math"
	"strings"

	"xsim/internal/model"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gonum.org/v1/gonum/stat"
)

// Grade decides one answer. A clear bag needs only the clear category. Any
// other bag needs the right category and a click inside its box.
func Grade(correctID, selectedID int, clickInside bool, clearID int) bool {
	if correctID == clearID {
		return selectedID == clearID
	}
	return selectedID == correctID && clickInside
}

// Efficiency returns hits as a percentage of graded bags, to one decimal.
func Efficiency(hits, falseAlarms int) float64 {
	total := hits + falseAlarms
	if total == 0 {
		return 0
	}
	return math.Round(float64(hits)/float64(total)*1000) / 10
}

// excludedCategories lists categories not screened in an area.
var excludedCategories = map[int][]int{
	2: {5},
	3: {5, 6},
}

// AreaCategories filters categories for an area and upper-cases their labels.
func AreaCategories(all []model.ThreatCategory, area int) []Category {
	skip := map[int]bool{}
	for _, id := range excludedCategories[area] {
		skip[id] = true
	}
	upper := cases.Upper(language.Und)
	out := make([]Category, 0, len(all))
	for _, c := range all {
		if skip[c.ID] {
			continue
		}
		out = append(out, Category{ID: c.ID, Label: upper.String(strings.TrimSpace(c.Name))})
	}
	return out
}

// ReactionStats returns the mean and sample standard deviation of reaction
// times in seconds. The deviation is zero with fewer than two samples.
func ReactionStats(seconds []float64) (mean, stddev float64) {
	switch len(seconds) {
	case 0:
		return 0, 0
	case 1:
		return seconds[0], 0
	}
	return stat.MeanStdDev(seconds, nil)
}
