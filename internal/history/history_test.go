package history

import (
	"context"
	"testing"
	"time"

	"xsim/internal/model"
)

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, eff := range []float64{40, 85, 65} {
		_, err := s.Record(ctx, model.Summary{
			Operator:   "Ada Lovelace",
			Hits:       i + 1,
			Efficiency: eff,
			Credit:     i * 10,
			FinishedAt: base.Add(time.Duration(i) * time.Hour),
			CategoryStats: map[int]model.CategoryStat{
				3: {Hits: i, Total: i + 1},
			},
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len = %d, want 2", len(recent))
	}
	if recent[0].Summary.Efficiency != 65 || recent[1].Summary.Efficiency != 85 {
		t.Errorf("order = %v, %v", recent[0].Summary.Efficiency, recent[1].Summary.Efficiency)
	}
	if recent[0].Summary.CategoryStats[3].Total != 3 {
		t.Errorf("category stats lost: %+v", recent[0].Summary.CategoryStats)
	}

	totals, err := s.Totals(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if totals.Sessions != 3 || totals.TotalCredit != 30 {
		t.Errorf("totals = %+v", totals)
	}
	if totals.MeanEfficiency < 63.3 || totals.MeanEfficiency > 63.4 {
		t.Errorf("mean efficiency = %v", totals.MeanEfficiency)
	}
}

func TestEmptyTotals(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	totals, err := s.Totals(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if totals.Sessions != 0 || totals.MeanEfficiency != 0 {
		t.Errorf("totals = %+v", totals)
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Record(context.Background(), model.Summary{Score: 7}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	recent, err := s.Recent(context.Background(), 0)
	if err != nil || len(recent) != 1 || recent[0].Summary.Score != 7 {
		t.Errorf("recent = %+v, %v", recent, err)
	}
}
