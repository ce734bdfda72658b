package detector

import (
	"testing"

	"github.com/doppelscan/doppel/pkg/models"
)

func rankGroup(savings int, sim float64, file string, line uint32) models.CloneGroup {
	return models.CloneGroup{
		Members: []models.Member{{
			Origin: models.Origin{File: file, StartLine: line},
		}},
		MemberCount:       1,
		AverageSimilarity: sim,
		EstimatedSavings:  savings,
	}
}

func TestRankOrdersBySavings(t *testing.T) {
	groups := []models.CloneGroup{
		rankGroup(5, 0.9, "a.go", 1),
		rankGroup(20, 0.8, "b.go", 1),
		rankGroup(10, 0.7, "c.go", 1),
	}

	Rank(groups)

	wantSavings := []int{20, 10, 5}
	for i, want := range wantSavings {
		if groups[i].EstimatedSavings != want {
			t.Errorf("groups[%d].EstimatedSavings = %d, want %d", i, groups[i].EstimatedSavings, want)
		}
		if groups[i].ID != uint64(i+1) {
			t.Errorf("groups[%d].ID = %d, want %d", i, groups[i].ID, i+1)
		}
	}
}

func TestRankTieBreaks(t *testing.T) {
	groups := []models.CloneGroup{
		rankGroup(10, 0.80, "z.go", 5),
		rankGroup(10, 0.95, "m.go", 9),
		rankGroup(10, 0.80, "a.go", 7),
		rankGroup(10, 0.80, "a.go", 2),
	}

	Rank(groups)

	// Equal savings: higher similarity first, then origin order.
	if groups[0].AverageSimilarity != 0.95 {
		t.Errorf("groups[0] similarity = %v, want 0.95", groups[0].AverageSimilarity)
	}
	if o := groups[1].Seed().Origin; o.File != "a.go" || o.StartLine != 2 {
		t.Errorf("groups[1] origin = %s:%d, want a.go:2", o.File, o.StartLine)
	}
	if o := groups[2].Seed().Origin; o.File != "a.go" || o.StartLine != 7 {
		t.Errorf("groups[2] origin = %s:%d, want a.go:7", o.File, o.StartLine)
	}
	if o := groups[3].Seed().Origin; o.File != "z.go" {
		t.Errorf("groups[3] origin file = %s, want z.go", o.File)
	}
}
