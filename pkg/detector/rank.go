package detector

import (
	"sort"

	"github.com/doppelscan/doppel/pkg/models"
)

// Rank orders groups by estimated refactoring value: estimated savings
// descending, then average similarity descending, then first-member origin
// ascending so equal-value groups keep a stable order. Group IDs are
// reassigned to match the final order.
func Rank(groups []models.CloneGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].EstimatedSavings != groups[j].EstimatedSavings {
			return groups[i].EstimatedSavings > groups[j].EstimatedSavings
		}
		if groups[i].AverageSimilarity != groups[j].AverageSimilarity {
			return groups[i].AverageSimilarity > groups[j].AverageSimilarity
		}
		oi, oj := groups[i].Seed().Origin, groups[j].Seed().Origin
		if oi.File != oj.File {
			return oi.File < oj.File
		}
		return oi.StartLine < oj.StartLine
	})

	for i := range groups {
		groups[i].ID = uint64(i + 1)
	}
}
