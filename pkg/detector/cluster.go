package detector

import (
	"context"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/doppelscan/doppel/pkg/models"
)

// Classification thresholds on a group's average similarity.
const (
	renamedThreshold  = 0.95
	nearMissThreshold = 0.70
)

// ClusterBuilder partitions candidate blocks into disjoint groups via greedy
// seed-first single-link clustering. This is a documented approximation, not
// a globally optimal clustering: a block may be more similar to a later seed
// than to the one that claimed it, but it is never re-evaluated once
// processed. Comparisons are O(k^2) in the post-dedup candidate count, so
// callers bound k through the upstream size filters.
type ClusterBuilder struct {
	engine    *SimilarityEngine
	threshold float64
}

// NewClusterBuilder creates a builder joining blocks that score at or above
// threshold against their seed.
func NewClusterBuilder(engine *SimilarityEngine, threshold float64) *ClusterBuilder {
	return &ClusterBuilder{engine: engine, threshold: threshold}
}

// sortCandidates orders blocks by origin file then start line. The fixed
// order makes group membership and ordering reproducible across runs.
func sortCandidates(blocks []*models.CodeBlock) {
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Origin.File != blocks[j].Origin.File {
			return blocks[i].Origin.File < blocks[j].Origin.File
		}
		return blocks[i].Origin.StartLine < blocks[j].Origin.StartLine
	})
}

// Cluster groups the candidate list left after exact-duplicate removal.
// The context is checked between seed iterations; on cancellation partial
// results are discarded entirely.
func (b *ClusterBuilder) Cluster(ctx context.Context, candidates []*models.CodeBlock) ([]models.CloneGroup, error) {
	sortCandidates(candidates)

	processed := roaring.New()
	var groups []models.CloneGroup

	for i := 0; i < len(candidates); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if processed.ContainsInt(i) {
			continue
		}
		processed.AddInt(i)

		seed := candidates[i]
		members := []models.Member{{
			Block:       seed.ID,
			Origin:      seed.Origin,
			Lines:       seed.LineCount,
			Fingerprint: seed.Fingerprint,
			Similarity:  1.0,
			Metric:      models.MetricExact,
		}}
		var similaritySum float64

		for j := i + 1; j < len(candidates); j++ {
			if processed.ContainsInt(j) {
				continue
			}
			score := b.engine.Compare(seed, candidates[j])
			if score.Score < b.threshold {
				continue
			}
			processed.AddInt(j)
			members = append(members, models.Member{
				Block:       candidates[j].ID,
				Origin:      candidates[j].Origin,
				Lines:       candidates[j].LineCount,
				Fingerprint: candidates[j].Fingerprint,
				Similarity:  score.Score,
				Metric:      score.Metric,
			})
			similaritySum += score.Score
		}

		if len(members) < 2 {
			continue
		}

		avg := similaritySum / float64(len(members)-1)
		kind, ok := classify(avg)
		if !ok {
			continue
		}

		totalLines := 0
		for _, m := range members {
			totalLines += m.Lines
		}

		groups = append(groups, models.CloneGroup{
			ID:                uint64(len(groups) + 1),
			Kind:              kind,
			Members:           members,
			MemberCount:       len(members),
			TotalLines:        totalLines,
			AverageSimilarity: avg,
			EstimatedSavings:  (len(members) - 1) * seed.LineCount,
		})
	}

	return groups, nil
}

// classify maps a group's average similarity to a clone kind. Groups below
// the near-miss floor are discarded.
func classify(avgSimilarity float64) (models.CloneKind, bool) {
	switch {
	case avgSimilarity >= renamedThreshold:
		return models.KindRenamed, true
	case avgSimilarity >= nearMissThreshold:
		return models.KindNearMiss, true
	default:
		return 0, false
	}
}
