package detector

import (
	"github.com/doppelscan/doppel/pkg/models"
)

// DefaultSizeGuard is the token count above which the O(n*m) LCS dynamic
// program is skipped in favor of the coarse Jaccard approximation.
const DefaultSizeGuard = 2000

// SimilarityEngine computes pairwise similarity between normalized token
// sequences. Positional equality and LCS-ratio are deliberately separate
// algorithms: renamed-only clones need exact structural alignment while
// near-miss clones must tolerate insertions and deletions.
type SimilarityEngine struct {
	sizeGuard int
}

// NewSimilarityEngine creates an engine with the given LCS size guard.
// A guard <= 0 uses DefaultSizeGuard.
func NewSimilarityEngine(sizeGuard int) *SimilarityEngine {
	if sizeGuard <= 0 {
		sizeGuard = DefaultSizeGuard
	}
	return &SimilarityEngine{sizeGuard: sizeGuard}
}

// Positional returns the fraction of positions holding identical tokens for
// equal-length sequences, and 0 on any length mismatch. Detects renamed-only
// clones, which preserve statement order and count.
func (e *SimilarityEngine) Positional(a, b []models.NormalizedToken) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	matches := 0
	for i := range a {
		if a[i].Text == b[i].Text {
			matches++
		}
	}
	return float64(matches) / float64(len(a))
}

// LCSRatio returns the longest-common-subsequence length divided by
// max(len(a), len(b)). Tolerates inserted and removed tokens.
func (e *SimilarityEngine) LCSRatio(a, b []models.NormalizedToken) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	// Two-row DP keeps memory at O(min) of one dimension.
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1].Text == b[j-1].Text {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	return float64(prev[len(b)]) / float64(longest)
}

// Jaccard returns |intersection|/|union| over token multisets. A coarse,
// lower-precision approximation used when a sequence exceeds the size guard,
// bounding worst-case latency on oversized blocks.
func (e *SimilarityEngine) Jaccard(a, b []models.NormalizedToken) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	countsA := make(map[string]int, len(a))
	for _, t := range a {
		countsA[t.Text]++
	}
	countsB := make(map[string]int, len(b))
	for _, t := range b {
		countsB[t.Text]++
	}

	intersection := 0
	for text, ca := range countsA {
		cb := countsB[text]
		if cb < ca {
			intersection += cb
		} else {
			intersection += ca
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Compare scores a block pair with the policy-selected metric: digest
// equality short-circuits to 1.0, equal-length sequences use positional
// equality, and unequal lengths use LCS-ratio unless either sequence exceeds
// the size guard, in which case the Jaccard fallback applies. Score 1.0 is
// reserved for digest-equal pairs.
func (e *SimilarityEngine) Compare(a, b *models.CodeBlock) models.SimilarityScore {
	score := models.SimilarityScore{BlockA: a.ID, BlockB: b.ID}

	if a.Digest == b.Digest {
		score.Score = 1.0
		score.Metric = models.MetricExact
		return score
	}

	if len(a.Tokens) > e.sizeGuard || len(b.Tokens) > e.sizeGuard {
		score.Score = e.Jaccard(a.Tokens, b.Tokens)
		score.Metric = models.MetricJaccard
		return score
	}

	if len(a.Tokens) == len(b.Tokens) {
		score.Score = e.Positional(a.Tokens, b.Tokens)
		score.Metric = models.MetricPositional
		return score
	}

	score.Score = e.LCSRatio(a.Tokens, b.Tokens)
	score.Metric = models.MetricLCS
	return score
}
