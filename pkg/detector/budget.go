package detector

import (
	"encoding/json"

	"github.com/doppelscan/doppel/internal/output"
	"github.com/doppelscan/doppel/pkg/models"
)

// DefaultSafetyBudget is the hard ceiling on the estimated token size of a
// shaped response.
const DefaultSafetyBudget = 25000

// estimateSampleSize bounds how many leading groups the default estimator
// serializes before extrapolating.
const estimateSampleSize = 5

// minimalResultSize is the fallback group count when no ladder step fits the
// safety budget.
const minimalResultSize = 3

// SizeEstimator estimates the serialized token size of a group list.
type SizeEstimator func(groups []models.CloneGroup) int

// Budgeter shapes a ranked group list to the caller's max item count and a
// hard safety budget via progressive truncation.
type Budgeter struct {
	estimator    SizeEstimator
	safetyBudget int
}

// NewBudgeter creates a budgeter. A nil estimator uses EstimateGroupTokens;
// a budget <= 0 uses DefaultSafetyBudget.
func NewBudgeter(estimator SizeEstimator, safetyBudget int) *Budgeter {
	if estimator == nil {
		estimator = EstimateGroupTokens
	}
	if safetyBudget <= 0 {
		safetyBudget = DefaultSafetyBudget
	}
	return &Budgeter{estimator: estimator, safetyBudget: safetyBudget}
}

// reductionLadder is the decreasing candidate-count ladder tried when the
// estimate exceeds the safety budget.
var reductionLadder = []int{50, 25, 10, 5}

// Shape truncates ranked groups to maxGroups, then applies progressive
// reduction until the estimate fits the safety budget, falling back to a
// minimal fixed-size result. The returned result reports total available,
// count returned, and which limit triggered truncation, so callers can
// decide between narrowing the query and fetching the untruncated result
// through the stored-result channel.
func (b *Budgeter) Shape(ranked []models.CloneGroup, maxGroups int) ([]models.CloneGroup, int, bool, models.TruncationReason) {
	total := len(ranked)

	kept := ranked
	reason := models.TruncationNone
	if maxGroups > 0 && len(kept) > maxGroups {
		kept = kept[:maxGroups]
		reason = models.TruncationRequested
	}

	if b.estimator(kept) <= b.safetyBudget {
		return kept, total, reason != models.TruncationNone, reason
	}

	for _, step := range reductionLadder {
		if step >= len(kept) {
			continue
		}
		candidate := kept[:step]
		if b.estimator(candidate) <= b.safetyBudget {
			return candidate, total, true, models.TruncationBudget
		}
	}

	n := minimalResultSize
	if n > len(kept) {
		n = len(kept)
	}
	return kept[:n], total, true, models.TruncationBudget
}

// EstimateGroupTokens estimates the serialized token size of a group list by
// serializing a handful of leading groups and extrapolating linearly. The
// sample trades precision for speed: the budgeter only needs to know whether
// the response is in the right order of magnitude.
func EstimateGroupTokens(groups []models.CloneGroup) int {
	if len(groups) == 0 {
		return 0
	}

	sample := groups
	if len(sample) > estimateSampleSize {
		sample = sample[:estimateSampleSize]
	}

	sampled := 0
	for _, g := range sample {
		data, err := json.Marshal(g)
		if err != nil {
			// Marshalling a CloneGroup cannot realistically fail; fall
			// back to a generous per-member guess.
			sampled += 64 * (g.MemberCount + 1)
			continue
		}
		sampled += output.EstimateTokens(string(data))
	}

	perGroup := sampled / len(sample)
	return perGroup * len(groups)
}
