// Package detector implements clone detection over extracted code blocks:
// normalization, exact-duplicate grouping by content digest, greedy
// single-link clustering of near duplicates, ranking by estimated
// refactoring savings, and budget-constrained response shaping.
package detector

import (
	"context"
	"fmt"
	"sort"

	"github.com/doppelscan/doppel/pkg/models"
	"gonum.org/v1/gonum/stat"
)

// KindFilter selects which clone kinds a run computes.
type KindFilter int

const (
	KindsAll KindFilter = iota
	KindsExactOnly
	KindsRenamedOnly
	KindsNearMissOnly
)

// String returns the string representation.
func (f KindFilter) String() string {
	switch f {
	case KindsExactOnly:
		return "exact"
	case KindsRenamedOnly:
		return "renamed"
	case KindsNearMissOnly:
		return "nearmiss"
	default:
		return "all"
	}
}

// ParseKindFilter converts a configuration string to a KindFilter.
func ParseKindFilter(s string) (KindFilter, error) {
	switch s {
	case "", "all":
		return KindsAll, nil
	case "exact":
		return KindsExactOnly, nil
	case "renamed":
		return KindsRenamedOnly, nil
	case "nearmiss", "near-miss", "near_miss":
		return KindsNearMissOnly, nil
	default:
		return 0, fmt.Errorf("unknown clone kind filter %q (want all, exact, renamed, or nearmiss)", s)
	}
}

// includes reports whether the filter admits a kind.
func (f KindFilter) includes(kind models.CloneKind) bool {
	switch f {
	case KindsExactOnly:
		return kind == models.KindExact
	case KindsRenamedOnly:
		return kind == models.KindRenamed
	case KindsNearMissOnly:
		return kind == models.KindNearMiss
	default:
		return true
	}
}

// HardMaxGroups is the ceiling on the caller-requested group count.
const HardMaxGroups = 500

// Config holds detection parameters.
type Config struct {
	SimilarityThreshold float64
	MinTokens           int
	MinLines            int
	Kinds               KindFilter
	MaxGroups           int
	SizeGuard           int
	SafetyBudget        int
}

// DefaultConfig returns the default detection parameters.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.80,
		MinTokens:           50,
		MinLines:            6,
		Kinds:               KindsAll,
		MaxGroups:           50,
		SizeGuard:           DefaultSizeGuard,
		SafetyBudget:        DefaultSafetyBudget,
	}
}

// Validate checks parameter ranges.
func (c Config) Validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold %.2f out of range [0,1]", c.SimilarityThreshold)
	}
	if c.MaxGroups < 1 || c.MaxGroups > HardMaxGroups {
		return fmt.Errorf("max groups %d out of range [1,%d]", c.MaxGroups, HardMaxGroups)
	}
	return nil
}

// Detector runs one-shot clone detection over a snapshot of code blocks.
// It holds no mutable state across runs: each Detect call owns its own
// candidate slice and processed set, so distinct requests may run
// concurrently on different snapshots.
type Detector struct {
	config    Config
	engine    *SimilarityEngine
	estimator SizeEstimator
}

// Option is a functional option for configuring Detector.
type Option func(*Detector)

// WithThreshold sets the similarity threshold.
func WithThreshold(threshold float64) Option {
	return func(d *Detector) {
		d.config.SimilarityThreshold = threshold
	}
}

// WithKinds restricts which clone kinds are computed.
func WithKinds(kinds KindFilter) Option {
	return func(d *Detector) {
		d.config.Kinds = kinds
	}
}

// WithMaxGroups sets the requested result size, clamped to HardMaxGroups.
func WithMaxGroups(max int) Option {
	return func(d *Detector) {
		d.config.MaxGroups = max
	}
}

// WithSizeEstimator overrides the response size estimator (for testing).
func WithSizeEstimator(estimator SizeEstimator) Option {
	return func(d *Detector) {
		d.estimator = estimator
	}
}

// WithConfig sets all detection parameters at once.
func WithConfig(cfg Config) Option {
	return func(d *Detector) {
		d.config = cfg
	}
}

// New creates a detector with default config.
func New(opts ...Option) *Detector {
	d := &Detector{config: DefaultConfig()}
	for _, opt := range opts {
		opt(d)
	}
	if d.config.MaxGroups > HardMaxGroups {
		d.config.MaxGroups = HardMaxGroups
	}
	d.engine = NewSimilarityEngine(d.config.SizeGuard)
	return d
}

// Config returns the active configuration.
func (d *Detector) Config() Config {
	return d.config
}

// Detect runs the full pipeline: exact pass, clustering over exact-duplicate
// survivors, ranking, and budget shaping. On cancellation or internal
// failure no partial result is returned.
func (d *Detector) Detect(ctx context.Context, blocks []*models.CodeBlock) (result *models.DetectionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &InternalError{Stage: "detection", Err: fmt.Errorf("%v", r)}
		}
	}()

	if len(blocks) == 0 {
		return &models.DetectionResult{
			Groups:    []models.CloneGroup{},
			Threshold: d.config.SimilarityThreshold,
			Message:   "no candidate blocks after size filtering; lower min_lines/min_tokens or widen the analyzed paths",
		}, nil
	}

	candidates := make([]*models.CodeBlock, len(blocks))
	copy(candidates, blocks)
	sortCandidates(candidates)

	if cerr := ctx.Err(); cerr != nil {
		return nil, &CancelledError{Err: cerr}
	}

	groups, survivors := d.exactPass(candidates)

	// Exact-only runs skip the quadratic clustering pass entirely.
	if d.config.Kinds != KindsExactOnly {
		builder := NewClusterBuilder(d.engine, d.config.SimilarityThreshold)
		clustered, cerr := builder.Cluster(ctx, survivors)
		if cerr != nil {
			return nil, &CancelledError{Err: cerr}
		}
		groups = append(groups, clustered...)
	}

	filtered := groups[:0]
	for _, g := range groups {
		if d.config.Kinds.includes(g.Kind) {
			filtered = append(filtered, g)
		}
	}
	groups = filtered

	Rank(groups)

	budgeter := NewBudgeter(d.estimator, d.config.SafetyBudget)
	kept, total, truncated, reason := budgeter.Shape(groups, d.config.MaxGroups)

	return &models.DetectionResult{
		Groups:      kept,
		Summary:     Summarize(kept),
		TotalBlocks: len(blocks),
		TotalFound:  total,
		Returned:    len(kept),
		Truncated:   truncated,
		Truncation:  reason,
		Threshold:   d.config.SimilarityThreshold,
	}, nil
}

// exactPass partitions blocks by content digest. Digest-equal sets of >=2
// become Exact groups; the remaining digest-unique blocks are the survivors
// handed to clustering. Members of exact groups never re-enter clustering,
// preserving the partition invariant.
func (d *Detector) exactPass(candidates []*models.CodeBlock) ([]models.CloneGroup, []*models.CodeBlock) {
	byDigest := make(map[string][]*models.CodeBlock, len(candidates))
	order := make([]string, 0, len(candidates))
	for _, b := range candidates {
		if _, seen := byDigest[b.Digest]; !seen {
			order = append(order, b.Digest)
		}
		byDigest[b.Digest] = append(byDigest[b.Digest], b)
	}

	var groups []models.CloneGroup
	var survivors []*models.CodeBlock
	for _, digest := range order {
		set := byDigest[digest]
		if len(set) < 2 {
			survivors = append(survivors, set...)
			continue
		}

		members := make([]models.Member, 0, len(set))
		totalLines := 0
		for _, b := range set {
			members = append(members, models.Member{
				Block:       b.ID,
				Origin:      b.Origin,
				Lines:       b.LineCount,
				Fingerprint: b.Fingerprint,
				Similarity:  1.0,
				Metric:      models.MetricExact,
			})
			totalLines += b.LineCount
		}

		groups = append(groups, models.CloneGroup{
			ID:                uint64(len(groups) + 1),
			Kind:              models.KindExact,
			Members:           members,
			MemberCount:       len(members),
			TotalLines:        totalLines,
			AverageSimilarity: 1.0,
			EstimatedSavings:  (len(members) - 1) * set[0].LineCount,
		})
	}

	return groups, survivors
}

// Summarize aggregates kind counts, savings, and the similarity distribution
// over a group list.
func Summarize(groups []models.CloneGroup) models.DetectionSummary {
	var s models.DetectionSummary
	var sims []float64

	for _, g := range groups {
		switch g.Kind {
		case models.KindExact:
			s.ExactGroups++
		case models.KindRenamed:
			s.RenamedGroups++
		case models.KindNearMiss:
			s.NearMissGroups++
		}
		s.TotalSavings += g.EstimatedSavings
		sims = append(sims, g.AverageSimilarity)
	}

	if len(sims) > 0 {
		s.AvgSimilarity = stat.Mean(sims, nil)
		sort.Float64s(sims)
		s.P50Similarity = stat.Quantile(0.50, stat.Empirical, sims, nil)
		s.P95Similarity = stat.Quantile(0.95, stat.Empirical, sims, nil)
	}

	return s
}
