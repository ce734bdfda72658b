package models

// CloneKind classifies a clone group. It is a closed enumeration selected by
// explicit similarity thresholds, never by string matching.
type CloneKind int

const (
	// KindExact groups blocks whose normalized token sequences are
	// digest-identical.
	KindExact CloneKind = iota
	// KindRenamed groups blocks identical up to identifier names
	// (average similarity >= 0.95).
	KindRenamed
	// KindNearMiss groups blocks with inserted or removed statements
	// (average similarity >= the active threshold, below 0.95).
	KindNearMiss
)

// String returns the string representation.
func (k CloneKind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindRenamed:
		return "renamed"
	case KindNearMiss:
		return "near_miss"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so kinds serialize by name.
func (k CloneKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Metric identifies the similarity algorithm that produced a score.
type Metric int

const (
	MetricExact Metric = iota
	MetricPositional
	MetricLCS
	MetricJaccard
)

// String returns the string representation.
func (m Metric) String() string {
	switch m {
	case MetricExact:
		return "exact"
	case MetricPositional:
		return "positional"
	case MetricLCS:
		return "lcs"
	case MetricJaccard:
		return "jaccard"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Metric) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// SimilarityScore is a scored block pair.
type SimilarityScore struct {
	BlockA uint64  `json:"block_a"`
	BlockB uint64  `json:"block_b"`
	Score  float64 `json:"score"`
	Metric Metric  `json:"metric"`
}

// Member is a single block occurrence inside a clone group. Similarity is
// measured against the group's seed (1.0 for the seed itself and for
// digest-equal members).
type Member struct {
	Block       uint64  `json:"block"`
	Origin      Origin  `json:"origin"`
	Lines       int     `json:"lines"`
	Fingerprint uint64  `json:"fingerprint"`
	Similarity  float64 `json:"similarity"`
	Metric      Metric  `json:"metric"`
}

// CloneGroup is a set of >=2 blocks judged similar enough to be refactoring
// candidates. The first member is the seed.
type CloneGroup struct {
	ID                uint64    `json:"id"`
	Kind              CloneKind `json:"kind"`
	Members           []Member  `json:"members"`
	MemberCount       int       `json:"member_count"`
	TotalLines        int       `json:"total_lines"`
	AverageSimilarity float64   `json:"average_similarity"`
	// EstimatedSavings is (member count - 1) * seed line count: the lines
	// removable by extracting the duplicate once.
	EstimatedSavings int `json:"estimated_savings"`
}

// Seed returns the seed member.
func (g *CloneGroup) Seed() Member {
	return g.Members[0]
}

// TruncationReason reports which limit shaped a truncated response.
type TruncationReason int

const (
	// TruncationNone means every found group was returned.
	TruncationNone TruncationReason = iota
	// TruncationRequested means the caller's max-groups limit applied.
	TruncationRequested
	// TruncationBudget means the hard safety budget forced further
	// reduction below the caller's limit.
	TruncationBudget
)

// String returns the string representation.
func (r TruncationReason) String() string {
	switch r {
	case TruncationRequested:
		return "requested_limit"
	case TruncationBudget:
		return "safety_budget"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r TruncationReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// DetectionSummary aggregates statistics over the returned groups.
type DetectionSummary struct {
	ExactGroups    int     `json:"exact_groups"`
	RenamedGroups  int     `json:"renamed_groups"`
	NearMissGroups int     `json:"near_miss_groups"`
	TotalSavings   int     `json:"total_savings"`
	AvgSimilarity  float64 `json:"avg_similarity"`
	P50Similarity  float64 `json:"p50_similarity"`
	P95Similarity  float64 `json:"p95_similarity"`
}

// DetectionResult is the ranked, possibly truncated response of one run.
type DetectionResult struct {
	Groups       []CloneGroup     `json:"groups"`
	Summary      DetectionSummary `json:"summary"`
	TotalBlocks  int              `json:"total_blocks"`
	TotalFound   int              `json:"total_found"`
	Returned     int              `json:"returned"`
	Truncated    bool             `json:"truncated"`
	Truncation   TruncationReason `json:"truncation"`
	Threshold    float64          `json:"threshold"`
	Message      string           `json:"message,omitempty"`
	ResultHandle string           `json:"result_handle,omitempty"`
}
