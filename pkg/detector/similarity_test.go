package detector

import (
	"testing"

	"github.com/doppelscan/doppel/pkg/models"
)

func toks(texts ...string) []models.NormalizedToken {
	out := make([]models.NormalizedToken, len(texts))
	for i, t := range texts {
		out[i] = models.NormalizedToken{Kind: models.TokenIdentifier, Text: t}
	}
	return out
}

func TestPositional(t *testing.T) {
	e := NewSimilarityEngine(0)

	tests := []struct {
		name string
		a    []models.NormalizedToken
		b    []models.NormalizedToken
		want float64
	}{
		{"identical", toks("a", "b", "c"), toks("a", "b", "c"), 1.0},
		{"half match", toks("a", "b", "c", "d"), toks("a", "x", "c", "y"), 0.5},
		{"length mismatch", toks("a", "b"), toks("a", "b", "c"), 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Positional(tt.a, tt.b); got != tt.want {
				t.Errorf("Positional() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLCSRatio(t *testing.T) {
	e := NewSimilarityEngine(0)

	tests := []struct {
		name string
		a    []models.NormalizedToken
		b    []models.NormalizedToken
		want float64
	}{
		{"identical", toks("a", "b", "c"), toks("a", "b", "c"), 1.0},
		{"one insertion", toks("a", "b", "c"), toks("a", "b", "x", "c"), 0.75},
		{"disjoint", toks("a", "b"), toks("x", "y"), 0},
		{"empty side", nil, toks("a"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.LCSRatio(tt.a, tt.b); got != tt.want {
				t.Errorf("LCSRatio() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLCSRatioSymmetric(t *testing.T) {
	e := NewSimilarityEngine(0)
	a := toks("a", "b", "c", "d", "e")
	b := toks("a", "c", "e", "f")

	if e.LCSRatio(a, b) != e.LCSRatio(b, a) {
		t.Error("LCSRatio should be symmetric")
	}
}

func TestJaccard(t *testing.T) {
	e := NewSimilarityEngine(0)

	tests := []struct {
		name string
		a    []models.NormalizedToken
		b    []models.NormalizedToken
		want float64
	}{
		{"identical", toks("a", "b"), toks("a", "b"), 1.0},
		{"disjoint", toks("a", "b"), toks("x", "y"), 0},
		{"multiset overlap", toks("a", "a", "b"), toks("a", "b", "b"), 0.5},
		{"both empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Jaccard(tt.a, tt.b); got != tt.want {
				t.Errorf("Jaccard() = %v, want %v", got, tt.want)
			}
		})
	}
}

func blockFromTokens(id uint64, digest string, tokens []models.NormalizedToken) *models.CodeBlock {
	return &models.CodeBlock{
		ID:         id,
		Digest:     digest,
		Tokens:     tokens,
		TokenCount: len(tokens),
	}
}

func TestCompareMetricPolicy(t *testing.T) {
	e := NewSimilarityEngine(3)

	tests := []struct {
		name       string
		a, b       *models.CodeBlock
		wantMetric models.Metric
		wantScore  float64
	}{
		{
			name:       "digest equal short-circuits",
			a:          blockFromTokens(1, "d1", toks("a", "b")),
			b:          blockFromTokens(2, "d1", toks("a", "b")),
			wantMetric: models.MetricExact,
			wantScore:  1.0,
		},
		{
			name:       "equal length uses positional",
			a:          blockFromTokens(1, "d1", toks("a", "b", "c")),
			b:          blockFromTokens(2, "d2", toks("a", "x", "c")),
			wantMetric: models.MetricPositional,
		},
		{
			name:       "unequal length uses lcs",
			a:          blockFromTokens(1, "d1", toks("a", "b")),
			b:          blockFromTokens(2, "d2", toks("a", "b", "c")),
			wantMetric: models.MetricLCS,
		},
		{
			name:       "oversized falls back to jaccard",
			a:          blockFromTokens(1, "d1", toks("a", "b", "c", "d")),
			b:          blockFromTokens(2, "d2", toks("a", "b", "c", "d")),
			wantMetric: models.MetricJaccard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := e.Compare(tt.a, tt.b)
			if score.Metric != tt.wantMetric {
				t.Errorf("Compare() metric = %v, want %v", score.Metric, tt.wantMetric)
			}
			if tt.wantScore != 0 && score.Score != tt.wantScore {
				t.Errorf("Compare() score = %v, want %v", score.Score, tt.wantScore)
			}
		})
	}
}
