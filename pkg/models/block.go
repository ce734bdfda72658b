package models

// TokenKind classifies a normalized token.
type TokenKind int

const (
	TokenKeyword TokenKind = iota
	TokenIdentifier
	TokenLiteral
	TokenOperator
	TokenPunct
	// TokenRaw marks the degenerate single token produced when a block
	// cannot be re-tokenized. Raw tokens only ever match byte-identical text.
	TokenRaw
)

// String returns the string representation.
func (k TokenKind) String() string {
	switch k {
	case TokenKeyword:
		return "keyword"
	case TokenIdentifier:
		return "identifier"
	case TokenLiteral:
		return "literal"
	case TokenOperator:
		return "operator"
	case TokenPunct:
		return "punct"
	case TokenRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// NormalizedToken is a (kind, text) pair in a block's normalized sequence.
// Identifier tokens carry their positional alias (v0, v1, ...) as text.
type NormalizedToken struct {
	Kind TokenKind `json:"kind"`
	Text string    `json:"text"`
}

// Origin locates a code block in its source tree.
type Origin struct {
	File      string `json:"file"`
	Project   string `json:"project,omitempty"`
	StartLine uint32 `json:"start_line"`
	EndLine   uint32 `json:"end_line"`
	Symbol    string `json:"symbol,omitempty"`
}

// CodeBlock is a single extracted code fragment. Blocks are immutable once
// extracted; each detection run owns its own slice and discards it at run end.
type CodeBlock struct {
	ID          uint64            `json:"id"`
	Origin      Origin            `json:"origin"`
	Raw         string            `json:"-"`
	Tokens      []NormalizedToken `json:"-"`
	Digest      string            `json:"digest"`
	Fingerprint uint64            `json:"fingerprint"`
	TokenCount  int               `json:"token_count"`
	LineCount   int               `json:"line_count"`
	Complexity  float64           `json:"complexity,omitempty"`
}
