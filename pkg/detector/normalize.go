package detector

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/doppelscan/doppel/pkg/models"
)

// ErrTokenize is returned when a block's raw text cannot be re-tokenized.
var ErrTokenize = errors.New("tokenization failed")

// Normalizer canonicalizes raw block text into a trivia-free, identifier-
// aliased token sequence. Each call builds a fresh alias map, so aliases never
// leak across blocks and normalization is a pure function of the input text.
type Normalizer struct{}

// NewNormalizer creates a normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize tokenizes raw text, drops trivia, and replaces identifiers with
// first-occurrence-ordered aliases (v0, v1, ...). Keywords, operators,
// punctuation, and literals are preserved verbatim.
func (n *Normalizer) Normalize(raw string) ([]models.NormalizedToken, error) {
	tokens, err := tokenize(raw)
	if err != nil {
		return nil, err
	}

	aliases := make(map[string]string)
	out := make([]models.NormalizedToken, 0, len(tokens))
	for _, tok := range tokens {
		nt := models.NormalizedToken{Kind: tok.kind, Text: tok.text}
		if tok.kind == models.TokenIdentifier {
			alias, ok := aliases[tok.text]
			if !ok {
				alias = "v" + strconv.Itoa(len(aliases))
				aliases[tok.text] = alias
			}
			nt.Text = alias
		}
		out = append(out, nt)
	}
	return out, nil
}

// Degenerate wraps raw text as a single raw token. Used when tokenization
// fails; the block still participates in hashing but only matches
// byte-identical text.
func (n *Normalizer) Degenerate(raw string) []models.NormalizedToken {
	return []models.NormalizedToken{{Kind: models.TokenRaw, Text: raw}}
}

// NormalizedBlock is the full normalization output for one block.
type NormalizedBlock struct {
	// Tokens is the aliased sequence used by the similarity metrics.
	Tokens []models.NormalizedToken
	// Digest covers the trivia-free sequence with identifiers verbatim,
	// so renamed-only clones do not collapse into the exact pass.
	Digest string
	// Fingerprint is the 64-bit xxhash of the aliased sequence.
	Fingerprint uint64
	// Degenerate is set when tokenization failed and the block was
	// reduced to a single raw token.
	Degenerate bool
}

// Block normalizes raw text end to end. A tokenization failure degrades the
// block to degenerate matching instead of failing the run.
func (n *Normalizer) Block(raw string) NormalizedBlock {
	rawTokens, err := tokenize(raw)
	if err != nil || len(rawTokens) == 0 {
		tokens := n.Degenerate(raw)
		return NormalizedBlock{
			Tokens:      tokens,
			Digest:      DigestTexts([]string{raw}),
			Fingerprint: FingerprintTokens(tokens),
			Degenerate:  true,
		}
	}

	exactTexts := make([]string, len(rawTokens))
	aliases := make(map[string]string)
	tokens := make([]models.NormalizedToken, 0, len(rawTokens))
	for i, tok := range rawTokens {
		exactTexts[i] = tok.text
		nt := models.NormalizedToken{Kind: tok.kind, Text: tok.text}
		if tok.kind == models.TokenIdentifier {
			alias, ok := aliases[tok.text]
			if !ok {
				alias = "v" + strconv.Itoa(len(aliases))
				aliases[tok.text] = alias
			}
			nt.Text = alias
		}
		tokens = append(tokens, nt)
	}

	return NormalizedBlock{
		Tokens:      tokens,
		Digest:      DigestTexts(exactTexts),
		Fingerprint: FingerprintTokens(tokens),
	}
}

type rawToken struct {
	kind models.TokenKind
	text string
}

// tokenize splits source text into classified tokens, skipping whitespace and
// comments. It is language-agnostic: any token starting with a letter or
// underscore that is not a known keyword is treated as an identifier.
func tokenize(content string) ([]rawToken, error) {
	if !utf8.ValidString(content) {
		return nil, ErrTokenize
	}

	var tokens []rawToken
	runes := []rune(content)
	i := 0

	for i < len(runes) {
		c := runes[i]

		if isWhitespace(c) {
			i++
			continue
		}

		// Line comments
		if c == '/' && i+1 < len(runes) && runes[i+1] == '/' {
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			continue
		}
		if c == '#' {
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			continue
		}

		// Block comments
		if c == '/' && i+1 < len(runes) && runes[i+1] == '*' {
			i += 2
			for i+1 < len(runes) && !(runes[i] == '*' && runes[i+1] == '/') {
				i++
			}
			i += 2
			continue
		}

		// String literals
		if c == '"' || c == '\'' || c == '`' {
			tokens = append(tokens, rawToken{models.TokenLiteral, collectStringLiteral(runes, &i, c)})
			continue
		}

		// Numbers
		if isDigit(c) {
			tokens = append(tokens, rawToken{models.TokenLiteral, collectNumber(runes, &i)})
			continue
		}

		// Identifiers and keywords
		if isIdentifierStart(c) {
			word := collectIdentifier(runes, &i)
			kind := models.TokenIdentifier
			if isKeyword(word) {
				kind = models.TokenKeyword
			}
			tokens = append(tokens, rawToken{kind, word})
			continue
		}

		// Multi-character operators
		if op := collectOperator(runes, &i); op != "" {
			tokens = append(tokens, rawToken{models.TokenOperator, op})
			continue
		}

		// Single character delimiter
		kind := models.TokenPunct
		if isSingleOperator(c) {
			kind = models.TokenOperator
		}
		tokens = append(tokens, rawToken{kind, string(c)})
		i++
	}

	return tokens, nil
}

// collectStringLiteral collects a string literal including quotes.
func collectStringLiteral(runes []rune, i *int, quote rune) string {
	var sb strings.Builder
	sb.WriteRune(runes[*i])
	*i++

	for *i < len(runes) {
		c := runes[*i]
		sb.WriteRune(c)
		*i++

		if c == quote {
			break
		}
		if c == '\\' && *i < len(runes) {
			sb.WriteRune(runes[*i])
			*i++
		}
	}

	return sb.String()
}

// collectNumber collects a numeric literal.
func collectNumber(runes []rune, i *int) string {
	var sb strings.Builder

	for *i < len(runes) {
		c := runes[*i]
		if isDigit(c) || c == '.' || c == '_' || c == 'x' || c == 'X' ||
			c == 'b' || c == 'B' || c == 'o' || c == 'O' ||
			(c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') ||
			c == 'e' || c == 'E' {
			sb.WriteRune(c)
			*i++
		} else {
			break
		}
	}

	return sb.String()
}

// collectIdentifier collects an identifier or keyword.
func collectIdentifier(runes []rune, i *int) string {
	var sb strings.Builder

	for *i < len(runes) {
		c := runes[*i]
		if isIdentifierChar(c) {
			sb.WriteRune(c)
			*i++
		} else {
			break
		}
	}

	return sb.String()
}

// collectOperator collects multi-character operators.
func collectOperator(runes []rune, i *int) string {
	if *i >= len(runes) {
		return ""
	}

	if *i+2 < len(runes) {
		op3 := string(runes[*i : *i+3])
		switch op3 {
		case "<<=", ">>=", "...", "===", "!==":
			*i += 3
			return op3
		}
	}

	if *i+1 < len(runes) {
		op2 := string(runes[*i : *i+2])
		switch op2 {
		case "==", "!=", "<=", ">=", "&&", "||", "<<", ">>",
			"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
			"++", "--", "->", "=>", "::", "..", "??", ":=":
			*i += 2
			return op2
		}
	}

	return ""
}

// keywords covers the languages the extractor handles. Keywords survive
// normalization verbatim so control flow stays structurally comparable.
var keywords = map[string]bool{
	// Go
	"func": true, "return": true, "if": true, "else": true, "for": true,
	"range": true, "switch": true, "case": true, "default": true, "break": true,
	"continue": true, "goto": true, "fallthrough": true, "defer": true,
	"go": true, "select": true, "chan": true, "map": true, "struct": true,
	"interface": true, "type": true, "var": true, "const": true, "package": true,
	"import": true, "nil": true, "true": true, "false": true,
	// Rust
	"fn": true, "let": true, "mut": true, "match": true, "loop": true,
	"while": true, "impl": true, "trait": true, "mod": true, "use": true,
	"pub": true, "crate": true, "self": true, "Self": true, "where": true,
	"async": true, "await": true, "static": true, "extern": true, "unsafe": true,
	"enum": true, "move": true, "ref": true, "as": true, "in": true,
	// Python
	"def": true, "class": true, "elif": true, "try": true, "except": true,
	"finally": true, "with": true, "lambda": true, "yield": true, "assert": true,
	"raise": true, "pass": true, "del": true, "global": true, "nonlocal": true,
	"and": true, "or": true, "not": true, "is": true, "from": true,
	// JavaScript/TypeScript
	"function": true, "new": true, "this": true, "super": true,
	"extends": true, "implements": true, "export": true, "throw": true,
	"catch": true, "instanceof": true, "typeof": true, "void": true,
	"delete": true, "debugger": true,
	// Common
	"null": true, "undefined": true,
}

func isKeyword(word string) bool {
	return keywords[word]
}

func isSingleOperator(c rune) bool {
	switch c {
	case '+', '-', '*', '/', '%', '=', '<', '>', '!', '&', '|', '^', '~', '?':
		return true
	}
	return false
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isIdentifierStart(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentifierChar(c rune) bool {
	return isIdentifierStart(c) || isDigit(c)
}

func isWhitespace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
