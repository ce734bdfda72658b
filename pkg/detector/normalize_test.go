package detector

import (
	"strings"
	"testing"

	"github.com/doppelscan/doppel/pkg/models"
)

func tokenTexts(tokens []models.NormalizedToken) []string {
	texts := make([]string, len(tokens))
	for i, t := range tokens {
		texts[i] = t.Text
	}
	return texts
}

func TestNormalizeAliasesIdentifiers(t *testing.T) {
	n := NewNormalizer()

	tokens, err := n.Normalize("total = total + price")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	got := strings.Join(tokenTexts(tokens), " ")
	want := "v0 = v0 + v1"
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalizeDropsTrivia(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name string
		a    string
		b    string
	}{
		{
			name: "line comments",
			a:    "x = 1 // set x\ny = 2",
			b:    "x = 1\ny = 2",
		},
		{
			name: "block comments",
			a:    "x = 1 /* set\nx */ ; y = 2",
			b:    "x = 1 ; y = 2",
		},
		{
			name: "hash comments",
			a:    "x = 1 # set x\ny = 2",
			b:    "x = 1\ny = 2",
		},
		{
			name: "whitespace",
			a:    "x   =\t1\n\n\ny = 2",
			b:    "x = 1\ny = 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta, err := n.Normalize(tt.a)
			if err != nil {
				t.Fatalf("Normalize(a) error = %v", err)
			}
			tb, err := n.Normalize(tt.b)
			if err != nil {
				t.Fatalf("Normalize(b) error = %v", err)
			}
			ga, gb := strings.Join(tokenTexts(ta), " "), strings.Join(tokenTexts(tb), " ")
			if ga != gb {
				t.Errorf("trivia changed normalization: %q vs %q", ga, gb)
			}
		})
	}
}

func TestNormalizeKeepsKeywordsAndLiterals(t *testing.T) {
	n := NewNormalizer()

	tokens, err := n.Normalize(`if count > 10 { return "big" }`)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	got := strings.Join(tokenTexts(tokens), " ")
	want := `if v0 > 10 { return "big" }`
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

// Normalizing the rendered output of a normalization is the identity: the
// aliases are themselves identifiers that re-alias to the same names.
func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer()
	src := "func add(a, b int) int {\n\treturn a + b // sum\n}"

	first, err := n.Normalize(src)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	rendered := strings.Join(tokenTexts(first), " ")
	second, err := n.Normalize(rendered)
	if err != nil {
		t.Fatalf("Normalize(rendered) error = %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("token count changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Text != second[i].Text {
			t.Errorf("token %d changed: %q vs %q", i, first[i].Text, second[i].Text)
		}
	}
}

func TestNormalizeInvalidUTF8(t *testing.T) {
	n := NewNormalizer()

	if _, err := n.Normalize("x = \xff\xfe"); err == nil {
		t.Error("Normalize() on invalid UTF-8 expected error")
	}
}

func TestBlockDegeneratesOnTokenizeFailure(t *testing.T) {
	n := NewNormalizer()

	nb := n.Block("\xff\xfe")
	if !nb.Degenerate {
		t.Error("Block() on invalid UTF-8 should be degenerate")
	}
	if len(nb.Tokens) != 1 || nb.Tokens[0].Kind != models.TokenRaw {
		t.Errorf("degenerate block tokens = %v, want single raw token", nb.Tokens)
	}
	if nb.Digest == "" {
		t.Error("degenerate block should still carry a digest")
	}
}

// The digest covers identifiers verbatim; the fingerprint covers the aliased
// sequence. A renamed copy therefore shares the fingerprint but not the
// digest.
func TestBlockDigestDistinguishesRenames(t *testing.T) {
	n := NewNormalizer()
	a := n.Block("total = total + price")
	b := n.Block("sum = sum + cost")

	if a.Digest == b.Digest {
		t.Error("renamed copy should have a distinct digest")
	}
	if a.Fingerprint != b.Fingerprint {
		t.Error("renamed copy should share the aliased fingerprint")
	}
}

func TestBlockDigestStable(t *testing.T) {
	n := NewNormalizer()
	src := "func f() {\n\tx := 1\n\treturn x\n}"

	first := n.Block(src)
	second := n.Block(src)

	if first.Digest != second.Digest {
		t.Errorf("digest not stable: %s vs %s", first.Digest, second.Digest)
	}
	if first.Fingerprint != second.Fingerprint {
		t.Errorf("fingerprint not stable: %d vs %d", first.Fingerprint, second.Fingerprint)
	}
}

func TestBlockDigestIgnoresComments(t *testing.T) {
	n := NewNormalizer()
	a := n.Block("x = 1\ny = 2")
	b := n.Block("x = 1 // assign\ny = 2")

	if a.Digest != b.Digest {
		t.Error("comments must not affect the digest")
	}
}

func TestDigestTextsSeparatorsMatter(t *testing.T) {
	if DigestTexts([]string{"ab", "c"}) == DigestTexts([]string{"a", "bc"}) {
		t.Error("token boundaries must affect the digest")
	}
}
