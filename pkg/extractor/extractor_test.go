package extractor

import (
	"testing"

	"github.com/doppelscan/doppel/pkg/parser"
)

const goSource = `package main

func add(a, b int) int {
	total := a + b
	if total < 0 {
		total = 0
	}
	return total
}

func tiny() {}

func scale(values []int, factor int) []int {
	out := make([]int, 0, len(values))
	for _, v := range values {
		out = append(out, v*factor)
	}
	return out
}
`

func TestExtractSourceFunctions(t *testing.T) {
	p := parser.New()
	defer p.Close()

	e := New(WithMinLines(5), WithMinTokens(10))
	blocks, err := e.ExtractSource(p, "main.go", []byte(goSource))
	if err != nil {
		t.Fatalf("ExtractSource() error = %v", err)
	}

	if len(blocks) != 2 {
		t.Fatalf("blocks = %d, want 2 (tiny() filtered out)", len(blocks))
	}

	wantSymbols := map[string]bool{"add": true, "scale": true}
	for _, b := range blocks {
		if !wantSymbols[b.Origin.Symbol] {
			t.Errorf("unexpected block symbol %q", b.Origin.Symbol)
		}
		if b.Digest == "" || b.Fingerprint == 0 {
			t.Errorf("block %s missing digest/fingerprint", b.Origin.Symbol)
		}
		if b.TokenCount < 10 {
			t.Errorf("block %s token count %d below filter", b.Origin.Symbol, b.TokenCount)
		}
		if b.LineCount < 5 {
			t.Errorf("block %s line count %d below filter", b.Origin.Symbol, b.LineCount)
		}
		if b.Origin.File != "main.go" {
			t.Errorf("block file = %q, want main.go", b.Origin.File)
		}
	}
}

func TestExtractSourceMinLinesFilter(t *testing.T) {
	p := parser.New()
	defer p.Close()

	e := New(WithMinLines(100), WithMinTokens(1))
	blocks, err := e.ExtractSource(p, "main.go", []byte(goSource))
	if err != nil {
		t.Fatalf("ExtractSource() error = %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("blocks = %d, want 0 with min lines 100", len(blocks))
	}
}

func TestExtractSourceProjectLabel(t *testing.T) {
	p := parser.New()
	defer p.Close()

	e := New(WithMinLines(5), WithMinTokens(10), WithProject("demo"))
	blocks, err := e.ExtractSource(p, "main.go", []byte(goSource))
	if err != nil {
		t.Fatalf("ExtractSource() error = %v", err)
	}
	for _, b := range blocks {
		if b.Origin.Project != "demo" {
			t.Errorf("project = %q, want demo", b.Origin.Project)
		}
	}
}

func TestExtractSourceUnknownLanguageFallsBack(t *testing.T) {
	p := parser.New()
	defer p.Close()

	src := `function handle(req) {
	var body = req.body
	var code = 200
	if (!body) {
		code = 400
	}
	return code
}
`
	e := New(WithMinLines(5), WithMinTokens(10))
	blocks, err := e.ExtractSource(p, "handler.weird", []byte(src))
	if err != nil {
		t.Fatalf("ExtractSource() error = %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1 from line heuristic", len(blocks))
	}
	if blocks[0].Origin.StartLine != 1 {
		t.Errorf("start line = %d, want 1", blocks[0].Origin.StartLine)
	}
}

func TestBlocksFromLinesWholeFileFallback(t *testing.T) {
	e := New(WithMinLines(2), WithMinTokens(1))

	// No function-shaped region: the whole file becomes one block.
	blocks, err := e.blocksFromLines("data.cfg", "alpha = 1\nbeta = 2\ngamma = 3")
	if err != nil {
		t.Fatalf("blocksFromLines() error = %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(blocks))
	}
	if blocks[0].Origin.EndLine != 3 {
		t.Errorf("end line = %d, want 3", blocks[0].Origin.EndLine)
	}
}

func TestLooksLikeFunctionStart(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"func add(a, b int) int {", true},
		{"def handle(request):", true},
		{"fn parse(input: &str) -> Token {", true},
		{"public static void main(String[] args) {", true},
		{"x := compute()", false},
		{"func main", false},
		{"// func add(a, b int)", false},
	}

	for _, tt := range tests {
		if got := looksLikeFunctionStart(tt.line); got != tt.want {
			t.Errorf("looksLikeFunctionStart(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
