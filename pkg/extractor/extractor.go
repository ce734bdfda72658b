// Package extractor turns source files into candidate code blocks for clone
// detection. It extracts function-level blocks from tree-sitter parse trees
// and falls back to a line heuristic when a file cannot be parsed.
package extractor

import (
	"github.com/doppelscan/doppel/pkg/detector"
	"github.com/doppelscan/doppel/pkg/models"
	"github.com/doppelscan/doppel/pkg/parser"
)

// Extractor extracts normalized code blocks from source files.
type Extractor struct {
	minLines  int
	minTokens int
	project   string
}

// Option is a functional option for configuring Extractor.
type Option func(*Extractor)

// WithMinLines sets the minimum line count for a block.
func WithMinLines(minLines int) Option {
	return func(e *Extractor) {
		e.minLines = minLines
	}
}

// WithMinTokens sets the minimum normalized token count for a block.
func WithMinTokens(minTokens int) Option {
	return func(e *Extractor) {
		e.minTokens = minTokens
	}
}

// WithProject sets the project label stamped on block origins.
func WithProject(project string) Option {
	return func(e *Extractor) {
		e.project = project
	}
}

// New creates an extractor with the given size filters.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		minLines:  6,
		minTokens: 50,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractFile parses one file and returns its candidate blocks. Block IDs
// are zero; the caller assigns run-scoped IDs once all files are collected.
// Files that fail to parse degrade to the line heuristic rather than
// aborting the run.
func (e *Extractor) ExtractFile(p *parser.Parser, path string) ([]*models.CodeBlock, error) {
	result, err := p.ParseFile(path)
	if err != nil {
		return e.extractByLines(path)
	}

	functions := parser.GetFunctions(result)
	if len(functions) == 0 {
		return e.extractByLines(path)
	}

	norm := detector.NewNormalizer()
	var blocks []*models.CodeBlock
	for _, fn := range functions {
		raw := parser.GetNodeText(fn.Node, result.Source)
		block := e.buildBlock(norm, raw, models.Origin{
			File:      path,
			Project:   e.project,
			StartLine: fn.StartLine,
			EndLine:   fn.EndLine,
			Symbol:    fn.Name,
		})
		if block != nil {
			blocks = append(blocks, block)
		}
	}
	return blocks, nil
}

// ExtractSource extracts blocks from in-memory source, used by tests and by
// callers that already hold file content.
func (e *Extractor) ExtractSource(p *parser.Parser, path string, source []byte) ([]*models.CodeBlock, error) {
	lang := parser.DetectLanguage(path)
	if lang == parser.LangUnknown {
		return e.blocksFromLines(path, string(source))
	}

	result, err := p.Parse(source, lang, path)
	if err != nil {
		return e.blocksFromLines(path, string(source))
	}

	functions := parser.GetFunctions(result)
	if len(functions) == 0 {
		return e.blocksFromLines(path, string(source))
	}

	norm := detector.NewNormalizer()
	var blocks []*models.CodeBlock
	for _, fn := range functions {
		raw := parser.GetNodeText(fn.Node, result.Source)
		block := e.buildBlock(norm, raw, models.Origin{
			File:      path,
			Project:   e.project,
			StartLine: fn.StartLine,
			EndLine:   fn.EndLine,
			Symbol:    fn.Name,
		})
		if block != nil {
			blocks = append(blocks, block)
		}
	}
	return blocks, nil
}

// buildBlock normalizes raw text and applies the size filters. Returns nil
// when the block is below the minimums.
func (e *Extractor) buildBlock(norm *detector.Normalizer, raw string, origin models.Origin) *models.CodeBlock {
	lineCount := int(origin.EndLine-origin.StartLine) + 1
	if lineCount < e.minLines {
		return nil
	}

	nb := norm.Block(raw)
	if !nb.Degenerate && len(nb.Tokens) < e.minTokens {
		return nil
	}

	return &models.CodeBlock{
		Origin:      origin,
		Raw:         raw,
		Tokens:      nb.Tokens,
		Digest:      nb.Digest,
		Fingerprint: nb.Fingerprint,
		TokenCount:  len(nb.Tokens),
		LineCount:   lineCount,
	}
}
