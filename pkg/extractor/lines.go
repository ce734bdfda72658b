package extractor

import (
	"os"
	"strings"

	"github.com/doppelscan/doppel/pkg/detector"
	"github.com/doppelscan/doppel/pkg/models"
)

// extractByLines reads a file and applies the line heuristic.
func (e *Extractor) extractByLines(path string) ([]*models.CodeBlock, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return e.blocksFromLines(path, string(content))
}

// blocksFromLines extracts function-shaped blocks with a brace/indent
// heuristic. Used when tree-sitter cannot parse a file; precision is lower
// but parse failures must not silence a whole file.
func (e *Extractor) blocksFromLines(path, content string) ([]*models.CodeBlock, error) {
	lines := strings.Split(content, "\n")
	norm := detector.NewNormalizer()
	var blocks []*models.CodeBlock

	appendBlock := func(start, end int, funcLines []string) {
		raw := strings.Join(funcLines, "\n")
		block := e.buildBlock(norm, raw, models.Origin{
			File:      path,
			Project:   e.project,
			StartLine: uint32(start + 1),
			EndLine:   uint32(end + 1),
		})
		if block != nil {
			blocks = append(blocks, block)
		}
	}

	inFunction := false
	var funcStart int
	var funcLines []string
	braceDepth := 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if !inFunction {
			if looksLikeFunctionStart(trimmed) {
				inFunction = true
				funcStart = i
				funcLines = []string{line}
				braceDepth = strings.Count(line, "{") - strings.Count(line, "}")
			}
			continue
		}

		funcLines = append(funcLines, line)
		braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
		if braceDepth <= 0 {
			appendBlock(funcStart, i, funcLines)
			inFunction = false
			funcLines = nil
		}
	}

	// Unclosed function at end of file
	if inFunction && len(funcLines) > 0 {
		appendBlock(funcStart, len(lines)-1, funcLines)
	}

	// No function-shaped regions: treat the whole file as one block so the
	// file still participates in detection.
	if len(blocks) == 0 && strings.TrimSpace(content) != "" {
		appendBlock(0, len(lines)-1, lines)
	}

	return blocks, nil
}

// looksLikeFunctionStart matches common function-definition openers across
// the supported languages.
func looksLikeFunctionStart(line string) bool {
	if !strings.Contains(line, "(") {
		return false
	}
	prefixes := []string{"func ", "fn ", "def ", "function ", "public ", "private ", "protected ", "static "}
	for _, p := range prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return strings.Contains(line, ") {")
}
