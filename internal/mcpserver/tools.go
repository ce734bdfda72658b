package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	toon "github.com/toon-format/toon-go"

	"github.com/doppelscan/doppel/internal/output"
	"github.com/doppelscan/doppel/internal/service/detection"
	"github.com/doppelscan/doppel/pkg/config"
	"github.com/doppelscan/doppel/pkg/detector"
	"github.com/doppelscan/doppel/pkg/models"
)

// DetectClonesInput is the input for the detect_clones tool.
type DetectClonesInput struct {
	Paths          []string `json:"paths,omitempty" jsonschema:"Paths to analyze. Defaults to current directory if empty."`
	Format         string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
	Threshold      float64  `json:"threshold,omitempty" jsonschema:"Similarity threshold (0.0-1.0). Default 0.8."`
	Kinds          string   `json:"kinds,omitempty" jsonschema:"Clone kinds to report: all (default), exact, renamed, or nearmiss."`
	MaxGroups      int      `json:"max_groups,omitempty" jsonschema:"Maximum clone groups to return. Default 50, ceiling 500."`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty" jsonschema:"Operation timeout in seconds. Default 30, ceiling 300."`
}

// GetCloneResultInput is the input for the get_clone_result tool.
type GetCloneResultInput struct {
	Handle string `json:"handle" jsonschema:"Result handle from a truncated detect_clones response."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
	Offset int    `json:"offset,omitempty" jsonschema:"First group index to return (0-based)."`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum groups to return. Default 50."`
}

func getPaths(paths []string) []string {
	if len(paths) == 0 {
		return []string{"."}
	}
	return paths
}

func getFormat(s string) output.Format {
	switch s {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return "", err
	}
	if format == output.FormatMarkdown {
		return "```\n" + string(out) + "\n```", nil
	}
	return string(out), nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// handleDetectClones runs detection up to the hard group ceiling, stores the
// full result when it exceeds the requested size, and returns the shaped
// response with a retrieval handle.
func (s *Server) handleDetectClones(ctx context.Context, req *mcp.CallToolRequest, input DetectClonesInput) (*mcp.CallToolResult, any, error) {
	paths := getPaths(input.Paths)
	format := getFormat(input.Format)

	svc := detection.New()

	requested := input.MaxGroups
	if requested <= 0 {
		requested = svc.Config().Detection.MaxGroups
	}
	if requested > config.MaxGroupsCeiling {
		requested = config.MaxGroupsCeiling
	}

	full, err := svc.Detect(ctx, paths, detection.Options{
		Threshold:      input.Threshold,
		Kinds:          input.Kinds,
		MaxGroups:      config.MaxGroupsCeiling,
		TimeoutSeconds: input.TimeoutSeconds,
	})
	if err != nil {
		return toolError(err.Error())
	}

	result := s.shapeResponse(full, requested)
	return toolResult(result, format)
}

// shapeResponse reduces the full result to the requested size and hands out
// a stored-result handle when groups were cut.
func (s *Server) shapeResponse(full *models.DetectionResult, requested int) *models.DetectionResult {
	budgeter := detector.NewBudgeter(nil, detector.DefaultSafetyBudget)
	kept, _, truncated, reason := budgeter.Shape(full.Groups, requested)

	result := &models.DetectionResult{
		Groups:      kept,
		Summary:     detector.Summarize(kept),
		TotalBlocks: full.TotalBlocks,
		TotalFound:  full.TotalFound,
		Returned:    len(kept),
		Truncated:   truncated || full.Truncated,
		Truncation:  reason,
		Threshold:   full.Threshold,
		Message:     full.Message,
	}
	if result.Truncated && reason == models.TruncationNone {
		result.Truncation = full.Truncation
	}
	if len(kept) < len(full.Groups) {
		result.ResultHandle = s.results.Put(full)
	}
	return result
}

// handleGetCloneResult pages through a stored full result.
func (s *Server) handleGetCloneResult(ctx context.Context, req *mcp.CallToolRequest, input GetCloneResultInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.Format)

	if input.Handle == "" {
		return toolError("handle is required")
	}

	full, ok := s.results.Get(input.Handle)
	if !ok {
		return toolError("unknown or expired result handle; re-run detect_clones")
	}

	offset := input.Offset
	if offset < 0 || offset > len(full.Groups) {
		offset = len(full.Groups)
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	end := offset + limit
	if end > len(full.Groups) {
		end = len(full.Groups)
	}
	page := full.Groups[offset:end]

	result := &models.DetectionResult{
		Groups:       page,
		Summary:      full.Summary,
		TotalBlocks:  full.TotalBlocks,
		TotalFound:   full.TotalFound,
		Returned:     len(page),
		Truncated:    end < len(full.Groups),
		Truncation:   models.TruncationRequested,
		Threshold:    full.Threshold,
		ResultHandle: input.Handle,
	}
	if !result.Truncated {
		result.Truncation = models.TruncationNone
	}

	return toolResult(result, format)
}
