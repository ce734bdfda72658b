// Package detection orchestrates clone detection: scanning paths,
// extracting candidate blocks, and running the detector under an operation
// timeout. The CLI and the MCP server both drive this service.
package detection

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/doppelscan/doppel/internal/fileproc"
	"github.com/doppelscan/doppel/internal/scanner"
	"github.com/doppelscan/doppel/internal/vcs"
	"github.com/doppelscan/doppel/pkg/config"
	"github.com/doppelscan/doppel/pkg/detector"
	"github.com/doppelscan/doppel/pkg/extractor"
	"github.com/doppelscan/doppel/pkg/models"
	"github.com/doppelscan/doppel/pkg/parser"
)

// Service runs detection requests.
type Service struct {
	config *config.Config
	opener vcs.Opener
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithOpener sets the VCS opener (for testing).
func WithOpener(opener vcs.Opener) Option {
	return func(s *Service) {
		s.opener = opener
	}
}

// New creates a detection service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.LoadOrDefault(),
		opener: vcs.DefaultOpener(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config {
	return s.config
}

// Options are per-request overrides layered over the config file.
type Options struct {
	Threshold      float64 // 0 means use config
	Kinds          string  // "" means use config
	MaxGroups      int     // 0 means use config
	TimeoutSeconds int     // 0 means use config
	MaxFileSize    int64   // 0 disables the size filter
	OnProgress     func()
}

// ScanResult holds the files found for a detection request.
type ScanResult struct {
	Files    []string
	RepoRoot string
	Skipped  int
}

// ScanPaths resolves the requested paths to analyzable source files and
// detects the enclosing repository root for the project label.
func (s *Service) ScanPaths(paths []string, maxFileSize int64) (*ScanResult, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	scan := scanner.New(s.config)
	var files []string

	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, &PathError{Path: path, Err: err}
		}

		info, statErr := scan.ScanFile(absPath)
		if statErr == nil && info {
			files = append(files, absPath)
			continue
		}

		found, err := scan.ScanDir(absPath)
		if err != nil {
			return nil, &ScanError{Path: path, Err: err}
		}
		files = append(files, found...)
	}

	files, skipped := scanner.FilterBySize(files, maxFileSize)

	result := &ScanResult{Files: files, Skipped: skipped}
	if repo, err := s.opener.PlainOpenWithDetect(paths[0]); err == nil {
		result.RepoRoot = repo.Root()
	}

	return result, nil
}

// Detect scans the given paths and runs the full detection pipeline under
// the configured timeout. Per-file extraction failures degrade rather than
// abort; cancellation aborts with no partial result.
func (s *Service) Detect(ctx context.Context, paths []string, opts Options) (*models.DetectionResult, error) {
	scanned, err := s.ScanPaths(paths, opts.MaxFileSize)
	if err != nil {
		return nil, err
	}
	return s.DetectFiles(ctx, scanned, opts)
}

// DetectFiles runs the pipeline over an existing scan result. Callers that
// need the file count up front (progress bars) scan first and call this.
func (s *Service) DetectFiles(ctx context.Context, scanned *ScanResult, opts Options) (*models.DetectionResult, error) {
	cfg := s.effectiveConfig(opts)

	kinds, err := detector.ParseKindFilter(valueOr(opts.Kinds, s.config.Detection.Kinds))
	if err != nil {
		return nil, &OptionError{Option: "kinds", Err: err}
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	project := scanned.RepoRoot
	if project != "" {
		project = filepath.Base(project)
	}

	blocks := s.extractBlocks(ctx, scanned.Files, cfg, project, opts.OnProgress)
	if cerr := ctx.Err(); cerr != nil {
		return nil, &detector.CancelledError{Err: cerr}
	}

	d := detector.New(
		detector.WithThreshold(cfg.SimilarityThreshold),
		detector.WithKinds(kinds),
		detector.WithMaxGroups(cfg.MaxGroups),
	)

	result, err := d.Detect(ctx, blocks)
	if err != nil {
		return nil, err
	}

	if len(scanned.Files) == 0 {
		result.Message = "no analyzable source files found; check the paths and exclusion rules"
	}
	return result, nil
}

// effectiveConfig layers request overrides over the file config.
func (s *Service) effectiveConfig(opts Options) config.DetectionConfig {
	cfg := s.config.Detection
	if opts.Threshold > 0 {
		cfg.SimilarityThreshold = opts.Threshold
	}
	if opts.MaxGroups > 0 {
		cfg.MaxGroups = opts.MaxGroups
	}
	if cfg.MaxGroups > config.MaxGroupsCeiling {
		cfg.MaxGroups = config.MaxGroupsCeiling
	}
	if opts.TimeoutSeconds > 0 {
		cfg.TimeoutSeconds = opts.TimeoutSeconds
	}
	if cfg.TimeoutSeconds > config.TimeoutSecondsCeiling {
		cfg.TimeoutSeconds = config.TimeoutSecondsCeiling
	}
	return cfg
}

// extractBlocks runs parallel per-file extraction and assigns run-scoped
// block IDs in origin order so repeated runs over the same tree produce
// identical IDs.
func (s *Service) extractBlocks(ctx context.Context, files []string, cfg config.DetectionConfig, project string, onProgress func()) []*models.CodeBlock {
	ext := extractor.New(
		extractor.WithMinLines(cfg.MinLines),
		extractor.WithMinTokens(cfg.MinTokens),
		extractor.WithProject(project),
	)

	perFile, _ := fileproc.MapFilesWithContext(ctx, files,
		func(p *parser.Parser, path string) ([]*models.CodeBlock, error) {
			return ext.ExtractFile(p, path)
		}, onProgress)

	var blocks []*models.CodeBlock
	for _, fb := range perFile {
		blocks = append(blocks, fb...)
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Origin.File != blocks[j].Origin.File {
			return blocks[i].Origin.File < blocks[j].Origin.File
		}
		return blocks[i].Origin.StartLine < blocks[j].Origin.StartLine
	})
	for i, b := range blocks {
		b.ID = uint64(i + 1)
	}

	return blocks
}

func valueOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// PathError indicates an invalid path.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid path %s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// ScanError indicates a scanning failure.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("failed to scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// OptionError indicates an invalid request option.
type OptionError struct {
	Option string
	Err    error
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("invalid option %s: %v", e.Option, e.Err)
}

func (e *OptionError) Unwrap() error {
	return e.Err
}
