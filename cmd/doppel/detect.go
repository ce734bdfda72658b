package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/doppelscan/doppel/internal/output"
	"github.com/doppelscan/doppel/internal/progress"
	"github.com/doppelscan/doppel/internal/service/detection"
	"github.com/doppelscan/doppel/pkg/detector"
	"github.com/doppelscan/doppel/pkg/models"
)

func detectCmd() *cli.Command {
	return &cli.Command{
		Name:      "detect",
		Aliases:   []string{"clones", "dup"},
		Usage:     "Detect code clones across the given paths",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:  "threshold",
				Usage: "Similarity threshold (0.0-1.0)",
			},
			&cli.StringFlag{
				Name:  "kinds",
				Usage: "Clone kinds to report: all, exact, renamed, nearmiss",
			},
			&cli.IntFlag{
				Name:  "max-groups",
				Usage: "Maximum clone groups to report",
			},
			&cli.IntFlag{
				Name:  "timeout",
				Usage: "Operation timeout in seconds",
			},
			&cli.Int64Flag{
				Name:  "max-file-size",
				Usage: "Skip files larger than this many bytes (0 = no limit)",
			},
		},
		Action: runDetectCmd,
	}
}

func runDetectCmd(c *cli.Context) error {
	paths := getPaths(c)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	svc := detection.New(detection.WithConfig(cfg))

	scanned, err := svc.ScanPaths(paths, c.Int64("max-file-size"))
	if err != nil {
		return err
	}
	if len(scanned.Files) == 0 {
		color.Yellow("No source files found")
		return nil
	}
	if scanned.Skipped > 0 {
		color.Yellow("Skipped %d oversized files", scanned.Skipped)
	}

	tracker := progress.NewTracker("Detecting clones...", len(scanned.Files))
	result, err := svc.DetectFiles(context.Background(), scanned, detection.Options{
		Threshold:      c.Float64("threshold"),
		Kinds:          c.String("kinds"),
		MaxGroups:      c.Int("max-groups"),
		TimeoutSeconds: c.Int("timeout"),
		OnProgress:     tracker.Tick,
	})
	if err != nil {
		tracker.FinishError(err)
		var cancelled *detector.CancelledError
		if errors.As(err, &cancelled) {
			return cli.Exit(cancelled.Error(), 2)
		}
		return err
	}
	tracker.FinishSuccess()

	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON {
		return formatter.Output(result)
	}

	if result.Message != "" {
		formatter.Info("%s", result.Message)
	}
	if len(result.Groups) == 0 {
		formatter.Info("No clone groups found (threshold %.2f, %d blocks compared)", result.Threshold, result.TotalBlocks)
		return nil
	}

	table := groupTable(result)
	if err := formatter.Output(table); err != nil {
		return err
	}

	if result.Truncated {
		formatter.Warning("Showing %d of %d groups (%s); narrow the paths or raise --max-groups",
			result.Returned, result.TotalFound, result.Truncation)
	}
	return nil
}

// groupTable renders one row per group member, seed first, with group-level
// columns on the seed row only.
func groupTable(result *models.DetectionResult) *output.Table {
	var rows [][]string
	for _, g := range result.Groups {
		for i, m := range g.Members {
			loc := fmt.Sprintf("%s:%d-%d", m.Origin.File, m.Origin.StartLine, m.Origin.EndLine)
			if i == 0 {
				rows = append(rows, []string{
					fmt.Sprintf("%d", g.ID),
					output.KindColor(g.Kind.String(), g.Kind.String()),
					loc,
					fmt.Sprintf("%.0f%%", g.AverageSimilarity*100),
					fmt.Sprintf("%d", g.EstimatedSavings),
				})
				continue
			}
			rows = append(rows, []string{
				"", "",
				loc,
				fmt.Sprintf("%.0f%%", m.Similarity*100),
				"",
			})
		}
	}

	s := result.Summary
	return &output.Table{
		Title:   "Clone Groups",
		Headers: []string{"Group", "Kind", "Location", "Similarity", "Savings"},
		Rows:    rows,
		Footer: []string{
			fmt.Sprintf("Groups: %d", result.Returned),
			fmt.Sprintf("Exact: %d Renamed: %d Near: %d", s.ExactGroups, s.RenamedGroups, s.NearMissGroups),
			"",
			fmt.Sprintf("P95 Sim: %.0f%%", s.P95Similarity*100),
			fmt.Sprintf("Total: %d lines", s.TotalSavings),
		},
		Data: result,
	}
}
