package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ossyrian/dxarc/internal/config"
	"github.com/ossyrian/dxarc/internal/textconv"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract every file of an archive into a directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(appFs, cfg)
	},
}

func init() {
	extractCmd.Flags().StringP("output-dir", "o", "", "directory to extract into (required)")
	extractCmd.Flags().Int("workers", 0, "concurrent file writes (0 uses every CPU)")
	extractCmd.MarkFlagRequired("output-dir")
}

// localPath maps an archive path under dir, refusing names that would
// land outside it.
func localPath(dir, name string, sjis bool) (string, error) {
	if sjis {
		name = textconv.Display(name)
	}
	target := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry %q escapes %s", name, dir)
	}
	return target, nil
}

func runExtract(fs afero.Fs, cfg *config.Config) error {
	if cfg.OutputDir == "" {
		return fmt.Errorf("no output directory given (use --output-dir)")
	}

	a, err := openInput(fs, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := walkAll(a)
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", cfg.InputFile, err)
	}

	if !cfg.DryRun {
		if err := fs.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := pool.New().WithErrors().WithMaxGoroutines(workers)

	var walkErr error
	files := 0
	for _, l := range entries {
		target, err := localPath(cfg.OutputDir, l.path, cfg.ShiftJIS)
		if err != nil {
			walkErr = err
			break
		}

		// directories come before their children, so they are created
		// before any worker writes into them
		if l.entry.IsDir {
			if cfg.DryRun {
				continue
			}
			if err := fs.MkdirAll(target, 0o755); err != nil {
				walkErr = fmt.Errorf("failed to create %s: %w", target, err)
				break
			}
			continue
		}

		files++
		if cfg.DryRun {
			slog.Info("would extract", "path", l.path, "size", l.entry.Size)
			continue
		}

		p.Go(func() error {
			data, err := a.Read(l.entry.Index)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", l.path, err)
			}
			if err := afero.WriteFile(fs, target, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", target, err)
			}
			slog.Debug("extracted file", "path", target, "size", len(data))
			return nil
		})
	}

	if err := errors.Join(walkErr, p.Wait()); err != nil {
		return err
	}

	slog.Info("extracted archive", "input", cfg.InputFile, "output", cfg.OutputDir, "files", files)
	return nil
}
