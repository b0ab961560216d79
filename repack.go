package main

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ossyrian/dxarc/internal/archive"
	"github.com/ossyrian/dxarc/internal/backup"
	"github.com/ossyrian/dxarc/internal/config"
	"github.com/ossyrian/dxarc/internal/textconv"
)

var repackCmd = &cobra.Command{
	Use:   "repack",
	Short: "Replace archive files with the files under a directory",
	Long: `Replace archive files with the files under a directory.

Files under --from are matched to archive entries by their path relative to
--from, ignoring case. Every replacement is applied in memory first; the
archive is only written once all of them succeed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepack(appFs, cfg, time.Now())
	},
}

func init() {
	repackCmd.Flags().String("from", "", "directory of replacement files (required)")
	repackCmd.Flags().StringP("output", "o", "", "where to write the archive (defaults to --input)")
	repackCmd.Flags().String("backup-dir", "", "directory for a compressed snapshot of the archive before it is overwritten")
	repackCmd.MarkFlagRequired("from")
}

// replacement is one planned repack.
type replacement struct {
	index int
	name  string // archive path, as given on disk
	file  string
}

// planRepack matches every file under cfg.FromDir to an archive entry.
func planRepack(fs afero.Fs, a *archive.Archive, cfg *config.Config) ([]replacement, error) {
	cache, err := archive.NewPathCache(a, archive.DefaultPathCacheSize)
	if err != nil {
		return nil, err
	}

	var plan []replacement
	err = afero.Walk(fs, cfg.FromDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(cfg.FromDir, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		lookup := name
		if cfg.ShiftJIS {
			if lookup, err = textconv.ToShiftJIS(name); err != nil {
				return err
			}
		}

		index, err := cache.IndexOf(lookup)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", name, err)
		}
		if a.IsDirectory(index) {
			return fmt.Errorf("%s is a directory in the archive", name)
		}

		plan = append(plan, replacement{index: index, name: name, file: p})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if dups := lo.FindDuplicatesBy(plan, func(r replacement) int { return r.index }); len(dups) > 0 {
		return nil, fmt.Errorf("more than one file replaces %s", dups[0].name)
	}

	slices.SortFunc(plan, func(x, y replacement) int { return cmp.Compare(x.index, y.index) })
	return plan, nil
}

func runRepack(fs afero.Fs, cfg *config.Config, now time.Time) error {
	if cfg.FromDir == "" {
		return fmt.Errorf("no replacement directory given (use --from)")
	}

	a, err := openInput(fs, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	plan, err := planRepack(fs, a, cfg)
	if err != nil {
		return err
	}
	if len(plan) == 0 {
		slog.Warn("nothing to repack", "from", cfg.FromDir)
		return nil
	}

	for _, r := range plan {
		data, err := afero.ReadFile(fs, r.file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", r.file, err)
		}
		if err := a.Repack(r.index, data); err != nil {
			return fmt.Errorf("failed to repack %s: %w", r.name, err)
		}
		slog.Info("repacked file", "path", r.name, "index", r.index, "size", len(data))
	}

	out := cfg.OutputFile
	if out == "" {
		out = cfg.InputFile
	}

	if cfg.DryRun {
		slog.Info("dry run, not writing archive", "output", out, "files", len(plan), "size", a.Len())
		return nil
	}

	if cfg.BackupDir != "" {
		exists, err := afero.Exists(fs, out)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", out, err)
		}
		if exists {
			if _, err := backup.Snapshot(fs, out, cfg.BackupDir, now); err != nil {
				return err
			}
		}
	}

	// stage next to the target so the rename stays on one filesystem
	staging := out + ".tmp"
	if err := a.Save(staging); err != nil {
		fs.Remove(staging)
		return err
	}
	if err := fs.Rename(staging, out); err != nil {
		fs.Remove(staging)
		return fmt.Errorf("failed to replace %s: %w", out, err)
	}

	slog.Info("wrote archive", "output", out, "files", len(plan), "size", a.Len())
	return nil
}
