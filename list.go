package main

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ossyrian/dxarc/internal/archive"
	"github.com/ossyrian/dxarc/internal/config"
	"github.com/ossyrian/dxarc/internal/textconv"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the files in an archive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd.OutOrStdout(), appFs, cfg)
	},
}

func init() {
	listCmd.Flags().String("ext", "", "only list files with this extension (e.g. .CSV)")
	listCmd.Flags().Bool("dirs", false, "only list directories")
}

// listing is one walked entry and its path from the root.
type listing struct {
	path  string
	entry archive.Entry
}

// walkAll returns every entry below the root, parents before children.
func walkAll(a *archive.Archive) ([]listing, error) {
	root, err := a.RootIndex()
	if err != nil {
		return nil, err
	}

	var out []listing
	err = a.Walk(root, func(p string, e archive.Entry) error {
		out = append(out, listing{path: p, entry: e})
		return nil
	})
	return out, err
}

// hasExt reports whether name ends in ext, ignoring case. A missing leading
// dot on ext is implied.
func hasExt(name, ext string) bool {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.EqualFold(path.Ext(name), ext)
}

func runList(w io.Writer, fs afero.Fs, cfg *config.Config) error {
	a, err := openInput(fs, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := walkAll(a)
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", cfg.InputFile, err)
	}

	entries = lo.Filter(entries, func(l listing, _ int) bool {
		if cfg.DirsOnly {
			return l.entry.IsDir
		}
		if cfg.Ext != "" {
			return !l.entry.IsDir && hasExt(l.entry.Name, cfg.Ext)
		}
		return true
	})

	for _, l := range entries {
		name := l.path
		if cfg.ShiftJIS {
			name = textconv.Display(name)
		}

		switch {
		case l.entry.IsDir:
			fmt.Fprintf(w, "%10s   %s/\n", "-", name)
		case l.entry.Compressed:
			fmt.Fprintf(w, "%10d z %s\n", l.entry.Size, name)
		default:
			fmt.Fprintf(w, "%10d   %s\n", l.entry.Size, name)
		}
	}
	return nil
}
