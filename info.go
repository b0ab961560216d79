package main

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ossyrian/dxarc/internal/config"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print an archive's header",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInfo(cmd.OutOrStdout(), appFs, cfg)
	},
}

func runInfo(w io.Writer, fs afero.Fs, cfg *config.Config) error {
	a, err := openInput(fs, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	h := a.Header()
	fmt.Fprintf(w, "%-16s %s\n", "archive", cfg.InputFile)
	fmt.Fprintf(w, "%-16s %s\n", "key", a.Variant())
	fmt.Fprintf(w, "%-16s %d\n", "version", h.Version)
	fmt.Fprintf(w, "%-16s %d\n", "size", a.Len())
	fmt.Fprintf(w, "%-16s %#x\n", "data", h.DataOffset)
	fmt.Fprintf(w, "%-16s %#x\n", "filename table", h.FilenameTableOffset)
	fmt.Fprintf(w, "%-16s %#x\n", "file table", h.FileTableStart())
	fmt.Fprintf(w, "%-16s %#x\n", "dir table", h.DirTableStart())
	fmt.Fprintf(w, "%-16s %d\n", "entries", a.NumFiles())
	_, err = fmt.Fprintf(w, "%-16s %d\n", "directories", a.NumDirs())
	return err
}
