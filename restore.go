package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ossyrian/dxarc/internal/backup"
	"github.com/ossyrian/dxarc/internal/config"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore an archive from a backup snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRestore(appFs, cfg)
	},
}

func init() {
	restoreCmd.Flags().String("snapshot", "", "backup snapshot to restore (required)")
	restoreCmd.Flags().StringP("output", "o", "", "path to write the archive to (required)")
	restoreCmd.MarkFlagRequired("snapshot")
	restoreCmd.MarkFlagRequired("output")
}

func runRestore(fs afero.Fs, cfg *config.Config) error {
	if cfg.Snapshot == "" || cfg.OutputFile == "" {
		return fmt.Errorf("restore needs both --snapshot and --output")
	}
	if cfg.DryRun {
		exists, err := afero.Exists(fs, cfg.Snapshot)
		if err != nil || !exists {
			return fmt.Errorf("snapshot %s not found", cfg.Snapshot)
		}
		return nil
	}
	return backup.Restore(fs, cfg.Snapshot, cfg.OutputFile)
}
