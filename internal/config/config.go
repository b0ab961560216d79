package config

// Config holds app configuration
type Config struct {
	// InputFile is the encrypted archive to operate on
	InputFile string `mapstructure:"input"`

	// OutputDir is where extract writes files
	OutputDir string `mapstructure:"output_dir"`

	// FromDir holds replacement files for repack, laid out like the archive
	FromDir string `mapstructure:"from"`

	// OutputFile is where repack writes the archive (defaults to InputFile)
	// and where restore writes the snapshot
	OutputFile string `mapstructure:"output"`

	// BackupDir receives a zstd snapshot of the archive before it is
	// overwritten. Empty disables backups.
	BackupDir string `mapstructure:"backup_dir"`

	// Snapshot is the backup restored by the restore command
	Snapshot string `mapstructure:"snapshot"`

	// ShiftJIS converts names between the archive's Shift-JIS and UTF-8
	ShiftJIS bool `mapstructure:"sjis"`

	// Workers bounds concurrent file writes during extract
	Workers int `mapstructure:"workers"`

	// Ext filters list output by file extension (e.g. ".CSV")
	Ext      string `mapstructure:"ext"`
	DirsOnly bool   `mapstructure:"dirs"`

	DryRun       bool   `mapstructure:"dry_run"`
	LogLevel     string `mapstructure:"log_level"`
	LogOutputDir string `mapstructure:"log_output_dir"`
}
