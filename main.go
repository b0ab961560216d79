package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ossyrian/dxarc/internal/archive"
	"github.com/ossyrian/dxarc/internal/config"
	"github.com/ossyrian/dxarc/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config

	// appFs backs every file the commands touch
	appFs = afero.NewOsFs()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:               "dxarc",
	Short:             "Work with encrypted DX game archives",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")

	// i/o
	rootCmd.PersistentFlags().StringP("input", "i", "", "path to the .arc archive")
	rootCmd.PersistentFlags().Bool("sjis", false, "convert names between Shift-JIS and UTF-8")

	// other opts
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().String("log-output-dir", "", "directory to write log files (if set, logs are written to both stderr and file)")
	rootCmd.PersistentFlags().Bool("dry-run", false, "do everything except writing output")

	rootCmd.AddCommand(infoCmd, listCmd, extractCmd, repackCmd, restoreCmd)
}

// initConfig reads in config file and environment variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "dxarc"))
		}
		viper.AddConfigPath("/etc/dxarc")
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("DXARC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setup binds the running command's flags, loads the config and installs
// the logger. Flags are bound here rather than in init because several
// commands share a config key.
func setup(cmd *cobra.Command, args []string) error {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		viper.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})

	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := logging.Setup(cfg.LogLevel, cfg.LogOutputDir); err != nil {
		return fmt.Errorf("could not set up logging: %w", err)
	}
	return nil
}

// openInput opens the archive named by --input.
func openInput(fs afero.Fs, cfg *config.Config) (*archive.Archive, error) {
	if cfg.InputFile == "" {
		return nil, fmt.Errorf("no input archive given (use --input)")
	}
	a, err := archive.Open(cfg.InputFile, archive.WithFs(fs))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.InputFile, err)
	}
	return a, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
