package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Global output flags only
	verbose      bool
	quiet        bool
	outputFormat string
)

// Config holds the locations the decode cache and dive index live at,
// loaded once in Execute and shared by every subcommand.
type Config struct {
	CacheDir    string `mapstructure:"cache_dir"`
	IndexDBPath string `mapstructure:"index_db_path"`
}

var cfg Config

var rootCmd = &cobra.Command{
	Use:   "divelog",
	Short: "Decode dive-computer logbook containers and inspect their dives",
	Long: `divelog is a read-only command-line tool for decoding encrypted
dive-computer logbook containers (CAN/WAN/ANA files) into per-dive logbooks
and profile sample streams, without needing the vendor's own desktop app.

Commands:
  discover    Identify a container's variant, format, and model
  list        List the dives recorded in a container
  extract     Decode one dive's logbook and profile samples to a directory`,
	Version: "0.1.0-dev",
}

// Execute loads configuration, adds all child commands to the root command,
// and sets flags appropriately.
func Execute() {
	if err := loadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the cache-dir/index-db-path configuration using Viper,
// falling back to defaults when no config file is present.
func loadConfig() error {
	viper.SetConfigName("divelog-config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("$HOME/.divelog")
	viper.AddConfigPath("/etc/divelog")

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	viper.SetDefault("cache_dir", home+"/.divelog/cache")
	viper.SetDefault("index_db_path", home+"/.divelog/dives.db")

	viper.SetEnvPrefix("DIVELOG")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return viper.Unmarshal(&cfg)
}

func init() {
	// Only global output control flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output except errors")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml)")
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}

// GetQuiet returns the quiet flag value
func GetQuiet() bool {
	return quiet
}

// GetOutputFormat returns the output format
func GetOutputFormat() string {
	return outputFormat
}

// GetConfig returns the loaded cache/index configuration.
func GetConfig() Config {
	return cfg
}
