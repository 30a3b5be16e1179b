package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/tautohetohe/internal/logger"
	"github.com/ppiankov/tautohetohe/internal/model"
)

// Version is set at build time
var Version = "v0.3.0"

var (
	cfgFile   string
	verbose   bool
	logLevel  string
	logFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tautohetohe",
	Short: "Tautohetohe - reo Māori extraction from parliamentary debates",
	Long: `Tautohetohe reads OCR page dumps of bound Hansard volumes, splits them
into sitting days and extracts the passages spoken in te reo Māori.

For every day it writes a language mix summary (reo, ambiguous and other
word counts) and for every reo passage an utterance record attributed to
the speaker who said it.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of tautohetohe.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tautohetohe %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.tautohetohe/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, json)")
	rootCmd.PersistentFlags().String("storage", "", "storage driver (csv, sqlite)")
	rootCmd.PersistentFlags().String("sqlite-path", "", "SQLite database path")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("storage.driver", rootCmd.PersistentFlags().Lookup("storage"))
	_ = viper.BindPFlag("storage.sqlite_path", rootCmd.PersistentFlags().Lookup("sqlite-path"))

	setDefaults(viper.GetViper(), model.DefaultConfig())

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.tautohetohe")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match TAUTOHETOHE_*
	viper.SetEnvPrefix("TAUTOHETOHE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so env vars and flags can
// override it
func setDefaults(v *viper.Viper, d *model.Config) {
	v.SetDefault("paths.input_dir", d.Paths.InputDir)
	v.SetDefault("paths.output_dir", d.Paths.OutputDir)
	v.SetDefault("paths.index_file", d.Paths.IndexFile)
	v.SetDefault("paths.day_index_file", d.Paths.DayIndexFile)
	v.SetDefault("paths.utterance_file", d.Paths.UtteranceFile)

	v.SetDefault("extract.header_mode", d.Extract.HeaderMode)
	v.SetDefault("extract.min_sentence_chars", d.Extract.MinSentenceChars)
	v.SetDefault("extract.min_day_words", d.Extract.MinDayWords)
	v.SetDefault("extract.min_target_words", d.Extract.MinTargetWords)
	v.SetDefault("extract.max_other_words", d.Extract.MaxOtherWords)
	v.SetDefault("extract.match_timeout", d.Extract.MatchTimeout)

	v.SetDefault("classifier.cache", d.Classifier.Cache)
	v.SetDefault("classifier.memory_ttl", d.Classifier.MemoryTTL)
	v.SetDefault("classifier.disk_dir", d.Classifier.DiskDir)
	v.SetDefault("classifier.disk_ttl", d.Classifier.DiskTTL)

	v.SetDefault("concurrency.workers", d.Concurrency.Workers)

	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("output.verbose", d.Output.Verbose)
}

// loadConfig resolves the effective configuration: flags, then env, then
// the config file, then defaults
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *model.Config) error {
	switch cfg.Extract.HeaderMode {
	case model.HeaderModeVolume, model.HeaderModePage:
	default:
		return fmt.Errorf("invalid extract.header_mode %q (want %s or %s)",
			cfg.Extract.HeaderMode, model.HeaderModeVolume, model.HeaderModePage)
	}
	if cfg.Concurrency.Workers < 1 {
		cfg.Concurrency.Workers = 1
	}
	return nil
}

// setup loads the config and initialises the root logger
func setup() (*model.Config, *logger.Logger, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	log := logger.Init(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	return cfg, log, nil
}
