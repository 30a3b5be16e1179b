package model

import "time"

// Config holds the full tautohetohe configuration
type Config struct {
	Paths       PathsConfig       `yaml:"paths" mapstructure:"paths"`
	Extract     ExtractConfig     `yaml:"extract" mapstructure:"extract"`
	Classifier  ClassifierConfig  `yaml:"classifier" mapstructure:"classifier"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Storage     StorageConfig     `yaml:"storage" mapstructure:"storage"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// PathsConfig locates the volume index, the page files and the outputs
type PathsConfig struct {
	InputDir      string `yaml:"input_dir" mapstructure:"input_dir"`
	OutputDir     string `yaml:"output_dir" mapstructure:"output_dir"`
	IndexFile     string `yaml:"index_file" mapstructure:"index_file"`
	DayIndexFile  string `yaml:"day_index_file" mapstructure:"day_index_file"`
	UtteranceFile string `yaml:"utterance_file" mapstructure:"utterance_file"`
}

// Header stripping modes
const (
	HeaderModeVolume = "volume" // once, before the first date header
	HeaderModePage   = "page"   // at the top of every page
)

// ExtractConfig tunes segmentation and acceptance thresholds
type ExtractConfig struct {
	HeaderMode       string        `yaml:"header_mode" mapstructure:"header_mode"`
	MinSentenceChars int           `yaml:"min_sentence_chars" mapstructure:"min_sentence_chars"`
	MinDayWords      int           `yaml:"min_day_words" mapstructure:"min_day_words"`
	MinTargetWords   int           `yaml:"min_target_words" mapstructure:"min_target_words"`
	MaxOtherWords    int           `yaml:"max_other_words" mapstructure:"max_other_words"`
	MatchTimeout     time.Duration `yaml:"match_timeout" mapstructure:"match_timeout"`
}

// ClassifierConfig controls memoisation of language classification
type ClassifierConfig struct {
	Cache     bool          `yaml:"cache" mapstructure:"cache"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir   string        `yaml:"disk_dir" mapstructure:"disk_dir"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig sets how many volumes are processed at once
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// Storage drivers
const (
	StorageCSV    = "csv"
	StorageSQLite = "sqlite"
)

// StorageConfig selects where records are written
type StorageConfig struct {
	Driver     string `yaml:"driver" mapstructure:"driver"`
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// LoggingConfig configures the root logger
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// OutputConfig controls console output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns a Config populated with all default values
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			InputDir:      "1854-1987",
			OutputDir:     "processed",
			IndexFile:     "hathivolumeURLs.csv",
			DayIndexFile:  "hansardrāindex.csv",
			UtteranceFile: "hansardreomāori.csv",
		},
		Extract: ExtractConfig{
			HeaderMode:       HeaderModeVolume,
			MinSentenceChars: 5,
			MinDayWords:      50,
			MinTargetWords:   2,
			MaxOtherWords:    20,
			MatchTimeout:     2 * time.Second,
		},
		Classifier: ClassifierConfig{
			Cache:     true,
			MemoryTTL: 30 * time.Minute,
			DiskDir:   "",
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
		Storage: StorageConfig{
			Driver:     StorageCSV,
			SQLitePath: "hansard.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
