// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/jasonmangold/nest-egg-explorer-tool/internal/projection"
	"github.com/jasonmangold/nest-egg-explorer-tool/internal/scoring"
	"github.com/jasonmangold/nest-egg-explorer-tool/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for nest-egg-explorer.
type Configuration struct {
	Assumptions AssumptionsConfig `yaml:"assumptions,omitempty"`
	Scoring     ScoringConfig     `yaml:"scoring,omitempty"`
	Tracking    TrackingConfig    `yaml:"tracking,omitempty"`
	Collector   CollectorConfig   `yaml:"collector,omitempty"`
	Logging     LoggingConfig     `yaml:"logging,omitempty"`
	Output      OutputConfig      `yaml:"output,omitempty"`
}

// AssumptionsConfig holds the projection assumptions.
type AssumptionsConfig struct {
	AnnualReturnRate    float64 `yaml:"annualReturnRate,omitempty"`
	AnnualInflationRate float64 `yaml:"annualInflationRate,omitempty"`
	HorizonYears        int     `yaml:"horizonYears,omitempty"`
}

// ScoringConfig holds the quality tier cutoffs.
type ScoringConfig struct {
	ColdThreshold int `yaml:"coldThreshold,omitempty"`
	WarmThreshold int `yaml:"warmThreshold,omitempty"`
	HotThreshold  int `yaml:"hotThreshold,omitempty"`
}

// TrackingConfig holds the lead tracker's submission policy.
type TrackingConfig struct {
	SubmitEndpoint     string        `yaml:"submitEndpoint,omitempty"`
	APIToken           string        `yaml:"apiToken,omitempty"`
	InitialSubmitDelay time.Duration `yaml:"initialSubmitDelay,omitempty"`
	SubmitInterval     time.Duration `yaml:"submitInterval,omitempty"`
	SubmissionCooldown time.Duration `yaml:"submissionCooldown,omitempty"`
	TimeOnPageInterval time.Duration `yaml:"timeOnPageInterval,omitempty"`
	ScoreDebounce      time.Duration `yaml:"scoreDebounce,omitempty"`
	BounceThreshold    time.Duration `yaml:"bounceThreshold,omitempty"`
	MinimumScore       int           `yaml:"minimumScore,omitempty"`
	FallbackPath       string        `yaml:"fallbackPath,omitempty"`
}

// CollectorConfig holds runtime parameters for the lead collector service.
type CollectorConfig struct {
	Address      string `yaml:"address,omitempty"`
	DatabasePath string `yaml:"databasePath,omitempty"`
	CatalogPath  string `yaml:"catalogPath,omitempty"`
	APIToken     string `yaml:"apiToken,omitempty"`
	MaxBodyBytes int64  `yaml:"maxBodyBytes,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// DefaultConfiguration returns a configuration populated with the standard
// defaults for every section.
func DefaultConfiguration() *Configuration {
	conf := &Configuration{}
	conf.applyDefaults()
	return conf
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. A missing file returns the defaults without error so
// the CLI works out of the box.
func LoadConfiguration(configPath string) (*Configuration, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
			return DefaultConfiguration(), nil
		}
	}

	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.applyDefaults()
	return &configuration, nil
}

func (conf *Configuration) applyDefaults() {
	if conf.Assumptions.AnnualReturnRate == 0 {
		conf.Assumptions.AnnualReturnRate = constants.DefaultAnnualReturnRate
	}
	if conf.Assumptions.AnnualInflationRate == 0 {
		conf.Assumptions.AnnualInflationRate = constants.DefaultAnnualInflationRate
	}
	if conf.Assumptions.HorizonYears == 0 {
		conf.Assumptions.HorizonYears = constants.DefaultHorizonYears
	}

	if conf.Scoring.ColdThreshold == 0 {
		conf.Scoring.ColdThreshold = constants.DefaultColdThreshold
	}
	if conf.Scoring.WarmThreshold == 0 {
		conf.Scoring.WarmThreshold = constants.DefaultWarmThreshold
	}
	if conf.Scoring.HotThreshold == 0 {
		conf.Scoring.HotThreshold = constants.DefaultHotThreshold
	}

	if conf.Tracking.InitialSubmitDelay == 0 {
		conf.Tracking.InitialSubmitDelay = constants.DefaultInitialSubmitDelay
	}
	if conf.Tracking.SubmitInterval == 0 {
		conf.Tracking.SubmitInterval = constants.DefaultSubmitInterval
	}
	if conf.Tracking.SubmissionCooldown == 0 {
		conf.Tracking.SubmissionCooldown = constants.DefaultSubmissionCooldown
	}
	if conf.Tracking.TimeOnPageInterval == 0 {
		conf.Tracking.TimeOnPageInterval = constants.DefaultTimeOnPageInterval
	}
	if conf.Tracking.ScoreDebounce == 0 {
		conf.Tracking.ScoreDebounce = constants.DefaultScoreDebounce
	}
	if conf.Tracking.BounceThreshold == 0 {
		conf.Tracking.BounceThreshold = constants.DefaultBounceThreshold
	}
	if conf.Tracking.MinimumScore == 0 {
		conf.Tracking.MinimumScore = constants.DefaultMinimumScore
	}

	if conf.Collector.Address == "" {
		conf.Collector.Address = constants.DefaultCollectorAddress
	}
	if conf.Collector.DatabasePath == "" {
		conf.Collector.DatabasePath = constants.DefaultLeadsDatabase
	}
	if conf.Collector.MaxBodyBytes == 0 {
		conf.Collector.MaxBodyBytes = constants.DefaultMaxBodyBytes
	}
}

// ProjectionAssumptions converts the configured assumptions into the
// projection engine's form.
func (conf *Configuration) ProjectionAssumptions() projection.Assumptions {
	return projection.Assumptions{
		AnnualReturnRate:    conf.Assumptions.AnnualReturnRate,
		AnnualInflationRate: conf.Assumptions.AnnualInflationRate,
		HorizonYears:        conf.Assumptions.HorizonYears,
	}
}

// Thresholds converts the configured cutoffs into scoring thresholds.
func (conf *Configuration) Thresholds() scoring.Thresholds {
	return scoring.Thresholds{
		Cold: conf.Scoring.ColdThreshold,
		Warm: conf.Scoring.WarmThreshold,
		Hot:  conf.Scoring.HotThreshold,
	}
}

// Validate reports errors that make the configuration unusable.
func (conf *Configuration) Validate() error {
	if conf.Assumptions.AnnualReturnRate < -1 || conf.Assumptions.AnnualReturnRate > 1 {
		return fmt.Errorf("annual return rate %.4f outside [-1, 1]", conf.Assumptions.AnnualReturnRate)
	}
	if conf.Assumptions.AnnualInflationRate < -1 || conf.Assumptions.AnnualInflationRate > 1 {
		return fmt.Errorf("annual inflation rate %.4f outside [-1, 1]", conf.Assumptions.AnnualInflationRate)
	}
	if conf.Assumptions.HorizonYears < 1 || conf.Assumptions.HorizonYears > 100 {
		return fmt.Errorf("horizon of %d years outside [1, 100]", conf.Assumptions.HorizonYears)
	}
	if !conf.Thresholds().Valid() {
		return fmt.Errorf("quality thresholds must be strictly increasing: cold=%d warm=%d hot=%d",
			conf.Scoring.ColdThreshold, conf.Scoring.WarmThreshold, conf.Scoring.HotThreshold)
	}
	return nil
}

// ValidateConfiguration checks for suspicious but workable settings and
// returns human-readable warnings for each.
func (conf *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if conf.Assumptions.AnnualReturnRate > 0.12 {
		warnings = append(warnings, fmt.Sprintf("annual return rate of %.1f%% is unusually optimistic",
			conf.Assumptions.AnnualReturnRate*100))
	}
	if conf.Assumptions.AnnualInflationRate > conf.Assumptions.AnnualReturnRate {
		warnings = append(warnings, "inflation rate exceeds return rate; projections will deplete quickly")
	}
	if conf.Tracking.SubmitEndpoint == "" {
		warnings = append(warnings, "no submit endpoint configured; lead submissions will be skipped")
	}
	if conf.Tracking.SubmitEndpoint != "" && conf.Tracking.APIToken == "" {
		warnings = append(warnings, "submit endpoint configured without an API token")
	}
	if conf.Tracking.SubmissionCooldown < time.Second {
		warnings = append(warnings, "submission cooldown below one second defeats duplicate suppression")
	}

	return warnings
}
