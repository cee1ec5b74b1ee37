// Package constants provides shared constants for the nest-egg-explorer application.
package constants

import "time"

// Projection assumptions used when the configuration does not override them.
const (
	// DefaultAnnualReturnRate is the assumed annual investment return.
	DefaultAnnualReturnRate = 0.06

	// DefaultAnnualInflationRate is the assumed annual inflation rate applied to spending.
	DefaultAnnualInflationRate = 0.03

	// DefaultHorizonYears is the length of the simulated retirement.
	DefaultHorizonYears = 30
)

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// SafeWithdrawalFloor is the ending balance the safe-withdrawal solver
	// must preserve at the horizon.
	SafeWithdrawalFloor = 1000.0

	// SafeWithdrawalPrecision is the interval width at which the solver stops.
	SafeWithdrawalPrecision = 1.0
)

// Lead tracking defaults.
const (
	// DefaultBounceThreshold is the dwell time below which a visit counts as a quick bounce.
	DefaultBounceThreshold = 10 * time.Second

	// DefaultTimeOnPageInterval is how often the tracker refreshes time-on-page.
	DefaultTimeOnPageInterval = 5 * time.Second

	// DefaultScoreDebounce coalesces score recomputation for continuous signals.
	DefaultScoreDebounce = 2 * time.Second

	// DefaultInitialSubmitDelay is how long a page must stay open before the first submission.
	DefaultInitialSubmitDelay = 30 * time.Second

	// DefaultSubmitInterval is the periodic submission cadence after the initial delay.
	DefaultSubmitInterval = 60 * time.Second

	// DefaultSubmissionCooldown is the minimum spacing between outbound submissions.
	DefaultSubmissionCooldown = 30 * time.Second

	// DefaultMinimumScore is the engagement bar below which submissions are skipped.
	DefaultMinimumScore = 20

	// MaxReadReportUniqueClicks caps how many distinct read-report clicks earn points.
	MaxReadReportUniqueClicks = 6
)

// Quality tier cutoffs (score thresholds, lowest tier has no cutoff).
const (
	DefaultColdThreshold = 20
	DefaultWarmThreshold = 80
	DefaultHotThreshold  = 120
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"
)

// Collector defaults.
const (
	// DefaultCollectorAddress is the default HTTP listen address for the lead collector.
	DefaultCollectorAddress = ":8080"

	// DefaultMaxBodyBytes is the maximum accepted lead payload size (64 KB).
	DefaultMaxBodyBytes int64 = 64 * 1024

	// DefaultLeadsDatabase is the default SQLite path for collected leads.
	DefaultLeadsDatabase = "leads.db"
)
