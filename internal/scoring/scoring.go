// Package scoring computes a lead score and quality tier from an engagement
// snapshot. Scoring is a pure function of its inputs so the tracker can
// recompute it idempotently at any time.
package scoring

import "github.com/jasonmangold/nest-egg-explorer-tool/pkg/constants"

// Quality is an ordered lead quality tier, lowest to highest intent.
type Quality string

const (
	QualityUnqualified Quality = "unqualified"
	QualityCold        Quality = "cold"
	QualityWarm        Quality = "warm"
	QualityHot         Quality = "hot"
)

// Thresholds maps scores to quality tiers. Each field is the minimum score
// for that tier; anything below Cold is unqualified.
type Thresholds struct {
	Cold int
	Warm int
	Hot  int
}

// DefaultThresholds returns the standard tier cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Cold: constants.DefaultColdThreshold,
		Warm: constants.DefaultWarmThreshold,
		Hot:  constants.DefaultHotThreshold,
	}
}

// Valid reports whether the cutoffs are strictly ordered.
func (t Thresholds) Valid() bool {
	return 0 < t.Cold && t.Cold < t.Warm && t.Warm < t.Hot
}

// QualityForScore maps a score onto the tier scale.
func QualityForScore(score int, t Thresholds) Quality {
	switch {
	case score >= t.Hot:
		return QualityHot
	case score >= t.Warm:
		return QualityWarm
	case score >= t.Cold:
		return QualityCold
	default:
		return QualityUnqualified
	}
}

// Weights holds the point values for every scored behavior. High-intent
// conversion actions dominate; content and exploratory engagement earn
// smaller capped amounts; negative flags subtract.
type Weights struct {
	FormCompletion       int
	FindATime            int
	ContactMe            int
	Calculate            int
	ExportResults        int
	ExportAfterCalculate int

	ListenNow          int
	ReadReportPerClick int
	ReadReportCap      int
	PodcastPerMinute   int
	PodcastCap         int

	InputChangePerChange int
	InputChangeCap       int
	DeepScroll           int

	DwellShort  int
	DwellMedium int
	DwellLong   int

	ViabilityBonus int

	QuickBouncePenalty       int
	PlayerClosedEarlyPenalty int
}

// DefaultWeights returns the production scoring model.
func DefaultWeights() Weights {
	return Weights{
		FormCompletion:       35,
		FindATime:            35,
		ContactMe:            30,
		Calculate:            25,
		ExportResults:        20,
		ExportAfterCalculate: 10,

		ListenNow:          10,
		ReadReportPerClick: 5,
		ReadReportCap:      30,
		PodcastPerMinute:   2,
		PodcastCap:         10,

		InputChangePerChange: 2,
		InputChangeCap:       8,
		DeepScroll:           10,

		DwellShort:  5,
		DwellMedium: 10,
		DwellLong:   15,

		ViabilityBonus: 5,

		QuickBouncePenalty:       15,
		PlayerClosedEarlyPenalty: 8,
	}
}

// Dwell tier boundaries in seconds and the scroll depth that counts as a
// deep read.
const (
	dwellShortSeconds  = 120
	dwellMediumSeconds = 300
	dwellLongSeconds   = 600
	deepScrollPercent  = 75
)

// Snapshot is the scoring view of an engagement profile.
type Snapshot struct {
	HasContactInfo bool

	FindATimeClicks             int
	ContactMeClicks             int
	CalculateClicks             int
	ExportResultsClicks         int
	ListenNowClicks             int
	ReadReportUniqueClicks      int
	InputChangesBeforeCalculate int

	PodcastListenSeconds float64
	TimeOnPageSeconds    float64
	MaxScrollPercent     int

	HasProjectedResults bool
	MoneyLasting        bool

	QuickBounce       bool
	PlayerClosedEarly bool
}

// Score computes the lead score for a snapshot. The result is clamped to
// zero; penalties can never drive it negative.
func Score(s Snapshot, w Weights) int {
	score := 0

	// High-intent conversion actions, first occurrence only.
	if s.HasContactInfo {
		score += w.FormCompletion
	}
	if s.FindATimeClicks > 0 {
		score += w.FindATime
	}
	if s.ContactMeClicks > 0 {
		score += w.ContactMe
	}
	if s.CalculateClicks > 0 {
		score += w.Calculate
	}
	if s.ExportResultsClicks > 0 {
		score += w.ExportResults
		if s.CalculateClicks > 0 {
			score += w.ExportAfterCalculate
		}
	}

	// Content engagement, capped.
	if s.ListenNowClicks > 0 {
		score += w.ListenNow
	}
	score += capped(s.ReadReportUniqueClicks*w.ReadReportPerClick, w.ReadReportCap)
	score += capped(int(s.PodcastListenSeconds/60)*w.PodcastPerMinute, w.PodcastCap)

	// Exploratory engagement. Input changes only count once a calculation
	// actually happened; idle typing earns nothing.
	if s.CalculateClicks > 0 {
		score += capped(s.InputChangesBeforeCalculate*w.InputChangePerChange, w.InputChangeCap)
	}
	if s.MaxScrollPercent > deepScrollPercent {
		score += w.DeepScroll
	}

	// Dwell tiers.
	switch {
	case s.TimeOnPageSeconds >= dwellLongSeconds:
		score += w.DwellLong
	case s.TimeOnPageSeconds >= dwellMediumSeconds:
		score += w.DwellMedium
	case s.TimeOnPageSeconds >= dwellShortSeconds:
		score += w.DwellShort
	}

	// A sustainable projection signals a viable prospect.
	if s.HasProjectedResults && s.MoneyLasting {
		score += w.ViabilityBonus
	}

	// Negative flags.
	if s.QuickBounce {
		score -= w.QuickBouncePenalty
	}
	if s.PlayerClosedEarly {
		score -= w.PlayerClosedEarlyPenalty
	}

	if score < 0 {
		return 0
	}
	return score
}

func capped(points, limit int) int {
	if points > limit {
		return limit
	}
	return points
}
