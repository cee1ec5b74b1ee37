package tracker

import (
	"time"

	"github.com/jasonmangold/nest-egg-explorer-tool/internal/scoring"
	"github.com/jasonmangold/nest-egg-explorer-tool/pkg/constants"
)

// A podcast segment shorter than this just before the player is dismissed
// counts as an early close.
const earlyCloseSeconds = 5.0

// profile is the engagement state for one session. It is owned by the
// Tracker and mutated only under its mutex.
type profile struct {
	firstName string
	email     string

	contactFormDone bool
	pdfRequested    bool

	currentSavings  float64
	monthlySpending float64

	calculateClicks int
	findATimeClicks int
	contactMeClicks int
	exportClicks    int
	listenNowClicks int

	readReports      map[string]struct{}
	readReportClicks int

	tooltipInteractions int
	educationalClicks   int

	inputChangesBeforeCalculate int

	podcastListenSeconds float64
	podcastPlayingSince  time.Time
	lastListenSpan       float64
	hadPlayback          bool

	timeOnPageSeconds float64
	maxScrollPercent  int

	quickBounce       bool
	playerClosedEarly bool

	hasProjectedResults bool
	safeMonthlyAmount   float64
	yearsUntilEmpty     float64
	moneyLasting        bool

	score   int
	quality scoring.Quality
}

func newProfile() profile {
	return profile{
		readReports: make(map[string]struct{}),
		quality:     scoring.QualityUnqualified,
	}
}

// recordReadReport tracks a unique report identifier, capped so repeated
// clicks on the same handful of elements stop accumulating.
func (p *profile) recordReadReport(id string) {
	p.readReportClicks++
	if len(p.readReports) >= constants.MaxReadReportUniqueClicks {
		return
	}
	p.readReports[id] = struct{}{}
}

// hasContactInfo reports whether both identity fields were captured.
func (p *profile) hasContactInfo() bool {
	return p.firstName != "" && p.email != ""
}

// hasInteracted reports whether the session shows any deliberate action,
// which exempts it from the quick-bounce penalty.
func (p *profile) hasInteracted() bool {
	return p.calculateClicks > 0 ||
		p.findATimeClicks > 0 ||
		p.contactMeClicks > 0 ||
		p.exportClicks > 0 ||
		p.listenNowClicks > 0 ||
		p.readReportClicks > 0 ||
		p.contactFormDone ||
		p.pdfRequested ||
		p.hasContactInfo()
}

// conversionSignal reports whether the session carries direct contact or
// scheduling intent, which bypasses the minimum score bar.
func (p *profile) conversionSignal() bool {
	return p.hasContactInfo() ||
		p.contactFormDone ||
		p.pdfRequested ||
		p.findATimeClicks > 0 ||
		p.contactMeClicks > 0
}

// snapshot projects the profile into the scoring view.
func (p *profile) snapshot() scoring.Snapshot {
	return scoring.Snapshot{
		HasContactInfo: p.hasContactInfo(),

		FindATimeClicks:             p.findATimeClicks,
		ContactMeClicks:             p.contactMeClicks,
		CalculateClicks:             p.calculateClicks,
		ExportResultsClicks:         p.exportClicks,
		ListenNowClicks:             p.listenNowClicks,
		ReadReportUniqueClicks:      len(p.readReports),
		InputChangesBeforeCalculate: p.inputChangesBeforeCalculate,

		PodcastListenSeconds: p.podcastListenSeconds,
		TimeOnPageSeconds:    p.timeOnPageSeconds,
		MaxScrollPercent:     p.maxScrollPercent,

		HasProjectedResults: p.hasProjectedResults,
		MoneyLasting:        p.moneyLasting,

		QuickBounce:       p.quickBounce,
		PlayerClosedEarly: p.playerClosedEarly,
	}
}
