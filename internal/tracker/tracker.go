// Package tracker maintains the engagement profile for one page session and
// delivers scored lead snapshots to the collector. A Tracker is an explicit
// per-session object; construct one per visit and Close it on teardown.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jasonmangold/nest-egg-explorer-tool/internal/config"
	"github.com/jasonmangold/nest-egg-explorer-tool/internal/delivery"
	"github.com/jasonmangold/nest-egg-explorer-tool/internal/scoring"
)

// ButtonKind identifies a tracked button.
type ButtonKind string

const (
	ButtonCalculate     ButtonKind = "calculate"
	ButtonFindATime     ButtonKind = "find-a-time"
	ButtonContactMe     ButtonKind = "contact-me"
	ButtonExportResults ButtonKind = "export-results"
	ButtonListenNow     ButtonKind = "listen-now"
	ButtonReadReport    ButtonKind = "read-report"
)

// Field identifies a calculator input.
type Field string

const (
	FieldSavings  Field = "savings"
	FieldSpending Field = "spending"
)

// Sink receives the continuous page signals. *Tracker implements it; the
// embedding surface (browser bridge, test harness) stays outside the core.
type Sink interface {
	OnScroll(percent int)
	OnInput(field Field, value float64)
	OnVisibilityHidden()
	OnUnload()
}

// BeaconSender fires a final snapshot without waiting on the result.
type BeaconSender interface {
	Send(payload []byte)
}

// FallbackStore captures payloads that failed to deliver.
type FallbackStore interface {
	Save(at time.Time, payload []byte) error
}

// Tracker accumulates an engagement profile and pushes snapshots to the
// collector on a timed and event-driven schedule. All state is serialized
// by an internal mutex.
type Tracker struct {
	cfg        config.TrackingConfig
	weights    scoring.Weights
	thresholds scoring.Thresholds
	logger     *zap.Logger
	clock      clock.Clock
	transport  delivery.Transport
	beacon     BeaconSender
	store      FallbackStore

	sessionID string

	mu         sync.Mutex
	profile    profile
	startedAt  time.Time
	lastSubmit time.Time
	debounce   *clock.Timer
	started    bool
	closed     bool

	done chan struct{}
	wg   sync.WaitGroup
}

// New constructs a Tracker. logger may be nil; clk may be nil for the real
// clock; beacon and store may be nil to disable those behaviors. Zero-value
// timing fields fall back to the configured defaults.
func New(cfg config.TrackingConfig, thresholds scoring.Thresholds, logger *zap.Logger, clk clock.Clock, transport delivery.Transport, beacon BeaconSender, store FallbackStore) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.New()
	}
	if !thresholds.Valid() {
		thresholds = scoring.DefaultThresholds()
	}
	applyTrackingDefaults(&cfg)

	t := &Tracker{
		cfg:        cfg,
		weights:    scoring.DefaultWeights(),
		thresholds: thresholds,
		logger:     logger,
		clock:      clk,
		transport:  transport,
		beacon:     beacon,
		store:      store,
		sessionID:  "session_" + uuid.New().String(),
		profile:    newProfile(),
		done:       make(chan struct{}),
	}
	t.startedAt = clk.Now()
	return t
}

func applyTrackingDefaults(cfg *config.TrackingConfig) {
	def := config.DefaultConfiguration().Tracking
	if cfg.InitialSubmitDelay <= 0 {
		cfg.InitialSubmitDelay = def.InitialSubmitDelay
	}
	if cfg.SubmitInterval <= 0 {
		cfg.SubmitInterval = def.SubmitInterval
	}
	if cfg.SubmissionCooldown <= 0 {
		cfg.SubmissionCooldown = def.SubmissionCooldown
	}
	if cfg.TimeOnPageInterval <= 0 {
		cfg.TimeOnPageInterval = def.TimeOnPageInterval
	}
	if cfg.ScoreDebounce <= 0 {
		cfg.ScoreDebounce = def.ScoreDebounce
	}
	if cfg.BounceThreshold <= 0 {
		cfg.BounceThreshold = def.BounceThreshold
	}
	if cfg.MinimumScore <= 0 {
		cfg.MinimumScore = def.MinimumScore
	}
}

// SessionID returns the generated lead identifier.
func (t *Tracker) SessionID() string {
	return t.sessionID
}

// Start arms the page timers: the time-on-page tick, the initial submission
// delay, and the periodic submission cadence.
func (t *Tracker) Start() {
	t.mu.Lock()
	if t.started || t.closed {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.startedAt = t.clock.Now()
	t.mu.Unlock()

	t.wg.Add(1)
	go t.run()
}

func (t *Tracker) run() {
	defer t.wg.Done()

	tick := t.clock.Ticker(t.cfg.TimeOnPageInterval)
	defer tick.Stop()
	initial := t.clock.Timer(t.cfg.InitialSubmitDelay)
	defer initial.Stop()

	var cadence *clock.Ticker
	var cadenceC <-chan time.Time
	defer func() {
		if cadence != nil {
			cadence.Stop()
		}
	}()

	for {
		select {
		case <-t.done:
			return
		case now := <-tick.C:
			t.onTick(now)
		case <-initial.C:
			t.trySubmit("initial")
			cadence = t.clock.Ticker(t.cfg.SubmitInterval)
			cadenceC = cadence.C
		case <-cadenceC:
			t.trySubmit("periodic")
		}
	}
}

// Close stops the timers and fires the final best-effort beacon. Safe to
// call more than once.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	if t.debounce != nil {
		t.debounce.Stop()
		t.debounce = nil
	}
	t.updateTimeOnPageLocked(t.clock.Now())
	t.recomputeLocked()
	var final []byte
	if t.eligibleLocked() {
		final = t.encodeLocked(t.clock.Now())
	}
	close(t.done)
	t.mu.Unlock()

	t.wg.Wait()

	if final != nil && t.beacon != nil {
		t.beacon.Send(final)
	}
}

// TrackButtonClick records a click on one of the tracked buttons. High
// intent kinds recompute immediately and trigger a submission attempt.
func (t *Tracker) TrackButtonClick(kind ButtonKind) {
	switch kind {
	case ButtonCalculate:
		t.discrete(func(p *profile) { p.calculateClicks++ }, true)
	case ButtonFindATime:
		t.discrete(func(p *profile) { p.findATimeClicks++ }, true)
	case ButtonContactMe:
		t.discrete(func(p *profile) { p.contactMeClicks++ }, true)
	case ButtonExportResults:
		t.discrete(func(p *profile) { p.exportClicks++ }, true)
	case ButtonListenNow:
		t.discrete(func(p *profile) { p.listenNowClicks++ }, false)
	case ButtonReadReport:
		t.TrackReadReport(string(ButtonReadReport))
	default:
		t.logger.Debug("unrecognized button kind ignored",
			zap.String("op", "tracker.TrackButtonClick"),
			zap.String("kind", string(kind)),
		)
	}
}

// TrackReadReport records a report-link click; only a capped number of
// unique identifiers earn points.
func (t *Tracker) TrackReadReport(id string) {
	t.discrete(func(p *profile) { p.recordReadReport(id) }, false)
}

// TrackCalculatorInput records the latest value for a calculator field
// without counting it as an exploratory change.
func (t *Tracker) TrackCalculatorInput(field Field, value float64) {
	t.mu.Lock()
	t.setFieldLocked(field, value)
	t.mu.Unlock()
}

// TrackCalculatorInputChange records a value and counts it toward the
// pre-calculate exploration credit. Recomputation is debounced.
func (t *Tracker) TrackCalculatorInputChange(field Field, value float64) {
	t.mu.Lock()
	t.setFieldLocked(field, value)
	if t.profile.calculateClicks == 0 {
		t.profile.inputChangesBeforeCalculate++
	}
	t.scheduleRecomputeLocked()
	t.mu.Unlock()
}

func (t *Tracker) setFieldLocked(field Field, value float64) {
	switch field {
	case FieldSavings:
		t.profile.currentSavings = value
	case FieldSpending:
		t.profile.monthlySpending = value
	}
}

// TrackProjectedResults stores the latest projection outputs for payloads
// and the viability bonus.
func (t *Tracker) TrackProjectedResults(safeMonthlyAmount, yearsUntilEmpty float64, moneyLasting bool) {
	t.discrete(func(p *profile) {
		p.hasProjectedResults = true
		p.safeMonthlyAmount = safeMonthlyAmount
		p.yearsUntilEmpty = yearsUntilEmpty
		p.moneyLasting = moneyLasting
	}, false)
}

// TrackPodcastPlay marks the start of a listening segment.
func (t *Tracker) TrackPodcastPlay() {
	t.mu.Lock()
	t.profile.podcastPlayingSince = t.clock.Now()
	t.profile.hadPlayback = true
	t.mu.Unlock()
}

// TrackPodcastPause accumulates the elapsed segment into listen time.
func (t *Tracker) TrackPodcastPause() {
	t.discrete(func(p *profile) { t.settlePodcastLocked() }, false)
}

// TrackPodcastEnded accumulates the final segment into listen time.
func (t *Tracker) TrackPodcastEnded() {
	t.discrete(func(p *profile) { t.settlePodcastLocked() }, false)
}

// settlePodcastLocked folds a running segment into the accumulated listen
// time. Callers hold the mutex.
func (t *Tracker) settlePodcastLocked() {
	p := &t.profile
	if p.podcastPlayingSince.IsZero() {
		return
	}
	span := t.clock.Now().Sub(p.podcastPlayingSince).Seconds()
	if span > 0 {
		p.podcastListenSeconds += span
	}
	p.lastListenSpan = span
	p.podcastPlayingSince = time.Time{}
}

// TrackPlayerClosedEarly applies the early-close penalty when the most
// recent listening segment was only a few seconds long.
func (t *Tracker) TrackPlayerClosedEarly() {
	t.discrete(func(p *profile) {
		t.settlePodcastLocked()
		if p.hadPlayback && p.lastListenSpan < earlyCloseSeconds {
			p.playerClosedEarly = true
		}
	}, false)
}

// TrackPDFRequest captures contact identity from the report-download form
// and marks the PDF conversion.
func (t *Tracker) TrackPDFRequest(firstName, email string) {
	t.discrete(func(p *profile) {
		p.firstName = firstName
		p.email = email
		p.pdfRequested = true
	}, true)
}

// TrackContactFormSubmission captures contact identity and marks the form
// conversion.
func (t *Tracker) TrackContactFormSubmission(firstName, email string) {
	t.discrete(func(p *profile) {
		p.firstName = firstName
		p.email = email
		p.contactFormDone = true
	}, true)
}

// TrackTooltipInteraction counts a tooltip open.
func (t *Tracker) TrackTooltipInteraction() {
	t.mu.Lock()
	t.profile.tooltipInteractions++
	t.scheduleRecomputeLocked()
	t.mu.Unlock()
}

// TrackEducationalContentClick counts an educational-content click.
func (t *Tracker) TrackEducationalContentClick() {
	t.mu.Lock()
	t.profile.educationalClicks++
	t.scheduleRecomputeLocked()
	t.mu.Unlock()
}

// OnScroll records a scroll position; the high-water mark never decreases.
func (t *Tracker) OnScroll(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	t.mu.Lock()
	if percent > t.profile.maxScrollPercent {
		t.profile.maxScrollPercent = percent
		t.scheduleRecomputeLocked()
	}
	t.mu.Unlock()
}

// OnInput is the sink form of TrackCalculatorInputChange.
func (t *Tracker) OnInput(field Field, value float64) {
	t.TrackCalculatorInputChange(field, value)
}

// OnVisibilityHidden fires a best-effort snapshot when the page is hidden.
func (t *Tracker) OnVisibilityHidden() {
	t.sendBeacon()
}

// OnUnload fires a best-effort snapshot during page teardown.
func (t *Tracker) OnUnload() {
	t.sendBeacon()
}

func (t *Tracker) sendBeacon() {
	if t.beacon == nil {
		return
	}
	t.mu.Lock()
	t.updateTimeOnPageLocked(t.clock.Now())
	t.recomputeLocked()
	if !t.eligibleLocked() {
		t.mu.Unlock()
		return
	}
	body := t.encodeLocked(t.clock.Now())
	t.mu.Unlock()
	if body != nil {
		t.beacon.Send(body)
	}
}

// LeadData returns a read-only snapshot of the current profile.
func (t *Tracker) LeadData() Payload {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.updateTimeOnPageLocked(t.clock.Now())
	t.recomputeLocked()
	return t.payloadLocked(t.clock.Now())
}

// discrete applies a profile mutation, recomputes immediately, and
// optionally dispatches a submission attempt.
func (t *Tracker) discrete(mutate func(p *profile), submit bool) {
	t.mu.Lock()
	mutate(&t.profile)
	t.recomputeLocked()
	closed := t.closed
	t.mu.Unlock()

	if submit && !closed {
		t.submitAsync("high-intent")
	}
}

// scheduleRecomputeLocked coalesces recomputation for continuous signals.
// Callers hold the mutex.
func (t *Tracker) scheduleRecomputeLocked() {
	if t.closed {
		return
	}
	if t.debounce != nil {
		t.debounce.Stop()
	}
	t.debounce = t.clock.AfterFunc(t.cfg.ScoreDebounce, func() {
		t.mu.Lock()
		if !t.closed {
			t.recomputeLocked()
		}
		t.mu.Unlock()
	})
}

// recomputeLocked recomputes score and quality from the profile. Callers
// hold the mutex.
func (t *Tracker) recomputeLocked() {
	t.profile.score = scoring.Score(t.profile.snapshot(), t.weights)
	t.profile.quality = scoring.QualityForScore(t.profile.score, t.thresholds)
}

// onTick advances time-on-page and re-evaluates the quick-bounce condition
// as a live toggle.
func (t *Tracker) onTick(now time.Time) {
	t.mu.Lock()
	t.updateTimeOnPageLocked(now)
	t.scheduleRecomputeLocked()
	t.mu.Unlock()
}

func (t *Tracker) updateTimeOnPageLocked(now time.Time) {
	p := &t.profile
	p.timeOnPageSeconds = now.Sub(t.startedAt).Seconds()
	if p.timeOnPageSeconds < 0 {
		p.timeOnPageSeconds = 0
	}
	p.quickBounce = p.timeOnPageSeconds < t.cfg.BounceThreshold.Seconds() && !p.hasInteracted()
}

func (t *Tracker) submitAsync(reason string) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.wg.Add(1)
	t.mu.Unlock()
	go func() {
		defer t.wg.Done()
		t.trySubmit(reason)
	}()
}

// eligibleLocked applies the minimum engagement bar. Callers hold the
// mutex.
func (t *Tracker) eligibleLocked() bool {
	return t.profile.score >= t.cfg.MinimumScore || t.profile.conversionSignal()
}

func (t *Tracker) encodeLocked(now time.Time) []byte {
	body, err := json.Marshal(t.payloadLocked(now))
	if err != nil {
		t.logger.Error("failed to encode lead snapshot",
			zap.String("op", "tracker.encode"),
			zap.Error(err),
		)
		return nil
	}
	return body
}

// trySubmit sends the current snapshot if it clears the engagement bar and
// the cooldown. The cooldown stamp is taken under the mutex before any
// network work, so two rapid triggers can never double-send.
func (t *Tracker) trySubmit(reason string) {
	if t.transport == nil {
		return
	}

	t.mu.Lock()
	t.updateTimeOnPageLocked(t.clock.Now())
	t.recomputeLocked()
	if !t.eligibleLocked() {
		t.logger.Debug("submission skipped below engagement bar",
			zap.String("op", "tracker.trySubmit"),
			zap.String("reason", reason),
			zap.Int("score", t.profile.score),
		)
		t.mu.Unlock()
		return
	}
	now := t.clock.Now()
	if !t.lastSubmit.IsZero() && now.Sub(t.lastSubmit) < t.cfg.SubmissionCooldown {
		t.mu.Unlock()
		return
	}
	t.lastSubmit = now
	score := t.profile.score
	body := t.encodeLocked(now)
	t.mu.Unlock()

	if body == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), delivery.DefaultTimeout)
	defer cancel()
	if err := t.transport.Send(ctx, body); err != nil {
		t.logger.Warn("lead submission failed",
			zap.String("op", "tracker.trySubmit"),
			zap.String("reason", reason),
			zap.Error(err),
		)
		if t.store != nil {
			if serr := t.store.Save(now, body); serr != nil {
				t.logger.Error("failed to persist snapshot to fallback store",
					zap.String("op", "tracker.trySubmit"),
					zap.Error(serr),
				)
			}
		}
		return
	}

	t.logger.Debug("lead snapshot submitted",
		zap.String("op", "tracker.trySubmit"),
		zap.String("reason", reason),
		zap.Int("score", score),
	)
}
