package tracker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/goccy/go-json"

	"github.com/jasonmangold/nest-egg-explorer-tool/internal/config"
	"github.com/jasonmangold/nest-egg-explorer-tool/internal/delivery"
	"github.com/jasonmangold/nest-egg-explorer-tool/internal/scoring"
)

type fakeTransport struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (f *fakeTransport) Send(ctx context.Context, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

type fakeBeacon struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (f *fakeBeacon) Send(payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
}

type fakeStore struct {
	mu    sync.Mutex
	saved [][]byte
}

func (f *fakeStore) Save(at time.Time, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, payload)
	return nil
}

func newTestTracker(clk clock.Clock, transport *fakeTransport, beacon *fakeBeacon, store *fakeStore) *Tracker {
	cfg := config.TrackingConfig{SubmitEndpoint: "http://collector.example/api/leads"}
	var tr delivery.Transport
	if transport != nil {
		tr = transport
	}
	var bc BeaconSender
	if beacon != nil {
		bc = beacon
	}
	var st FallbackStore
	if store != nil {
		st = store
	}
	return New(cfg, scoring.DefaultThresholds(), nil, clk, tr, bc, st)
}

func TestSessionIDPrefix(t *testing.T) {
	tracker := newTestTracker(clock.NewMock(), nil, nil, nil)
	if !strings.HasPrefix(tracker.SessionID(), "session_") {
		t.Errorf("SessionID() = %q, want session_ prefix", tracker.SessionID())
	}
	if len(tracker.SessionID()) <= len("session_") {
		t.Errorf("SessionID() = %q, missing generated identifier", tracker.SessionID())
	}
}

func TestFirstClickOnlyCounters(t *testing.T) {
	tracker := newTestTracker(clock.NewMock(), nil, nil, nil)

	tracker.TrackButtonClick(ButtonFindATime)
	first := tracker.LeadData().Score

	tracker.TrackButtonClick(ButtonFindATime)
	tracker.TrackButtonClick(ButtonFindATime)
	repeated := tracker.LeadData().Score

	if first != 35 {
		t.Errorf("score after one find-a-time click = %d, want 35", first)
	}
	if repeated != first {
		t.Errorf("score after repeated clicks = %d, want %d", repeated, first)
	}
}

func TestMaxScrollNeverDecreases(t *testing.T) {
	tracker := newTestTracker(clock.NewMock(), nil, nil, nil)

	tracker.OnScroll(50)
	tracker.OnScroll(30)
	if got := tracker.LeadData().PageMetrics.ScrollDepth; got != 50 {
		t.Errorf("scroll depth = %d, want 50", got)
	}

	tracker.OnScroll(130)
	if got := tracker.LeadData().PageMetrics.ScrollDepth; got != 100 {
		t.Errorf("scroll depth after out-of-range input = %d, want 100", got)
	}
}

func TestInputChangesCreditRequiresCalculate(t *testing.T) {
	tracker := newTestTracker(clock.NewMock(), nil, nil, nil)

	for i := 0; i < 5; i++ {
		tracker.TrackCalculatorInputChange(FieldSavings, float64(100000 + i))
	}
	if got := tracker.LeadData().Score; got != 0 {
		t.Errorf("score before calculate = %d, want 0", got)
	}

	tracker.TrackButtonClick(ButtonCalculate)
	// 25 for calculate plus the capped input-change credit.
	if got := tracker.LeadData().Score; got != 25+8 {
		t.Errorf("score after calculate = %d, want %d", got, 25+8)
	}

	// Changes after the first calculate stop accumulating credit.
	tracker.TrackCalculatorInputChange(FieldSpending, 4000)
	if got := tracker.LeadData().Engagement.InputChanges; got != 5 {
		t.Errorf("input changes after calculate = %d, want 5", got)
	}
}

func TestExportAfterCalculateBonus(t *testing.T) {
	tracker := newTestTracker(clock.NewMock(), nil, nil, nil)

	tracker.TrackButtonClick(ButtonExportResults)
	if got := tracker.LeadData().Score; got != 20 {
		t.Errorf("score after export only = %d, want 20", got)
	}

	tracker.TrackButtonClick(ButtonCalculate)
	if got := tracker.LeadData().Score; got != 20+10+25 {
		t.Errorf("score after export and calculate = %d, want %d", got, 20+10+25)
	}
}

func TestReadReportUniqueCap(t *testing.T) {
	tracker := newTestTracker(clock.NewMock(), nil, nil, nil)

	for i := 0; i < 4; i++ {
		tracker.TrackReadReport("report-a")
	}
	if got := tracker.LeadData().Score; got != 5 {
		t.Errorf("score after repeated clicks on one report = %d, want 5", got)
	}

	for _, id := range []string{"b", "c", "d", "e", "f", "g", "h"} {
		tracker.TrackReadReport(id)
	}
	if got := tracker.LeadData().Score; got != 30 {
		t.Errorf("score after many unique reports = %d, want capped 30", got)
	}
}

func TestCooldownPreventsDoubleSend(t *testing.T) {
	transport := &fakeTransport{}
	tracker := newTestTracker(clock.NewMock(), transport, nil, nil)

	tracker.TrackButtonClick(ButtonListenNow)
	for _, id := range []string{"a", "b", "c"} {
		tracker.TrackReadReport(id)
	}

	tracker.trySubmit("first")
	tracker.trySubmit("second")

	if got := transport.count(); got != 1 {
		t.Errorf("sends within cooldown = %d, want 1", got)
	}
}

func TestCooldownExpires(t *testing.T) {
	mock := clock.NewMock()
	transport := &fakeTransport{}
	tracker := newTestTracker(mock, transport, nil, nil)

	tracker.TrackButtonClick(ButtonListenNow)
	for _, id := range []string{"a", "b", "c"} {
		tracker.TrackReadReport(id)
	}

	tracker.trySubmit("first")
	mock.Add(31 * time.Second)
	tracker.trySubmit("second")

	if got := transport.count(); got != 2 {
		t.Errorf("sends across cooldown = %d, want 2", got)
	}
}

func TestSubmissionSkippedBelowBar(t *testing.T) {
	mock := clock.NewMock()
	transport := &fakeTransport{}
	tracker := newTestTracker(mock, transport, nil, nil)

	// Past the bounce threshold so no penalty applies, but nothing scored.
	mock.Add(30 * time.Second)
	tracker.trySubmit("idle")

	if got := transport.count(); got != 0 {
		t.Errorf("sends for an idle session = %d, want 0", got)
	}
}

func TestConversionSignalBypassesBar(t *testing.T) {
	transport := &fakeTransport{}
	tracker := newTestTracker(clock.NewMock(), transport, nil, nil)

	// A PDF request without usable contact fields scores nothing but is
	// still a conversion signal.
	tracker.profile.pdfRequested = true
	tracker.trySubmit("conversion")

	if got := transport.count(); got != 1 {
		t.Errorf("sends for conversion signal = %d, want 1", got)
	}
}

func TestTransportFailurePersistsToStore(t *testing.T) {
	transport := &fakeTransport{err: errors.New("connection refused")}
	store := &fakeStore{}
	tracker := newTestTracker(clock.NewMock(), transport, nil, store)

	tracker.TrackButtonClick(ButtonListenNow)
	for _, id := range []string{"a", "b", "c"} {
		tracker.TrackReadReport(id)
	}
	tracker.trySubmit("failing")

	store.mu.Lock()
	saved := len(store.saved)
	store.mu.Unlock()
	if saved != 1 {
		t.Fatalf("fallback saves = %d, want 1", saved)
	}

	var payload Payload
	if err := json.Unmarshal(store.saved[0], &payload); err != nil {
		t.Fatalf("persisted payload is not valid JSON: %v", err)
	}
	if payload.LeadID != tracker.SessionID() {
		t.Errorf("persisted leadId = %q, want %q", payload.LeadID, tracker.SessionID())
	}
}

func TestQuickBounceIsLive(t *testing.T) {
	mock := clock.NewMock()
	tracker := newTestTracker(mock, nil, nil, nil)

	mock.Add(5 * time.Second)
	if !tracker.LeadData().PageMetrics.Bounced {
		t.Error("expected bounced=true under the threshold with no interaction")
	}

	mock.Add(10 * time.Second)
	if tracker.LeadData().PageMetrics.Bounced {
		t.Error("expected bounced=false once past the threshold")
	}
}

func TestInteractionClearsQuickBounce(t *testing.T) {
	mock := clock.NewMock()
	tracker := newTestTracker(mock, nil, nil, nil)

	mock.Add(3 * time.Second)
	tracker.TrackButtonClick(ButtonCalculate)
	if tracker.LeadData().PageMetrics.Bounced {
		t.Error("expected bounced=false after a deliberate interaction")
	}
}

func TestDwellTiers(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		want    int
	}{
		{name: "short dwell", elapsed: 150 * time.Second, want: 5},
		{name: "medium dwell", elapsed: 350 * time.Second, want: 10},
		{name: "long dwell", elapsed: 700 * time.Second, want: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := clock.NewMock()
			tracker := newTestTracker(mock, nil, nil, nil)
			mock.Add(tt.elapsed)
			if got := tracker.LeadData().Score; got != tt.want {
				t.Errorf("dwell score at %v = %d, want %d", tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestPodcastListenAccumulates(t *testing.T) {
	mock := clock.NewMock()
	tracker := newTestTracker(mock, nil, nil, nil)

	tracker.TrackPodcastPlay()
	mock.Add(90 * time.Second)
	tracker.TrackPodcastPause()

	tracker.TrackPodcastPlay()
	mock.Add(30 * time.Second)
	tracker.TrackPodcastEnded()

	if got := tracker.LeadData().Engagement.PodcastEngagement; got != 120 {
		t.Errorf("podcast listen seconds = %v, want 120", got)
	}
}

func TestPlayerClosedEarly(t *testing.T) {
	mock := clock.NewMock()
	tracker := newTestTracker(mock, nil, nil, nil)

	tracker.TrackPodcastPlay()
	mock.Add(2 * time.Second)
	tracker.TrackPlayerClosedEarly()

	if !tracker.profile.playerClosedEarly {
		t.Error("expected playerClosedEarly after a 2s listen")
	}
}

func TestPlayerClosedAfterRealListen(t *testing.T) {
	mock := clock.NewMock()
	tracker := newTestTracker(mock, nil, nil, nil)

	tracker.TrackPodcastPlay()
	mock.Add(60 * time.Second)
	tracker.TrackPodcastPause()
	tracker.TrackPlayerClosedEarly()

	if tracker.profile.playerClosedEarly {
		t.Error("did not expect playerClosedEarly after a 60s listen")
	}
}

func TestPayloadShape(t *testing.T) {
	mock := clock.NewMock()
	tracker := newTestTracker(mock, nil, nil, nil)

	tracker.TrackCalculatorInput(FieldSavings, 500000)
	tracker.TrackCalculatorInput(FieldSpending, 2000)
	tracker.TrackButtonClick(ButtonCalculate)
	tracker.TrackProjectedResults(2100, 30, true)
	tracker.TrackPDFRequest("Ada", "ada@example.com")
	mock.Add(30 * time.Second)

	payload := tracker.LeadData()
	if payload.FinancialProfile.CurrentSavings != 500000 {
		t.Errorf("currentSavings = %v, want 500000", payload.FinancialProfile.CurrentSavings)
	}
	if payload.FinancialProfile.RetirementViability != ViabilitySustainable {
		t.Errorf("retirementViability = %q, want %q", payload.FinancialProfile.RetirementViability, ViabilitySustainable)
	}
	if payload.ContactInfo == nil || payload.ContactInfo.Email != "ada@example.com" {
		t.Errorf("contactInfo = %+v, want captured email", payload.ContactInfo)
	}
	if !payload.Engagement.PDFDownloaded {
		t.Error("expected pdfDownloaded=true")
	}
	// Form completion, calculate, and the viability bonus.
	if payload.Score != 35+25+5 {
		t.Errorf("score = %d, want %d", payload.Score, 35+25+5)
	}
	if payload.Quality != string(scoring.QualityCold) {
		t.Errorf("quality = %q, want %q", payload.Quality, scoring.QualityCold)
	}
}

func TestViabilityNeedsAdjustment(t *testing.T) {
	tracker := newTestTracker(clock.NewMock(), nil, nil, nil)
	tracker.TrackProjectedResults(1200, 14, false)

	if got := tracker.LeadData().FinancialProfile.RetirementViability; got != ViabilityNeedsAdjustment {
		t.Errorf("retirementViability = %q, want %q", got, ViabilityNeedsAdjustment)
	}
}

func TestCloseSendsFinalBeacon(t *testing.T) {
	beacon := &fakeBeacon{}
	tracker := newTestTracker(clock.NewMock(), nil, beacon, nil)

	tracker.TrackButtonClick(ButtonListenNow)
	for _, id := range []string{"a", "b", "c"} {
		tracker.TrackReadReport(id)
	}
	tracker.Close()
	tracker.Close()

	beacon.mu.Lock()
	sent := len(beacon.payloads)
	beacon.mu.Unlock()
	if sent != 1 {
		t.Fatalf("beacon sends on close = %d, want 1", sent)
	}

	var payload Payload
	if err := json.Unmarshal(beacon.payloads[0], &payload); err != nil {
		t.Fatalf("beacon payload is not valid JSON: %v", err)
	}
	if payload.Score != 25 {
		t.Errorf("final score = %d, want 25", payload.Score)
	}
}

func TestCloseSkipsBeaconBelowBar(t *testing.T) {
	mock := clock.NewMock()
	beacon := &fakeBeacon{}
	tracker := newTestTracker(mock, nil, beacon, nil)

	mock.Add(30 * time.Second)
	tracker.Close()

	beacon.mu.Lock()
	sent := len(beacon.payloads)
	beacon.mu.Unlock()
	if sent != 0 {
		t.Errorf("beacon sends for an idle session = %d, want 0", sent)
	}
}

func TestTimersDriveSubmission(t *testing.T) {
	transport := &fakeTransport{}
	cfg := config.TrackingConfig{
		SubmitEndpoint:     "http://collector.example/api/leads",
		InitialSubmitDelay: 10 * time.Millisecond,
		SubmitInterval:     10 * time.Millisecond,
		SubmissionCooldown: time.Millisecond,
		TimeOnPageInterval: 5 * time.Millisecond,
		ScoreDebounce:      time.Millisecond,
		BounceThreshold:    time.Millisecond,
		MinimumScore:       20,
	}
	tracker := New(cfg, scoring.DefaultThresholds(), nil, nil, transport, nil, nil)

	tracker.TrackButtonClick(ButtonListenNow)
	for _, id := range []string{"a", "b", "c"} {
		tracker.TrackReadReport(id)
	}

	tracker.Start()
	time.Sleep(100 * time.Millisecond)
	tracker.Close()

	if got := transport.count(); got < 2 {
		t.Errorf("timed sends = %d, want at least 2 (initial delay plus cadence)", got)
	}
}
