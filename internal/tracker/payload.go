package tracker

import "time"

// Viability labels carried in submitted payloads.
const (
	ViabilitySustainable     = "Sustainable"
	ViabilityNeedsAdjustment = "Needs Adjustment"
)

// Payload is one lead snapshot as posted to the collector.
type Payload struct {
	LeadID           string           `json:"leadId"`
	Score            int              `json:"score"`
	Quality          string           `json:"quality"`
	Timestamp        string           `json:"timestamp"`
	PageMetrics      PageMetrics      `json:"pageMetrics"`
	FinancialProfile FinancialProfile `json:"financialProfile"`
	Engagement       EngagementData   `json:"engagementData"`
	ContactInfo      *ContactInfo     `json:"contactInfo,omitempty"`
}

// PageMetrics summarizes dwell and scroll behavior.
type PageMetrics struct {
	TimeOnPage  float64 `json:"timeOnPage"`
	ScrollDepth int     `json:"scrollDepth"`
	Bounced     bool    `json:"bounced"`
}

// FinancialProfile carries the visitor's calculator inputs and the latest
// projection outcome.
type FinancialProfile struct {
	CurrentSavings       float64 `json:"currentSavings"`
	MonthlySpending      float64 `json:"monthlySpending"`
	SafeWithdrawalAmount float64 `json:"safeWithdrawalAmount"`
	RetirementViability  string  `json:"retirementViability,omitempty"`
}

// EngagementData carries the interaction counters.
type EngagementData struct {
	CalculatorInteractions   int     `json:"calculatorInteractions"`
	PDFDownloaded            bool    `json:"pdfDownloaded"`
	PodcastEngagement        float64 `json:"podcastEngagement"`
	ContactAttempted         bool    `json:"contactAttempted"`
	FindATimeClicks          int     `json:"findATimeClicks"`
	ContactMeClicks          int     `json:"contactMeClicks"`
	ExportClicks             int     `json:"exportClicks"`
	ListenNowClicks          int     `json:"listenNowClicks"`
	ReadReportClicks         int     `json:"readReportClicks"`
	TooltipInteractions      int     `json:"tooltipInteractions"`
	EducationalContentClicks int     `json:"educationalContentClicks"`
	InputChanges             int     `json:"inputChanges"`
}

// ContactInfo is included only once both fields are known.
type ContactInfo struct {
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
}

// payloadLocked builds the outbound snapshot. Callers hold the mutex.
func (t *Tracker) payloadLocked(now time.Time) Payload {
	p := &t.profile

	viability := ""
	if p.hasProjectedResults {
		if p.moneyLasting {
			viability = ViabilitySustainable
		} else {
			viability = ViabilityNeedsAdjustment
		}
	}

	payload := Payload{
		LeadID:    t.sessionID,
		Score:     p.score,
		Quality:   string(p.quality),
		Timestamp: now.UTC().Format(time.RFC3339),
		PageMetrics: PageMetrics{
			TimeOnPage:  p.timeOnPageSeconds,
			ScrollDepth: p.maxScrollPercent,
			Bounced:     p.quickBounce,
		},
		FinancialProfile: FinancialProfile{
			CurrentSavings:       p.currentSavings,
			MonthlySpending:      p.monthlySpending,
			SafeWithdrawalAmount: p.safeMonthlyAmount,
			RetirementViability:  viability,
		},
		Engagement: EngagementData{
			CalculatorInteractions:   p.calculateClicks,
			PDFDownloaded:            p.pdfRequested,
			PodcastEngagement:        p.podcastListenSeconds,
			ContactAttempted:         p.contactFormDone || p.contactMeClicks > 0 || p.findATimeClicks > 0,
			FindATimeClicks:          p.findATimeClicks,
			ContactMeClicks:          p.contactMeClicks,
			ExportClicks:             p.exportClicks,
			ListenNowClicks:          p.listenNowClicks,
			ReadReportClicks:         p.readReportClicks,
			TooltipInteractions:      p.tooltipInteractions,
			EducationalContentClicks: p.educationalClicks,
			InputChanges:             p.inputChangesBeforeCalculate,
		},
	}
	if p.hasContactInfo() {
		payload.ContactInfo = &ContactInfo{FirstName: p.firstName, Email: p.email}
	}
	return payload
}
