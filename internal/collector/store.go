package collector

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/jasonmangold/nest-egg-explorer-tool/internal/tracker"
)

// Store persists accepted lead snapshots, keyed by lead_id so repeated
// submissions from the same session update in place.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the leads database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open leads store %s: %w", path, err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS leads (
	lead_id                TEXT PRIMARY KEY,
	timestamp              TEXT NOT NULL,
	score                  INTEGER NOT NULL,
	quality                TEXT NOT NULL,

	time_on_page           REAL NOT NULL DEFAULT 0,
	scroll_depth           INTEGER NOT NULL DEFAULT 0,
	bounced                INTEGER NOT NULL DEFAULT 0,

	current_savings        REAL NOT NULL DEFAULT 0,
	monthly_spending       REAL NOT NULL DEFAULT 0,
	safe_withdrawal_amount REAL NOT NULL DEFAULT 0,
	retirement_viability   TEXT NOT NULL DEFAULT '',

	calculator_interactions    INTEGER NOT NULL DEFAULT 0,
	pdf_downloaded             INTEGER NOT NULL DEFAULT 0,
	podcast_engagement         REAL NOT NULL DEFAULT 0,
	contact_attempted          INTEGER NOT NULL DEFAULT 0,
	find_a_time_clicks         INTEGER NOT NULL DEFAULT 0,
	contact_me_clicks          INTEGER NOT NULL DEFAULT 0,
	export_results_clicks      INTEGER NOT NULL DEFAULT 0,
	listen_now_clicks          INTEGER NOT NULL DEFAULT 0,
	read_report_clicks         INTEGER NOT NULL DEFAULT 0,
	tooltip_interactions       INTEGER NOT NULL DEFAULT 0,
	educational_content_clicks INTEGER NOT NULL DEFAULT 0,
	input_changes              INTEGER NOT NULL DEFAULT 0,

	first_name TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT ''
);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate leads store: %w", err)
	}
	return &Store{db: db}, nil
}

// Upsert inserts or updates the row for the payload's lead_id.
func (s *Store) Upsert(p tracker.Payload) error {
	firstName, email := "", ""
	if p.ContactInfo != nil {
		firstName = p.ContactInfo.FirstName
		email = p.ContactInfo.Email
	}

	const stmt = `
INSERT INTO leads (
	lead_id, timestamp, score, quality,
	time_on_page, scroll_depth, bounced,
	current_savings, monthly_spending, safe_withdrawal_amount, retirement_viability,
	calculator_interactions, pdf_downloaded, podcast_engagement, contact_attempted,
	find_a_time_clicks, contact_me_clicks, export_results_clicks, listen_now_clicks,
	read_report_clicks, tooltip_interactions, educational_content_clicks, input_changes,
	first_name, email
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(lead_id) DO UPDATE SET
	timestamp = excluded.timestamp,
	score = excluded.score,
	quality = excluded.quality,
	time_on_page = excluded.time_on_page,
	scroll_depth = excluded.scroll_depth,
	bounced = excluded.bounced,
	current_savings = excluded.current_savings,
	monthly_spending = excluded.monthly_spending,
	safe_withdrawal_amount = excluded.safe_withdrawal_amount,
	retirement_viability = excluded.retirement_viability,
	calculator_interactions = excluded.calculator_interactions,
	pdf_downloaded = excluded.pdf_downloaded,
	podcast_engagement = excluded.podcast_engagement,
	contact_attempted = excluded.contact_attempted,
	find_a_time_clicks = excluded.find_a_time_clicks,
	contact_me_clicks = excluded.contact_me_clicks,
	export_results_clicks = excluded.export_results_clicks,
	listen_now_clicks = excluded.listen_now_clicks,
	read_report_clicks = excluded.read_report_clicks,
	tooltip_interactions = excluded.tooltip_interactions,
	educational_content_clicks = excluded.educational_content_clicks,
	input_changes = excluded.input_changes,
	first_name = excluded.first_name,
	email = excluded.email`

	_, err := s.db.Exec(stmt,
		p.LeadID, p.Timestamp, p.Score, p.Quality,
		p.PageMetrics.TimeOnPage, p.PageMetrics.ScrollDepth, p.PageMetrics.Bounced,
		p.FinancialProfile.CurrentSavings, p.FinancialProfile.MonthlySpending,
		p.FinancialProfile.SafeWithdrawalAmount, p.FinancialProfile.RetirementViability,
		p.Engagement.CalculatorInteractions, p.Engagement.PDFDownloaded,
		p.Engagement.PodcastEngagement, p.Engagement.ContactAttempted,
		p.Engagement.FindATimeClicks, p.Engagement.ContactMeClicks,
		p.Engagement.ExportClicks, p.Engagement.ListenNowClicks,
		p.Engagement.ReadReportClicks, p.Engagement.TooltipInteractions,
		p.Engagement.EducationalContentClicks, p.Engagement.InputChanges,
		firstName, email,
	)
	if err != nil {
		return fmt.Errorf("upsert lead %s: %w", p.LeadID, err)
	}
	return nil
}

// Lead is one stored row in summary form.
type Lead struct {
	LeadID    string
	Timestamp string
	Score     int
	Quality   string
	FirstName string
	Email     string
}

// Lead returns the stored row for a lead_id.
func (s *Store) Lead(leadID string) (Lead, error) {
	var l Lead
	err := s.db.QueryRow(
		`SELECT lead_id, timestamp, score, quality, first_name, email FROM leads WHERE lead_id = ?`,
		leadID,
	).Scan(&l.LeadID, &l.Timestamp, &l.Score, &l.Quality, &l.FirstName, &l.Email)
	if err != nil {
		return Lead{}, fmt.Errorf("load lead %s: %w", leadID, err)
	}
	return l, nil
}

// Count returns the number of stored leads.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM leads`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return n, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
