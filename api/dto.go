/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY FIELDS:
  All monetary values cross the wire as decimal strings ("1500.50"),
  never JSON numbers. The engine never loses precision; clients parse
  the strings with whatever decimal type they have.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/types.go: Domain types these mirror
*/
package api

import (
	"time"

	"github.com/warp/commission-engine/auth"
	"github.com/warp/commission-engine/ledger"
	"github.com/warp/commission-engine/settlement"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// EntryDTO represents a commission entry in API responses.
type EntryDTO struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	Amount       string `json:"amount"`
	Note         string `json:"note,omitempty"`
	CreatedAt    string `json:"created_at"`
	Period       string `json:"period"`
	SplitOwner   string `json:"split_owner"`
	SplitPartner string `json:"split_partner"`
	Locked       bool   `json:"locked"`
}

// RecordEntryRequest is the request to record a commission entry.
type RecordEntryRequest struct {
	Amount string `json:"amount"`
	Note   string `json:"note,omitempty"`
	// Solo entries skip the split: everything goes to the owner side.
	Solo bool `json:"solo,omitempty"`
	// Confirm bypasses the pending-confirmation step for flagged or
	// near-boundary entries.
	Confirm bool `json:"confirm,omitempty"`
}

// RecordEntryResponse carries the created entry plus advisory flags, or
// a pending marker when confirmation is required first.
type RecordEntryResponse struct {
	Entry *EntryDTO `json:"entry,omitempty"`

	// Pending means nothing was recorded; call the confirm endpoint to
	// commit or the cancel endpoint to drop.
	Pending bool `json:"pending,omitempty"`

	Duplicate    bool   `json:"duplicate,omitempty"`
	Extreme      bool   `json:"extreme,omitempty"`
	ExtremeRatio string `json:"extreme_ratio,omitempty"`

	// NearBoundary is set when the entry arrived within the configured
	// window of local midnight; PeriodOptions lists the periods the
	// caller may confirm into.
	NearBoundary  bool     `json:"near_boundary,omitempty"`
	PeriodOptions []string `json:"period_options,omitempty"`
}

// ConfirmEntryRequest commits a pending entry, optionally overriding
// the period it lands in (near-boundary case).
type ConfirmEntryRequest struct {
	Period string `json:"period,omitempty"`
}

// UndoResponse reports the entry removed by an undo.
type UndoResponse struct {
	Entry EntryDTO `json:"entry"`
}

// RecordPayoutRequest records a partner payout.
type RecordPayoutRequest struct {
	Amount string `json:"amount"`
	// Period is "YYYY-MM"; empty means the current period.
	Period string `json:"period,omitempty"`
}

// PayoutDTO represents a payout in API responses.
type PayoutDTO struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Amount string `json:"amount"`
	PaidAt string `json:"paid_at"`
	Period string `json:"period"`
}

// StatementDTO represents a closed-period statement.
type StatementDTO struct {
	StatementID     string `json:"statement_id"`
	UserID          int64  `json:"user_id"`
	Period          string `json:"period"`
	TotalCommission string `json:"total_commission"`
	SplitOwner      string `json:"split_owner"`
	SplitPartner    string `json:"split_partner"`
	Closed          bool   `json:"closed"`
	GeneratedAt     string `json:"generated_at"`
}

// ClosePeriodResponse confirms a period close.
type ClosePeriodResponse struct {
	StatementID string `json:"statement_id"`
	Period      string `json:"period"`
}

// MonthlyStatsDTO is the settlement report for one period.
type MonthlyStatsDTO struct {
	Period          string            `json:"period"`
	TotalCommission string            `json:"total_commission"`
	SplitOwner      string            `json:"split_owner"`
	SplitPartner    string            `json:"split_partner"`
	EntriesCount    int               `json:"entries_count"`
	Largest         *EntryDTO         `json:"largest,omitempty"`
	Smallest        *EntryDTO         `json:"smallest,omitempty"`
	DailyTotals     map[string]string `json:"daily_totals"`
	WeeklyTotals    map[string]string `json:"weekly_totals"`
	DaysActive      int               `json:"days_active"`
	DaysInactive    int               `json:"days_inactive"`
	AveragePerEntry string            `json:"average_per_entry"`
	TotalPayouts    string            `json:"total_payouts"`
	OwedToPartner   string            `json:"owed_to_partner"`
}

// MonthTotalDTO is one month's line in a yearly breakdown.
type MonthTotalDTO struct {
	Period       string `json:"period"`
	Total        string `json:"total"`
	SplitOwner   string `json:"split_owner"`
	SplitPartner string `json:"split_partner"`
	StatementID  string `json:"statement_id"`
}

// WeekTotalDTO is one ranked week in a yearly report.
type WeekTotalDTO struct {
	Week  string `json:"week"`
	Total string `json:"total"`
}

// YearlyStatsDTO is the settlement report for one year.
type YearlyStatsDTO struct {
	Year            int             `json:"year"`
	TotalCommission string          `json:"total_commission"`
	SplitOwner      string          `json:"split_owner"`
	SplitPartner    string          `json:"split_partner"`
	MonthsActive    int             `json:"months_active"`
	Breakdown       []MonthTotalDTO `json:"breakdown"`
	LargestMonth    *StatementDTO   `json:"largest_month,omitempty"`
	SmallestMonth   *StatementDTO   `json:"smallest_month,omitempty"`
	AveragePerMonth string          `json:"average_per_month"`
	TotalEntries    int             `json:"total_entries"`
	TopWeeks        []WeekTotalDTO  `json:"top_weeks,omitempty"`
}

// AuditRecordDTO is one audit trail line.
type AuditRecordDTO struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	ActorID   int64  `json:"actor_id"`
	TargetID  int64  `json:"target_id,omitempty"`
	Before    string `json:"before,omitempty"`
	After     string `json:"after,omitempty"`
	Timestamp string `json:"timestamp"`
}

// RequestAccessRequest queues an authorization request.
type RequestAccessRequest struct {
	Name string `json:"name,omitempty"`
}

// PendingAuthDTO is one queued access request.
type PendingAuthDTO struct {
	UserID      int64  `json:"user_id"`
	Name        string `json:"name,omitempty"`
	RequestedAt string `json:"requested_at"`
}

// AuthorizedUserDTO is one registry entry.
type AuthorizedUserDTO struct {
	UserID       int64  `json:"user_id"`
	AuthorizedAt string `json:"authorized_at"`
	AuthorizedBy int64  `json:"authorized_by"`
}

// ResetRequest guards the destructive reset endpoint.
type ResetRequest struct {
	// Confirm must be exactly "DELETE ALL DATA".
	Confirm string `json:"confirm"`
}

// =============================================================================
// DOMAIN -> DTO CONVERSION
// =============================================================================

func toEntryDTO(e *ledger.Entry) *EntryDTO {
	if e == nil {
		return nil
	}
	return &EntryDTO{
		ID:           e.ID,
		UserID:       int64(e.UserID),
		Amount:       e.Amount.String(),
		Note:         e.Note,
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		Period:       e.Period.Key(),
		SplitOwner:   e.SplitOwner.String(),
		SplitPartner: e.SplitPartner.String(),
		Locked:       e.Locked,
	}
}

func toPayoutDTO(p *ledger.Payout) PayoutDTO {
	return PayoutDTO{
		ID:     p.ID,
		UserID: int64(p.UserID),
		Amount: p.Amount.String(),
		PaidAt: p.PaidAt.Format(time.RFC3339),
		Period: p.Period.Key(),
	}
}

func toStatementDTO(st *ledger.Statement) *StatementDTO {
	if st == nil {
		return nil
	}
	return &StatementDTO{
		StatementID:     st.StatementID,
		UserID:          int64(st.UserID),
		Period:          st.Period.Key(),
		TotalCommission: st.TotalCommission.String(),
		SplitOwner:      st.SplitOwner.String(),
		SplitPartner:    st.SplitPartner.String(),
		Closed:          st.Closed,
		GeneratedAt:     st.GeneratedAt.Format(time.RFC3339),
	}
}

func toMonthlyStatsDTO(p ledger.Period, s settlement.MonthlyStats) MonthlyStatsDTO {
	daily := make(map[string]string, len(s.DailyTotals))
	for k, v := range s.DailyTotals {
		daily[k] = v.String()
	}
	weekly := make(map[string]string, len(s.WeeklyTotals))
	for k, v := range s.WeeklyTotals {
		weekly[k] = v.String()
	}
	return MonthlyStatsDTO{
		Period:          p.Key(),
		TotalCommission: s.TotalCommission.String(),
		SplitOwner:      s.SplitOwner.String(),
		SplitPartner:    s.SplitPartner.String(),
		EntriesCount:    s.EntriesCount,
		Largest:         toEntryDTO(s.Largest),
		Smallest:        toEntryDTO(s.Smallest),
		DailyTotals:     daily,
		WeeklyTotals:    weekly,
		DaysActive:      s.DaysActive,
		DaysInactive:    s.DaysInactive,
		AveragePerEntry: s.AveragePerEntry.String(),
		TotalPayouts:    s.TotalPayouts.String(),
		OwedToPartner:   s.OwedToPartner.String(),
	}
}

func toYearlyStatsDTO(year int, s settlement.YearlyStats) YearlyStatsDTO {
	breakdown := make([]MonthTotalDTO, 0, len(s.Breakdown))
	for _, m := range s.Breakdown {
		breakdown = append(breakdown, MonthTotalDTO{
			Period:       m.Period.Key(),
			Total:        m.Total.String(),
			SplitOwner:   m.SplitOwner.String(),
			SplitPartner: m.SplitPartner.String(),
			StatementID:  m.StatementID,
		})
	}
	weeks := make([]WeekTotalDTO, 0, len(s.TopWeeks))
	for _, w := range s.TopWeeks {
		weeks = append(weeks, WeekTotalDTO{Week: w.Week, Total: w.Total.String()})
	}
	return YearlyStatsDTO{
		Year:            year,
		TotalCommission: s.TotalCommission.String(),
		SplitOwner:      s.SplitOwner.String(),
		SplitPartner:    s.SplitPartner.String(),
		MonthsActive:    s.MonthsActive,
		Breakdown:       breakdown,
		LargestMonth:    toStatementDTO(s.LargestMonth),
		SmallestMonth:   toStatementDTO(s.SmallestMonth),
		AveragePerMonth: s.AveragePerMonth.String(),
		TotalEntries:    s.TotalEntries,
		TopWeeks:        weeks,
	}
}

func toAuditDTO(a ledger.AuditRecord) AuditRecordDTO {
	return AuditRecordDTO{
		ID:        a.ID,
		Action:    string(a.Action),
		ActorID:   int64(a.ActorID),
		TargetID:  a.TargetID,
		Before:    a.Before,
		After:     a.After,
		Timestamp: a.Timestamp.Format(time.RFC3339),
	}
}

func toPendingAuthDTO(p auth.PendingRequest) PendingAuthDTO {
	return PendingAuthDTO{
		UserID:      int64(p.UserID),
		Name:        p.Name,
		RequestedAt: p.RequestedAt.Format(time.RFC3339),
	}
}

func toAuthorizedUserDTO(u auth.AuthorizedUser) AuthorizedUserDTO {
	return AuthorizedUserDTO{
		UserID:       int64(u.UserID),
		AuthorizedAt: u.AuthorizedAt.Format(time.RFC3339),
		AuthorizedBy: int64(u.AuthorizedBy),
	}
}
