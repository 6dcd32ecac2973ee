package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Pool codes
const (
	PoolHAD  = "HAD"  // straight win/draw/loss
	PoolHHAD = "HHAD" // goal-line handicap win/draw/loss
)

// Scheme period statuses
const (
	PeriodPending   = "pending"
	PeriodWon       = "won"
	PeriodLost      = "lost"
	PeriodCancelled = "cancelled"
)

// Bet types
const (
	BetTypeNormal = "normal"
	BetTypeDouble = "double"
)

// SchemeSummaryData is the wire shape of /app/dashboard/scheme-summary
type SchemeSummaryData struct {
	SystemReserveAmount            FlexString `json:"systemReserveAmount"`
	CumulativeLostAmountSinceWin   FlexString `json:"cumulativeLostAmountSinceWin"`
	CurrentPeriodFollowAmount      FlexString `json:"currentPeriodFollowAmount"`
	CumulativeLostBetCountSinceWin FlexString `json:"cumulativeLostBetCountSinceWin"`
	CompensationStatus             FlexString `json:"compensationStatus"`
	BetAmount                      FlexString `json:"betAmount"`
	CommissionRate                 FlexString `json:"commissionRate"`
	BetType                        FlexString `json:"betType"`
}

// SchemeSummary is the user's normalized current-period participation state
type SchemeSummary struct {
	SystemReserveAmount            decimal.Decimal `json:"system_reserve_amount"`
	CumulativeLostAmountSinceWin   decimal.Decimal `json:"cumulative_lost_amount_since_win"`
	CurrentPeriodFollowAmount      decimal.Decimal `json:"current_period_follow_amount"`
	CumulativeLostBetCountSinceWin int             `json:"cumulative_lost_bet_count_since_win"`
	CompensationStatus             bool            `json:"compensation_status"`
	BetAmount                      decimal.Decimal `json:"bet_amount"`
	CommissionRate                 decimal.Decimal `json:"commission_rate"`
	BetType                        string          `json:"bet_type"`
}

// DefaultSummary is the all-zero summary substituted when the fetch fails
func DefaultSummary() SchemeSummary {
	return SchemeSummary{
		SystemReserveAmount:          decimal.Zero,
		CumulativeLostAmountSinceWin: decimal.Zero,
		CurrentPeriodFollowAmount:    decimal.Zero,
		BetAmount:                    decimal.Zero,
		CommissionRate:               decimal.Zero,
		BetType:                      BetTypeNormal,
	}
}

// HasFollowed reports whether the user already staked on the current period
func (s SchemeSummary) HasFollowed() bool {
	return s.CurrentPeriodFollowAmount.IsPositive()
}

// CompensationEligible reports whether the user may claim compensation for a losing streak
func (s SchemeSummary) CompensationEligible() bool {
	return s.CompensationStatus && s.SystemReserveAmount.IsPositive()
}

// Normalize converts the wire shape into the typed summary
func (d SchemeSummaryData) Normalize() SchemeSummary {
	summary := SchemeSummary{
		SystemReserveAmount:            d.SystemReserveAmount.Decimal(),
		CumulativeLostAmountSinceWin:   d.CumulativeLostAmountSinceWin.Decimal(),
		CurrentPeriodFollowAmount:      d.CurrentPeriodFollowAmount.Decimal(),
		CumulativeLostBetCountSinceWin: int(d.CumulativeLostBetCountSinceWin.Decimal().IntPart()),
		CompensationStatus:             parseFlag(d.CompensationStatus.String()),
		BetAmount:                      d.BetAmount.Decimal(),
		CommissionRate:                 d.CommissionRate.Decimal(),
		BetType:                        strings.ToLower(strings.TrimSpace(d.BetType.String())),
	}
	if summary.BetType != BetTypeDouble {
		summary.BetType = BetTypeNormal
	}
	return summary
}

// OddsTriple carries the quoted home/draw/away odds of one pool
type OddsTriple struct {
	HomeOdds FlexString `json:"homeOdds"`
	DrawOdds FlexString `json:"drawOdds"`
	AwayOdds FlexString `json:"awayOdds"`
}

// BizMatch is the match block nested in every detail row
type BizMatch struct {
	MatchName     string      `json:"matchName"`
	LeagueName    string      `json:"leagueName"`
	MatchNumStr   string      `json:"matchNumStr"`
	MatchDatetime FlexString  `json:"matchDatetime"`
	HomeTeamName  string      `json:"homeTeamName"`
	AwayTeamName  string      `json:"awayTeamName"`
	FullScore     FlexString  `json:"fullScore"`
	MatchStatus   FlexString  `json:"matchStatus"`
	MatchMinute   FlexString  `json:"matchMinute"`
	MatchPhaseTc  FlexString  `json:"matchPhaseTc"`
	HAD           *OddsTriple `json:"had"`
	HHAD          *OddsTriple `json:"hhad"`
}

// MatchDetailRow is one raw, ungrouped bet leg row of a scheme period
type MatchDetailRow struct {
	DetailID   FlexInt    `json:"detailId"`
	MatchID    FlexInt    `json:"matchId"`
	PoolCode   FlexString `json:"poolCode"`
	Selection  FlexString `json:"selection"`
	Odds       FlexString `json:"odds"`
	GoalLine   FlexString `json:"goalLine"`
	BizMatches *BizMatch  `json:"bizMatchesVo"`
}

// Match returns the row's match block, empty when the server omitted it
func (r MatchDetailRow) Match() BizMatch {
	if r.BizMatches == nil {
		return BizMatch{}
	}
	return *r.BizMatches
}

// SchemePeriodData is the wire shape of /app/schemePeriods/findActiveOrRecentPeriod
type SchemePeriodData struct {
	PeriodID     FlexInt          `json:"periodId"`
	Status       FlexString       `json:"status"`
	Name         string           `json:"name"`
	CreateTime   TimeValue        `json:"createTime"`
	ResultTime   TimeValue        `json:"resultTime"`
	DeadlineTime TimeValue        `json:"deadlineTime"`
	Details      []MatchDetailRow `json:"details"`
}

// SchemePeriod is one daily betting round as seen by the client
type SchemePeriod struct {
	PeriodID     int64            `json:"period_id"`
	Status       string           `json:"status"`
	Name         string           `json:"name"`
	CreateTime   TimeValue        `json:"create_time"`
	ResultTime   *TimeValue       `json:"result_time,omitempty"`
	DeadlineTime TimeValue        `json:"deadline_time"`
	Details      []MatchDetailRow `json:"details"`
}

// IsPending reports whether the period still accepts follows
func (p SchemePeriod) IsPending() bool {
	return p.Status == PeriodPending
}

// IsSettled reports whether the period reached a terminal status
func (p SchemePeriod) IsSettled() bool {
	switch p.Status {
	case PeriodWon, PeriodLost, PeriodCancelled:
		return true
	default:
		return false
	}
}

// Normalize converts the wire shape into the typed period
func (d SchemePeriodData) Normalize() SchemePeriod {
	period := SchemePeriod{
		PeriodID:     int64(d.PeriodID),
		Status:       strings.ToLower(strings.TrimSpace(d.Status.String())),
		Name:         d.Name,
		CreateTime:   d.CreateTime,
		DeadlineTime: d.DeadlineTime,
		Details:      d.Details,
	}
	if !d.ResultTime.IsZero() {
		rt := d.ResultTime
		period.ResultTime = &rt
	}
	if period.Details == nil {
		period.Details = []MatchDetailRow{}
	}
	return period
}

func parseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "eligible", "y":
		return true
	default:
		return false
	}
}

// Match is one sporting event as carried by a scheme period
type Match struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	LeagueName    string      `json:"league_name"`
	HomeTeam      string      `json:"home_team"`
	AwayTeam      string      `json:"away_team"`
	MatchNumStr   string      `json:"match_num"`
	MatchDatetime string      `json:"match_datetime"`
	MatchPhaseTc  string      `json:"match_phase_tc"`
	MatchStatus   string      `json:"match_status"`
	FullScore     string      `json:"full_score"`
	MatchMinute   string      `json:"match_minute,omitempty"`
	HAD           *OddsTriple `json:"had,omitempty"`
	HHAD          *OddsTriple `json:"hhad,omitempty"`
}

// BetLeg is one wagered outcome on one match
type BetLeg struct {
	DetailID  int64  `json:"detail_id"`
	PoolCode  string `json:"pool_code"`
	Selection string `json:"selection"`
	GoalLine  string `json:"goal_line"`
	Odds      string `json:"odds"`
}

// ToMatch flattens the row's match block
func (r MatchDetailRow) ToMatch() Match {
	m := r.Match()
	return Match{
		ID:            int64(r.MatchID),
		Name:          m.MatchName,
		LeagueName:    m.LeagueName,
		HomeTeam:      m.HomeTeamName,
		AwayTeam:      m.AwayTeamName,
		MatchNumStr:   m.MatchNumStr,
		MatchDatetime: m.MatchDatetime.String(),
		MatchPhaseTc:  strings.TrimSpace(m.MatchPhaseTc.String()),
		MatchStatus:   strings.TrimSpace(m.MatchStatus.String()),
		FullScore:     strings.TrimSpace(m.FullScore.String()),
		MatchMinute:   m.MatchMinute.String(),
		HAD:           m.HAD,
		HHAD:          m.HHAD,
	}
}

// ToLeg extracts the wagered outcome of the row
func (r MatchDetailRow) ToLeg() BetLeg {
	return BetLeg{
		DetailID:  int64(r.DetailID),
		PoolCode:  strings.ToUpper(strings.TrimSpace(r.PoolCode.String())),
		Selection: strings.ToUpper(strings.TrimSpace(r.Selection.String())),
		GoalLine:  strings.TrimSpace(r.GoalLine.String()),
		Odds:      r.Odds.String(),
	}
}
