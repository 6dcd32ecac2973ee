package settlement

import (
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/models"
)

// Verdict is the red/black outcome of a scheme period
type Verdict string

const (
	VerdictRed     Verdict = "red"
	VerdictBlack   Verdict = "black"
	VerdictVoid    Verdict = "void"
	VerdictPending Verdict = "pending"
)

// Display returns the colloquial title label
func (v Verdict) Display() string {
	switch v {
	case VerdictRed:
		return "红单"
	case VerdictBlack:
		return "黑单"
	case VerdictVoid:
		return "已取消"
	default:
		return "待开奖"
	}
}

// PeriodVerdict is the authoritative verdict, taken from the period's own status
func PeriodVerdict(period *models.SchemePeriod) Verdict {
	if period == nil {
		return VerdictPending
	}
	switch period.Status {
	case models.PeriodWon:
		return VerdictRed
	case models.PeriodLost:
		return VerdictBlack
	case models.PeriodCancelled:
		return VerdictVoid
	default:
		return VerdictPending
	}
}

// DerivedVerdict is the client-side estimate from grouped matches. Only final
// matches count: any final black match makes it black, every match final and
// red makes it red, anything else is pending.
func DerivedVerdict(matches []GroupedMatch) Verdict {
	if len(matches) == 0 {
		return VerdictPending
	}

	allRed := true
	for _, m := range matches {
		if !m.Status.IsFinal {
			allRed = false
			continue
		}
		if !m.IsRed {
			return VerdictBlack
		}
	}
	if allRed {
		return VerdictRed
	}
	return VerdictPending
}

// Streak is the most recent run of identical settled verdicts
type Streak struct {
	Verdict Verdict `json:"verdict"`
	Length  int     `json:"length"`
}

// CurrentStreak walks verdicts from newest to oldest. verdicts are ordered
// oldest first. Void and pending periods neither extend nor break a run.
func CurrentStreak(verdicts []Verdict) Streak {
	var streak Streak
	for i := len(verdicts) - 1; i >= 0; i-- {
		v := verdicts[i]
		if v != VerdictRed && v != VerdictBlack {
			continue
		}
		if streak.Length == 0 {
			streak.Verdict = v
		} else if v != streak.Verdict {
			break
		}
		streak.Length++
	}
	if streak.Length == 0 {
		streak.Verdict = VerdictPending
	}
	return streak
}
