// Package matchstatus maps the two status vocabularies of the scheme API onto
// one closed set of lifecycle states.
//
// The period detail endpoint reports matchStatus as a small numeric code
// (0, 1, 2, 3, -1). The match-list feed reports matchPhaseTc codes 0..17 and
// sometimes a text status such as "Payout" or "Selling". Reconcile bridges
// both, preferring matchPhaseTc.
package matchstatus

import (
	"strconv"
	"strings"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/logger"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/metrics"
)

type State string

const (
	NotStarted State = "not_started"
	FirstHalf  State = "first_half"
	HalfTime   State = "half_time"
	SecondHalf State = "second_half"
	Live       State = "live"
	Finished   State = "finished"
	Cancelled  State = "cancelled"
)

var displays = map[State]string{
	NotStarted: "未开始",
	FirstHalf:  "上半场",
	HalfTime:   "中场休息",
	SecondHalf: "下半场",
	Live:       "进行中",
	Finished:   "已结束",
	Cancelled:  "已取消",
}

// Classification is the reconciled lifecycle state of one match
type Classification struct {
	State   State  `json:"state"`
	Display string `json:"display"`
	IsFinal bool   `json:"is_final"`
}

// IsLive reports whether the match is in play, including the break
func (c Classification) IsLive() bool {
	switch c.State {
	case FirstHalf, HalfTime, SecondHalf, Live:
		return true
	default:
		return false
	}
}

func classification(s State) Classification {
	return Classification{
		State:   s,
		Display: displays[s],
		IsFinal: s == Finished,
	}
}

var log = logger.New("match-status")

// SetLogger replaces the package logger
func SetLogger(l *logger.Logger) {
	if l != nil {
		log = l
	}
}

var statusCodes = map[int]State{
	0:  NotStarted,
	1:  FirstHalf,
	2:  HalfTime,
	3:  SecondHalf,
	-1: Finished,
}

var statusTexts = map[string]State{
	"payout":    Finished,
	"live":      Live,
	"upcoming":  NotStarted,
	"scheduled": NotStarted,
	"selling":   NotStarted,
	"define":    NotStarted,
	"cancelled": Cancelled,
	"canceled":  Cancelled,
	"void":      Cancelled,
}

// Classify maps a numeric matchStatus code. Unknown codes are logged and
// treated as not started.
func Classify(raw string) Classification {
	if s, ok := statusCode(raw); ok {
		return classification(s)
	}
	unknown("match_status", raw)
	return classification(NotStarted)
}

// ClassifyFeed maps the match-list vocabulary: matchPhaseTc first, then the
// text status. Unknown values are logged and treated as upcoming.
func ClassifyFeed(phaseTc, statusText string) Classification {
	if s, ok := phaseCode(phaseTc); ok {
		return classification(s)
	}
	if s, ok := statusTexts[normalize(statusText)]; ok {
		return classification(s)
	}
	unknown("match_phase_tc", phaseTc+"|"+statusText)
	return classification(NotStarted)
}

// Reconcile picks one classification when both vocabularies may be present.
// Order: recognised matchPhaseTc, matchStatus text, matchStatus numeric code,
// then not started.
func Reconcile(phaseTc, matchStatus string) Classification {
	if s, ok := phaseCode(phaseTc); ok {
		return classification(s)
	}
	if s, ok := statusTexts[normalize(matchStatus)]; ok {
		return classification(s)
	}
	if s, ok := statusCode(matchStatus); ok {
		return classification(s)
	}
	unknown("reconciled", phaseTc+"|"+matchStatus)
	return classification(NotStarted)
}

func phaseCode(raw string) (State, bool) {
	n, ok := integer(raw)
	if !ok {
		return "", false
	}
	switch {
	case n >= 1 && n <= 13:
		return Live, true
	case n == 14 || n == 15 || n == 17:
		return Finished, true
	case n == 16 || n == 0:
		return NotStarted, true
	default:
		return "", false
	}
}

func statusCode(raw string) (State, bool) {
	n, ok := integer(raw)
	if !ok {
		return "", false
	}
	s, ok := statusCodes[n]
	return s, ok
}

func integer(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func unknown(vocabulary, raw string) {
	metrics.UnknownStatusTotal.WithLabelValues(vocabulary).Inc()
	log.Warn().
		Str("action", "unknown_match_status").
		Str("vocabulary", vocabulary).
		Str("raw_status", raw).
		Msg("Unrecognised match status, defaulting to not started")
}
