// Package settlement evaluates bet legs against final scores and derives the
// red/black verdicts of a scheme period.
package settlement

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/logger"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/metrics"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/models"
)

// Selection is a win/draw/loss outcome from the home side's view
type Selection string

const (
	Home Selection = "H"
	Draw Selection = "D"
	Away Selection = "A"
)

var scorePattern = regexp.MustCompile(`^(\d+):(\d+)$`)

// Score is a parsed full-time score
type Score struct {
	Home int
	Away int
}

// ParseScore parses "H:A". Empty, "-", padded and anything else malformed is
// false; trimming happens at the wire boundary.
func ParseScore(fullScore string) (Score, bool) {
	m := scorePattern.FindStringSubmatch(fullScore)
	if m == nil {
		return Score{}, false
	}
	home, err := strconv.Atoi(m[1])
	if err != nil {
		return Score{}, false
	}
	away, err := strconv.Atoi(m[2])
	if err != nil {
		return Score{}, false
	}
	return Score{Home: home, Away: away}, true
}

// Evaluator computes winning selections. The zero value is usable and silent.
type Evaluator struct {
	logger *logger.Logger
}

func NewEvaluator(l *logger.Logger) *Evaluator {
	return &Evaluator{logger: l}
}

// Evaluate returns the winning selection for a leg of poolCode on fullScore.
// HHAD adds goalLine to the home score before comparing. It returns false
// when the match has no parseable result yet.
func (e *Evaluator) Evaluate(fullScore, poolCode, goalLine string) (Selection, bool) {
	score, ok := ParseScore(fullScore)
	if !ok {
		metrics.EvaluationsTotal.WithLabelValues("none").Inc()
		return "", false
	}

	home := float64(score.Home)
	switch strings.ToUpper(strings.TrimSpace(poolCode)) {
	case models.PoolHAD:
	case models.PoolHHAD:
		home += e.goalLine(goalLine)
	default:
		e.debug(poolCode)
	}

	away := float64(score.Away)
	var result Selection
	switch {
	case home > away:
		result = Home
	case home < away:
		result = Away
	default:
		result = Draw
	}

	metrics.EvaluationsTotal.WithLabelValues(string(result)).Inc()
	return result, true
}

func (e *Evaluator) goalLine(raw string) float64 {
	line, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		if e != nil && e.logger != nil {
			e.logger.Warn().
				Str("action", "malformed_goal_line").
				Str("goal_line", raw).
				Msg("Goal line is not numeric, comparing unadjusted score")
		}
		return 0
	}
	return line
}

func (e *Evaluator) debug(poolCode string) {
	if e != nil && e.logger != nil {
		e.logger.Debug().
			Str("action", "unknown_pool_code").
			Str("pool_code", poolCode).
			Msg("Unknown pool code, evaluating without handicap")
	}
}

var defaultEvaluator = &Evaluator{}

// Evaluate is the package-level pure evaluation without logging
func Evaluate(fullScore, poolCode, goalLine string) (Selection, bool) {
	return defaultEvaluator.Evaluate(fullScore, poolCode, goalLine)
}
