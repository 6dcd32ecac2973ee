package settlement

import (
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/matchstatus"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/models"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/utils"
)

// PoolOption is the set of legs on one match sharing (poolCode, goalLine).
// Selections keep server order and duplicates.
type PoolOption struct {
	PoolCode   string          `json:"pool_code"`
	GoalLine   string          `json:"goal_line"`
	Selections []string        `json:"selections"`
	Legs       []models.BetLeg `json:"legs"`
	Result     Selection       `json:"result,omitempty"`
	Hit        bool            `json:"hit"`
}

// GroupedMatch is one match with its legs grouped into pool options
type GroupedMatch struct {
	Match      models.Match               `json:"match"`
	Slug       string                     `json:"slug"`
	LeagueSlug string                     `json:"league_slug"`
	Status     matchstatus.Classification `json:"status"`
	Options    []PoolOption               `json:"options"`
	IsRed      bool                       `json:"is_red"`
}

type matchKey struct {
	id   int64
	name string
}

type optionKey struct {
	pool string
	line string
}

// Aggregate groups raw detail rows with the silent evaluator
func Aggregate(rows []models.MatchDetailRow) []GroupedMatch {
	return defaultEvaluator.Aggregate(rows)
}

// Aggregate groups rows by (matchId, matchName) in first-seen order, keeping
// the first row's match metadata, then groups each match's legs by
// (poolCode, goalLine). A match is red when any leg's selection equals the
// evaluated result of its pool.
func (e *Evaluator) Aggregate(rows []models.MatchDetailRow) []GroupedMatch {
	matches := make([]GroupedMatch, 0)
	matchIndex := make(map[matchKey]int)
	optionIndex := make([]map[optionKey]int, 0)

	for _, row := range rows {
		m := row.ToMatch()
		mk := matchKey{id: m.ID, name: m.Name}

		mi, ok := matchIndex[mk]
		if !ok {
			mi = len(matches)
			matchIndex[mk] = mi
			matches = append(matches, GroupedMatch{
				Match:      m,
				Slug:       utils.GenerateMatchSlug(m.HomeTeam, m.AwayTeam, m.ID),
				LeagueSlug: utils.GenerateLeagueSlug(m.LeagueName),
				Status:     matchstatus.Reconcile(m.MatchPhaseTc, m.MatchStatus),
				Options:    []PoolOption{},
			})
			optionIndex = append(optionIndex, make(map[optionKey]int))
			e.warnMissingScore(&matches[mi])
		}

		leg := row.ToLeg()
		key := optionKey{pool: leg.PoolCode, line: leg.GoalLine}
		gm := &matches[mi]

		oi, ok := optionIndex[mi][key]
		if !ok {
			oi = len(gm.Options)
			optionIndex[mi][key] = oi
			option := PoolOption{PoolCode: leg.PoolCode, GoalLine: leg.GoalLine}
			if result, evaluated := e.Evaluate(gm.Match.FullScore, leg.PoolCode, leg.GoalLine); evaluated {
				option.Result = result
			}
			gm.Options = append(gm.Options, option)
		}

		option := &gm.Options[oi]
		option.Selections = append(option.Selections, leg.Selection)
		option.Legs = append(option.Legs, leg)
		if option.Result != "" && Selection(leg.Selection) == option.Result {
			option.Hit = true
			gm.IsRed = true
		}
	}

	return matches
}

// warnMissingScore flags finished matches that cannot be settled
func (e *Evaluator) warnMissingScore(gm *GroupedMatch) {
	if e == nil || e.logger == nil || !gm.Status.IsFinal {
		return
	}
	if _, ok := ParseScore(gm.Match.FullScore); ok {
		return
	}
	e.logger.WithMatch(gm.Match.ID, gm.Match.Name).Warn().
		Str("action", "final_without_score").
		Str("full_score", gm.Match.FullScore).
		Msg("Finished match has no parseable score, legs stay unsettled")
}
