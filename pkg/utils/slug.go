package utils

import (
	"strconv"

	"github.com/gosimple/slug"
)

// NormalizeSlug creates a URL-friendly slug using the gosimple/slug library.
// CJK team names are transliterated.
func NormalizeSlug(text string) string {
	if text == "" {
		return ""
	}
	return slug.Make(text)
}

// GenerateMatchSlug creates a slug for a grouped match from its teams and
// identifier. The identifier keeps slugs unique across rematches.
func GenerateMatchSlug(homeTeam, awayTeam string, matchID int64) string {
	if homeTeam == "" {
		homeTeam = "home"
	}
	if awayTeam == "" {
		awayTeam = "away"
	}
	return NormalizeSlug(homeTeam + " vs " + awayTeam + " " + strconv.FormatInt(matchID, 10))
}

// GenerateLeagueSlug creates a slug for a league name
func GenerateLeagueSlug(leagueName string) string {
	if leagueName == "" {
		return "league"
	}
	return NormalizeSlug(leagueName)
}
