package dto

import "time"

type BetResponse struct {
	BetID         string    `json:"bet_id"`
	UserID        string    `json:"user_id"`
	MatchID       int64     `json:"match_id"`
	PredictedHome int       `json:"predicted_home"`
	PredictedAway int       `json:"predicted_away"`
	UseWildcard   bool      `json:"use_wildcard"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type UserBetsResponse struct {
	Bets               []BetResponse `json:"bets"`
	WildcardsRemaining int           `json:"wildcards_remaining"`
}

type MatchResponse struct {
	MatchID   int64     `json:"match_id"`
	LeagueID  string    `json:"league_id"`
	Season    string    `json:"season"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	HomeGoals *int      `json:"home_goals"`
	AwayGoals *int      `json:"away_goals"`
	Status    string    `json:"status"`
	Kickoff   time.Time `json:"kickoff"`
	Bettable  bool      `json:"bettable"`
}

// MatchesResponse agrupa as partidas visíveis por fase, cada grupo em
// ordem de início (ao vivo primeiro na página).
type MatchesResponse struct {
	Ongoing   []MatchResponse `json:"ongoing"`
	Scheduled []MatchResponse `json:"scheduled"`
	Finished  []MatchResponse `json:"finished"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
