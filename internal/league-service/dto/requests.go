package dto

// PlaceBetRequest é o corpo de POST /v1/bets.
// user_id vem do colaborador de identidade (a API confia no valor).
type PlaceBetRequest struct {
	UserID        string `json:"user_id"`
	MatchID       int64  `json:"match_id"`
	PredictedHome int    `json:"predicted_home"`
	PredictedAway int    `json:"predicted_away"`
	UseWildcard   bool   `json:"use_wildcard"`
}
