package events

import "time"

// Evento publicado no tópico "match_updates" a cada mudança de estado de
// uma partida no provedor (status, placar ou horário).
// Goals ficam nulos enquanto o provedor não reporta placar.
type MatchUpdate struct {
	MatchID   int64      `json:"match_id"`
	LeagueID  string     `json:"league_id"`
	Season    string     `json:"season"`
	HomeTeam  string     `json:"home_team"`
	AwayTeam  string     `json:"away_team"`
	HomeGoals *int       `json:"home_goals"`
	AwayGoals *int       `json:"away_goals"`
	Status    string     `json:"status"` // código curto do provedor: "NS", "1H", "FT"...
	Kickoff   time.Time  `json:"kickoff"`
	Visible   bool       `json:"visible"` // respeitado só na primeira inserção
	UpdatedAt time.Time  `json:"updated_at"`
	Source    string     `json:"source"`  // "provider-simulator"
	Version   int        `json:"version"` // incrementado a cada atualização
}
