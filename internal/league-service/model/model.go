package model

import (
	"time"

	"github.com/radieske/prediction-league-poc/pkg/contracts/status"
)

// Match é a partida persistida no Postgres, alimentada pelo
// match-processor-worker a partir dos eventos do provedor.
type Match struct {
	ID        int64
	LeagueID  string
	Season    string
	HomeTeam  string
	AwayTeam  string
	HomeGoals *int // nulo enquanto o provedor não reporta placar
	AwayGoals *int
	Status    status.Status
	Kickoff   time.Time
	Visible   bool // partida aparece para os usuários
	Bettable  bool // palpites ainda abertos
	UpdatedAt time.Time
}

// Score devolve o placar corrente tratando gols nulos como 0 a 0.
// Partida ao vivo sem gol reportado pontua como 0x0, nunca como erro.
func (m Match) Score() (home, away int) {
	if m.HomeGoals != nil {
		home = *m.HomeGoals
	}
	if m.AwayGoals != nil {
		away = *m.AwayGoals
	}
	return home, away
}

// Bet é o palpite persistido. Existe no máximo um por (user_id, match_id);
// atualizações sobrescrevem, não criam histórico.
type Bet struct {
	ID            string
	UserID        string
	MatchID       int64
	PredictedHome int
	PredictedAway int
	UseWildcard   bool // consome uma unidade do orçamento de curingas
	UpdatedAt     time.Time
}

// User vem do diretório de identidade (tabela users). A unicidade do nome
// é garantida no cadastro, não aqui.
type User struct {
	ID   string
	Name string
}
