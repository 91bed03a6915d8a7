package standings

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/radieske/prediction-league-poc/internal/league-service/model"
	"github.com/radieske/prediction-league-poc/internal/league-service/scoring"
	"github.com/radieske/prediction-league-poc/internal/league-service/wildcard"
	"github.com/radieske/prediction-league-poc/pkg/contracts/status"
)

// Entry é uma linha da classificação. Derivada a cada cálculo, nunca
// persistida.
type Entry struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	// Points soma os palpites de partidas encerradas.
	Points int `json:"points"`
	// PotentialPoints projeta os palpites de partidas ao vivo com o placar
	// interino ("pontos se a partida acabasse agora"). Recalculado a cada
	// render.
	PotentialPoints int `json:"potential_points"`
	// Form traz a pontuação nas últimas N partidas encerradas, em ordem de
	// início (mais recente por último). Nulo = sem palpite, que não é zero:
	// só exibição, nunca média.
	Form               []*int `json:"form"`
	WildcardsRemaining int    `json:"wildcards_remaining"`
	Rank               int    `json:"rank"`
}

// Aggregator transforma partidas + palpites + usuários na classificação
// ordenada. Cálculo puro sobre um retrato dos repositórios; não trava nada
// e não falha por dado ruim (linha malformada é pulada com warning).
type Aggregator struct {
	Log        *zap.Logger
	Wildcards  wildcard.Tracker
	FormWindow int // N da coluna de forma
}

// Compute monta a classificação. Todo usuário do diretório aparece, mesmo
// sem palpite algum (pontos zerados e forma toda nula). Partidas invisíveis
// ficam fora de tudo: pontos, projeção e forma.
func (a Aggregator) Compute(matches []model.Match, bets []model.Bet, users []model.User) []Entry {
	log := a.Log
	if log == nil {
		log = zap.NewNop()
	}
	window := a.FormWindow
	if window <= 0 {
		window = 5
	}

	visible := make(map[int64]model.Match, len(matches))
	statusByMatch := make(map[int64]status.Status, len(matches))
	var finished []model.Match
	for _, m := range matches {
		if !m.Visible {
			continue
		}
		if !status.Known(m.Status) {
			log.Warn("unknown match status, treating as scheduled",
				zap.Int64("match_id", m.ID),
				zap.String("status", string(m.Status)),
			)
		}
		visible[m.ID] = m
		statusByMatch[m.ID] = m.Status
		if m.Status.Finished() {
			finished = append(finished, m)
		}
	}

	// Janela de forma: as últimas N encerradas, em ordem de início.
	sort.Slice(finished, func(i, j int) bool {
		return finished[i].Kickoff.Before(finished[j].Kickoff)
	})
	formMatches := finished
	if len(formMatches) > window {
		formMatches = formMatches[len(formMatches)-window:]
	}
	formIndex := make(map[int64]int, len(formMatches))
	for i, m := range formMatches {
		formIndex[m.ID] = i
	}

	betsByUser := make(map[string][]model.Bet)
	for _, b := range bets {
		if _, ok := visible[b.MatchID]; !ok {
			// palpite de partida invisível ou desconhecida fica fora de tudo
			continue
		}
		if b.PredictedHome < 0 || b.PredictedAway < 0 {
			log.Warn("skipping malformed bet",
				zap.String("bet_id", b.ID),
				zap.String("user_id", b.UserID),
				zap.Int64("match_id", b.MatchID),
			)
			continue
		}
		betsByUser[b.UserID] = append(betsByUser[b.UserID], b)
	}

	entries := make([]Entry, 0, len(users))
	for _, u := range users {
		e := Entry{
			UserID: u.ID,
			Name:   u.Name,
			Form:   make([]*int, window),
		}
		userBets := betsByUser[u.ID]
		for _, b := range userBets {
			m := visible[b.MatchID]
			actualHome, actualAway := m.Score()
			pts := scoring.Points(b.PredictedHome, b.PredictedAway, actualHome, actualAway)
			if b.UseWildcard {
				pts *= 2
			}
			switch m.Status.Phase() {
			case status.PhaseFinished:
				e.Points += pts
				if i, ok := formIndex[m.ID]; ok {
					v := pts
					e.Form[i] = &v
				}
			case status.PhaseLive:
				e.PotentialPoints += pts
			default:
				// agendada: não pontua nem projeta
			}
		}
		e.WildcardsRemaining = a.Wildcards.Remaining(userBets, statusByMatch)
		entries = append(entries, e)
	}

	// Ordena por total (pontos + projeção) decrescente, desempate por nome
	// sem diferenciar maiúsculas.
	sort.SliceStable(entries, func(i, j int) bool {
		ti := entries[i].Points + entries[i].PotentialPoints
		tj := entries[j].Points + entries[j].PotentialPoints
		if ti != tj {
			return ti > tj
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	// Ranking denso: empates compartilham posição e o próximo total distinto
	// soma exatamente 1 (totais 10,10,7 -> ranks 1,1,2).
	rank := 1
	for i := range entries {
		if i > 0 {
			prev := entries[i-1].Points + entries[i-1].PotentialPoints
			cur := entries[i].Points + entries[i].PotentialPoints
			if cur != prev {
				rank++
			}
		}
		entries[i].Rank = rank
	}

	return entries
}
