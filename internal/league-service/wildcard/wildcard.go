package wildcard

import (
	"github.com/radieske/prediction-league-poc/internal/league-service/model"
	"github.com/radieske/prediction-league-poc/pkg/contracts/status"
)

// Tracker controla o orçamento de curingas (pontos em dobro) de um usuário.
// Um curinga só "trava" quando a partida sai de agendada: enquanto a partida
// não começa o usuário pode ligar e desligar a flag à vontade.
type Tracker struct {
	Max int // limite global por usuário
}

// Used conta os curingas já travados: palpites com a flag ligada cujas
// partidas não estão mais agendadas. Palpites de partidas desconhecidas
// não contam.
func (t Tracker) Used(bets []model.Bet, statusByMatch map[int64]status.Status) int {
	used := 0
	for _, b := range bets {
		if !b.UseWildcard {
			continue
		}
		st, ok := statusByMatch[b.MatchID]
		if !ok {
			continue
		}
		if !st.Scheduled() {
			used++
		}
	}
	return used
}

// Remaining devolve quantas unidades o usuário ainda tem, nunca negativo.
func (t Tracker) Remaining(bets []model.Bet, statusByMatch map[int64]status.Status) int {
	r := t.Max - t.Used(bets, statusByMatch)
	if r < 0 {
		r = 0
	}
	return r
}

// CanUse decide se o usuário pode ligar o curinga no palpite da partida
// excludeMatchID. O palpite em edição fica fora da contagem, então desligar
// sempre passa e religar na mesma partida não conta duas vezes.
func (t Tracker) CanUse(bets []model.Bet, statusByMatch map[int64]status.Status, excludeMatchID int64) bool {
	used := 0
	for _, b := range bets {
		if b.MatchID == excludeMatchID || !b.UseWildcard {
			continue
		}
		st, ok := statusByMatch[b.MatchID]
		if !ok {
			continue
		}
		if !st.Scheduled() {
			used++
		}
	}
	return t.Max-used > 0
}
