package scoring

// Pontuação por regra, em ordem de prioridade.
const (
	ExactScore     = 5
	GoalDifference = 3
	MatchWinner    = 1
)

// Points calcula a pontuação de um palpite contra um placar conhecido.
// As regras são avaliadas em ordem estrita e a primeira que casar vence:
//
//  1. placar exato -> 5
//  2. saldo de gols correto (inclui empate previsto e ocorrido) -> 3
//  3. vencedor correto (mando ou visitante, estritamente) -> 1
//  4. nada -> 0
//
// A regra 2 já cobre empates, então a regra 3 só trata vitórias. O dobro
// do curinga é responsabilidade de quem agrega, nunca daqui.
func Points(predHome, predAway, actualHome, actualAway int) int {
	if predHome == actualHome && predAway == actualAway {
		return ExactScore
	}
	if predHome-predAway == actualHome-actualAway {
		return GoalDifference
	}
	if (predHome > predAway && actualHome > actualAway) ||
		(predHome < predAway && actualHome < actualAway) {
		return MatchWinner
	}
	return 0
}
