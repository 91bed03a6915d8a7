package wildcard

import (
	"testing"

	"github.com/radieske/prediction-league-poc/internal/league-service/model"
	"github.com/radieske/prediction-league-poc/pkg/contracts/status"
)

func wcBet(matchID int64, useWildcard bool) model.Bet {
	return model.Bet{UserID: "u1", MatchID: matchID, UseWildcard: useWildcard}
}

func TestRemaining(t *testing.T) {
	tracker := Tracker{Max: 3}

	tests := []struct {
		name     string
		bets     []model.Bet
		statuses map[int64]status.Status
		want     int
	}{
		{
			name:     "no bets",
			bets:     nil,
			statuses: nil,
			want:     3,
		},
		{
			name: "wildcard on scheduled match does not lock in",
			bets: []model.Bet{wcBet(1, true)},
			statuses: map[int64]status.Status{
				1: status.NotStarted,
			},
			want: 3,
		},
		{
			name: "wildcards lock in once matches start",
			bets: []model.Bet{wcBet(1, true), wcBet(2, true), wcBet(3, false)},
			statuses: map[int64]status.Status{
				1: status.FirstHalf,
				2: status.FullTime,
				3: status.FullTime,
			},
			want: 1,
		},
		{
			name: "never negative",
			bets: []model.Bet{wcBet(1, true), wcBet(2, true), wcBet(3, true), wcBet(4, true)},
			statuses: map[int64]status.Status{
				1: status.FullTime,
				2: status.FullTime,
				3: status.FullTime,
				4: status.FullTime,
			},
			want: 0,
		},
		{
			name: "bet on unknown match ignored",
			bets: []model.Bet{wcBet(99, true)},
			statuses: map[int64]status.Status{
				1: status.FullTime,
			},
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tracker.Remaining(tt.bets, tt.statuses); got != tt.want {
				t.Errorf("Remaining() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCanUse(t *testing.T) {
	tracker := Tracker{Max: 2}
	statuses := map[int64]status.Status{
		1: status.FullTime,
		2: status.FullTime,
		3: status.NotStarted,
	}

	t.Run("budget available", func(t *testing.T) {
		bets := []model.Bet{wcBet(1, true)}
		if !tracker.CanUse(bets, statuses, 3) {
			t.Error("expected CanUse = true with one slot free")
		}
	})

	t.Run("budget exhausted", func(t *testing.T) {
		bets := []model.Bet{wcBet(1, true), wcBet(2, true)}
		if tracker.CanUse(bets, statuses, 3) {
			t.Error("expected CanUse = false with all wildcards locked")
		}
	})

	t.Run("edited bet is excluded from the count", func(t *testing.T) {
		// O palpite da própria partida em edição não conta, então religar
		// o curinga nela não estoura o orçamento.
		bets := []model.Bet{wcBet(1, true), wcBet(2, true)}
		if !tracker.CanUse(bets, statuses, 2) {
			t.Error("expected CanUse = true when re-enabling on the edited match")
		}
	})
}
