package repository

import (
	"context"
	"database/sql"

	"github.com/radieske/prediction-league-poc/pkg/contracts/events"
	"github.com/radieske/prediction-league-poc/pkg/contracts/status"
)

// PostgresRepo persiste atualizações de partidas vindas do provedor.
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// UpsertMatch insere ou atualiza uma partida num statement só.
//
// Na inserção, bettable abre apenas se a partida ainda está agendada e a
// flag visible vem do evento. Na atualização, visible é preservada (quem
// exibe ou esconde é a administração, não o provedor) e bettable só pode
// fechar: assim que o status sai de agendada a janela trava, de forma
// idempotente.
func (r *PostgresRepo) UpsertMatch(ctx context.Context, e events.MatchUpdate) error {
	scheduled := status.Status(e.Status).Scheduled()
	const q = `
		INSERT INTO matches
		  (id, league_id, season, home_team, away_team, home_goals, away_goals, status, kickoff, visible, bettable, updated_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET
		  home_team  = EXCLUDED.home_team,
		  away_team  = EXCLUDED.away_team,
		  home_goals = EXCLUDED.home_goals,
		  away_goals = EXCLUDED.away_goals,
		  status     = EXCLUDED.status,
		  kickoff    = EXCLUDED.kickoff,
		  bettable   = matches.bettable AND EXCLUDED.bettable,
		  updated_at = EXCLUDED.updated_at
	`
	_, err := r.DB.ExecContext(ctx, q,
		e.MatchID, e.LeagueID, e.Season, e.HomeTeam, e.AwayTeam,
		nullableInt(e.HomeGoals), nullableInt(e.AwayGoals),
		e.Status, e.Kickoff, e.Visible, scheduled, e.UpdatedAt,
	)
	return err
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
