package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/radieske/prediction-league-poc/internal/league-service/model"
	"github.com/radieske/prediction-league-poc/pkg/contracts/status"
)

var ErrNotFound = errors.New("not found")

// Postgres implementa os repositórios de partidas, palpites e usuários.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

const matchColumns = `id, league_id, season, home_team, away_team, home_goals, away_goals, status, kickoff, visible, bettable, updated_at`

func scanMatch(row interface{ Scan(...any) error }) (model.Match, error) {
	var m model.Match
	var homeGoals, awayGoals sql.NullInt64
	var st string
	err := row.Scan(
		&m.ID, &m.LeagueID, &m.Season, &m.HomeTeam, &m.AwayTeam,
		&homeGoals, &awayGoals, &st, &m.Kickoff, &m.Visible, &m.Bettable, &m.UpdatedAt,
	)
	if err != nil {
		return model.Match{}, err
	}
	if homeGoals.Valid {
		v := int(homeGoals.Int64)
		m.HomeGoals = &v
	}
	if awayGoals.Valid {
		v := int(awayGoals.Int64)
		m.AwayGoals = &v
	}
	m.Status = status.Status(st)
	return m, nil
}

// GetMatch retorna uma partida pelo id.
func (p *Postgres) GetMatch(ctx context.Context, matchID int64) (model.Match, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id=$1`, matchID)
	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return model.Match{}, ErrNotFound
	}
	return m, err
}

// ListVisibleMatches retorna as partidas exibidas aos usuários, em ordem
// de início.
func (p *Postgres) ListVisibleMatches(ctx context.Context) ([]model.Match, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE visible ORDER BY kickoff, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListMatchesByID retorna as partidas dos ids informados, visíveis ou não.
// Usado pra apurar status de curingas travados.
func (p *Postgres) ListMatchesByID(ctx context.Context, matchIDs []int64) ([]model.Match, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = ANY($1)`, pq.Array(matchIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SetBettable liga/desliga a janela de palpites de uma partida.
// Idempotente: escrever o valor corrente não muda nada.
func (p *Postgres) SetBettable(ctx context.Context, matchID int64, bettable bool) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE matches SET bettable=$2, updated_at=now() WHERE id=$1 AND bettable<>$2`,
		matchID, bettable)
	return err
}

// GetBet retorna o palpite de um usuário pra uma partida, se existir.
func (p *Postgres) GetBet(ctx context.Context, userID string, matchID int64) (model.Bet, bool, error) {
	var b model.Bet
	err := p.db.QueryRowContext(ctx, `
		SELECT id, user_id, match_id, predicted_home, predicted_away, use_wildcard, updated_at
		FROM bets WHERE user_id=$1 AND match_id=$2`,
		userID, matchID,
	).Scan(&b.ID, &b.UserID, &b.MatchID, &b.PredictedHome, &b.PredictedAway, &b.UseWildcard, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Bet{}, false, nil
	}
	if err != nil {
		return model.Bet{}, false, err
	}
	return b, true, nil
}

// ListBetsForUser retorna todos os palpites de um usuário.
func (p *Postgres) ListBetsForUser(ctx context.Context, userID string) ([]model.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, match_id, predicted_home, predicted_away, use_wildcard, updated_at
		FROM bets WHERE user_id=$1 ORDER BY updated_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBets(rows)
}

// ListBetsForMatches retorna os palpites das partidas informadas.
func (p *Postgres) ListBetsForMatches(ctx context.Context, matchIDs []int64) ([]model.Bet, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, match_id, predicted_home, predicted_away, use_wildcard, updated_at
		FROM bets WHERE match_id = ANY($1)`, pq.Array(matchIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBets(rows)
}

func collectBets(rows *sql.Rows) ([]model.Bet, error) {
	var out []model.Bet
	for rows.Next() {
		var b model.Bet
		if err := rows.Scan(&b.ID, &b.UserID, &b.MatchID, &b.PredictedHome, &b.PredictedAway, &b.UseWildcard, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpsertBet grava o palpite de forma atômica: um statement só, todos os
// campos juntos, preservando o id no caso de atualização. A constraint
// única (user_id, match_id) segura a corrida mesmo com mais de uma
// instância do serviço.
func (p *Postgres) UpsertBet(ctx context.Context, b model.Bet) (model.Bet, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.UpdatedAt = time.Now().UTC()
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO bets (id, user_id, match_id, predicted_home, predicted_away, use_wildcard, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (user_id, match_id) DO UPDATE SET
		  predicted_home = EXCLUDED.predicted_home,
		  predicted_away = EXCLUDED.predicted_away,
		  use_wildcard   = EXCLUDED.use_wildcard,
		  updated_at     = EXCLUDED.updated_at
		RETURNING id, updated_at`,
		b.ID, b.UserID, b.MatchID, b.PredictedHome, b.PredictedAway, b.UseWildcard, b.UpdatedAt,
	).Scan(&b.ID, &b.UpdatedAt)
	if err != nil {
		return model.Bet{}, err
	}
	return b, nil
}

// ListUsers enumera o diretório de identidade (todos os usuários
// conhecidos, com ou sem palpite).
func (p *Postgres) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, name FROM users ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
