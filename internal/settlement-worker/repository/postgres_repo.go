package repository

import (
	"context"
	"database/sql"

	"github.com/radieske/pub-bets/pkg/contracts/events"
)

// PostgresRepo grava o histórico de status das apostas (bet_status_history)
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// InsertTransition registra uma mudança de status. Primeira avaliação entra
// com old_status vazio
func (r *PostgresRepo) InsertTransition(ctx context.Context, e events.BetSettled) error {
	const q = `
		INSERT INTO bet_status_history (bet_id, old_status, new_status, potential_payout, created_at)
		VALUES ($1,$2,$3,$4,$5)`
	_, err := r.DB.ExecContext(ctx, q, e.BetID, e.OldStatus, e.Status, e.PotentialPayout, e.Ts)
	return err
}
