package postgres

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS catalog_doc (
	id         SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS bets (
	id            TEXT PRIMARY KEY,
	seq           BIGSERIAL,
	placed_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	bettor_name   TEXT NOT NULL,
	bettor_email  TEXT NOT NULL DEFAULT '',
	bettor_key    TEXT NOT NULL,
	mode          TEXT NOT NULL,
	multi_stake   NUMERIC(12,2) NOT NULL DEFAULT 0,
	stakes_by_leg JSONB,
	legs          JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS bets_recent_idx ON bets (placed_at DESC, seq DESC);
CREATE INDEX IF NOT EXISTS bets_bettor_key_idx ON bets (bettor_key);

CREATE TABLE IF NOT EXISTS bets_archive (
	id            TEXT NOT NULL,
	seq           BIGINT NOT NULL,
	placed_at     TIMESTAMPTZ NOT NULL,
	bettor_name   TEXT NOT NULL,
	bettor_email  TEXT NOT NULL,
	bettor_key    TEXT NOT NULL,
	mode          TEXT NOT NULL,
	multi_stake   NUMERIC(12,2) NOT NULL,
	stakes_by_leg JSONB,
	legs          JSONB NOT NULL,
	archived_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS golf_scores (
	team_key   TEXT NOT NULL,
	hole       INT NOT NULL,
	team       TEXT NOT NULL,
	sips       NUMERIC(6,2) NOT NULL DEFAULT 0,
	penalties  NUMERIC(6,2) NOT NULL DEFAULT 0,
	confirmed  BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (team_key, hole)
);

CREATE TABLE IF NOT EXISTS bet_status_history (
	id               BIGSERIAL PRIMARY KEY,
	bet_id           TEXT NOT NULL,
	old_status       TEXT NOT NULL,
	new_status       TEXT NOT NULL,
	potential_payout NUMERIC(12,2) NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS bet_status_history_bet_idx ON bet_status_history (bet_id, created_at);
`

// EnsureSchema cria as tabelas se ainda não existirem. Idempotente.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
