// Package postgres implementa store.Store sobre Postgres (lib/pq). O catálogo
// é um único documento JSONB; mudanças são avisadas via LISTEN/NOTIFY.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/golf"
	"github.com/radieske/pub-bets/internal/store"
)

// Canais NOTIFY
const (
	ChannelCatalog = "catalog_changed"
	ChannelBets    = "bets_changed"
)

// Store implementa store.Store em Postgres
type Store struct {
	db  *sql.DB
	dsn string // usado pelo pq.Listener, que abre conexão própria
	log *zap.Logger
}

var (
	_ store.Store    = (*Store)(nil)
	_ store.Importer = (*Store)(nil)
)

func New(db *sql.DB, dsn string, log *zap.Logger) *Store {
	return &Store{db: db, dsn: dsn, log: log}
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) LoadCatalog(ctx context.Context) (catalog.Catalog, error) {
	return loadCatalog(ctx, s.db)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadCatalog(ctx context.Context, q queryer) (catalog.Catalog, error) {
	var raw []byte
	err := q.QueryRowContext(ctx, `SELECT doc FROM catalog_doc WHERE id=1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Catalog{}, store.ErrNotFound
	}
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}
	var c catalog.Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return catalog.Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if c.Markets == nil {
		c.Markets = []catalog.Market{}
	}
	return c, nil
}

// LoadOrInitialize insere o default só se a linha não existir (ON CONFLICT DO
// NOTHING) e devolve o documento vigente
func (s *Store) LoadOrInitialize(ctx context.Context, def catalog.Catalog) (catalog.Catalog, error) {
	doc, err := json.Marshal(def)
	if err != nil {
		return catalog.Catalog{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return catalog.Catalog{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO catalog_doc (id, doc) VALUES (1, $1) ON CONFLICT (id) DO NOTHING`, string(doc))
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("seed catalog: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		if err := notify(ctx, tx, ChannelCatalog, ""); err != nil {
			return catalog.Catalog{}, err
		}
	}

	c, err := loadCatalog(ctx, tx)
	if err != nil {
		return catalog.Catalog{}, err
	}
	if err := tx.Commit(); err != nil {
		return catalog.Catalog{}, err
	}
	return c, nil
}

func (s *Store) SaveCatalog(ctx context.Context, c catalog.Catalog) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO catalog_doc (id, doc, updated_at) VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`, string(doc)); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	if err := notify(ctx, tx, ChannelCatalog, ""); err != nil {
		return err
	}
	return tx.Commit()
}

const betColumns = `id, seq, placed_at, bettor_name, bettor_email, bettor_key, mode, multi_stake, stakes_by_leg, legs`

// CreateBet grava a aposta; placed_at e seq vêm do banco
func (s *Store) CreateBet(ctx context.Context, d bets.Draft) (string, error) {
	legs, err := json.Marshal(d.Legs)
	if err != nil {
		return "", err
	}
	var stakes []byte
	if d.StakesByLeg != nil {
		if stakes, err = json.Marshal(d.StakesByLeg); err != nil {
			return "", err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bets (id, bettor_name, bettor_email, bettor_key, mode, multi_stake, stakes_by_leg, legs)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		id, d.Bettor.Name, d.Bettor.Email, d.Bettor.Key, string(d.Mode), d.MultiStake, nullJSON(stakes), string(legs),
	); err != nil {
		return "", fmt.Errorf("insert bet: %w", err)
	}
	if err := notify(ctx, tx, ChannelBets, id); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ImportBets grava apostas antigas preservando id e placed_at, numa transação
func (s *Store) ImportBets(ctx context.Context, list []bets.Bet) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	n := 0
	for _, b := range list {
		legs, err := json.Marshal(b.Legs)
		if err != nil {
			return 0, err
		}
		var stakes []byte
		if b.StakesByLeg != nil {
			if stakes, err = json.Marshal(b.StakesByLeg); err != nil {
				return 0, err
			}
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO bets (id, placed_at, bettor_name, bettor_email, bettor_key, mode, multi_stake, stakes_by_leg, legs)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			ON CONFLICT (id) DO NOTHING`,
			b.ID, b.PlacedAt.UTC(), b.Bettor.Name, b.Bettor.Email, b.Bettor.Key, string(b.Mode), b.MultiStake, nullJSON(stakes), string(legs),
		)
		if err != nil {
			return 0, fmt.Errorf("import bet %s: %w", b.ID, err)
		}
		if k, _ := res.RowsAffected(); k > 0 {
			n++
		}
	}
	if n > 0 {
		if err := notify(ctx, tx, ChannelBets, "import"); err != nil {
			return 0, err
		}
	}
	return n, tx.Commit()
}

func (s *Store) ListBets(ctx context.Context) ([]bets.Bet, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+betColumns+` FROM bets ORDER BY placed_at DESC, seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}
	defer rows.Close()
	return scanBets(rows)
}

func (s *Store) DeleteBet(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM bets WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete bet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	if err := notify(ctx, tx, ChannelBets, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) DeleteAllBets(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM bets`)
	if err != nil {
		return 0, fmt.Errorf("delete all bets: %w", err)
	}
	n, _ := res.RowsAffected()
	if err := notify(ctx, tx, ChannelBets, ""); err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

// ArchiveAndDeleteAllBets move tudo para bets_archive num único statement
// (DELETE ... RETURNING alimentando o INSERT), então não existe janela em que
// uma aposta esteja nas duas tabelas ou em nenhuma
func (s *Store) ArchiveAndDeleteAllBets(ctx context.Context) ([]bets.Bet, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		WITH moved AS (
			DELETE FROM bets RETURNING `+betColumns+`
		)
		INSERT INTO bets_archive (`+betColumns+`)
		SELECT `+betColumns+` FROM moved
		RETURNING `+betColumns)
	if err != nil {
		return nil, fmt.Errorf("archive bets: %w", err)
	}
	archived, err := scanBets(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if err := notify(ctx, tx, ChannelBets, ""); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	bets.SortRecentFirst(archived)
	return archived, nil
}

func (s *Store) SaveScore(ctx context.Context, sc golf.Score) (golf.Score, error) {
	sc, err := sc.Normalize()
	if err != nil {
		return golf.Score{}, err
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO golf_scores (team_key, hole, team, sips, penalties)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (team_key, hole) DO UPDATE SET
			team       = EXCLUDED.team,
			sips       = EXCLUDED.sips,
			penalties  = EXCLUDED.penalties,
			confirmed  = golf_scores.confirmed
			             AND golf_scores.sips = EXCLUDED.sips
			             AND golf_scores.penalties = EXCLUDED.penalties,
			updated_at = NOW()
		RETURNING confirmed`,
		golf.TeamKey(sc.Team), sc.Hole, sc.Team, sc.Sips, sc.Penalties,
	).Scan(&sc.Confirmed)
	if err != nil {
		return golf.Score{}, fmt.Errorf("save score: %w", err)
	}
	return sc, nil
}

func (s *Store) ListScores(ctx context.Context) ([]golf.Score, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT team, hole, sips, penalties, confirmed
		FROM golf_scores ORDER BY created_at, team_key, hole`)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	out := []golf.Score{}
	for rows.Next() {
		var sc golf.Score
		if err := rows.Scan(&sc.Team, &sc.Hole, &sc.Sips, &sc.Penalties, &sc.Confirmed); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *Store) ConfirmScore(ctx context.Context, team string, hole int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE golf_scores SET confirmed=TRUE, updated_at=NOW()
		WHERE team_key=$1 AND hole=$2`, golf.TeamKey(team), hole)
	if err != nil {
		return fmt.Errorf("confirm score: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanBets(rows *sql.Rows) ([]bets.Bet, error) {
	out := []bets.Bet{}
	for rows.Next() {
		var (
			b      bets.Bet
			mode   string
			stakes []byte
			legs   []byte
		)
		if err := rows.Scan(&b.ID, &b.Seq, &b.PlacedAt, &b.Bettor.Name, &b.Bettor.Email, &b.Bettor.Key,
			&mode, &b.MultiStake, &stakes, &legs); err != nil {
			return nil, err
		}
		b.Mode = bets.Mode(mode)
		b.PlacedAt = b.PlacedAt.UTC()
		if err := json.Unmarshal(legs, &b.Legs); err != nil {
			return nil, fmt.Errorf("decode legs of bet %s: %w", b.ID, err)
		}
		if len(stakes) > 0 {
			if err := json.Unmarshal(stakes, &b.StakesByLeg); err != nil {
				return nil, fmt.Errorf("decode stakes of bet %s: %w", b.ID, err)
			}
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func notify(ctx context.Context, tx *sql.Tx, channel, payload string) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, channel, payload); err != nil {
		return fmt.Errorf("notify %s: %w", channel, err)
	}
	return nil
}

func nullJSON(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}
