package store

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-console/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses, satisfied by pgxmock
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	version atomic.Uint64
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// the hottest store operations.
var preparedStatements = map[string]string{
	"get_lead":           `SELECT id, name, company, email, source, score, status, predictive_quality, created_at FROM leads WHERE id = $1`,
	"insert_lead":        `INSERT INTO leads (id, name, company, email, source, score, status, predictive_quality, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
	"delete_lead":        `DELETE FROM leads WHERE id = $1`,
	"list_opportunities": `SELECT id, name, account_name, stage, amount, created_at FROM opportunities ORDER BY created_at DESC, id DESC`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id                 BIGINT PRIMARY KEY,
	name               TEXT NOT NULL,
	company            TEXT NOT NULL,
	email              TEXT NOT NULL,
	source             TEXT NOT NULL,
	score              DOUBLE PRECISION NOT NULL DEFAULT 0,
	status             TEXT NOT NULL DEFAULT 'New',
	predictive_quality INTEGER NOT NULL DEFAULT 0,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS opportunities (
	id           BIGINT PRIMARY KEY,
	name         TEXT NOT NULL,
	account_name TEXT NOT NULL,
	stage        TEXT NOT NULL DEFAULT 'Discovery',
	amount       DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_score ON leads(score);
CREATE INDEX IF NOT EXISTS idx_opportunities_created_at ON opportunities(created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Version() uint64 {
	return s.version.Load()
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter Filter) ([]model.Lead, error) {
	query := `SELECT id, name, company, email, source, score, status, predictive_quality, created_at FROM leads WHERE 1=1`
	var args []any

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += ` AND (name ILIKE $` + itoa(n) + ` OR company ILIKE $` + itoa(n) + ` OR email ILIKE $` + itoa(n) + `)`
	}
	if filter.Status != "" && filter.Status != "all" {
		args = append(args, filter.Status)
		query += ` AND status = $` + itoa(len(args))
	}
	query += leadOrderClausePg(filter)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.ID, &l.Name, &l.Company, &l.Email, &l.Source, &l.Score, &l.Status, &l.PredictiveQuality, &l.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func leadOrderClausePg(filter Filter) string {
	column := "created_at"
	if filter.SortBy == "score" {
		column = "score"
	}
	direction := "DESC"
	if filter.SortOrder == "asc" {
		direction = "ASC"
	}
	return ` ORDER BY ` + column + ` ` + direction + `, id ` + direction
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func (s *PostgresStore) GetLead(ctx context.Context, id int64) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, company, email, source, score, status, predictive_quality, created_at FROM leads WHERE id = $1`, id)
	var l model.Lead
	err := row.Scan(&l.ID, &l.Name, &l.Company, &l.Email, &l.Source, &l.Score, &l.Status, &l.PredictiveQuality, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get lead")
	}
	return &l, nil
}

func (s *PostgresStore) CreateLead(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	if lead.ID == 0 {
		lead.ID = model.NewID()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	lead.Score = model.ClampScore(lead.Score)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO leads (id, name, company, email, source, score, status, predictive_quality, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		lead.ID, lead.Name, lead.Company, lead.Email, lead.Source, lead.Score, string(lead.Status), lead.PredictiveQuality, lead.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert lead")
	}
	s.version.Add(1)
	return &lead, nil
}

func (s *PostgresStore) UpdateLead(ctx context.Context, id int64, patch Patch) (*model.Lead, error) {
	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}
	applyPatch(lead, patch)

	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET name = $1, company = $2, email = $3, source = $4, score = $5, status = $6 WHERE id = $7`,
		lead.Name, lead.Company, lead.Email, lead.Source, lead.Score, string(lead.Status), id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: update lead %d", id)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	s.version.Add(1)
	return lead, nil
}

func (s *PostgresStore) DeleteLead(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete lead %d", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.version.Add(1)
	return nil
}

func (s *PostgresStore) ImportLeads(ctx context.Context, leads []model.Lead) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin import")
	}
	defer tx.Rollback(ctx)

	for _, lead := range leads {
		if lead.ID == 0 {
			lead.ID = model.NewID()
		}
		if lead.CreatedAt.IsZero() {
			lead.CreatedAt = time.Now().UTC()
		}
		lead.Score = model.ClampScore(lead.Score)
		_, err := tx.Exec(ctx,
			`INSERT INTO leads (id, name, company, email, source, score, status, predictive_quality, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, company = EXCLUDED.company, email = EXCLUDED.email,
				source = EXCLUDED.source, score = EXCLUDED.score, status = EXCLUDED.status,
				predictive_quality = EXCLUDED.predictive_quality`,
			lead.ID, lead.Name, lead.Company, lead.Email, lead.Source, lead.Score, string(lead.Status), lead.PredictiveQuality, lead.CreatedAt,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: import lead")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit import")
	}
	s.version.Add(1)
	return nil
}

func (s *PostgresStore) ReplaceLeads(ctx context.Context, leads []model.Lead) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin replace")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM leads`); err != nil {
		return eris.Wrap(err, "postgres: clear leads")
	}
	for _, lead := range leads {
		if lead.ID == 0 {
			lead.ID = model.NewID()
		}
		if lead.CreatedAt.IsZero() {
			lead.CreatedAt = time.Now().UTC()
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO leads (id, name, company, email, source, score, status, predictive_quality, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			lead.ID, lead.Name, lead.Company, lead.Email, lead.Source, model.ClampScore(lead.Score), string(lead.Status), lead.PredictiveQuality, lead.CreatedAt,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: insert lead")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit replace")
	}
	s.version.Add(1)
	return nil
}

func (s *PostgresStore) ClearLeads(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM leads`); err != nil {
		return eris.Wrap(err, "postgres: clear leads")
	}
	s.version.Add(1)
	return nil
}

func (s *PostgresStore) ConvertLead(ctx context.Context, id int64) (*model.Opportunity, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin convert")
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT id, name, company, email, source, score, status, predictive_quality, created_at FROM leads WHERE id = $1`, id)
	var lead model.Lead
	err = row.Scan(&lead.ID, &lead.Name, &lead.Company, &lead.Email, &lead.Source, &lead.Score, &lead.Status, &lead.PredictiveQuality, &lead.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load lead for convert")
	}

	opp := model.OpportunityFromLead(lead)
	_, err = tx.Exec(ctx,
		`INSERT INTO opportunities (id, name, account_name, stage, amount, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		opp.ID, opp.Name, opp.AccountName, opp.Stage, opp.Amount, opp.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert opportunity")
	}
	if _, err := tx.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id); err != nil {
		return nil, eris.Wrap(err, "postgres: delete converted lead")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit convert")
	}
	s.version.Add(1)
	return &opp, nil
}

func (s *PostgresStore) ListOpportunities(ctx context.Context) ([]model.Opportunity, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, account_name, stage, amount, created_at FROM opportunities ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list opportunities")
	}
	defer rows.Close()

	var opps []model.Opportunity
	for rows.Next() {
		var o model.Opportunity
		if err := rows.Scan(&o.ID, &o.Name, &o.AccountName, &o.Stage, &o.Amount, &o.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan opportunity")
		}
		opps = append(opps, o)
	}
	return opps, eris.Wrap(rows.Err(), "postgres: list opportunities iterate")
}

func (s *PostgresStore) CreateOpportunity(ctx context.Context, opp model.Opportunity) (*model.Opportunity, error) {
	if opp.ID == 0 {
		opp.ID = model.NewID()
	}
	if opp.CreatedAt.IsZero() {
		opp.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO opportunities (id, name, account_name, stage, amount, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		opp.ID, opp.Name, opp.AccountName, opp.Stage, opp.Amount, opp.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert opportunity")
	}
	s.version.Add(1)
	return &opp, nil
}

func (s *PostgresStore) UpdateOpportunity(ctx context.Context, id int64, patch OpportunityPatch) (*model.Opportunity, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, account_name, stage, amount, created_at FROM opportunities WHERE id = $1`, id)
	var opp model.Opportunity
	err := row.Scan(&opp.ID, &opp.Name, &opp.AccountName, &opp.Stage, &opp.Amount, &opp.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get opportunity")
	}
	applyOpportunityPatch(&opp, patch)

	tag, err := s.pool.Exec(ctx,
		`UPDATE opportunities SET name = $1, account_name = $2, stage = $3, amount = $4 WHERE id = $5`,
		opp.Name, opp.AccountName, opp.Stage, opp.Amount, id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: update opportunity %d", id)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	s.version.Add(1)
	return &opp, nil
}

func (s *PostgresStore) DeleteOpportunity(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM opportunities WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete opportunity %d", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.version.Add(1)
	return nil
}

func (s *PostgresStore) ClearOpportunities(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM opportunities`); err != nil {
		return eris.Wrap(err, "postgres: clear opportunities")
	}
	s.version.Add(1)
	return nil
}
