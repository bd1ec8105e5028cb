package store

import (
	"context"
	"database/sql"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/lead-console/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db      *sql.DB
	version atomic.Uint64
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id                 INTEGER PRIMARY KEY,
	name               TEXT NOT NULL,
	company            TEXT NOT NULL,
	email              TEXT NOT NULL,
	source             TEXT NOT NULL,
	score              REAL NOT NULL DEFAULT 0,
	status             TEXT NOT NULL DEFAULT 'New',
	predictive_quality INTEGER NOT NULL DEFAULT 0,
	created_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS opportunities (
	id           INTEGER PRIMARY KEY,
	name         TEXT NOT NULL,
	account_name TEXT NOT NULL,
	stage        TEXT NOT NULL DEFAULT 'Discovery',
	amount       REAL NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_score ON leads(score);
CREATE INDEX IF NOT EXISTS idx_opportunities_created_at ON opportunities(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Version() uint64 {
	return s.version.Load()
}

const leadColumns = `id, name, company, email, source, score, status, predictive_quality, created_at`

func (s *SQLiteStore) ListLeads(ctx context.Context, filter Filter) ([]model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	var args []any

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query += ` AND (lower(name) LIKE ? OR lower(company) LIKE ? OR lower(email) LIKE ?)`
		args = append(args, pattern, pattern, pattern)
	}
	if filter.Status != "" && filter.Status != "all" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	query += leadOrderClause(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.ID, &l.Name, &l.Company, &l.Email, &l.Source, &l.Score, &l.Status, &l.PredictiveQuality, &l.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func leadOrderClause(filter Filter) string {
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

func (s *SQLiteStore) GetLead(ctx context.Context, id int64) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	var l model.Lead
	err := row.Scan(&l.ID, &l.Name, &l.Company, &l.Email, &l.Source, &l.Score, &l.Status, &l.PredictiveQuality, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get lead")
	}
	return &l, nil
}

func (s *SQLiteStore) CreateLead(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	if lead.ID == 0 {
		lead.ID = model.NewID()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	lead.Score = model.ClampScore(lead.Score)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (`+leadColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.Name, lead.Company, lead.Email, lead.Source, lead.Score, string(lead.Status), lead.PredictiveQuality, lead.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert lead")
	}
	s.version.Add(1)
	return &lead, nil
}

func (s *SQLiteStore) UpdateLead(ctx context.Context, id int64, patch Patch) (*model.Lead, error) {
	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}
	applyPatch(lead, patch)

	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET name = ?, company = ?, email = ?, source = ?, score = ?, status = ? WHERE id = ?`,
		lead.Name, lead.Company, lead.Email, lead.Source, lead.Score, string(lead.Status), id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update lead %d", id)
	}
	if err := checkRowsAffected(res); err != nil {
		return nil, err
	}
	s.version.Add(1)
	return lead, nil
}

func (s *SQLiteStore) DeleteLead(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete lead %d", id)
	}
	if err := checkRowsAffected(res); err != nil {
		return err
	}
	s.version.Add(1)
	return nil
}

func (s *SQLiteStore) ImportLeads(ctx context.Context, leads []model.Lead) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin import")
	}
	defer tx.Rollback()

	for _, lead := range leads {
		if lead.ID == 0 {
			lead.ID = model.NewID()
		}
		if lead.CreatedAt.IsZero() {
			lead.CreatedAt = time.Now().UTC()
		}
		lead.Score = model.ClampScore(lead.Score)
		_, err := tx.ExecContext(ctx,
			`INSERT INTO leads (`+leadColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				name = excluded.name, company = excluded.company, email = excluded.email,
				source = excluded.source, score = excluded.score, status = excluded.status,
				predictive_quality = excluded.predictive_quality`,
			lead.ID, lead.Name, lead.Company, lead.Email, lead.Source, lead.Score, string(lead.Status), lead.PredictiveQuality, lead.CreatedAt,
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: import lead")
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit import")
	}
	s.version.Add(1)
	return nil
}

func (s *SQLiteStore) ReplaceLeads(ctx context.Context, leads []model.Lead) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin replace")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM leads`); err != nil {
		return eris.Wrap(err, "sqlite: clear leads")
	}
	for _, lead := range leads {
		if lead.ID == 0 {
			lead.ID = model.NewID()
		}
		if lead.CreatedAt.IsZero() {
			lead.CreatedAt = time.Now().UTC()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO leads (`+leadColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			lead.ID, lead.Name, lead.Company, lead.Email, lead.Source, model.ClampScore(lead.Score), string(lead.Status), lead.PredictiveQuality, lead.CreatedAt,
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: insert lead")
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit replace")
	}
	s.version.Add(1)
	return nil
}

func (s *SQLiteStore) ClearLeads(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM leads`); err != nil {
		return eris.Wrap(err, "sqlite: clear leads")
	}
	s.version.Add(1)
	return nil
}

func (s *SQLiteStore) ConvertLead(ctx context.Context, id int64) (*model.Opportunity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin convert")
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	var lead model.Lead
	err = row.Scan(&lead.ID, &lead.Name, &lead.Company, &lead.Email, &lead.Source, &lead.Score, &lead.Status, &lead.PredictiveQuality, &lead.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load lead for convert")
	}

	opp := model.OpportunityFromLead(lead)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO opportunities (id, name, account_name, stage, amount, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		opp.ID, opp.Name, opp.AccountName, opp.Stage, opp.Amount, opp.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert opportunity")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id); err != nil {
		return nil, eris.Wrap(err, "sqlite: delete converted lead")
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit convert")
	}
	s.version.Add(1)
	return &opp, nil
}

func (s *SQLiteStore) ListOpportunities(ctx context.Context) ([]model.Opportunity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, account_name, stage, amount, created_at FROM opportunities ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list opportunities")
	}
	defer rows.Close()

	var opps []model.Opportunity
	for rows.Next() {
		var o model.Opportunity
		if err := rows.Scan(&o.ID, &o.Name, &o.AccountName, &o.Stage, &o.Amount, &o.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan opportunity")
		}
		opps = append(opps, o)
	}
	return opps, eris.Wrap(rows.Err(), "sqlite: list opportunities iterate")
}

func (s *SQLiteStore) CreateOpportunity(ctx context.Context, opp model.Opportunity) (*model.Opportunity, error) {
	if opp.ID == 0 {
		opp.ID = model.NewID()
	}
	if opp.CreatedAt.IsZero() {
		opp.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO opportunities (id, name, account_name, stage, amount, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		opp.ID, opp.Name, opp.AccountName, opp.Stage, opp.Amount, opp.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert opportunity")
	}
	s.version.Add(1)
	return &opp, nil
}

func (s *SQLiteStore) UpdateOpportunity(ctx context.Context, id int64, patch OpportunityPatch) (*model.Opportunity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, account_name, stage, amount, created_at FROM opportunities WHERE id = ?`, id,
	)
	var opp model.Opportunity
	err := row.Scan(&opp.ID, &opp.Name, &opp.AccountName, &opp.Stage, &opp.Amount, &opp.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get opportunity")
	}
	applyOpportunityPatch(&opp, patch)

	res, err := s.db.ExecContext(ctx,
		`UPDATE opportunities SET name = ?, account_name = ?, stage = ?, amount = ? WHERE id = ?`,
		opp.Name, opp.AccountName, opp.Stage, opp.Amount, id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update opportunity %d", id)
	}
	if err := checkRowsAffected(res); err != nil {
		return nil, err
	}
	s.version.Add(1)
	return &opp, nil
}

func (s *SQLiteStore) DeleteOpportunity(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM opportunities WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete opportunity %d", id)
	}
	if err := checkRowsAffected(res); err != nil {
		return err
	}
	s.version.Add(1)
	return nil
}

func (s *SQLiteStore) ClearOpportunities(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM opportunities`); err != nil {
		return eris.Wrap(err, "sqlite: clear opportunities")
	}
	s.version.Add(1)
	return nil
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
