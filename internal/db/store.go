package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ansindait/aci-system-sub001/internal/models"
)

//go:embed schema.sql
var schemaSQL string

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.Pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const taskColumns = `id, site_id, site_name, city, division, sections, created_at`

func (s *Store) QueryTasksBySiteID(ctx context.Context, siteID string) ([]models.TaskRecord, error) {
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM site_tasks WHERE site_id = $1 ORDER BY created_at ASC, id ASC`, siteID)
}

func (s *Store) QueryTasksBySiteName(ctx context.Context, siteName string) ([]models.TaskRecord, error) {
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM site_tasks WHERE site_name = $1 ORDER BY created_at ASC, id ASC`, siteName)
}

// QueryTasksBySiteNameFold matches the site name case-insensitively.
func (s *Store) QueryTasksBySiteNameFold(ctx context.Context, siteName string) ([]models.TaskRecord, error) {
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM site_tasks WHERE lower(site_name) = lower($1) ORDER BY created_at ASC, id ASC`, siteName)
}

func (s *Store) queryTasks(ctx context.Context, query string, args ...any) ([]models.TaskRecord, error) {
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TaskRecord
	for rows.Next() {
		var (
			t        models.TaskRecord
			sections []byte
		)
		if err := rows.Scan(&t.ID, &t.SiteID, &t.SiteName, &t.City, &t.Division, &sections, &t.CreatedAt); err != nil {
			return nil, err
		}
		if len(sections) > 0 {
			if err := json.Unmarshal(sections, &t.Sections); err != nil {
				return nil, fmt.Errorf("decode sections of task %s: %w", t.ID, err)
			}
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const boqColumns = `id, city, site_id, site_name, boq_type, items, created_at`

func (s *Store) QueryBoqBySiteID(ctx context.Context, siteID string) ([]models.BoqDocument, error) {
	return s.queryBoq(ctx, `SELECT `+boqColumns+` FROM boq_documents WHERE site_id = $1 ORDER BY created_at ASC, id ASC`, siteID)
}

func (s *Store) QueryBoqBySiteName(ctx context.Context, siteName string) ([]models.BoqDocument, error) {
	return s.queryBoq(ctx, `SELECT `+boqColumns+` FROM boq_documents WHERE site_name = $1 ORDER BY created_at ASC, id ASC`, siteName)
}

func (s *Store) queryBoq(ctx context.Context, query string, args ...any) ([]models.BoqDocument, error) {
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.BoqDocument
	for rows.Next() {
		var (
			d       models.BoqDocument
			boqType string
			items   []byte
		)
		if err := rows.Scan(&d.ID, &d.City, &d.SiteID, &d.SiteName, &boqType, &items, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.BoqType = models.BoqType(boqType)
		if len(items) > 0 {
			if err := json.Unmarshal(items, &d.Items); err != nil {
				return nil, fmt.Errorf("decode items of boq %s: %w", d.ID, err)
			}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListSites returns the distinct sites that have task records, for table views.
func (s *Store) ListSites(ctx context.Context, q string, limit, offset int) ([]models.SiteRef, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	// One row per site name; division records may leave site_id or city empty.
	query := `SELECT max(site_id), site_name, max(city) FROM site_tasks`
	var args []any
	if q != "" {
		args = append(args, "%"+q+"%")
		query += fmt.Sprintf(" WHERE (site_name ILIKE $%d OR site_id ILIKE $%d)", len(args), len(args))
	}
	query += " GROUP BY site_name ORDER BY site_name ASC LIMIT $" + fmt.Sprint(len(args)+1) + " OFFSET $" + fmt.Sprint(len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SiteRef
	for rows.Next() {
		var ref models.SiteRef
		if err := rows.Scan(&ref.SiteID, &ref.SiteName, &ref.City); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (s *Store) InsertTasks(ctx context.Context, tasks []models.TaskRecord) (int64, error) {
	rows := make([][]any, 0, len(tasks))
	for _, t := range tasks {
		sections := t.Sections
		if sections == nil {
			sections = []models.UploadEvent{}
		}
		b, err := json.Marshal(sections)
		if err != nil {
			return 0, fmt.Errorf("encode sections for %s: %w", t.SiteName, err)
		}
		id := t.ID
		if id == "" {
			id = uuid.NewString()
		}
		createdAt := t.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		rows = append(rows, []any{id, t.SiteID, t.SiteName, t.City, strings.ToLower(t.Division), b, createdAt})
	}
	return s.Pool.CopyFrom(ctx, pgx.Identifier{"site_tasks"}, []string{"id", "site_id", "site_name", "city", "division", "sections", "created_at"}, pgx.CopyFromRows(rows))
}

func (s *Store) InsertBoqDocuments(ctx context.Context, docs []models.BoqDocument) (int64, error) {
	return copyBoqDocuments(ctx, s.Pool, docs)
}

type copier interface {
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

func copyBoqDocuments(ctx context.Context, dst copier, docs []models.BoqDocument) (int64, error) {
	rows := make([][]any, 0, len(docs))
	for _, d := range docs {
		items := d.Items
		if items == nil {
			items = []models.BoqItem{}
		}
		b, err := json.Marshal(items)
		if err != nil {
			return 0, fmt.Errorf("encode items for %s: %w", d.SiteName, err)
		}
		id := d.ID
		if id == "" {
			id = uuid.NewString()
		}
		createdAt := d.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		rows = append(rows, []any{id, d.City, d.SiteID, d.SiteName, string(d.BoqType), b, createdAt})
	}
	return dst.CopyFrom(ctx, pgx.Identifier{"boq_documents"}, []string{"id", "city", "site_id", "site_name", "boq_type", "items", "created_at"}, pgx.CopyFromRows(rows))
}

// ReplaceBoqDocuments drops the stored milestones of every (site, milestone) pair
// being imported and inserts the new ones in the same transaction.
func (s *Store) ReplaceBoqDocuments(ctx context.Context, docs []models.BoqDocument) (int64, error) {
	var inserted int64
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		for _, d := range docs {
			if _, err := tx.Exec(ctx, `DELETE FROM boq_documents WHERE city = $1 AND site_name = $2 AND boq_type = $3`, d.City, d.SiteName, string(d.BoqType)); err != nil {
				return err
			}
		}
		n, err := copyBoqDocuments(ctx, tx, docs)
		if err != nil {
			return err
		}
		inserted = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
