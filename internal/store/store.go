// Package store writes the catalog into a SQL database so it can be queried
// by other tools. SQLite (modernc.org/sqlite) and PostgreSQL (lib/pq) are
// supported; both share one schema.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/thoreinstein/ccdir/internal/catalog"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/resource"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrUnsupportedDriver is returned by Open for drivers other than sqlite and
// postgres.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	slug TEXT NOT NULL,
	description TEXT NOT NULL,
	icon TEXT NOT NULL,
	color TEXT NOT NULL,
	sort_order INTEGER NOT NULL,
	resource_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS resources (
	kind TEXT NOT NULL,
	id TEXT NOT NULL,
	slug TEXT NOT NULL,
	title TEXT NOT NULL,
	tagline TEXT NOT NULL,
	category_id TEXT NOT NULL,
	difficulty TEXT NOT NULL,
	votes INTEGER NOT NULL,
	copies INTEGER NOT NULL,
	featured BOOLEAN NOT NULL,
	last_updated TEXT NOT NULL,
	data TEXT NOT NULL,
	PRIMARY KEY (kind, id)
);
`

// Store is an open catalog database.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the database and creates the tables if needed. For
// SQLite the parent directory of the database file is created.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		if dsn != ":memory:" && dsn != "" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, errors.Wrapf(err, "creating database directory for %s", dsn)
			}
		}
	case DriverPostgres:
	default:
		return nil, errors.Wrapf(ErrUnsupportedDriver, "%q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s database", driver)
	}
	if driver == DriverSQLite {
		// One connection keeps :memory: databases shared and serializes writers.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "connecting to %s database", driver)
	}

	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, "creating tables")
		}
	}
	return &Store{db: db, driver: driver}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Summary counts the rows written by Save.
type Summary struct {
	Categories int `json:"categories"`
	Resources  int `json:"resources"`
	Removed    int `json:"removed"`
}

type row struct {
	kind resource.ResourceType
	res  resource.Resource
	data any
}

// Save upserts every category and record of c by id and kind, and removes
// rows for records no longer in the catalog. It runs in one transaction.
func (s *Store) Save(ctx context.Context, c *catalog.Catalog) (Summary, error) {
	var sum Summary

	var rows []row
	for _, cfg := range c.Configs() {
		rows = append(rows, row{resource.TypeClaudeMd, cfg.AsResource(), cfg})
	}
	for _, p := range c.Prompts() {
		rows = append(rows, row{resource.TypePrompt, p.AsResource(), p})
	}
	for _, t := range c.Tools() {
		rows = append(rows, row{resource.TypeTool, t.AsResource(), t})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sum, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	upsertCategory := s.rebind(`
INSERT INTO categories (id, name, slug, description, icon, color, sort_order, resource_count)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET name=excluded.name, slug=excluded.slug, description=excluded.description,
	icon=excluded.icon, color=excluded.color, sort_order=excluded.sort_order, resource_count=excluded.resource_count`)
	for _, cat := range c.Categories() {
		if _, err := tx.ExecContext(ctx, upsertCategory,
			cat.ID, cat.Name, cat.Slug, cat.Description, cat.Icon, cat.Color, cat.Order, cat.ResourceCount); err != nil {
			return sum, errors.Wrapf(err, "saving category %s", cat.ID)
		}
		sum.Categories++
	}

	upsertResource := s.rebind(`
INSERT INTO resources (kind, id, slug, title, tagline, category_id, difficulty, votes, copies, featured, last_updated, data)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (kind, id) DO UPDATE SET slug=excluded.slug, title=excluded.title, tagline=excluded.tagline,
	category_id=excluded.category_id, difficulty=excluded.difficulty, votes=excluded.votes, copies=excluded.copies,
	featured=excluded.featured, last_updated=excluded.last_updated, data=excluded.data`)
	keep := make(map[string]bool, len(rows))
	for _, r := range rows {
		data, err := json.Marshal(r.data)
		if err != nil {
			return sum, errors.Wrapf(err, "encoding %s %s", r.kind.Label(), r.res.Slug)
		}
		id := rowID(r.res)
		if _, err := tx.ExecContext(ctx, upsertResource,
			string(r.kind), id, r.res.Slug, r.res.Title, r.res.Tagline, r.res.CategoryID, string(r.res.Difficulty),
			r.res.Stats.Votes, r.res.Stats.Copies, r.res.Featured, r.res.LastUpdated, string(data)); err != nil {
			return sum, errors.Wrapf(err, "saving %s %s", r.kind.Label(), r.res.Slug)
		}
		keep[string(r.kind)+"\x00"+id] = true
		sum.Resources++
	}

	removed, err := s.prune(ctx, tx, keep)
	if err != nil {
		return sum, err
	}
	sum.Removed = removed

	if err := tx.Commit(); err != nil {
		return sum, errors.Wrap(err, "committing transaction")
	}
	return sum, nil
}

func (s *Store) prune(ctx context.Context, tx *sql.Tx, keep map[string]bool) (int, error) {
	existing, err := tx.QueryContext(ctx, `SELECT kind, id FROM resources`)
	if err != nil {
		return 0, errors.Wrap(err, "listing stored resources")
	}
	var stale [][2]string
	for existing.Next() {
		var kind, id string
		if err := existing.Scan(&kind, &id); err != nil {
			_ = existing.Close()
			return 0, errors.Wrap(err, "reading stored resources")
		}
		if !keep[kind+"\x00"+id] {
			stale = append(stale, [2]string{kind, id})
		}
	}
	if err := existing.Close(); err != nil {
		return 0, errors.Wrap(err, "reading stored resources")
	}
	if err := existing.Err(); err != nil {
		return 0, errors.Wrap(err, "reading stored resources")
	}

	del := s.rebind(`DELETE FROM resources WHERE kind = ? AND id = ?`)
	for _, k := range stale {
		if _, err := tx.ExecContext(ctx, del, k[0], k[1]); err != nil {
			return 0, errors.Wrapf(err, "removing %s %s", k[0], k[1])
		}
	}
	return len(stale), nil
}

// Count returns the number of stored records of kind t.
func (s *Store) Count(ctx context.Context, t resource.ResourceType) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM resources WHERE kind = ?`), string(t)).Scan(&n)
	if err != nil {
		return 0, errors.Wrapf(err, "counting %s records", t.Label())
	}
	return n, nil
}

// Slugs returns the stored slugs of kind t in ascending order.
func (s *Store) Slugs(ctx context.Context, t resource.ResourceType) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT slug FROM resources WHERE kind = ? ORDER BY slug`), string(t))
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s slugs", t.Label())
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, errors.Wrap(err, "reading slug")
		}
		slugs = append(slugs, slug)
	}
	return slugs, errors.Wrap(rows.Err(), "listing slugs")
}

// rebind rewrites ? placeholders to $1, $2, ... for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// rowID keys a record by id, falling back to the slug for records without
// one.
func rowID(r resource.Resource) string {
	if r.ID != "" {
		return r.ID
	}
	return r.Slug
}
