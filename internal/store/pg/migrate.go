package pg

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
)

// Formato de archivo: {version}_{name}.sql (ej: 0001_principals.sql).
var migrationFilePattern = regexp.MustCompile(`^(\d+)_(.+)\.sql$`)

type Migration struct {
	Version int
	Name    string
	SQL     string
}

type MigrationResult struct {
	Applied  []int
	Skipped  []int
	Duration time.Duration
}

// Migrator aplica migraciones embebidas y registra las aplicadas en _migrations.
type Migrator struct {
	fsys fs.FS
	dir  string
}

func NewMigrator(fsys fs.FS, dir string) *Migrator {
	return &Migrator{fsys: fsys, dir: dir}
}

// Parse lee las migraciones ordenadas por versión. Archivos con otro nombre se ignoran.
func (m *Migrator) Parse() ([]Migration, error) {
	entries, err := fs.ReadDir(m.fsys, m.dir)
	if err != nil {
		return nil, err
	}
	var out []Migration
	seen := map[int]string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		match := migrationFilePattern.FindStringSubmatch(e.Name())
		if match == nil {
			continue
		}
		version, _ := strconv.Atoi(match[1])
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("duplicate migration version %d (%s, %s)", version, prev, e.Name())
		}
		seen[version] = e.Name()

		body, err := fs.ReadFile(m.fsys, path.Join(m.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		out = append(out, Migration{Version: version, Name: match[2], SQL: string(body)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Pending devuelve las migraciones no registradas en applied.
func Pending(all []Migration, applied map[int]bool) []Migration {
	var out []Migration
	for _, mig := range all {
		if !applied[mig.Version] {
			out = append(out, mig)
		}
	}
	return out
}

// Run aplica las pendientes, cada una en su propia transacción.
func (m *Migrator) Run(ctx context.Context, s *Store) (*MigrationResult, error) {
	start := time.Now()
	res := &MigrationResult{}

	const ensure = `
		CREATE TABLE IF NOT EXISTS _migrations (
			version INT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`
	if _, err := s.pool.Exec(ctx, ensure); err != nil {
		return res, fmt.Errorf("creating migrations table: %w", err)
	}

	applied, err := appliedVersions(ctx, s)
	if err != nil {
		return res, fmt.Errorf("getting applied migrations: %w", err)
	}
	all, err := m.Parse()
	if err != nil {
		return res, fmt.Errorf("parsing migrations: %w", err)
	}

	for _, mig := range all {
		if applied[mig.Version] {
			res.Skipped = append(res.Skipped, mig.Version)
			continue
		}
		err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.SQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO _migrations (version, name) VALUES ($1, $2)`, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			res.Duration = time.Since(start)
			return res, fmt.Errorf("applying migration %d_%s: %w", mig.Version, mig.Name, err)
		}
		res.Applied = append(res.Applied, mig.Version)
	}
	res.Duration = time.Since(start)
	return res, nil
}

func appliedVersions(ctx context.Context, s *Store) (map[int]bool, error) {
	rows, err := s.pool.Query(ctx, `SELECT version FROM _migrations`)
	if err != nil {
		return nil, err
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, err
	}
	out := make(map[int]bool, len(versions))
	for _, v := range versions {
		out[v] = true
	}
	return out, nil
}
