package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/Batipro56920/batipro/internal/devis"
)

// TaskStatusTodo is the initial status of every derived task.
const TaskStatusTodo = "A_FAIRE"

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// Store persists parsed devis results. One store works against either
// Postgres (production) or a local SQLite file, selected by the DSN.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// StoredLine is a devis_lignes row.
type StoredLine struct {
	Ordre        int     `json:"ordre"`
	Code         string  `json:"code,omitempty"`
	Designation  string  `json:"designation"`
	Quantite     float64 `json:"quantite"`
	Unite        string  `json:"unite"`
	CorpsEtat    string  `json:"corps_etat,omitempty"`
	TitreTache   string  `json:"titre_tache,omitempty"`
	GenererTache bool    `json:"generer_tache"`
}

// Open connects per the DSN: postgres:// (or postgresql://) selects the pgx
// driver, everything else is treated as a SQLite path, with an optional
// "sqlite:" prefix.
func Open(dsn string) (*Store, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return &Store{db: db, dialect: dialectPostgres}, nil
	}

	path := strings.TrimPrefix(dsn, "sqlite:")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc sqlite serializes writes anyway; one connection keeps
	// in-memory databases coherent too.
	db.SetMaxOpenConns(1)
	return &Store{db: db, dialect: dialectSQLite}, nil
}

// Init creates the tables if they don't exist.
func (s *Store) Init(ctx context.Context) error {
	schema := schemaSQLite
	if s.dialect == dialectPostgres {
		schema = schemaPostgres
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $1..$N for Postgres. Queries are written
// with ? and rebound at execution.
func (s *Store) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ReplaceDevisLines atomically replaces the stored lines and structure of a
// devis with a fresh parse result. Delete-then-insert in one transaction: on
// any failure the previous import stays untouched. Re-importing identical
// text therefore converges to the same rows.
func (s *Store) ReplaceDevisLines(ctx context.Context, devisID string, res *devis.Result) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM devis_lignes WHERE devis_id = ?`), devisID); err != nil {
		return 0, fmt.Errorf("delete lines: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM devis_structure WHERE devis_id = ?`), devisID); err != nil {
		return 0, fmt.Errorf("delete structure: %w", err)
	}

	lineStmt, err := tx.PrepareContext(ctx, s.rebind(
		`INSERT INTO devis_lignes (devis_id, ordre, code, designation, quantite, unite, corps_etat, titre_tache, generer_tache)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return 0, fmt.Errorf("prepare line insert: %w", err)
	}
	defer lineStmt.Close()

	for i, l := range res.Lines {
		if _, err := lineStmt.ExecContext(ctx, devisID, i+1, l.Code, l.Designation, l.Quantite, l.Unite, l.Lot, l.SousLot, true); err != nil {
			return 0, fmt.Errorf("insert line %d: %w", i+1, err)
		}
	}

	sectionStmt, err := tx.PrepareContext(ctx, s.rebind(
		`INSERT INTO devis_structure (devis_id, ordre, code, titre, niveau, parent_code)
		 VALUES (?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return 0, fmt.Errorf("prepare structure insert: %w", err)
	}
	defer sectionStmt.Close()

	for i, sec := range res.Structure {
		if _, err := sectionStmt.ExecContext(ctx, devisID, i+1, sec.Code, sec.Title, sec.Level, sec.ParentCode); err != nil {
			return 0, fmt.Errorf("insert structure %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(res.Lines), nil
}

// CreateTasks derives one chantier task per inserted line. Deliberately a
// separate call and transaction: a task failure must never roll back lines
// that are already committed.
func (s *Store) CreateTasks(ctx context.Context, chantierID string, lines []devis.Line) (int, error) {
	if len(lines) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.rebind(
		`INSERT INTO chantier_tasks (chantier_id, titre, corps_etat, status, created_at)
		 VALUES (?, ?, ?, ?, ?)`))
	if err != nil {
		return 0, fmt.Errorf("prepare task insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, l := range lines {
		title := l.Designation
		if l.SousLot != "" {
			title = l.SousLot + " — " + l.Designation
		}
		if _, err := stmt.ExecContext(ctx, chantierID, title, l.Lot, TaskStatusTodo, now); err != nil {
			return 0, fmt.Errorf("insert task: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(lines), nil
}

// ListDevisLines returns the stored lines of a devis in import order.
func (s *Store) ListDevisLines(ctx context.Context, devisID string) ([]StoredLine, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT ordre, code, designation, quantite, unite, corps_etat, titre_tache, generer_tache
		 FROM devis_lignes WHERE devis_id = ? ORDER BY ordre`), devisID)
	if err != nil {
		return nil, fmt.Errorf("query lines: %w", err)
	}
	defer rows.Close()

	var out []StoredLine
	for rows.Next() {
		var l StoredLine
		if err := rows.Scan(&l.Ordre, &l.Code, &l.Designation, &l.Quantite, &l.Unite, &l.CorpsEtat, &l.TitreTache, &l.GenererTache); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// DevisStructure returns the stored outline of a devis in import order.
func (s *Store) DevisStructure(ctx context.Context, devisID string) ([]devis.Section, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT code, titre, niveau, parent_code
		 FROM devis_structure WHERE devis_id = ? ORDER BY ordre`), devisID)
	if err != nil {
		return nil, fmt.Errorf("query structure: %w", err)
	}
	defer rows.Close()

	var out []devis.Section
	for rows.Next() {
		var sec devis.Section
		if err := rows.Scan(&sec.Code, &sec.Title, &sec.Level, &sec.ParentCode); err != nil {
			return nil, fmt.Errorf("scan structure: %w", err)
		}
		out = append(out, sec)
	}
	return out, rows.Err()
}

// DeleteDevisLines wipes a devis' import state (lines and structure).
// Returns the number of lines removed.
func (s *Store) DeleteDevisLines(ctx context.Context, devisID string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	r, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM devis_lignes WHERE devis_id = ?`), devisID)
	if err != nil {
		return 0, fmt.Errorf("delete lines: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM devis_structure WHERE devis_id = ?`), devisID); err != nil {
		return 0, fmt.Errorf("delete structure: %w", err)
	}

	n, _ := r.RowsAffected()
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return int(n), nil
}
