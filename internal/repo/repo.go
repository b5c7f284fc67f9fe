// Package repo persists joint analyses in PostgreSQL or SQLite.
package repo

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"

	"Fastener/internal/calc/calcerr"
	"Fastener/internal/calc/joint"
	"Fastener/internal/calc/margin"
)

//go:embed schema.sql
var schema string

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Repository interface {
	Save(ctx context.Context, req joint.Request, res margin.JointAnalysisResult) (string, error)
	Get(ctx context.Context, id string) (Record, error)
	ListByJoint(ctx context.Context, jointID string, limit int) ([]Record, error)
}

type Record struct {
	ID          string                     `json:"id"`
	JointID     string                     `json:"joint_id"`
	Fingerprint string                     `json:"fingerprint"`
	CreatedAt   time.Time                  `json:"created_at"`
	Request     joint.Request              `json:"request"`
	Result      margin.JointAnalysisResult `json:"result"`
}

type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

func requireSSL(dsn string) string {
	switch {
	case strings.Contains(dsn, "sslmode="):
		return dsn
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		if strings.Contains(dsn, "?") {
			return dsn + "&sslmode=require"
		}
		return dsn + "?sslmode=require"
	}
	return dsn + " sslmode=require"
}

// Open connects, pings and migrates. Postgres DSNs without an sslmode get
// sslmode=require.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case DriverPostgres:
		dsn = requireSSL(dsn)
	case DriverSQLite:
	default:
		return nil, calcerr.Newf(calcerr.CodeConfiguration, "unsupported database driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// single writer
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	s := New(db, driver)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver, now: time.Now}
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// rebind turns ? placeholders into $n for postgres.
func (s *Store) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Fingerprint is the BLAKE2b-256 digest of the request's JSON encoding.
// Equal requests have equal fingerprints.
func Fingerprint(req joint.Request) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

func (s *Store) Save(ctx context.Context, req joint.Request, res margin.JointAnalysisResult) (string, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	resJSON, err := json.Marshal(res)
	if err != nil {
		return "", err
	}
	fp, err := Fingerprint(req)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	var governing sql.NullFloat64
	if res.GoverningMargin != nil {
		governing = sql.NullFloat64{Float64: *res.GoverningMargin, Valid: true}
	}

	query := s.rebind(`INSERT INTO analyses (id, joint_id, fingerprint, standard, pass, governing, request, result, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = s.db.ExecContext(ctx, query, id, res.JointID, fp, res.Standard, res.Pass, governing,
		string(reqJSON), string(resJSON), s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("save analysis: %w", err)
	}
	return id, nil
}

const selectRecord = `SELECT id, joint_id, fingerprint, request, result, created_at FROM analyses`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var rec Record
	var reqJSON, resJSON, created string
	if err := sc.Scan(&rec.ID, &rec.JointID, &rec.Fingerprint, &reqJSON, &resJSON, &created); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(reqJSON), &rec.Request); err != nil {
		return Record{}, fmt.Errorf("decode request %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(resJSON), &rec.Result); err != nil {
		return Record{}, fmt.Errorf("decode result %s: %w", rec.ID, err)
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Record{}, fmt.Errorf("decode created_at %s: %w", rec.ID, err)
	}
	rec.CreatedAt = t
	return rec, nil
}

func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Record{}, calcerr.Newf(calcerr.CodeNotFound, "no analysis %q", id)
	}
	row := s.db.QueryRowContext(ctx, s.rebind(selectRecord+` WHERE id = ?`), id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, calcerr.Newf(calcerr.CodeNotFound, "no analysis %q", id)
	}
	return rec, err
}

// ListByJoint returns the newest records of a joint first. limit <= 0
// means 100.
func (s *Store) ListByJoint(ctx context.Context, jointID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		s.rebind(selectRecord+` WHERE joint_id = ? ORDER BY created_at DESC, id LIMIT ?`), jointID, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
