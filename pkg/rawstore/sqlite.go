package rawstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure-Go driver
)

// SQLite persists vectors to a single-file SQLite database, for indexes
// too large to hold uncompressed in RAM. Vectors are framed
// length-prefixed little-endian float32, the same shape the rest of the
// corpus uses for its BLOB columns.
type SQLite struct {
	mu     sync.Mutex
	dim    int
	db     *sql.DB
	count  uint64
	closed bool
}

// OpenSQLite opens (creating if absent) a SQLite-backed raw vector store
// at path, for dim-dimensional vectors.
func OpenSQLite(ctx context.Context, path string, dim int) (*SQLite, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("rawstore: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(2 * time.Hour)

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS vectors (
			id INTEGER PRIMARY KEY,
			data BLOB NOT NULL
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("rawstore: create table: %w", err)
	}

	var count uint64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vectors`).Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("rawstore: count rows: %w", err)
	}

	return &SQLite{dim: dim, db: db, count: count}, nil
}

func (s *SQLite) Append(ctx context.Context, vector []float32) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	if len(vector) != s.dim {
		return 0, errDim(s.dim, len(vector))
	}

	id := uint32(s.count)
	blob, err := encodeVector(vector)
	if err != nil {
		return 0, fmt.Errorf("rawstore: encode vector %d: %w", id, err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO vectors (id, data) VALUES (?, ?)`, id, blob); err != nil {
		return 0, fmt.Errorf("rawstore: insert vector %d: %w", id, err)
	}
	s.count++
	return id, nil
}

func (s *SQLite) Fetch(ctx context.Context, id uint32) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM vectors WHERE id = ?`, id).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("rawstore: fetch vector %d: %w", id, err)
	}
	return decodeVector(blob)
}

func (s *SQLite) Len() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func encodeVector(vector []float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, int32(len(vector))); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, vector); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("rawstore: truncated vector blob")
	}
	r := bytes.NewReader(data)
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if n < 0 || int(n)*4 != r.Len() {
		return nil, fmt.Errorf("rawstore: vector blob length mismatch")
	}
	out := make([]float32, n)
	if err := binary.Read(r, binary.LittleEndian, out); err != nil {
		return nil, err
	}
	return out, nil
}
