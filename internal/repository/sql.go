package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"grain-auction/internal/models"
)

// Dialect selects SQL flavour details that differ between backends
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const (
	defaultSQLitePath  = "grain-auction.db"
	defaultPostgresDSN = "postgres://localhost/grain_auction?sslmode=disable"
)

// SQLStore persists auctions and bids as JSON payloads keyed by id.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQLite opens (creating if needed) an embedded sqlite database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if path == "" {
		path = defaultSQLitePath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer keeps sqlite from returning SQLITE_BUSY under concurrent auctions
	db.SetMaxOpenConns(1)
	return newSQLStore(ctx, db, DialectSQLite)
}

// OpenPostgres connects to postgres through the pgx stdlib driver.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newSQLStore(ctx, db, DialectPostgres)
}

func newSQLStore(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: dialect}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) ensureSchema(ctx context.Context) error {
	payloadType := "TEXT"
	if s.dialect == DialectPostgres {
		payloadType = "JSONB"
	}
	var stmts []string
	if s.dialect == DialectSQLite {
		// the pool holds a single connection, so the pragma sticks
		stmts = append(stmts, `PRAGMA foreign_keys = ON`)
	}
	stmts = append(stmts,
		`CREATE TABLE IF NOT EXISTS auctions (
			id TEXT PRIMARY KEY,
			position BIGINT NOT NULL,
			payload `+payloadType+` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bids (
			id TEXT PRIMARY KEY,
			auction_id TEXT NOT NULL REFERENCES auctions(id),
			sequence BIGINT NOT NULL,
			payload `+payloadType+` NOT NULL,
			UNIQUE (auction_id, sequence)
		)`,
	)
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders into $n for postgres
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
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

// SaveAuction upserts the auction, keeping its original creation position.
func (s *SQLStore) SaveAuction(ctx context.Context, auction models.Auction) error {
	data, err := json.Marshal(auction)
	if err != nil {
		return fmt.Errorf("encode auction %s: %w", auction.AuctionID, err)
	}
	q := s.rebind(`INSERT INTO auctions(id, position, payload)
		VALUES(?, (SELECT COALESCE(MAX(position), 0) + 1 FROM auctions), ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload`)
	if _, err := s.db.ExecContext(ctx, q, auction.AuctionID, string(data)); err != nil {
		return fmt.Errorf("upsert auction %s: %w", auction.AuctionID, err)
	}
	return nil
}

// AppendBid inserts a bid. The unique (auction_id, sequence) pair rejects out-of-order writers.
func (s *SQLStore) AppendBid(ctx context.Context, bid models.Bid) error {
	data, err := json.Marshal(bid)
	if err != nil {
		return fmt.Errorf("encode bid %s: %w", bid.BidID, err)
	}
	q := s.rebind(`INSERT INTO bids(id, auction_id, sequence, payload) VALUES(?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, q, bid.BidID, bid.AuctionID, bid.Sequence, string(data)); err != nil {
		return fmt.Errorf("insert bid %s: %w", bid.BidID, err)
	}
	return nil
}

// LoadAll reads every auction in creation order and every bid in ledger order
func (s *SQLStore) LoadAll(ctx context.Context) (auctions []models.Auction, bids []models.Bid, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM auctions ORDER BY position`)
	if err != nil {
		return nil, nil, fmt.Errorf("select auctions: %w", err)
	}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			_ = rows.Close()
			return nil, nil, fmt.Errorf("scan auction: %w", err)
		}
		var a models.Auction
		if err := json.Unmarshal(payload, &a); err != nil {
			_ = rows.Close()
			return nil, nil, fmt.Errorf("decode auction: %w", err)
		}
		auctions = append(auctions, a)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, nil, fmt.Errorf("iterate auctions: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, nil, fmt.Errorf("close auction rows: %w", err)
	}

	bidRows, err := s.db.QueryContext(ctx, `SELECT payload FROM bids ORDER BY auction_id, sequence`)
	if err != nil {
		return nil, nil, fmt.Errorf("select bids: %w", err)
	}
	defer func() { _ = bidRows.Close() }()
	for bidRows.Next() {
		var payload []byte
		if err := bidRows.Scan(&payload); err != nil {
			return nil, nil, fmt.Errorf("scan bid: %w", err)
		}
		var b models.Bid
		if err := json.Unmarshal(payload, &b); err != nil {
			return nil, nil, fmt.Errorf("decode bid: %w", err)
		}
		bids = append(bids, b)
	}
	if err := bidRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate bids: %w", err)
	}
	return auctions, bids, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Dialect reports which backend the store talks to
func (s *SQLStore) Dialect() Dialect { return s.dialect }

// Close releases the database handle
func (s *SQLStore) Close() error { return s.db.Close() }
