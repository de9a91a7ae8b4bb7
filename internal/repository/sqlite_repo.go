package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/domain"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateTxnid = errors.New("duplicate txnid")
)

// timeLayout is RFC 3339 with a fixed-width 9-digit fraction so that
// lexicographic comparison in SQL matches chronological order; the trimmed
// RFC3339Nano form does not sort correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	db *sql.DB
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.Exec("PRAGMA foreign_keys = ON;")
	db.Exec("PRAGMA journal_mode = WAL;")
	db.Exec("PRAGMA busy_timeout = 5000;")

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS transactions(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			txnid TEXT NOT NULL UNIQUE,
			merchant_id TEXT NOT NULL,
			amount_minor INTEGER NOT NULL,
			product_info TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			udf1 TEXT NOT NULL DEFAULT '', udf2 TEXT NOT NULL DEFAULT '',
			udf3 TEXT NOT NULL DEFAULT '', udf4 TEXT NOT NULL DEFAULT '',
			udf5 TEXT NOT NULL DEFAULT '', udf6 TEXT NOT NULL DEFAULT '',
			udf7 TEXT NOT NULL DEFAULT '', udf8 TEXT NOT NULL DEFAULT '',
			udf9 TEXT NOT NULL DEFAULT '', udf10 TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			hash TEXT NOT NULL DEFAULT '',
			hash_verified INTEGER NOT NULL DEFAULT 0,
			bank_ref TEXT NOT NULL DEFAULT '',
			bank_name TEXT NOT NULL DEFAULT '',
			card_type TEXT NOT NULL DEFAULT '',
			gateway_txn_id TEXT NOT NULL DEFAULT '',
			raw_response TEXT NOT NULL DEFAULT '',
			error_message TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tx_txnid ON transactions(txnid);
		CREATE INDEX IF NOT EXISTS idx_tx_merchant ON transactions(merchant_id);
		CREATE INDEX IF NOT EXISTS idx_tx_status_created ON transactions(status, created_at);

		CREATE TABLE IF NOT EXISTS merchants(
			id TEXT PRIMARY KEY,
			merchant_key TEXT NOT NULL,
			salt TEXT NOT NULL,
			active INTEGER NOT NULL DEFAULT 1
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

const txColumns = `
	id, txnid, merchant_id, amount_minor, product_info, first_name, email, phone,
	udf1, udf2, udf3, udf4, udf5, udf6, udf7, udf8, udf9, udf10,
	status, hash, hash_verified, bank_ref, bank_name, card_type,
	gateway_txn_id, raw_response, error_message, created_at, updated_at`

const txInsert = `
	INSERT INTO transactions(
		txnid, merchant_id, amount_minor, product_info, first_name, email, phone,
		udf1, udf2, udf3, udf4, udf5, udf6, udf7, udf8, udf9, udf10,
		status, hash, hash_verified, bank_ref, bank_name, card_type,
		gateway_txn_id, raw_response, error_message, created_at, updated_at
	)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`

func txArgs(t *domain.Transaction) []any {
	return []any{
		t.Txnid,
		t.MerchantID,
		t.AmountMinor,
		t.ProductInfo,
		t.FirstName,
		t.Email,
		t.Phone,
		t.UDF[0], t.UDF[1], t.UDF[2], t.UDF[3], t.UDF[4],
		t.UDF[5], t.UDF[6], t.UDF[7], t.UDF[8], t.UDF[9],
		string(t.Status),
		t.Hash,
		boolInt(t.HashVerified),
		t.BankRef,
		t.BankName,
		t.CardType,
		t.GatewayTxnID,
		t.RawResponse,
		t.ErrorMessage,
		t.CreatedAt.UTC().Format(timeLayout),
		t.UpdatedAt.UTC().Format(timeLayout),
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Insert writes a brand-new row. A txnid collision is an initiation-time
// error, never silently ignored.
func (s *Store) Insert(ctx context.Context, t *domain.Transaction) error {
	_, err := s.db.ExecContext(ctx, txInsert, txArgs(t)...)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicateTxnid
	}
	return err
}

func (s *Store) GetByTxnid(ctx context.Context, txnid string) (*domain.Transaction, error) {
	q := `SELECT ` + txColumns + ` FROM transactions WHERE txnid = ?`

	row := s.db.QueryRowContext(ctx, q, txnid)
	t, err := scanTx(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// Upsert is the atomicity boundary for callback writes. The read-merge-write
// for one txnid runs inside a single database transaction, creating the row
// when absent and merging per domain.Merge when present. The returned flag
// reports a terminal-status conflict for the caller to log.
func (s *Store) Upsert(ctx context.Context, incoming *domain.Transaction) (*domain.Transaction, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+txColumns+` FROM transactions WHERE txnid = ?`, incoming.Txnid)
	existing, err := scanTx(row)

	if errors.Is(err, sql.ErrNoRows) {
		res, err := tx.ExecContext(ctx, txInsert, txArgs(incoming)...)
		if err != nil {
			return nil, false, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, false, err
		}
		if err := tx.Commit(); err != nil {
			return nil, false, err
		}
		created := *incoming
		created.ID = id
		return &created, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	merged, conflict := domain.Merge(existing, incoming)

	q := `
		UPDATE transactions SET
			merchant_id = ?, amount_minor = ?, product_info = ?, first_name = ?,
			email = ?, phone = ?,
			udf1 = ?, udf2 = ?, udf3 = ?, udf4 = ?, udf5 = ?,
			udf6 = ?, udf7 = ?, udf8 = ?, udf9 = ?, udf10 = ?,
			status = ?, hash = ?, hash_verified = ?, bank_ref = ?, bank_name = ?,
			card_type = ?, gateway_txn_id = ?, raw_response = ?, error_message = ?,
			updated_at = ?
		WHERE txnid = ?
	`
	_, err = tx.ExecContext(ctx, q,
		merged.MerchantID,
		merged.AmountMinor,
		merged.ProductInfo,
		merged.FirstName,
		merged.Email,
		merged.Phone,
		merged.UDF[0], merged.UDF[1], merged.UDF[2], merged.UDF[3], merged.UDF[4],
		merged.UDF[5], merged.UDF[6], merged.UDF[7], merged.UDF[8], merged.UDF[9],
		string(merged.Status),
		merged.Hash,
		boolInt(merged.HashVerified),
		merged.BankRef,
		merged.BankName,
		merged.CardType,
		merged.GatewayTxnID,
		merged.RawResponse,
		merged.ErrorMessage,
		merged.UpdatedAt.UTC().Format(timeLayout),
		merged.Txnid,
	)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return merged, conflict, nil
}

// ListStale returns the snapshot of rows still awaiting a gateway outcome
// created at or before the cutoff: a row created at exactly cutoff has been
// waiting the full staleness window and is due.
func (s *Store) ListStale(ctx context.Context, before time.Time) ([]domain.Transaction, error) {
	q := `
		SELECT ` + txColumns + `
		FROM transactions
		WHERE status IN (?, ?) AND created_at <= ?
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, q,
		string(domain.StatusInitiated),
		string(domain.StatusProcessing),
		before.UTC().Format(timeLayout),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Transaction
	for rows.Next() {
		t, err := scanTx(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *t)
	}

	return res, rows.Err()
}

// MarkFailedIfStale force-fails one row, conditional on it still being in a
// non-terminal status. Zero rows affected means a callback already settled
// the row and the sweep must leave it alone.
func (s *Store) MarkFailedIfStale(ctx context.Context, txnid, errMsg string, now time.Time) (bool, error) {
	q := `
		UPDATE transactions
		SET status = ?, error_message = ?, updated_at = ?
		WHERE txnid = ? AND status IN (?, ?)
	`

	res, err := s.db.ExecContext(ctx, q,
		string(domain.StatusFailed),
		errMsg,
		now.UTC().Format(timeLayout),
		txnid,
		string(domain.StatusInitiated),
		string(domain.StatusProcessing),
	)
	if err != nil {
		return false, err
	}

	aff, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return aff > 0, nil
}

type TxFilter struct {
	MerchantID string
	Txnid      string
	Status     domain.Status
}

func (s *Store) ListTransactions(ctx context.Context, f TxFilter, limit, offset int) ([]domain.Transaction, error) {
	q := `SELECT ` + txColumns + ` FROM transactions WHERE 1 = 1`
	args := []any{}

	if f.MerchantID != "" {
		q += " AND merchant_id = ?"
		args = append(args, f.MerchantID)
	}

	if f.Txnid != "" {
		q += " AND txnid = ?"
		args = append(args, f.Txnid)
	}

	if f.Status != "" {
		q += " AND status = ?"
		args = append(args, string(f.Status))
	}

	q += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Transaction
	for rows.Next() {
		t, err := scanTx(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *t)
	}

	return res, rows.Err()
}

func (s *Store) GetMerchant(ctx context.Context, id string) (*domain.Merchant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, merchant_key, salt, active FROM merchants WHERE id = ?`, id)

	var m domain.Merchant
	var active int
	if err := row.Scan(&m.ID, &m.Key, &m.Salt, &active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	m.Active = active == 1
	return &m, nil
}

// SeedMerchant registers a merchant if it does not exist yet; used at
// startup to bootstrap the configured merchant.
func (s *Store) SeedMerchant(ctx context.Context, m *domain.Merchant) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO merchants(id, merchant_key, salt, active) VALUES(?, ?, ?, ?)`,
		m.ID, m.Key, m.Salt, boolInt(m.Active),
	)
	return err
}

func scanTx(scanner interface {
	Scan(dest ...any) error
}) (*domain.Transaction, error) {
	var t domain.Transaction
	var status string
	var verified int
	var createdStr, updatedStr string

	if err := scanner.Scan(
		&t.ID,
		&t.Txnid,
		&t.MerchantID,
		&t.AmountMinor,
		&t.ProductInfo,
		&t.FirstName,
		&t.Email,
		&t.Phone,
		&t.UDF[0], &t.UDF[1], &t.UDF[2], &t.UDF[3], &t.UDF[4],
		&t.UDF[5], &t.UDF[6], &t.UDF[7], &t.UDF[8], &t.UDF[9],
		&status,
		&t.Hash,
		&verified,
		&t.BankRef,
		&t.BankName,
		&t.CardType,
		&t.GatewayTxnID,
		&t.RawResponse,
		&t.ErrorMessage,
		&createdStr,
		&updatedStr,
	); err != nil {
		return nil, err
	}

	t.Status = domain.Status(status)
	t.HashVerified = verified == 1

	created, err := time.Parse(time.RFC3339Nano, createdStr)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	t.CreatedAt = created

	updated, err := time.Parse(time.RFC3339Nano, updatedStr)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	t.UpdatedAt = updated

	return &t, nil
}
