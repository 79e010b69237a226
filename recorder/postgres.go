package recorder

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vitwit/paylink/types"
)

// PostgresRecorder writes records to a PostgreSQL table keyed by attempt id.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS payment_transactions (
    attempt_id TEXT PRIMARY KEY,
    link_id TEXT NOT NULL,
    rail TEXT NOT NULL,
    amount TEXT NOT NULL,
    status TEXT NOT NULL,
    payer_name TEXT,
    payer_email TEXT,
    custom_fields JSONB NOT NULL,
    tx_hash TEXT,
    from_address TEXT,
    to_address TEXT,
    network TEXT,
    block_number BIGINT,
    gas_used TEXT,
    gas_price TEXT,
    receipt_id TEXT,
    memo TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// NewPostgresRecorder connects using dsn and ensures the table exists.
func NewPostgresRecorder(ctx context.Context, dsn string) (*PostgresRecorder, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is empty")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresRecorder{pool: pool}, nil
}

func (p *PostgresRecorder) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// Record inserts rec once. A second call with the same key is a no-op.
func (p *PostgresRecorder) Record(ctx context.Context, key string, rec *types.TransactionRecord) error {
	if key == "" {
		return types.Errorf(types.ErrRecording, "attempt id is required")
	}

	fields, err := json.Marshal(rec.CustomFields)
	if err != nil {
		return types.NewError(types.ErrRecording, "encode custom fields", err)
	}

	_, err = p.pool.Exec(ctx, `
INSERT INTO payment_transactions (
    attempt_id, link_id, rail, amount, status, payer_name, payer_email, custom_fields,
    tx_hash, from_address, to_address, network, block_number, gas_used, gas_price, receipt_id, memo
)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8,
        NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''), NULLIF($13::bigint, 0),
        NULLIF($14, ''), NULLIF($15, ''), NULLIF($16, ''), NULLIF($17, ''))
ON CONFLICT (attempt_id) DO NOTHING
`, key, rec.LinkID, string(rec.Rail), rec.Amount, rec.Status, rec.PayerName, rec.PayerEmail, fields,
		rec.TxHash, rec.From, rec.To, rec.Network, int64(rec.BlockNumber), rec.GasUsed, rec.GasPrice, rec.ReceiptID, rec.Memo)
	if err != nil {
		return types.NewError(types.ErrRecording, "insert transaction", err)
	}
	return nil
}

// Count returns how many rows exist for a link.
func (p *PostgresRecorder) Count(ctx context.Context, linkID string) (int, error) {
	var n int
	err := p.pool.QueryRow(ctx, `SELECT count(*) FROM payment_transactions WHERE link_id = $1`, linkID).Scan(&n)
	return n, err
}
