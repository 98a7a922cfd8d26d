package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "gaiafact/internal/core/context"
	"gaiafact/internal/core/apperror"
	"gaiafact/internal/core/id"
	"gaiafact/internal/domain/audit"
)

// CompressionAlgo specifies the compression algorithm used for payloads.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// Compile-time check.
var _ audit.Sink = (*AuditStore)(nil)

// querierSource resolves the querier for the current context: the active
// transaction when one is stored there, the pool otherwise.
type querierSource interface {
	GetQuerier(ctx context.Context) Querier
}

// AuditStore persists the append-only audit trail. Payloads above the
// compression threshold are stored zstd-compressed: payload holds the raw
// JSON bytes and payload_compressed is NULL, or the other way around.
type AuditStore struct {
	db                querierSource
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditStore creates a new audit store.
func NewAuditStore(txm *TxManager) (*AuditStore, error) {
	return newAuditStore(txm)
}

func newAuditStore(db querierSource) (*AuditStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditStore{
		db:                db,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024, // 10KB
	}, nil
}

// Record appends an audit entry. Entries are never updated or deleted.
func (s *AuditStore) Record(ctx context.Context, entry audit.Entry) error {
	if entry.ActingUser == "" {
		entry.ActingUser = appctx.GetUserID(ctx)
	}
	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	var compressed []byte
	algo := CompressionNone
	if len(payload) > s.compressThreshold {
		compressed = s.encoder.EncodeAll(payload, nil)
		payload = nil
		algo = CompressionZstd
	}

	const q = `
		INSERT INTO audit_entries (
			id, product_id, acting_user, action_kind,
			payload, payload_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = s.db.GetQuerier(ctx).Exec(ctx, q,
		entry.ID, entry.ProductID, entry.ActingUser, entry.Kind,
		payload, compressed, algo, entry.CreatedAt,
	)
	if err != nil {
		return apperror.NewDatabase(fmt.Errorf("insert audit entry: %w", err))
	}
	return nil
}

// History retrieves audit entries for a product, newest first.
func (s *AuditStore) History(ctx context.Context, productID id.ID, limit int) ([]audit.Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	const q = `
		SELECT id, product_id, acting_user, action_kind,
			   payload, payload_compressed, compression_algo, created_at
		FROM audit_entries
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.GetQuerier(ctx).Query(ctx, q, productID, limit)
	if err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("query audit history: %w", err))
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var (
			e          audit.Entry
			payload    []byte
			compressed []byte
			algo       CompressionAlgo
		)
		err := rows.Scan(
			&e.ID, &e.ProductID, &e.ActingUser, &e.Kind,
			&payload, &compressed, &algo, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}

		if algo == CompressionZstd && len(compressed) > 0 {
			payload, err = s.decoder.DecodeAll(compressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress payload: %w", err)
			}
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &e.Payload); err != nil {
				return nil, fmt.Errorf("unmarshal payload: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
