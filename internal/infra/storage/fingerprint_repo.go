package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mapforge/crossid/internal/domain/catalog"
	"github.com/mapforge/crossid/internal/domain/fingerprint"
)

// SQLiteFingerprintRepository persists built fingerprint index snapshots so
// repeated loads of the same asset set skip rehashing every sprite. Snapshots
// are keyed by an asset-set signature; a changed signature misses and forces
// a full rebuild. Fingerprints are stored as signed int64 (sqlite INTEGER)
// and flipped back on load.
type SQLiteFingerprintRepository struct {
	db *sql.DB
}

// signBit flips the top bit so signed sqlite INTEGER ordering matches
// unsigned fingerprint ordering.
const signBit = uint64(1) << 63

func NewSQLiteFingerprintRepository(db *sql.DB) *SQLiteFingerprintRepository {
	return &SQLiteFingerprintRepository{db: db}
}

// SaveSnapshot replaces any snapshot stored under signature with rows.
func (r *SQLiteFingerprintRepository) SaveSnapshot(ctx context.Context, signature string, rows []fingerprint.Row) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM fingerprint_cache WHERE asset_signature = ?`, signature); err != nil {
		return fmt.Errorf("failed to clear old snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fingerprint_cache (asset_signature, fingerprint, server_id, subtype)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, signature, int64(row.Fingerprint^signBit), int64(row.ServerID), int64(row.Subtype)); err != nil {
			return fmt.Errorf("failed to insert snapshot row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the rows stored under signature, or nil when the
// signature has no snapshot.
func (r *SQLiteFingerprintRepository) LoadSnapshot(ctx context.Context, signature string) ([]fingerprint.Row, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT fingerprint, server_id, subtype FROM fingerprint_cache
		WHERE asset_signature = ?
		ORDER BY fingerprint, server_id, subtype
	`, signature)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	var out []fingerprint.Row
	for rows.Next() {
		var fp, sid, subtype int64
		if err := rows.Scan(&fp, &sid, &subtype); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		out = append(out, fingerprint.Row{
			Fingerprint: uint64(fp) ^ signBit,
			ServerID:    catalog.ServerID(sid),
			Subtype:     uint16(subtype),
		})
	}
	return out, rows.Err()
}

// DeleteSnapshot removes the snapshot stored under signature.
func (r *SQLiteFingerprintRepository) DeleteSnapshot(ctx context.Context, signature string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM fingerprint_cache WHERE asset_signature = ?`, signature); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
