package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mapforge/crossid/internal/report"
)

// SQLiteReportRepository durably stores diagnostics report entries so
// unmapped-identifier and collision history survives editor restarts.
type SQLiteReportRepository struct {
	db *sql.DB
}

func NewSQLiteReportRepository(db *sql.DB) *SQLiteReportRepository {
	return &SQLiteReportRepository{db: db}
}

// Append stores one report entry under its operation label.
func (r *SQLiteReportRepository) Append(ctx context.Context, operation string, e report.Entry) error {
	query := `
		INSERT INTO reports (id, operation, timestamp, kind, raw_id, server_id, fingerprint, context, outcome)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, operation, e.Timestamp, string(e.Kind), int64(e.RawID),
		int64(e.ServerID), int64(e.Fingerprint), e.Context, e.Outcome,
	)
	if err != nil {
		return fmt.Errorf("failed to append report entry: %w", err)
	}
	return nil
}

func (r *SQLiteReportRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]report.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []report.Entry
	for rows.Next() {
		var e report.Entry
		var kind string
		var rawID, serverID, fp int64
		if err := rows.Scan(&e.ID, &e.Timestamp, &kind, &rawID, &serverID, &fp, &e.Context, &e.Outcome); err != nil {
			return nil, err
		}
		e.Kind = report.Kind(kind)
		e.RawID = uint16(rawID)
		e.ServerID = uint16(serverID)
		e.Fingerprint = uint64(fp)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListByOperation returns every stored entry for one operation, oldest first.
func (r *SQLiteReportRepository) ListByOperation(ctx context.Context, operation string) ([]report.Entry, error) {
	query := `SELECT id, timestamp, kind, raw_id, server_id, fingerprint, context, outcome FROM reports WHERE operation = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, operation)
}

// ListByKind returns every stored entry of one kind, oldest first.
func (r *SQLiteReportRepository) ListByKind(ctx context.Context, kind report.Kind) ([]report.Entry, error) {
	query := `SELECT id, timestamp, kind, raw_id, server_id, fingerprint, context, outcome FROM reports WHERE kind = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, string(kind))
}
