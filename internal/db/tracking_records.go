package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"outreach/internal/models"
	"outreach/internal/records"
)

// recordColumns is the standard column list for tracking record queries.
const recordColumns = `id, original_url, tracking_url, source, medium, campaign, title, filter, created_at`

func scanRecord(row pgx.Row) (models.TrackingRecord, error) {
	var r models.TrackingRecord
	err := row.Scan(
		&r.ID,
		&r.OriginalURL,
		&r.TrackingURL,
		&r.Source,
		&r.Medium,
		&r.Campaign,
		&r.Title,
		&r.Filter,
		&r.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.TrackingRecord{}, records.ErrNotFound
	}
	return r, err
}

func scanRecords(rows pgx.Rows) ([]models.TrackingRecord, error) {
	defer rows.Close()

	out := make([]models.TrackingRecord, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Save inserts a record and trims the table to the newest maxRecords rows in
// the same transaction.
func (d *DB) Save(ctx context.Context, rec records.NewRecord) (models.TrackingRecord, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	saved := rec.ToModel(records.NewID(now), now)

	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return models.TrackingRecord{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO tracking_records (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, saved.ID, saved.OriginalURL, saved.TrackingURL, saved.Source, saved.Medium,
		saved.Campaign, saved.Title, saved.Filter, saved.CreatedAt)
	if err != nil {
		return models.TrackingRecord{}, fmt.Errorf("failed to insert tracking record: %w", err)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM tracking_records
		WHERE id NOT IN (
			SELECT id FROM tracking_records ORDER BY created_at DESC, id DESC LIMIT $1
		)
	`, d.maxRecords)
	if err != nil {
		return models.TrackingRecord{}, fmt.Errorf("failed to trim tracking records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.TrackingRecord{}, fmt.Errorf("failed to commit tracking record: %w", err)
	}
	return saved, nil
}

// List returns all records, most recent first.
func (d *DB) List(ctx context.Context) ([]models.TrackingRecord, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM tracking_records
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking records: %w", err)
	}
	return scanRecords(rows)
}

// Get returns one record or records.ErrNotFound.
func (d *DB) Get(ctx context.Context, id string) (models.TrackingRecord, error) {
	row := d.Pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM tracking_records WHERE id = $1`, id)
	return scanRecord(row)
}

// Delete removes one record and reports whether it existed.
func (d *DB) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM tracking_records WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete tracking record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Clear removes every record.
func (d *DB) Clear(ctx context.Context) error {
	if _, err := d.Pool.Exec(ctx, `DELETE FROM tracking_records`); err != nil {
		return fmt.Errorf("failed to clear tracking records: %w", err)
	}
	return nil
}

// Stats aggregates the record log in SQL.
func (d *DB) Stats(ctx context.Context, now time.Time) (models.TrackingStats, error) {
	stats := models.TrackingStats{
		BySource:   make(map[string]int),
		ByCampaign: make(map[string]int),
	}

	var total, recent int64
	err := d.Pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE created_at > $1)
		FROM tracking_records
	`, now.Add(-records.RecentWindow)).Scan(&total, &recent)
	if err != nil {
		return stats, fmt.Errorf("failed to count tracking records: %w", err)
	}
	stats.Total = int(total)
	stats.RecentCount = int(recent)

	if err := d.countBy(ctx, "source", stats.BySource); err != nil {
		return stats, err
	}
	if err := d.countBy(ctx, "campaign", stats.ByCampaign); err != nil {
		return stats, err
	}
	return stats, nil
}

// countBy fills dst with row counts grouped by column. column is never user input.
func (d *DB) countBy(ctx context.Context, column string, dst map[string]int) error {
	rows, err := d.Pool.Query(ctx, `SELECT `+column+`, COUNT(*) FROM tracking_records GROUP BY `+column)
	if err != nil {
		return fmt.Errorf("failed to group tracking records by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("failed to scan %s count: %w", column, err)
		}
		dst[key] = int(n)
	}
	return rows.Err()
}
