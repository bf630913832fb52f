package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrReportNotFound is returned when a report id does not exist.
var ErrReportNotFound = errors.New("report not found")

// Repository persists completed analysis reports.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new report repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the reports table when it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE SCHEMA IF NOT EXISTS snow;

		CREATE TABLE IF NOT EXISTS snow.reports (
			id               BIGSERIAL PRIMARY KEY,
			mode             TEXT NOT NULL,
			watershed        TEXT,
			lat              DOUBLE PRECISION,
			lon              DOUBLE PRECISION,
			buffer_m         DOUBLE PRECISION,
			start_date       DATE NOT NULL,
			end_date         DATE NOT NULL,
			images_processed INTEGER NOT NULL,
			sample_count     INTEGER NOT NULL,
			series           JSONB NOT NULL,
			stats            JSONB NOT NULL,
			frames           JSONB,
			data_source      TEXT NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS reports_created_at_idx ON snow.reports (created_at);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Save inserts a report and sets its ID.
func (r *Repository) Save(ctx context.Context, report *Report) error {
	series, err := json.Marshal(report.Series)
	if err != nil {
		return fmt.Errorf("marshal series: %w", err)
	}
	stats, err := json.Marshal(report.Stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	var frames []byte
	if len(report.Frames) > 0 {
		frames, err = json.Marshal(report.Frames)
		if err != nil {
			return fmt.Errorf("marshal frames: %w", err)
		}
	}

	query := `
		INSERT INTO snow.reports
			(mode, watershed, lat, lon, buffer_m, start_date, end_date,
			 images_processed, sample_count, series, stats, frames, data_source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`

	var watershed *string
	var lat, lon, bufferM *float64
	if report.Mode == ModeWatershed {
		watershed = &report.Watershed
	} else {
		lat, lon, bufferM = &report.Lat, &report.Lon, &report.BufferM
	}

	err = r.pool.QueryRow(ctx, query,
		report.Mode, watershed, lat, lon, bufferM,
		report.From, report.To,
		report.ImagesProcessed, report.Series.Len(),
		series, stats, frames,
		report.DataSource, report.CreatedAt,
	).Scan(&report.ID)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	return nil
}

// GetByID retrieves one report with its full series and stats.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Report, error) {
	query := `
		SELECT id, mode, watershed, lat, lon, buffer_m, start_date, end_date,
		       images_processed, series, stats, frames, data_source, created_at
		FROM snow.reports
		WHERE id = $1
	`

	var (
		report    Report
		watershed *string
		lat       *float64
		lon       *float64
		bufferM   *float64
		series    []byte
		stats     []byte
		frames    []byte
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&report.ID, &report.Mode, &watershed, &lat, &lon, &bufferM,
		&report.From, &report.To, &report.ImagesProcessed,
		&series, &stats, &frames, &report.DataSource, &report.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("query report: %w", err)
	}

	if watershed != nil {
		report.Watershed = *watershed
	}
	if lat != nil {
		report.Lat = *lat
	}
	if lon != nil {
		report.Lon = *lon
	}
	if bufferM != nil {
		report.BufferM = *bufferM
	}

	if err := json.Unmarshal(series, &report.Series); err != nil {
		return nil, fmt.Errorf("unmarshal series: %w", err)
	}
	if err := json.Unmarshal(stats, &report.Stats); err != nil {
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}
	if len(frames) > 0 {
		if err := json.Unmarshal(frames, &report.Frames); err != nil {
			return nil, fmt.Errorf("unmarshal frames: %w", err)
		}
	}

	return &report, nil
}

// ReportSummary is one row of the report history listing. The heavy
// series payload stays in the database.
type ReportSummary struct {
	ID              int64     `json:"id"`
	Mode            string    `json:"mode"`
	Watershed       string    `json:"watershed,omitempty"`
	Lat             float64   `json:"lat,omitempty"`
	Lon             float64   `json:"lon,omitempty"`
	From            time.Time `json:"from"`
	To              time.Time `json:"to"`
	ImagesProcessed int       `json:"images_processed"`
	SampleCount     int       `json:"sample_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// List returns the most recent reports, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]ReportSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, mode, watershed, lat, lon, start_date, end_date,
		       images_processed, sample_count, created_at
		FROM snow.reports
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var summaries []ReportSummary
	for rows.Next() {
		var (
			s         ReportSummary
			watershed *string
			lat       *float64
			lon       *float64
		)
		if err := rows.Scan(&s.ID, &s.Mode, &watershed, &lat, &lon,
			&s.From, &s.To, &s.ImagesProcessed, &s.SampleCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report summary: %w", err)
		}
		if watershed != nil {
			s.Watershed = *watershed
		}
		if lat != nil {
			s.Lat = *lat
		}
		if lon != nil {
			s.Lon = *lon
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// DeleteOlderThan removes reports created before the cutoff and
// returns how many were deleted.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM snow.reports WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old reports: %w", err)
	}
	return tag.RowsAffected(), nil
}
