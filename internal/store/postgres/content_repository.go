// Copyright 2026 The PulseFit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pulsefit/pulsefit/internal/content"
)

// StoryRepository implements content.StoryRepository on PostgreSQL.
type StoryRepository struct {
	db Pool
}

// NewStoryRepository creates a new story repository
func NewStoryRepository(db Pool) *StoryRepository {
	return &StoryRepository{db: db}
}

const storyColumns = `s.id, s.coach_id, u.name, s.media_url, s.caption, s.view_count, s.created_at, s.expires_at`

func (r *StoryRepository) Create(ctx context.Context, story *content.Story) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO stories (id, coach_id, media_url, caption, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		story.ID, story.CoachID, story.MediaURL, story.Caption, story.CreatedAt, story.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create story: %w", err)
	}
	return nil
}

func (r *StoryRepository) GetByID(ctx context.Context, id string) (*content.Story, error) {
	var s content.Story
	err := r.db.QueryRow(ctx, `
		SELECT `+storyColumns+`
		FROM stories s
		JOIN users u ON u.id = s.coach_id
		WHERE s.id = $1`, id).
		Scan(&s.ID, &s.CoachID, &s.CoachName, &s.MediaURL, &s.Caption, &s.ViewCount, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, content.ErrStoryNotFound
		}
		return nil, fmt.Errorf("failed to get story: %w", err)
	}
	return &s, nil
}

func (r *StoryRepository) ListActive(ctx context.Context, now time.Time) ([]*content.Story, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+storyColumns+`
		FROM stories s
		JOIN users u ON u.id = s.coach_id
		WHERE s.expires_at > $1
		ORDER BY s.created_at DESC`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return scanStories(rows)
}

func (r *StoryRepository) ListByCoach(ctx context.Context, coachID string, now time.Time) ([]*content.Story, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+storyColumns+`
		FROM stories s
		JOIN users u ON u.id = s.coach_id
		WHERE s.coach_id = $1 AND s.expires_at > $2
		ORDER BY s.created_at DESC`, coachID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list coach stories: %w", err)
	}
	return scanStories(rows)
}

func (r *StoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM stories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrStoryNotFound
	}
	return nil
}

func (r *StoryRepository) IncrementViews(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE stories SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment story views: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrStoryNotFound
	}
	return nil
}

func (r *StoryRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM stories WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired stories: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanStories(rows pgx.Rows) ([]*content.Story, error) {
	defer rows.Close()

	var stories []*content.Story
	for rows.Next() {
		var s content.Story
		if err := rows.Scan(&s.ID, &s.CoachID, &s.CoachName, &s.MediaURL, &s.Caption, &s.ViewCount, &s.CreatedAt, &s.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan story: %w", err)
		}
		stories = append(stories, &s)
	}
	return stories, rows.Err()
}

// HighlightRepository implements content.HighlightRepository on PostgreSQL.
type HighlightRepository struct {
	db Pool
}

// NewHighlightRepository creates a new highlight repository
func NewHighlightRepository(db Pool) *HighlightRepository {
	return &HighlightRepository{db: db}
}

const highlightColumns = `h.id, h.coach_id, u.name, h.story_id, h.title, h.cover_url, h.created_at`

func (r *HighlightRepository) Create(ctx context.Context, hl *content.Highlight) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO highlights (id, coach_id, story_id, title, cover_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		hl.ID, hl.CoachID, hl.StoryID, hl.Title, hl.CoverURL, hl.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return content.ErrHighlightExists
		}
		return fmt.Errorf("failed to create highlight: %w", err)
	}
	return nil
}

func (r *HighlightRepository) GetByID(ctx context.Context, id string) (*content.Highlight, error) {
	return r.getHighlight(ctx, `h.id = $1`, id)
}

func (r *HighlightRepository) GetByStoryID(ctx context.Context, storyID string) (*content.Highlight, error) {
	return r.getHighlight(ctx, `h.story_id = $1`, storyID)
}

func (r *HighlightRepository) getHighlight(ctx context.Context, where, arg string) (*content.Highlight, error) {
	var hl content.Highlight
	err := r.db.QueryRow(ctx, `
		SELECT `+highlightColumns+`
		FROM highlights h
		JOIN users u ON u.id = h.coach_id
		WHERE `+where, arg).
		Scan(&hl.ID, &hl.CoachID, &hl.CoachName, &hl.StoryID, &hl.Title, &hl.CoverURL, &hl.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, content.ErrHighlightNotFound
		}
		return nil, fmt.Errorf("failed to get highlight: %w", err)
	}
	return &hl, nil
}

func (r *HighlightRepository) List(ctx context.Context, coachID string, offset, limit int) ([]*content.Highlight, int, error) {
	var where string
	var args []any
	if coachID != "" {
		where = `WHERE h.coach_id = $1`
		args = append(args, coachID)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM highlights h `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count highlights: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT `+highlightColumns+`
		FROM highlights h
		JOIN users u ON u.id = h.coach_id
		%s
		ORDER BY h.created_at DESC
		OFFSET $%d LIMIT $%d`, where, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, offset, limit)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list highlights: %w", err)
	}
	defer rows.Close()

	var highlights []*content.Highlight
	for rows.Next() {
		var hl content.Highlight
		if err := rows.Scan(&hl.ID, &hl.CoachID, &hl.CoachName, &hl.StoryID, &hl.Title, &hl.CoverURL, &hl.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan highlight: %w", err)
		}
		highlights = append(highlights, &hl)
	}
	return highlights, total, rows.Err()
}

func (r *HighlightRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM highlights WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete highlight: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrHighlightNotFound
	}
	return nil
}

// CountryRepository implements content.CountryRepository on PostgreSQL.
type CountryRepository struct {
	db Pool
}

// NewCountryRepository creates a new country repository
func NewCountryRepository(db Pool) *CountryRepository {
	return &CountryRepository{db: db}
}

func (r *CountryRepository) Create(ctx context.Context, c *content.Country) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO countries (id, name, code, dial_code, created_at)
		VALUES ($1, $2, $3, $4, NOW())`,
		c.ID, c.Name, c.Code, c.DialCode)
	if err != nil {
		if isUniqueViolation(err) {
			return content.ErrCountryTaken
		}
		return fmt.Errorf("failed to create country: %w", err)
	}
	return nil
}

func (r *CountryRepository) GetByID(ctx context.Context, id string) (*content.Country, error) {
	return r.getCountry(ctx, `SELECT id, name, code, dial_code, created_at FROM countries WHERE id = $1`, id)
}

func (r *CountryRepository) GetByCode(ctx context.Context, code string) (*content.Country, error) {
	return r.getCountry(ctx, `SELECT id, name, code, dial_code, created_at FROM countries WHERE code = $1`, code)
}

func (r *CountryRepository) getCountry(ctx context.Context, query, arg string) (*content.Country, error) {
	var c content.Country
	err := r.db.QueryRow(ctx, query, arg).Scan(&c.ID, &c.Name, &c.Code, &c.DialCode, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, content.ErrCountryNotFound
		}
		return nil, fmt.Errorf("failed to get country: %w", err)
	}
	return &c, nil
}

func (r *CountryRepository) List(ctx context.Context) ([]*content.Country, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, code, dial_code, created_at FROM countries ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	defer rows.Close()

	var countries []*content.Country
	for rows.Next() {
		var c content.Country
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &c.DialCode, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan country: %w", err)
		}
		countries = append(countries, &c)
	}
	return countries, rows.Err()
}

func (r *CountryRepository) Update(ctx context.Context, c *content.Country) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE countries SET name = $2, code = $3, dial_code = $4 WHERE id = $1`,
		c.ID, c.Name, c.Code, c.DialCode)
	if err != nil {
		if isUniqueViolation(err) {
			return content.ErrCountryTaken
		}
		return fmt.Errorf("failed to update country: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrCountryNotFound
	}
	return nil
}

func (r *CountryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM countries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete country: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrCountryNotFound
	}
	return nil
}

// SettingsRepository implements content.SettingsRepository on PostgreSQL.
// Settings live in a single row with a fixed key.
type SettingsRepository struct {
	db Pool
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context) (*content.Settings, error) {
	var s content.Settings
	err := r.db.QueryRow(ctx, `
		SELECT maintenance_mode, maintenance_message, commission_rate, min_app_version, support_email, updated_at
		FROM settings WHERE id = 1`).
		Scan(&s.MaintenanceMode, &s.MaintenanceMessage, &s.CommissionRate, &s.MinAppVersion, &s.SupportEmail, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepository) Update(ctx context.Context, s *content.Settings) error {
	_, err := r.db.Exec(ctx, `
		UPDATE settings
		SET maintenance_mode = $1, maintenance_message = $2, commission_rate = $3,
			min_app_version = $4, support_email = $5, updated_at = NOW()
		WHERE id = 1`,
		s.MaintenanceMode, s.MaintenanceMessage, s.CommissionRate, s.MinAppVersion, s.SupportEmail)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}
