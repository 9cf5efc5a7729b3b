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

// Package content manages platform content: ephemeral coach stories, pinned
// story highlights, the country catalog, and global settings.
package content

import (
	"context"
	"errors"
	"time"
)

var (
	ErrStoryNotFound     = errors.New("story not found")
	ErrNotACoach         = errors.New("only coaches can publish stories")
	ErrHighlightNotFound = errors.New("highlight not found")
	ErrHighlightExists   = errors.New("highlight already exists for this story")
	ErrCountryNotFound   = errors.New("country not found")
	ErrCountryTaken      = errors.New("country already exists")
)

// Story is an ephemeral media post by a coach. Stories disappear from
// listings once their expiry passes.
type Story struct {
	ID        string    `json:"id"`
	CoachID   string    `json:"coach_id"`
	CoachName string    `json:"coach_name"`
	MediaURL  string    `json:"media_url"`
	Caption   string    `json:"caption,omitempty"`
	ViewCount int       `json:"view_count"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Highlight is a story a coach pinned permanently to their profile. The
// cover is copied from the story's media at creation time, so the highlight
// survives the story's expiry and purge.
type Highlight struct {
	ID        string    `json:"id"`
	CoachID   string    `json:"coach_id"`
	CoachName string    `json:"coach_name"`
	StoryID   string    `json:"story_id"`
	Title     string    `json:"title"`
	CoverURL  string    `json:"cover_url"`
	CreatedAt time.Time `json:"created_at"`
}

// HighlightPage is one page of highlights plus paging metadata.
type HighlightPage struct {
	Highlights []*Highlight `json:"highlights"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalPages int          `json:"total_pages"`
}

// Country is a catalog entry used for user profiles.
type Country struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	DialCode  string    `json:"dial_code"`
	CreatedAt time.Time `json:"created_at"`
}

// Settings is the single row of global platform configuration.
// CommissionRate is the platform's cut of coach earnings, as a fraction.
type Settings struct {
	MaintenanceMode    bool      `json:"maintenance_mode"`
	MaintenanceMessage string    `json:"maintenance_message"`
	CommissionRate     float64   `json:"commission_rate"`
	MinAppVersion      string    `json:"min_app_version"`
	SupportEmail       string    `json:"support_email"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// StoryRepository persists stories.
type StoryRepository interface {
	Create(ctx context.Context, story *Story) error
	GetByID(ctx context.Context, id string) (*Story, error)
	// ListActive returns stories whose expiry is after now, newest first.
	ListActive(ctx context.Context, now time.Time) ([]*Story, error)
	ListByCoach(ctx context.Context, coachID string, now time.Time) ([]*Story, error)
	// IncrementViews bumps the story's view counter by one.
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes stories past their expiry; returns rows removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// HighlightRepository persists story highlights.
type HighlightRepository interface {
	Create(ctx context.Context, highlight *Highlight) error
	GetByID(ctx context.Context, id string) (*Highlight, error)
	GetByStoryID(ctx context.Context, storyID string) (*Highlight, error)
	// List returns one page of highlights, newest first, plus the unpaged
	// total. Empty coachID lists all coaches.
	List(ctx context.Context, coachID string, offset, limit int) ([]*Highlight, int, error)
	Delete(ctx context.Context, id string) error
}

// CountryRepository persists the country catalog.
type CountryRepository interface {
	Create(ctx context.Context, country *Country) error
	GetByID(ctx context.Context, id string) (*Country, error)
	GetByCode(ctx context.Context, code string) (*Country, error)
	List(ctx context.Context) ([]*Country, error)
	Update(ctx context.Context, country *Country) error
	Delete(ctx context.Context, id string) error
}

// SettingsRepository persists the settings singleton.
type SettingsRepository interface {
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, settings *Settings) error
}
