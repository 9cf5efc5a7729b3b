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

package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pulsefit/pulsefit/internal/audit"
	"github.com/pulsefit/pulsefit/internal/identity"
)

// storyTTL is how long a story stays visible after publishing.
const storyTTL = 24 * time.Hour

// Highlight listing page bounds.
const (
	defaultHighlightPageSize = 10
	maxHighlightPageSize     = 100
)

// CoachLookup resolves a user for story authorship checks.
type CoachLookup interface {
	GetByID(ctx context.Context, id string) (*identity.User, error)
}

// Service manages stories, highlights, countries, and settings.
type Service struct {
	stories     StoryRepository
	highlights  HighlightRepository
	countries   CountryRepository
	settings    SettingsRepository
	users       CoachLookup
	logger      *slog.Logger
	auditLogger audit.Logger
}

// NewService creates a new content service
func NewService(stories StoryRepository, highlights HighlightRepository, countries CountryRepository, settings SettingsRepository, users CoachLookup, logger *slog.Logger, auditLogger audit.Logger) *Service {
	return &Service{
		stories:     stories,
		highlights:  highlights,
		countries:   countries,
		settings:    settings,
		users:       users,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// PublishStory creates a story on behalf of the author. Only accounts with
// the COACH role can publish; the story expires a fixed 24 hours after
// creation regardless of any client-supplied timing.
func (s *Service) PublishStory(ctx context.Context, authorID, mediaURL, caption string) (*Story, error) {
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author.Role != identity.RoleCoach {
		return nil, ErrNotACoach
	}

	now := time.Now()
	story := &Story{
		ID:        uuid.NewString(),
		CoachID:   author.ID,
		CoachName: author.Name,
		MediaURL:  mediaURL,
		Caption:   caption,
		CreatedAt: now,
		ExpiresAt: now.Add(storyTTL),
	}
	if err := s.stories.Create(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to create story: %w", err)
	}
	return story, nil
}

// ListStories returns all unexpired stories, newest first.
func (s *Service) ListStories(ctx context.Context) ([]*Story, error) {
	return s.stories.ListActive(ctx, time.Now())
}

// ListCoachStories returns a coach's unexpired stories.
func (s *Service) ListCoachStories(ctx context.Context, coachID string) ([]*Story, error) {
	return s.stories.ListByCoach(ctx, coachID, time.Now())
}

// RecordStoryView counts one view of an unexpired story. Expired stories are
// treated as gone even before the purge sweeper removes them.
func (s *Service) RecordStoryView(ctx context.Context, storyID string) error {
	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return err
	}
	if !story.ExpiresAt.After(time.Now()) {
		return ErrStoryNotFound
	}
	return s.stories.IncrementViews(ctx, storyID)
}

// DeleteStory removes a story. The author can delete their own; admins
// delete through the same path with requesterID == story.CoachID bypassed
// by the caller's authorization layer.
func (s *Service) DeleteStory(ctx context.Context, requesterID, storyID string, isAdmin bool) error {
	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return err
	}
	if !isAdmin && story.CoachID != requesterID {
		return ErrStoryNotFound
	}
	return s.stories.Delete(ctx, storyID)
}

// PurgeExpiredStories deletes stories past expiry. Intended to run
// periodically from the server's background sweeper.
func (s *Service) PurgeExpiredStories(ctx context.Context) error {
	n, err := s.stories.DeleteExpired(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to purge expired stories: %w", err)
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "purged expired stories", slog.Int64("count", n))
	}
	return nil
}

// CreateHighlight pins one of the coach's own stories to their profile.
// The story's media becomes the highlight cover, so the highlight outlives
// the story's 24-hour window. A story can be highlighted at most once.
func (s *Service) CreateHighlight(ctx context.Context, authorID, storyID, title string) (*Highlight, error) {
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author.Role != identity.RoleCoach {
		return nil, ErrNotACoach
	}

	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story.CoachID != author.ID {
		return nil, ErrStoryNotFound
	}

	if _, err := s.highlights.GetByStoryID(ctx, storyID); err == nil {
		return nil, ErrHighlightExists
	}

	highlight := &Highlight{
		ID:        uuid.NewString(),
		CoachID:   author.ID,
		CoachName: author.Name,
		StoryID:   storyID,
		Title:     title,
		CoverURL:  story.MediaURL,
		CreatedAt: time.Now(),
	}
	if err := s.highlights.Create(ctx, highlight); err != nil {
		return nil, fmt.Errorf("failed to create highlight: %w", err)
	}
	return highlight, nil
}

// ListHighlights returns one page of highlights, newest first. Empty
// coachID lists highlights from all coaches.
func (s *Service) ListHighlights(ctx context.Context, coachID string, page, limit int) (*HighlightPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxHighlightPageSize {
		limit = defaultHighlightPageSize
	}

	highlights, total, err := s.highlights.List(ctx, coachID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &HighlightPage{
		Highlights: highlights,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// DeleteHighlight unpins a highlight. The author can delete their own;
// admins delete any through the same path.
func (s *Service) DeleteHighlight(ctx context.Context, requesterID, highlightID string, isAdmin bool) error {
	highlight, err := s.highlights.GetByID(ctx, highlightID)
	if err != nil {
		return err
	}
	if !isAdmin && highlight.CoachID != requesterID {
		return ErrHighlightNotFound
	}
	return s.highlights.Delete(ctx, highlightID)
}

// CreateCountry adds a country to the catalog. Codes are stored uppercase
// and must be unique.
func (s *Service) CreateCountry(ctx context.Context, name, code, dialCode string) (*Country, error) {
	code = strings.ToUpper(code)
	if _, err := s.countries.GetByCode(ctx, code); err == nil {
		return nil, ErrCountryTaken
	}

	country := &Country{
		ID:       uuid.NewString(),
		Name:     name,
		Code:     code,
		DialCode: dialCode,
	}
	if err := s.countries.Create(ctx, country); err != nil {
		return nil, fmt.Errorf("failed to create country: %w", err)
	}
	return country, nil
}

// ListCountries returns the full catalog.
func (s *Service) ListCountries(ctx context.Context) ([]*Country, error) {
	return s.countries.List(ctx)
}

// UpdateCountry updates a catalog entry.
func (s *Service) UpdateCountry(ctx context.Context, id, name, code, dialCode string) (*Country, error) {
	country, err := s.countries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	code = strings.ToUpper(code)
	if other, err := s.countries.GetByCode(ctx, code); err == nil && other.ID != id {
		return nil, ErrCountryTaken
	}

	country.Name = name
	country.Code = code
	country.DialCode = dialCode
	if err := s.countries.Update(ctx, country); err != nil {
		return nil, fmt.Errorf("failed to update country: %w", err)
	}
	return country, nil
}

// DeleteCountry removes a catalog entry.
func (s *Service) DeleteCountry(ctx context.Context, id string) error {
	return s.countries.Delete(ctx, id)
}

// GetSettings returns the global settings row.
func (s *Service) GetSettings(ctx context.Context) (*Settings, error) {
	return s.settings.Get(ctx)
}

// UpdateSettings replaces the global settings row.
func (s *Service) UpdateSettings(ctx context.Context, actorID string, settings *Settings) (*Settings, error) {
	if err := s.settings.Update(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeSettingsChanged,
		Realm:    "admin",
		ActorID:  actorID,
		Resource: "settings",
		Metadata: map[string]any{
			"maintenance_mode": settings.MaintenanceMode,
		},
	})

	return settings, nil
}
