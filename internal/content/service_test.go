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
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefit/pulsefit/internal/audit"
	"github.com/pulsefit/pulsefit/internal/identity"
)

type mockStoryRepo struct {
	stories map[string]*Story
}

func newMockStoryRepo() *mockStoryRepo {
	return &mockStoryRepo{stories: make(map[string]*Story)}
}

func (m *mockStoryRepo) Create(_ context.Context, story *Story) error {
	m.stories[story.ID] = story
	return nil
}

func (m *mockStoryRepo) GetByID(_ context.Context, id string) (*Story, error) {
	s, ok := m.stories[id]
	if !ok {
		return nil, ErrStoryNotFound
	}
	return s, nil
}

func (m *mockStoryRepo) ListActive(_ context.Context, now time.Time) ([]*Story, error) {
	var out []*Story
	for _, s := range m.stories {
		if s.ExpiresAt.After(now) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockStoryRepo) ListByCoach(_ context.Context, coachID string, now time.Time) ([]*Story, error) {
	var out []*Story
	for _, s := range m.stories {
		if s.CoachID == coachID && s.ExpiresAt.After(now) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockStoryRepo) IncrementViews(_ context.Context, id string) error {
	s, ok := m.stories[id]
	if !ok {
		return ErrStoryNotFound
	}
	s.ViewCount++
	return nil
}

func (m *mockStoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.stories[id]; !ok {
		return ErrStoryNotFound
	}
	delete(m.stories, id)
	return nil
}

func (m *mockStoryRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for id, s := range m.stories {
		if !s.ExpiresAt.After(now) {
			delete(m.stories, id)
			n++
		}
	}
	return n, nil
}

// mockHighlightRepo keeps insertion order so paging is deterministic.
type mockHighlightRepo struct {
	highlights []*Highlight
}

func (m *mockHighlightRepo) Create(_ context.Context, hl *Highlight) error {
	m.highlights = append(m.highlights, hl)
	return nil
}

func (m *mockHighlightRepo) GetByID(_ context.Context, id string) (*Highlight, error) {
	for _, hl := range m.highlights {
		if hl.ID == id {
			return hl, nil
		}
	}
	return nil, ErrHighlightNotFound
}

func (m *mockHighlightRepo) GetByStoryID(_ context.Context, storyID string) (*Highlight, error) {
	for _, hl := range m.highlights {
		if hl.StoryID == storyID {
			return hl, nil
		}
	}
	return nil, ErrHighlightNotFound
}

func (m *mockHighlightRepo) List(_ context.Context, coachID string, offset, limit int) ([]*Highlight, int, error) {
	var all []*Highlight
	for _, hl := range m.highlights {
		if coachID == "" || hl.CoachID == coachID {
			all = append(all, hl)
		}
	}
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockHighlightRepo) Delete(_ context.Context, id string) error {
	for i, hl := range m.highlights {
		if hl.ID == id {
			m.highlights = append(m.highlights[:i], m.highlights[i+1:]...)
			return nil
		}
	}
	return ErrHighlightNotFound
}

type mockCountryRepo struct {
	countries map[string]*Country
}

func newMockCountryRepo() *mockCountryRepo {
	return &mockCountryRepo{countries: make(map[string]*Country)}
}

func (m *mockCountryRepo) Create(_ context.Context, c *Country) error {
	m.countries[c.ID] = c
	return nil
}

func (m *mockCountryRepo) GetByID(_ context.Context, id string) (*Country, error) {
	c, ok := m.countries[id]
	if !ok {
		return nil, ErrCountryNotFound
	}
	return c, nil
}

func (m *mockCountryRepo) GetByCode(_ context.Context, code string) (*Country, error) {
	for _, c := range m.countries {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, ErrCountryNotFound
}

func (m *mockCountryRepo) List(_ context.Context) ([]*Country, error) {
	out := make([]*Country, 0, len(m.countries))
	for _, c := range m.countries {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCountryRepo) Update(_ context.Context, c *Country) error {
	m.countries[c.ID] = c
	return nil
}

func (m *mockCountryRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.countries[id]; !ok {
		return ErrCountryNotFound
	}
	delete(m.countries, id)
	return nil
}

type mockSettingsRepo struct {
	settings Settings
}

func (m *mockSettingsRepo) Get(_ context.Context) (*Settings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsRepo) Update(_ context.Context, s *Settings) error {
	m.settings = *s
	return nil
}

type mockCoachLookup struct {
	users map[string]*identity.User
}

func (m *mockCoachLookup) GetByID(_ context.Context, id string) (*identity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return u, nil
}

func newTestContentService() (*Service, *mockStoryRepo, *mockCountryRepo, *mockSettingsRepo) {
	stories := newMockStoryRepo()
	countries := newMockCountryRepo()
	settings := &mockSettingsRepo{}
	users := &mockCoachLookup{users: map[string]*identity.User{
		"coach-1":   {ID: "coach-1", Name: "Coach Carter", Role: identity.RoleCoach},
		"coach-2":   {ID: "coach-2", Name: "Coach Taylor", Role: identity.RoleCoach},
		"trainee-1": {ID: "trainee-1", Name: "Jane Doe", Role: identity.RoleTrainee},
	}}
	svc := NewService(stories, &mockHighlightRepo{}, countries, settings, users, slog.Default(), audit.NewSlogLogger())
	return svc, stories, countries, settings
}

func TestService_PublishStory(t *testing.T) {
	svc, _, _, _ := newTestContentService()

	story, err := svc.PublishStory(context.Background(), "coach-1", "https://cdn.pulsefit.app/s/1.jpg", "leg day")
	require.NoError(t, err)
	assert.Equal(t, "coach-1", story.CoachID)
	assert.Equal(t, "Coach Carter", story.CoachName)
	assert.WithinDuration(t, story.CreatedAt.Add(24*time.Hour), story.ExpiresAt, time.Second)
}

func TestService_PublishStory_TraineeRejected(t *testing.T) {
	svc, _, _, _ := newTestContentService()

	_, err := svc.PublishStory(context.Background(), "trainee-1", "https://cdn.pulsefit.app/s/1.jpg", "")
	assert.ErrorIs(t, err, ErrNotACoach)
}

func TestService_ListStories_ExcludesExpired(t *testing.T) {
	svc, stories, _, _ := newTestContentService()

	_, err := svc.PublishStory(context.Background(), "coach-1", "https://cdn.pulsefit.app/s/1.jpg", "")
	require.NoError(t, err)

	stale := &Story{
		ID:        "stale",
		CoachID:   "coach-1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	stories.stories[stale.ID] = stale

	active, err := svc.ListStories(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.NotEqual(t, "stale", active[0].ID)
}

func TestService_RecordStoryView(t *testing.T) {
	svc, stories, _, _ := newTestContentService()

	story, err := svc.PublishStory(context.Background(), "coach-1", "https://cdn.pulsefit.app/s/1.jpg", "")
	require.NoError(t, err)

	require.NoError(t, svc.RecordStoryView(context.Background(), story.ID))
	require.NoError(t, svc.RecordStoryView(context.Background(), story.ID))
	assert.Equal(t, 2, stories.stories[story.ID].ViewCount)

	// Expired stories read as gone even before the purge sweeper runs.
	stories.stories["stale"] = &Story{ID: "stale", ExpiresAt: time.Now().Add(-time.Minute)}
	assert.ErrorIs(t, svc.RecordStoryView(context.Background(), "stale"), ErrStoryNotFound)

	assert.ErrorIs(t, svc.RecordStoryView(context.Background(), "missing"), ErrStoryNotFound)
}

func TestService_DeleteStory_Ownership(t *testing.T) {
	svc, _, _, _ := newTestContentService()

	story, err := svc.PublishStory(context.Background(), "coach-1", "https://cdn.pulsefit.app/s/1.jpg", "")
	require.NoError(t, err)

	// Another user cannot delete it, and is not told it exists.
	err = svc.DeleteStory(context.Background(), "coach-2", story.ID, false)
	assert.ErrorIs(t, err, ErrStoryNotFound)

	// Admins can.
	assert.NoError(t, svc.DeleteStory(context.Background(), "admin-1", story.ID, true))
}

func TestService_CreateHighlight(t *testing.T) {
	svc, _, _, _ := newTestContentService()

	story, err := svc.PublishStory(context.Background(), "coach-1", "https://cdn.pulsefit.app/s/1.jpg", "leg day")
	require.NoError(t, err)

	highlight, err := svc.CreateHighlight(context.Background(), "coach-1", story.ID, "Leg days")
	require.NoError(t, err)
	assert.Equal(t, "coach-1", highlight.CoachID)
	assert.Equal(t, "Coach Carter", highlight.CoachName)
	assert.Equal(t, story.MediaURL, highlight.CoverURL, "cover is copied from the story's media")

	// A story can be highlighted at most once.
	_, err = svc.CreateHighlight(context.Background(), "coach-1", story.ID, "Leg days again")
	assert.ErrorIs(t, err, ErrHighlightExists)
}

func TestService_CreateHighlight_TraineeRejected(t *testing.T) {
	svc, _, _, _ := newTestContentService()

	story, err := svc.PublishStory(context.Background(), "coach-1", "https://cdn.pulsefit.app/s/1.jpg", "")
	require.NoError(t, err)

	_, err = svc.CreateHighlight(context.Background(), "trainee-1", story.ID, "Mine now")
	assert.ErrorIs(t, err, ErrNotACoach)
}

func TestService_CreateHighlight_NotOwnStory(t *testing.T) {
	svc, _, _, _ := newTestContentService()

	story, err := svc.PublishStory(context.Background(), "coach-1", "https://cdn.pulsefit.app/s/1.jpg", "")
	require.NoError(t, err)

	// Another coach cannot pin it, and is not told it exists.
	_, err = svc.CreateHighlight(context.Background(), "coach-2", story.ID, "Stolen")
	assert.ErrorIs(t, err, ErrStoryNotFound)
}

func TestService_ListHighlights_Pagination(t *testing.T) {
	svc, _, _, _ := newTestContentService()

	for _, caption := range []string{"a", "b", "c"} {
		story, err := svc.PublishStory(context.Background(), "coach-1", "https://cdn.pulsefit.app/s/"+caption+".jpg", caption)
		require.NoError(t, err)
		_, err = svc.CreateHighlight(context.Background(), "coach-1", story.ID, caption)
		require.NoError(t, err)
	}

	page, err := svc.ListHighlights(context.Background(), "coach-1", 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Highlights, 2)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)

	page, err = svc.ListHighlights(context.Background(), "coach-1", 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Highlights, 1)

	// Out-of-range paging parameters fall back to defaults.
	page, err = svc.ListHighlights(context.Background(), "", 0, -5)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, defaultHighlightPageSize, page.Limit)
}

func TestService_DeleteHighlight_Ownership(t *testing.T) {
	svc, _, _, _ := newTestContentService()

	story, err := svc.PublishStory(context.Background(), "coach-1", "https://cdn.pulsefit.app/s/1.jpg", "")
	require.NoError(t, err)
	highlight, err := svc.CreateHighlight(context.Background(), "coach-1", story.ID, "Pinned")
	require.NoError(t, err)

	err = svc.DeleteHighlight(context.Background(), "coach-2", highlight.ID, false)
	assert.ErrorIs(t, err, ErrHighlightNotFound)

	assert.NoError(t, svc.DeleteHighlight(context.Background(), "admin-1", highlight.ID, true))
	assert.ErrorIs(t, svc.DeleteHighlight(context.Background(), "coach-1", highlight.ID, false), ErrHighlightNotFound)
}

func TestService_PurgeExpiredStories(t *testing.T) {
	svc, stories, _, _ := newTestContentService()

	stories.stories["stale"] = &Story{ID: "stale", ExpiresAt: time.Now().Add(-time.Hour)}
	_, err := svc.PublishStory(context.Background(), "coach-1", "https://cdn.pulsefit.app/s/1.jpg", "")
	require.NoError(t, err)

	require.NoError(t, svc.PurgeExpiredStories(context.Background()))
	assert.Len(t, stories.stories, 1)
}

func TestService_Countries(t *testing.T) {
	svc, _, _, _ := newTestContentService()

	country, err := svc.CreateCountry(context.Background(), "Egypt", "eg", "+20")
	require.NoError(t, err)
	assert.Equal(t, "EG", country.Code)

	_, err = svc.CreateCountry(context.Background(), "Egypt again", "EG", "+20")
	assert.ErrorIs(t, err, ErrCountryTaken)

	updated, err := svc.UpdateCountry(context.Background(), country.ID, "Arab Republic of Egypt", "EG", "+20")
	require.NoError(t, err)
	assert.Equal(t, "Arab Republic of Egypt", updated.Name)

	require.NoError(t, svc.DeleteCountry(context.Background(), country.ID))
	_, err = svc.UpdateCountry(context.Background(), country.ID, "x", "XX", "+1")
	assert.ErrorIs(t, err, ErrCountryNotFound)
}

func TestService_Settings(t *testing.T) {
	svc, _, _, repo := newTestContentService()

	got, err := svc.GetSettings(context.Background())
	require.NoError(t, err)
	assert.False(t, got.MaintenanceMode)

	_, err = svc.UpdateSettings(context.Background(), "admin-1", &Settings{
		MaintenanceMode:    true,
		MaintenanceMessage: "back soon",
		CommissionRate:     0.15,
	})
	require.NoError(t, err)
	assert.True(t, repo.settings.MaintenanceMode)
	assert.Equal(t, 0.15, repo.settings.CommissionRate)
}
