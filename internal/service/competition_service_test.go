package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SONDER730/competition-platform/internal/dto"
	"github.com/SONDER730/competition-platform/internal/models"
	appErrors "github.com/SONDER730/competition-platform/pkg/errors"
)

type mockCatalogueRepo struct {
	items     map[int64]*models.Competition
	nextID    int64
	listCalls int
}

func (m *mockCatalogueRepo) List(ctx context.Context, filter models.CompetitionFilter) ([]models.Competition, int, error) {
	m.listCalls++
	var out []models.Competition
	for _, competition := range m.items {
		out = append(out, *competition)
	}
	return out, len(out), nil
}

func (m *mockCatalogueRepo) Search(ctx context.Context, query string) ([]models.CompetitionRef, error) {
	var out []models.CompetitionRef
	for _, competition := range m.items {
		out = append(out, models.CompetitionRef{ID: competition.ID, Name: competition.Name})
	}
	return out, nil
}

func (m *mockCatalogueRepo) FindByID(ctx context.Context, id int64) (*models.Competition, error) {
	competition, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *competition
	return &cp, nil
}

func (m *mockCatalogueRepo) Create(ctx context.Context, competition *models.Competition) error {
	if m.items == nil {
		m.items = make(map[int64]*models.Competition)
	}
	m.nextID++
	competition.ID = m.nextID
	cp := *competition
	m.items[competition.ID] = &cp
	return nil
}

func (m *mockCatalogueRepo) Update(ctx context.Context, competition *models.Competition) error {
	cp := *competition
	m.items[competition.ID] = &cp
	return nil
}

func (m *mockCatalogueRepo) Delete(ctx context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

type memoryCache struct {
	entries map[string][]byte
	deletes []string
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.entries == nil {
		c.entries = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.deletes = append(c.deletes, pattern)
	c.entries = make(map[string][]byte)
	return nil
}

func TestCompetitionServiceListCachesPages(t *testing.T) {
	repo := &mockCatalogueRepo{}
	cache := &memoryCache{}
	svc := NewCompetitionService(repo, cache, validator.New(), zap.NewNop(), 10*time.Minute)

	_, err := svc.Create(context.Background(), dto.CompetitionRequest{Name: "ACM Regional", Type: "programming"})
	require.NoError(t, err)

	first, err := svc.List(context.Background(), dto.CompetitionListQuery{})
	require.NoError(t, err)
	require.Len(t, first.Items, 1)
	assert.Equal(t, 1, repo.listCalls)

	second, err := svc.List(context.Background(), dto.CompetitionListQuery{})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, 1, repo.listCalls, "second page should come from cache")
}

func TestCompetitionServiceWritesInvalidateCache(t *testing.T) {
	repo := &mockCatalogueRepo{}
	cache := &memoryCache{}
	svc := NewCompetitionService(repo, cache, validator.New(), zap.NewNop(), 10*time.Minute)

	created, err := svc.Create(context.Background(), dto.CompetitionRequest{Name: "ACM Regional", Type: "programming"})
	require.NoError(t, err)

	_, err = svc.List(context.Background(), dto.CompetitionListQuery{})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, dto.CompetitionRequest{Name: "ACM Finals", Type: "programming", Status: 3})
	require.NoError(t, err)
	assert.NotEmpty(t, cache.deletes)

	listed, err := svc.List(context.Background(), dto.CompetitionListQuery{})
	require.NoError(t, err)
	require.Len(t, listed.Items, 1)
	assert.Equal(t, "ACM Finals", listed.Items[0].Name)
}

func TestCompetitionServiceGetNotFound(t *testing.T) {
	repo := &mockCatalogueRepo{}
	svc := NewCompetitionService(repo, nil, validator.New(), zap.NewNop(), time.Minute)

	_, err := svc.Get(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCompetitionServiceDelete(t *testing.T) {
	repo := &mockCatalogueRepo{}
	svc := NewCompetitionService(repo, nil, validator.New(), zap.NewNop(), time.Minute)

	created, err := svc.Create(context.Background(), dto.CompetitionRequest{Name: "ACM Regional", Type: "programming"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	require.Error(t, err)
}
