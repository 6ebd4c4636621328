package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/SONDER730/competition-platform/internal/dto"
	"github.com/SONDER730/competition-platform/internal/models"
	appErrors "github.com/SONDER730/competition-platform/pkg/errors"
)

type competitionRepository interface {
	List(ctx context.Context, filter models.CompetitionFilter) ([]models.Competition, int, error)
	Search(ctx context.Context, query string) ([]models.CompetitionRef, error)
	FindByID(ctx context.Context, id int64) (*models.Competition, error)
	Create(ctx context.Context, competition *models.Competition) error
	Update(ctx context.Context, competition *models.Competition) error
	Delete(ctx context.Context, id int64) error
}

type competitionCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CompetitionListResult is the cached shape of a catalogue page.
type CompetitionListResult struct {
	Items      []models.Competition `json:"items"`
	Pagination models.Pagination    `json:"pagination"`
}

// CompetitionService serves the competition catalogue. List pages are
// cached in Redis and invalidated on any write.
type CompetitionService struct {
	repo      competitionRepository
	cache     competitionCache
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewCompetitionService constructs a CompetitionService.
func NewCompetitionService(repo competitionRepository, cache competitionCache, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *CompetitionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CompetitionService{repo: repo, cache: cache, validator: validate, logger: logger, cacheTTL: cacheTTL}
}

// List returns a catalogue page, served from cache when possible.
func (s *CompetitionService) List(ctx context.Context, query dto.CompetitionListQuery) (*CompetitionListResult, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid list parameters")
	}

	filter := models.CompetitionFilter{
		Search:   query.Search,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Status != nil {
		status := models.CompetitionStatus(*query.Status)
		filter.Status = &status
	}

	key := competitionListCacheKey(filter)
	if s.cache != nil {
		var cached CompetitionListResult
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("competition cache read failed", zap.Error(err))
		}
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list competitions")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	result := &CompetitionListResult{
		Items:      items,
		Pagination: models.Pagination{Page: page, PageSize: size, TotalCount: total},
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
			s.logger.Warn("competition cache write failed", zap.Error(err))
		}
	}

	return result, nil
}

// Search returns compact references matching the query string.
func (s *CompetitionService) Search(ctx context.Context, query string) ([]models.CompetitionRef, error) {
	refs, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search competitions")
	}
	return refs, nil
}

// Get returns one catalogue entry.
func (s *CompetitionService) Get(ctx context.Context, id int64) (*models.Competition, error) {
	competition, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "competition not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load competition")
	}
	return competition, nil
}

// Create adds a catalogue entry and invalidates cached pages.
func (s *CompetitionService) Create(ctx context.Context, req dto.CompetitionRequest) (*models.Competition, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid competition payload")
	}

	competition := &models.Competition{
		Name:          req.Name,
		Link:          req.Link,
		Type:          req.Type,
		RegTimeStart:  req.RegTimeStart,
		RegTimeEnd:    req.RegTimeEnd,
		CompTimeStart: req.CompTimeStart,
		CompTimeEnd:   req.CompTimeEnd,
		Description:   req.Description,
		Status:        models.CompetitionStatus(req.Status),
	}

	if err := s.repo.Create(ctx, competition); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create competition")
	}

	s.invalidateListCache(ctx)
	return competition, nil
}

// Update replaces a catalogue entry and invalidates cached pages.
func (s *CompetitionService) Update(ctx context.Context, id int64, req dto.CompetitionRequest) (*models.Competition, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid competition payload")
	}

	competition, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	competition.Name = req.Name
	competition.Link = req.Link
	competition.Type = req.Type
	competition.RegTimeStart = req.RegTimeStart
	competition.RegTimeEnd = req.RegTimeEnd
	competition.CompTimeStart = req.CompTimeStart
	competition.CompTimeEnd = req.CompTimeEnd
	competition.Description = req.Description
	competition.Status = models.CompetitionStatus(req.Status)

	if err := s.repo.Update(ctx, competition); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update competition")
	}

	s.invalidateListCache(ctx)
	return competition, nil
}

// Delete removes a catalogue entry and invalidates cached pages.
func (s *CompetitionService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete competition")
	}
	s.invalidateListCache(ctx)
	return nil
}

func (s *CompetitionService) invalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "competitions:list:*"); err != nil {
		s.logger.Warn("competition cache invalidation failed", zap.Error(err))
	}
}

func competitionListCacheKey(filter models.CompetitionFilter) string {
	status := -1
	if filter.Status != nil {
		status = int(*filter.Status)
	}
	return fmt.Sprintf("competitions:list:%s:%d:%d:%d", filter.Search, status, filter.Page, filter.PageSize)
}
