package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-dashboard/internal/models"
	appErrors "github.com/noah-isme/sma-dashboard/pkg/errors"
)

type resourceStore[T any, P interface {
	*T
	models.Entity
}] interface {
	List(ctx context.Context, filter models.ResourceFilter) ([]T, int, error)
	ListAll(ctx context.Context, search string) ([]T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, record P) error
	Update(ctx context.Context, record P) error
	Delete(ctx context.Context, id string) error
}

// normalizer is implemented by records that derive fields before saving.
type normalizer interface {
	Normalize()
}

// ResourceService coordinates validation, persistence and the list cache of
// one resource.
type ResourceService[T any, P interface {
	*T
	models.Entity
}] struct {
	res       models.Resource
	repo      resourceStore[T, P]
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewResourceService constructs a ResourceService.
func NewResourceService[T any, P interface {
	*T
	models.Entity
}](res models.Resource, repo resourceStore[T, P], cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ResourceService[T, P] {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceService[T, P]{
		res:       res,
		repo:      repo,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger.With(zap.String("resource", res.Name)),
	}
}

// Resource returns the served resource.
func (s *ResourceService[T, P]) Resource() models.Resource { return s.res }

// List returns one page and the total count.
func (s *ResourceService[T, P]) List(ctx context.Context, params models.QueryParams) (models.PageResult[T], error) {
	params.Search = strings.TrimSpace(params.Search)
	key := ListKey(s.res.Name, params.Page, params.Limit, params.Search)
	var cached models.PageResult[T]
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	items, total, err := s.repo.List(ctx, models.ResourceFilter{
		Search:   params.Search,
		Page:     params.Page,
		PageSize: params.Limit,
	})
	if err != nil {
		return models.PageResult[T]{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list "+s.res.Name)
	}
	result := models.PageResult[T]{Items: items, Total: total}
	s.cache.Set(ctx, key, result)
	return result, nil
}

// ListAll returns every matching record.
func (s *ResourceService[T, P]) ListAll(ctx context.Context, search string) ([]T, error) {
	items, err := s.repo.ListAll(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list "+s.res.Name)
	}
	return items, nil
}

// Get returns one record.
func (s *ResourceService[T, P]) Get(ctx context.Context, id string) (*T, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.notFoundOr(err, "failed to load "+s.res.Name)
	}
	return record, nil
}

// Create validates and stores a new record.
func (s *ResourceService[T, P]) Create(ctx context.Context, record P) (P, error) {
	if err := s.validate(record); err != nil {
		return nil, err
	}
	record.SetRecordID("")
	err := s.repo.Create(ctx, record)
	s.metrics.RecordMutation(s.res.Name, "create", err)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create "+s.res.Name)
	}
	s.cache.Invalidate(ctx, ListPattern(s.res.Name))
	s.logger.Info("record created", zap.String("id", record.RecordID()))
	return record, nil
}

// Update validates and replaces record id.
func (s *ResourceService[T, P]) Update(ctx context.Context, id string, record P) (*T, error) {
	if err := s.validate(record); err != nil {
		return nil, err
	}
	record.SetRecordID(id)
	err := s.repo.Update(ctx, record)
	s.metrics.RecordMutation(s.res.Name, "update", err)
	if err != nil {
		return nil, s.notFoundOr(err, "failed to update "+s.res.Name)
	}
	s.cache.Invalidate(ctx, ListPattern(s.res.Name))
	return s.Get(ctx, id)
}

// Delete removes record id.
func (s *ResourceService[T, P]) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	s.metrics.RecordMutation(s.res.Name, "delete", err)
	if err != nil {
		return s.notFoundOr(err, "failed to delete "+s.res.Name)
	}
	s.cache.Invalidate(ctx, ListPattern(s.res.Name))
	s.logger.Info("record deleted", zap.String("id", id))
	return nil
}

func (s *ResourceService[T, P]) validate(record P) error {
	if n, ok := any(record).(normalizer); ok {
		n.Normalize()
	}
	if err := s.validator.Struct(record); err != nil {
		return appErrors.WithDetails(
			appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+s.res.Name+" payload"),
			validationMessages(err),
		)
	}
	return nil
}

func (s *ResourceService[T, P]) notFoundOr(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, s.res.Title+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
