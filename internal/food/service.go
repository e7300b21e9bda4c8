package food

import (
	"context"
	"errors"

	"foodzz/internal/logger"

	"go.uber.org/zap"
)

// Service is the catalog business logic used by the backend.
type Service interface {
	List(ctx context.Context) ([]Item, error)
	Get(ctx context.Context, id int) (*Item, error)
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, id int, patch Patch) (Item, error)
	Delete(ctx context.Context, id int) error
	Featured(ctx context.Context) ([]int, error)
	SetFeatured(ctx context.Context, id int, featured bool) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]Item, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id int) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, item Item) (Item, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateFood"),
	)

	if err := item.Validate(); err != nil {
		log.Warn("invalid food item", zap.Error(err))
		return Item{}, err
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		log.Error("failed to create food", zap.Error(err))
		return Item{}, err
	}

	log.Info("food created", zap.Int("food_id", created.ID), zap.String("name", created.Name))
	return created, nil
}

func (s *service) Update(ctx context.Context, id int, patch Patch) (Item, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateFood"),
		zap.Int("food_id", id),
	)

	if err := patch.Validate(); err != nil {
		log.Warn("invalid food patch", zap.Error(err))
		return Item{}, err
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if !errors.Is(err, ErrFoodNotFound) {
			log.Error("failed to update food", zap.Error(err))
		}
		return Item{}, err
	}

	log.Info("food updated")
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DeleteFood"),
		zap.Int("food_id", id),
	)

	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, ErrFoodNotFound) {
			log.Error("failed to delete food", zap.Error(err))
		}
		return err
	}

	log.Info("food deleted")
	return nil
}

func (s *service) Featured(ctx context.Context) ([]int, error) {
	return s.repo.ListFeatured(ctx)
}

func (s *service) SetFeatured(ctx context.Context, id int, featured bool) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.SetFeatured(ctx, id, featured); err != nil {
		logger.FromCtx(ctx).Error("failed to set featured",
			zap.Int("food_id", id),
			zap.Bool("featured", featured),
			zap.Error(err),
		)
		return err
	}
	return nil
}
