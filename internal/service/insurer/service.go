package insurer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medcabinet/api/internal/model"
	"github.com/medcabinet/api/internal/repository"
	apperrors "github.com/medcabinet/api/pkg/errors"
)

type Service struct {
	repo repository.InsurerRepository
}

func NewService(repo repository.InsurerRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req *model.CreateInsurerRequest) (*model.Insurer, error) {
	insurer := &model.Insurer{Name: req.Name, Type: req.Type}
	if err := s.repo.Create(ctx, insurer); err != nil {
		return nil, fmt.Errorf("failed to create insurer: %w", err)
	}
	return insurer, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Insurer, error) {
	insurer, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("insurer", err)
		}
		return nil, fmt.Errorf("failed to get insurer: %w", err)
	}
	return insurer, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Insurer, error) {
	insurers, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list insurers: %w", err)
	}
	return insurers, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("insurer", err)
		}
		return fmt.Errorf("failed to delete insurer: %w", err)
	}
	return nil
}
