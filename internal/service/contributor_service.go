package service

import (
	"context"

	"hammerio/internal/model"
)

// ContributorService is the read-only view of project contributors exposed
// to the transport layer.
type ContributorService interface {
	GetContributorsByProjectID(ctx context.Context, projectID string) ([]model.User, error)
}

type contributorService struct {
	projects ProjectService
}

// NewContributorService creates a contributor view over the project service.
func NewContributorService(projects ProjectService) ContributorService {
	return &contributorService{projects: projects}
}

func (s *contributorService) GetContributorsByProjectID(ctx context.Context, projectID string) ([]model.User, error) {
	return s.projects.GetContributorsByProjectID(ctx, projectID)
}
