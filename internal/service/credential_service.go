package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "hammerio/internal/errors"
	"hammerio/internal/model"
	"hammerio/internal/repository"
)

// CredentialService manages the external provider accounts linked to users.
// The Get*ForUser lookups are best effort: an unlinked provider yields "".
type CredentialService interface {
	GetGithubUsernameForUser(ctx context.Context, userID string) (string, error)
	GetHerokuEmailForUser(ctx context.Context, userID string) (string, error)
	GetTravisTokenForUser(ctx context.Context, userID string) (string, error)
	ListCredentials(ctx context.Context, userID string) ([]model.ExternalCredential, error)
	LinkCredential(ctx context.Context, userID string, provider model.Provider, identity, token string) (*model.ExternalCredential, error)
	UnlinkCredential(ctx context.Context, userID string, provider model.Provider) error
}

type credentialService struct {
	repo repository.CredentialRepository
}

// NewCredentialService creates a new credential service.
func NewCredentialService(repo repository.CredentialRepository) CredentialService {
	return &credentialService{repo: repo}
}

func (s *credentialService) GetGithubUsernameForUser(ctx context.Context, userID string) (string, error) {
	cred, err := s.lookup(ctx, userID, model.ProviderGithub)
	if err != nil || cred == nil {
		return "", err
	}
	return cred.Identity, nil
}

func (s *credentialService) GetHerokuEmailForUser(ctx context.Context, userID string) (string, error) {
	cred, err := s.lookup(ctx, userID, model.ProviderHeroku)
	if err != nil || cred == nil {
		return "", err
	}
	return cred.Identity, nil
}

func (s *credentialService) GetTravisTokenForUser(ctx context.Context, userID string) (string, error) {
	cred, err := s.lookup(ctx, userID, model.ProviderTravis)
	if err != nil || cred == nil {
		return "", err
	}
	return cred.Token, nil
}

func (s *credentialService) ListCredentials(ctx context.Context, userID string) ([]model.ExternalCredential, error) {
	creds, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return creds, nil
}

// LinkCredential creates or replaces the user's link to provider.
func (s *credentialService) LinkCredential(ctx context.Context, userID string, provider model.Provider, identity, token string) (*model.ExternalCredential, error) {
	if !provider.Valid() {
		return nil, fmt.Errorf("unsupported provider %q", provider)
	}
	cred := &model.ExternalCredential{
		UserID:   userID,
		Provider: provider,
		Identity: identity,
		Token:    token,
	}
	if err := s.repo.Upsert(ctx, cred); err != nil {
		return nil, fmt.Errorf("link %s: %w", provider, err)
	}
	return s.repo.FindByUserAndProvider(ctx, userID, provider)
}

func (s *credentialService) UnlinkCredential(ctx context.Context, userID string, provider model.Provider) error {
	n, err := s.repo.Delete(ctx, userID, provider)
	if err != nil {
		return fmt.Errorf("unlink %s: %w", provider, err)
	}
	if n == 0 {
		return apperrors.CredentialNotFound(string(provider))
	}
	return nil
}

func (s *credentialService) lookup(ctx context.Context, userID string, provider model.Provider) (*model.ExternalCredential, error) {
	cred, err := s.repo.FindByUserAndProvider(ctx, userID, provider)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s credential: %w", provider, err)
	}
	return cred, nil
}
