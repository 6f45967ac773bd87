package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hammerio/internal/model"
)

// CredentialRepository stores links between users and external providers.
type CredentialRepository interface {
	Upsert(ctx context.Context, cred *model.ExternalCredential) error
	FindByUserAndProvider(ctx context.Context, userID string, provider model.Provider) (*model.ExternalCredential, error)
	ListByUser(ctx context.Context, userID string) ([]model.ExternalCredential, error)
	Delete(ctx context.Context, userID string, provider model.Provider) (int64, error)
}

type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository creates a new credential repository.
func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

// Upsert inserts the credential or replaces identity and token of the
// existing link for the same user and provider.
func (r *credentialRepository) Upsert(ctx context.Context, cred *model.ExternalCredential) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{"identity", "token", "updated_at"}),
	}).Create(cred).Error
}

func (r *credentialRepository) FindByUserAndProvider(ctx context.Context, userID string, provider model.Provider) (*model.ExternalCredential, error) {
	var cred model.ExternalCredential
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		First(&cred).Error; err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) ListByUser(ctx context.Context, userID string) ([]model.ExternalCredential, error) {
	var creds []model.ExternalCredential
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("provider").Find(&creds).Error; err != nil {
		return nil, err
	}
	return creds, nil
}

func (r *credentialRepository) Delete(ctx context.Context, userID string, provider model.Provider) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		Delete(&model.ExternalCredential{})
	return res.RowsAffected, res.Error
}
