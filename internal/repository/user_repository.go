package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hammerio/internal/model"
)

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByIDOrUsername(ctx context.Context, idOrUsername string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	LockOwnedProjects(ctx context.Context, userID string) ([]string, error)
	SoleOwnedProjectIDs(ctx context.Context, userID string) ([]string, error)
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// Delete removes the user along with its credentials and membership edges.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("user_id = ?", id).Delete(&model.ProjectMember{}).Error; err != nil {
		return err
	}
	if err := db.Where("user_id = ?", id).Delete(&model.ExternalCredential{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.User{}).Error
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDOrUsername matches on id first and falls back to username.
func (r *userRepository) FindByIDOrUsername(ctx context.Context, idOrUsername string) (*model.User, error) {
	user, err := r.FindByID(ctx, idOrUsername)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return r.FindByUsername(ctx, idOrUsername)
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// LockOwnedProjects locks the rows of every project the user owns, in id
// order, until the surrounding transaction ends. Owner removals lock the same
// rows, so owner counts read afterwards stay valid until commit.
func (r *userRepository) LockOwnedProjects(ctx context.Context, userID string) ([]string, error) {
	q := r.db.WithContext(ctx).Model(&model.Project{})
	if r.db.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	owned := r.db.Model(&model.ProjectMember{}).
		Select("project_id").
		Where("user_id = ? AND role = ?", userID, model.RoleOwner)
	var ids []string
	if err := q.Where("id IN (?)", owned).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// SoleOwnedProjectIDs lists the projects on which the user is the only owner.
func (r *userRepository) SoleOwnedProjectIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.ProjectMember{}).
		Where("user_id = ? AND role = ?", userID, model.RoleOwner).
		Where("(SELECT COUNT(*) FROM project_members o WHERE o.project_id = project_members.project_id AND o.role = ?) = 1", model.RoleOwner).
		Pluck("project_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// WithTransaction executes a function within a database transaction.
func (r *userRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &userRepository{db: tx})
	})
}
