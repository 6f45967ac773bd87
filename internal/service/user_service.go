package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "hammerio/internal/errors"
	"hammerio/internal/model"
	"hammerio/internal/repository"
)

const bcryptCost = 10

// UserFields carries the user attributes supplied by a client. Nil fields
// are left untouched on update.
type UserFields struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
}

// UserService is the user directory.
type UserService interface {
	GetAllUsers(ctx context.Context) ([]model.User, error)
	GetUserByIDOrUsername(ctx context.Context, idOrUsername string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User, password string) (*model.User, error)
	UpdateUser(ctx context.Context, idOrUsername string, fields UserFields) (*model.User, error)
	DeleteUserByIDOrUsername(ctx context.Context, idOrUsername string) (*model.User, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService on top of the user repository.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userService) GetUserByIDOrUsername(ctx context.Context, idOrUsername string) (*model.User, error) {
	return findUser(ctx, s.repo, idOrUsername)
}

// CreateUser stores the user with a bcrypt hash of password. Username and
// email must be unused.
func (s *userService) CreateUser(ctx context.Context, user *model.User, password string) (*model.User, error) {
	user.Username = strings.TrimSpace(user.Username)
	user.Email = strings.TrimSpace(user.Email)

	if err := s.ensureAvailable(ctx, "", user.Username, user.Email); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hashedPassword)

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, idOrUsername string, fields UserFields) (*model.User, error) {
	user, err := findUser(ctx, s.repo, idOrUsername)
	if err != nil {
		return nil, err
	}

	var username, email string
	if fields.Username != nil && *fields.Username != user.Username {
		username = strings.TrimSpace(*fields.Username)
		user.Username = username
	}
	if fields.Email != nil && *fields.Email != user.Email {
		email = strings.TrimSpace(*fields.Email)
		user.Email = email
	}
	if fields.FirstName != nil {
		user.FirstName = *fields.FirstName
	}
	if fields.LastName != nil {
		user.LastName = *fields.LastName
	}

	if err := s.ensureAvailable(ctx, user.ID, username, email); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// DeleteUserByIDOrUsername removes the user, its credentials and its
// membership edges. A user that is the only owner of a project cannot be
// deleted until another owner is added.
func (s *userService) DeleteUserByIDOrUsername(ctx context.Context, idOrUsername string) (*model.User, error) {
	var deleted *model.User
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.UserRepository) error {
		user, err := findUser(ctx, repo, idOrUsername)
		if err != nil {
			return err
		}
		if _, err := repo.LockOwnedProjects(ctx, user.ID); err != nil {
			return fmt.Errorf("lock owned projects: %w", err)
		}
		soleOwned, err := repo.SoleOwnedProjectIDs(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("check owned projects: %w", err)
		}
		if len(soleOwned) > 0 {
			return apperrors.LastOwner()
		}
		if err := repo.Delete(ctx, user.ID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		deleted = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// ensureAvailable checks that username and email, when non-empty, are not
// used by a user other than selfID.
func (s *userService) ensureAvailable(ctx context.Context, selfID, username, email string) error {
	if username != "" {
		existing, err := s.repo.FindByUsername(ctx, username)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check username: %w", err)
		}
		if existing != nil && existing.ID != selfID {
			return apperrors.DuplicateField(username)
		}
	}
	if email != "" {
		existing, err := s.repo.FindByEmail(ctx, email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check email: %w", err)
		}
		if existing != nil && existing.ID != selfID {
			return apperrors.DuplicateField(email)
		}
	}
	return nil
}

func findUser(ctx context.Context, repo repository.UserRepository, idOrUsername string) (*model.User, error) {
	user, err := repo.FindByIDOrUsername(ctx, idOrUsername)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.UserNotFound(idOrUsername)
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", idOrUsername, err)
	}
	return user, nil
}
