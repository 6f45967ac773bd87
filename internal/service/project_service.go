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

// UserDirectory resolves a user id or username to a user record.
type UserDirectory interface {
	GetUserByIDOrUsername(ctx context.Context, idOrUsername string) (*model.User, error)
}

// ProjectFields carries the project attributes supplied by a client. Nil
// fields are left untouched on update.
type ProjectFields struct {
	ProjectName *string
	Description *string
	Version     *string
	License     *string
	// Authors is the display string. When nil, Author is used instead.
	Authors *string
	Author  *string
}

func (f ProjectFields) authors() (string, bool) {
	if f.Authors != nil {
		return *f.Authors, true
	}
	if f.Author != nil {
		return *f.Author, true
	}
	return "", false
}

func (f ProjectFields) applyTo(p *model.Project) {
	if f.ProjectName != nil {
		p.ProjectName = *f.ProjectName
	}
	if f.Description != nil {
		p.Description = *f.Description
	}
	if f.Version != nil {
		p.Version = *f.Version
	}
	if f.License != nil {
		p.License = *f.License
	}
	if authors, ok := f.authors(); ok {
		p.Authors = authors
	}
}

// UserProjects splits a user's projects by role. A project shows up in both
// lists when the user is owner and contributor on it.
type UserProjects struct {
	Owned       []model.Project `json:"owned"`
	Contributed []model.Project `json:"contributed"`
}

// ProjectService manages projects and their owner/contributor membership.
type ProjectService interface {
	GetAllProjects(ctx context.Context) ([]model.Project, error)
	GetProjectByID(ctx context.Context, id string) (*model.Project, error)
	CreateProject(ctx context.Context, fields ProjectFields, creatorID string) (*model.Project, error)
	UpdateProject(ctx context.Context, fields ProjectFields, id string) (*model.Project, error)
	DeleteProjectByID(ctx context.Context, id string) (*model.Project, error)

	GetOwnersByProjectID(ctx context.Context, id string) ([]model.User, error)
	GetContributorsByProjectID(ctx context.Context, id string) ([]model.User, error)
	GetProjectsByUser(ctx context.Context, userID string) (*UserProjects, error)

	CheckIfUserIsOwnerOnProject(ctx context.Context, projectID, userID string) (bool, error)
	CheckIfUserIsContributorOnProject(ctx context.Context, projectID, userID string) (bool, error)

	AddOwnerToProject(ctx context.Context, projectID, userID string) ([]model.User, error)
	AddContributorToProject(ctx context.Context, projectID, userID string) ([]model.User, error)
	DeleteOwnerFromProject(ctx context.Context, projectID, userID string) ([]model.User, error)
	DeleteContributorFromProject(ctx context.Context, projectID, userID string) ([]model.User, error)
}

type projectService struct {
	projects repository.ProjectRepository
	users    UserDirectory
}

// NewProjectService creates a new project service.
func NewProjectService(projects repository.ProjectRepository, users UserDirectory) ProjectService {
	return &projectService{
		projects: projects,
		users:    users,
	}
}

func (s *projectService) GetAllProjects(ctx context.Context) ([]model.Project, error) {
	projects, err := s.projects.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *projectService) GetProjectByID(ctx context.Context, id string) (*model.Project, error) {
	return findProject(ctx, s.projects, id, false)
}

// CreateProject stores the project and makes the creator its sole owner in
// one transaction.
func (s *projectService) CreateProject(ctx context.Context, fields ProjectFields, creatorID string) (*model.Project, error) {
	creator, err := s.users.GetUserByIDOrUsername(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	project := &model.Project{}
	fields.applyTo(project)

	err = s.projects.WithTransaction(ctx, func(ctx context.Context, repo repository.ProjectRepository) error {
		if err := repo.Create(ctx, project); err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		if err := repo.AddMember(ctx, project.ID, creator.ID, model.RoleOwner); err != nil {
			return fmt.Errorf("add founding owner: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) UpdateProject(ctx context.Context, fields ProjectFields, id string) (*model.Project, error) {
	var updated *model.Project
	err := s.projects.WithTransaction(ctx, func(ctx context.Context, repo repository.ProjectRepository) error {
		project, err := findProject(ctx, repo, id, true)
		if err != nil {
			return err
		}
		fields.applyTo(project)
		if err := repo.Update(ctx, project); err != nil {
			return fmt.Errorf("update project: %w", err)
		}
		updated = project
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteProjectByID removes the project with all of its membership edges and
// returns the record as it was before deletion.
func (s *projectService) DeleteProjectByID(ctx context.Context, id string) (*model.Project, error) {
	var snapshot *model.Project
	err := s.projects.WithTransaction(ctx, func(ctx context.Context, repo repository.ProjectRepository) error {
		project, err := findProject(ctx, repo, id, true)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, project.ID); err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		snapshot = project
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *projectService) GetOwnersByProjectID(ctx context.Context, id string) ([]model.User, error) {
	return s.membersByRole(ctx, id, model.RoleOwner)
}

func (s *projectService) GetContributorsByProjectID(ctx context.Context, id string) ([]model.User, error) {
	return s.membersByRole(ctx, id, model.RoleContributor)
}

func (s *projectService) membersByRole(ctx context.Context, id string, role model.Role) ([]model.User, error) {
	project, err := findProject(ctx, s.projects, id, false)
	if err != nil {
		return nil, err
	}
	users, err := s.projects.ListMembers(ctx, project.ID, role)
	if err != nil {
		return nil, fmt.Errorf("list %ss: %w", role, err)
	}
	return users, nil
}

func (s *projectService) GetProjectsByUser(ctx context.Context, userID string) (*UserProjects, error) {
	user, err := s.users.GetUserByIDOrUsername(ctx, userID)
	if err != nil {
		return nil, err
	}

	owned, err := s.projects.ListProjectsForUser(ctx, user.ID, model.RoleOwner)
	if err != nil {
		return nil, fmt.Errorf("list owned projects: %w", err)
	}
	contributed, err := s.projects.ListProjectsForUser(ctx, user.ID, model.RoleContributor)
	if err != nil {
		return nil, fmt.Errorf("list contributed projects: %w", err)
	}
	return &UserProjects{Owned: owned, Contributed: contributed}, nil
}

// CheckIfUserIsOwnerOnProject reports false for unknown projects or users.
func (s *projectService) CheckIfUserIsOwnerOnProject(ctx context.Context, projectID, userID string) (bool, error) {
	return s.projects.HasMember(ctx, projectID, userID, model.RoleOwner)
}

// CheckIfUserIsContributorOnProject reports false for unknown projects or users.
func (s *projectService) CheckIfUserIsContributorOnProject(ctx context.Context, projectID, userID string) (bool, error) {
	return s.projects.HasMember(ctx, projectID, userID, model.RoleContributor)
}

func (s *projectService) AddOwnerToProject(ctx context.Context, projectID, userID string) ([]model.User, error) {
	return s.addMember(ctx, projectID, userID, model.RoleOwner)
}

func (s *projectService) AddContributorToProject(ctx context.Context, projectID, userID string) ([]model.User, error) {
	return s.addMember(ctx, projectID, userID, model.RoleContributor)
}

// addMember rejects a user holding any edge on the project, whatever its role.
func (s *projectService) addMember(ctx context.Context, projectID, userID string, role model.Role) ([]model.User, error) {
	project, user, err := s.resolve(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	var members []model.User
	err = s.projects.WithTransaction(ctx, func(ctx context.Context, repo repository.ProjectRepository) error {
		if _, err := findProject(ctx, repo, project.ID, true); err != nil {
			return err
		}
		exists, err := repo.HasAnyMembership(ctx, project.ID, user.ID)
		if err != nil {
			return fmt.Errorf("check membership: %w", err)
		}
		if exists {
			return apperrors.DuplicateMember(user.Username)
		}
		if err := repo.AddMember(ctx, project.ID, user.ID, role); err != nil {
			return fmt.Errorf("add %s: %w", role, err)
		}
		members, err = repo.ListMembers(ctx, project.ID, role)
		if err != nil {
			return fmt.Errorf("list %ss: %w", role, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

// DeleteOwnerFromProject refuses to remove the only owner. Removing a user
// that is not an owner leaves the project unchanged.
func (s *projectService) DeleteOwnerFromProject(ctx context.Context, projectID, userID string) ([]model.User, error) {
	project, user, err := s.resolve(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	var owners []model.User
	err = s.projects.WithTransaction(ctx, func(ctx context.Context, repo repository.ProjectRepository) error {
		if _, err := findProject(ctx, repo, project.ID, true); err != nil {
			return err
		}
		isOwner, err := repo.HasMember(ctx, project.ID, user.ID, model.RoleOwner)
		if err != nil {
			return fmt.Errorf("check owner: %w", err)
		}
		if isOwner {
			count, err := repo.CountMembers(ctx, project.ID, model.RoleOwner)
			if err != nil {
				return fmt.Errorf("count owners: %w", err)
			}
			if count <= 1 {
				return apperrors.LastOwner()
			}
			if err := repo.RemoveMember(ctx, project.ID, user.ID, model.RoleOwner); err != nil {
				return fmt.Errorf("remove owner: %w", err)
			}
		}
		owners, err = repo.ListMembers(ctx, project.ID, model.RoleOwner)
		if err != nil {
			return fmt.Errorf("list owners: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return owners, nil
}

func (s *projectService) DeleteContributorFromProject(ctx context.Context, projectID, userID string) ([]model.User, error) {
	project, user, err := s.resolve(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	var contributors []model.User
	err = s.projects.WithTransaction(ctx, func(ctx context.Context, repo repository.ProjectRepository) error {
		if _, err := findProject(ctx, repo, project.ID, true); err != nil {
			return err
		}
		if err := repo.RemoveMember(ctx, project.ID, user.ID, model.RoleContributor); err != nil {
			return fmt.Errorf("remove contributor: %w", err)
		}
		var err error
		contributors, err = repo.ListMembers(ctx, project.ID, model.RoleContributor)
		if err != nil {
			return fmt.Errorf("list contributors: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return contributors, nil
}

// resolve looks up the project first and the user second, so a request
// naming two missing entities reports the project.
func (s *projectService) resolve(ctx context.Context, projectID, userID string) (*model.Project, *model.User, error) {
	project, err := findProject(ctx, s.projects, projectID, false)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.users.GetUserByIDOrUsername(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return project, user, nil
}

func findProject(ctx context.Context, repo repository.ProjectRepository, id string, forUpdate bool) (*model.Project, error) {
	var (
		project *model.Project
		err     error
	)
	if forUpdate {
		project, err = repo.FindByIDForUpdate(ctx, id)
	} else {
		project, err = repo.FindByID(ctx, id)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ProjectNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("find project %s: %w", id, err)
	}
	return project, nil
}
