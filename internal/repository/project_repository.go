package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hammerio/internal/model"
)

// ProjectRepository persists projects and their membership edges.
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Project, error)
	FindByIDForUpdate(ctx context.Context, id string) (*model.Project, error)
	FindAll(ctx context.Context) ([]model.Project, error)

	AddMember(ctx context.Context, projectID, userID string, role model.Role) error
	RemoveMember(ctx context.Context, projectID, userID string, role model.Role) error
	HasMember(ctx context.Context, projectID, userID string, role model.Role) (bool, error)
	HasAnyMembership(ctx context.Context, projectID, userID string) (bool, error)
	CountMembers(ctx context.Context, projectID string, role model.Role) (int64, error)
	ListMembers(ctx context.Context, projectID string, role model.Role) ([]model.User, error)
	ListProjectsForUser(ctx context.Context, userID string, role model.Role) ([]model.Project, error)

	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo ProjectRepository) error) error
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// Create inserts a new project.
func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// Update saves every column of an existing project.
func (r *projectRepository) Update(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

// Delete removes the project and every membership edge pointing at it.
func (r *projectRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("project_id = ?", id).Delete(&model.ProjectMember{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.Project{}).Error
}

// FindByID finds a project by ID.
func (r *projectRepository) FindByID(ctx context.Context, id string) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByIDForUpdate finds a project by ID and locks its row until the
// surrounding transaction ends. SQLite serializes writers on its own and
// has no FOR UPDATE syntax.
func (r *projectRepository) FindByIDForUpdate(ctx context.Context, id string) (*model.Project, error) {
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var project model.Project
	if err := q.Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindAll lists every project in store order.
func (r *projectRepository) FindAll(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := r.db.WithContext(ctx).Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) AddMember(ctx context.Context, projectID, userID string, role model.Role) error {
	return r.db.WithContext(ctx).Create(&model.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}).Error
}

func (r *projectRepository) RemoveMember(ctx context.Context, projectID, userID string, role model.Role) error {
	return r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ? AND role = ?", projectID, userID, role).
		Delete(&model.ProjectMember{}).Error
}

func (r *projectRepository) HasMember(ctx context.Context, projectID, userID string, role model.Role) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ? AND role = ?", projectID, userID, role).
		Count(&count).Error
	return count > 0, err
}

func (r *projectRepository) HasAnyMembership(ctx context.Context, projectID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *projectRepository) CountMembers(ctx context.Context, projectID string, role model.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ProjectMember{}).
		Where("project_id = ? AND role = ?", projectID, role).
		Count(&count).Error
	return count, err
}

// ListMembers returns the users holding role on the project, ordered by id.
func (r *projectRepository) ListMembers(ctx context.Context, projectID string, role model.Role) ([]model.User, error) {
	users := []model.User{}
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Joins("JOIN project_members ON project_members.user_id = users.id").
		Where("project_members.project_id = ? AND project_members.role = ?", projectID, role).
		Order("users.id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ListProjectsForUser returns the projects on which the user holds role.
func (r *projectRepository) ListProjectsForUser(ctx context.Context, userID string, role model.Role) ([]model.Project, error) {
	projects := []model.Project{}
	err := r.db.WithContext(ctx).Model(&model.Project{}).
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ? AND project_members.role = ?", userID, role).
		Order("projects.id").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// WithTransaction executes a function within a database transaction.
func (r *projectRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo ProjectRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &projectRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
