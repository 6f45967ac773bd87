package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "hammerio/internal/errors"
	"hammerio/internal/model"
	"hammerio/internal/repository"
	"hammerio/internal/testutil"
)

type seededServices struct {
	db           *gorm.DB
	users        UserService
	projects     ProjectService
	contributors ContributorService
}

func newSeededServices(t *testing.T) seededServices {
	t.Helper()
	gormDB := testutil.NewSeededDB(t)
	users := NewUserService(repository.NewUserRepository(gormDB))
	projects := NewProjectService(repository.NewProjectRepository(gormDB), users)
	return seededServices{
		db:           gormDB,
		users:        users,
		projects:     projects,
		contributors: NewContributorService(projects),
	}
}

func ids(users []model.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func projectIDs(projects []model.Project) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.ID)
	}
	return out
}

func TestMembership_SeededQueries(t *testing.T) {
	s := newSeededServices(t)
	ctx := context.Background()

	owners, err := s.projects.GetOwnersByProjectID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a4"}, ids(owners))
	assert.Equal(t, "johnnyb", owners[0].Username)

	contributors, err := s.contributors.GetContributorsByProjectID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2", "a3"}, ids(contributors))

	projects, err := s.projects.GetProjectsByUser(ctx, "jreach")
	require.NoError(t, err)
	assert.Equal(t, []string{"b2"}, projectIDs(projects.Owned))
	assert.Equal(t, "hammer-io", projects.Owned[0].ProjectName)
	assert.Equal(t, []string{"b1"}, projectIDs(projects.Contributed))

	isOwner, err := s.projects.CheckIfUserIsOwnerOnProject(ctx, "b1", "a4")
	require.NoError(t, err)
	assert.True(t, isOwner)
	isOwner, err = s.projects.CheckIfUserIsOwnerOnProject(ctx, "b1", "a1")
	require.NoError(t, err)
	assert.False(t, isOwner)
	isContributor, err := s.projects.CheckIfUserIsContributorOnProject(ctx, "b10000", "a1")
	require.NoError(t, err)
	assert.False(t, isContributor)

	all, err := s.projects.GetAllProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	project, err := s.projects.GetProjectByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "Casey Jones, Raphael", project.Authors)
}

func TestMembership_NotFound(t *testing.T) {
	s := newSeededServices(t)
	ctx := context.Background()

	_, err := s.projects.GetProjectByID(ctx, "b10000")
	assert.ErrorIs(t, err, apperrors.ErrProjectNotFound)
	assert.EqualError(t, err, "Project with id b10000 not found")

	_, err = s.projects.AddOwnerToProject(ctx, "b1", "a10000")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	assert.EqualError(t, err, "User with a10000 could not be found.")

	_, err = s.projects.AddContributorToProject(ctx, "b10000", "a10000")
	assert.ErrorIs(t, err, apperrors.ErrProjectNotFound)

	_, err = s.contributors.GetContributorsByProjectID(ctx, "b10000")
	assert.ErrorIs(t, err, apperrors.ErrProjectNotFound)

	_, err = s.projects.GetProjectsByUser(ctx, "a10000")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestMembership_AddAndRemove(t *testing.T) {
	s := newSeededServices(t)
	ctx := context.Background()

	contributors, err := s.projects.AddContributorToProject(ctx, "b3", "a2")
	require.NoError(t, err)
	assert.Equal(t, []string{"a2"}, ids(contributors))

	owners, err := s.projects.AddOwnerToProject(ctx, "b3", "BobSagat")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a3"}, ids(owners))

	_, err = s.projects.AddOwnerToProject(ctx, "b3", "a1")
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.EqualError(t, err, "BobSagat is already a contributor or owner on this project.")

	// A contributor cannot also be added as owner.
	_, err = s.projects.AddOwnerToProject(ctx, "b3", "a2")
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	owners, err = s.projects.DeleteOwnerFromProject(ctx, "b3", "a3")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, ids(owners))

	_, err = s.projects.DeleteOwnerFromProject(ctx, "b3", "a1")
	assert.ErrorIs(t, err, apperrors.ErrLastOwner)

	contributors, err = s.projects.DeleteContributorFromProject(ctx, "b3", "a2")
	require.NoError(t, err)
	assert.Empty(t, contributors)
	assert.NotNil(t, contributors)

	// Removing an absent contributor leaves the list as it was.
	contributors, err = s.projects.DeleteContributorFromProject(ctx, "b1", "a5")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2", "a3"}, ids(contributors))
}

func TestMembership_LastOwnerOfSeededProject(t *testing.T) {
	s := newSeededServices(t)
	ctx := context.Background()

	_, err := s.projects.DeleteOwnerFromProject(ctx, "b1", "a4")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrLastOwner)
	assert.Equal(t, "Cannot delete the last owner for a project.", err.Error())

	owners, err := s.projects.GetOwnersByProjectID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a4"}, ids(owners))
}

func TestMembership_ProjectLifecycle(t *testing.T) {
	s := newSeededServices(t)
	ctx := context.Background()

	created, err := s.projects.CreateProject(ctx, ProjectFields{
		ProjectName: strPtr("Shredder"),
		Description: strPtr("Foot clan tooling"),
		Version:     strPtr("0.0.1"),
		License:     strPtr("MIT"),
		Author:      strPtr("Krang"),
	}, "a5")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	owners, err := s.projects.GetOwnersByProjectID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a5"}, ids(owners))

	updated, err := s.projects.UpdateProject(ctx, ProjectFields{Version: strPtr("1.0.0")}, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", updated.Version)
	assert.Equal(t, "Shredder", updated.ProjectName)

	before, err := s.projects.GetProjectByID(ctx, "b1")
	require.NoError(t, err)
	snapshot, err := s.projects.DeleteProjectByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, before, snapshot)
	assert.Equal(t, "TMNT", snapshot.ProjectName)

	all, err := s.projects.GetAllProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = s.projects.GetOwnersByProjectID(ctx, "b1")
	assert.ErrorIs(t, err, apperrors.ErrProjectNotFound)

	projects, err := s.projects.GetProjectsByUser(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b2"}, projectIDs(projects.Contributed))

	_, err = s.projects.DeleteProjectByID(ctx, "b1")
	assert.ErrorIs(t, err, apperrors.ErrProjectNotFound)
}

func TestMembership_OwnerAndContributorListedInBoth(t *testing.T) {
	s := newSeededServices(t)
	ctx := context.Background()

	require.NoError(t, repository.NewProjectRepository(s.db).AddMember(ctx, "b1", "a4", model.RoleContributor))

	projects, err := s.projects.GetProjectsByUser(ctx, "a4")
	require.NoError(t, err)
	assert.Contains(t, projectIDs(projects.Owned), "b1")
	assert.Contains(t, projectIDs(projects.Contributed), "b1")

	isOwner, err := s.projects.CheckIfUserIsOwnerOnProject(ctx, "b1", "a4")
	require.NoError(t, err)
	assert.True(t, isOwner)
	isContributor, err := s.projects.CheckIfUserIsContributorOnProject(ctx, "b1", "a4")
	require.NoError(t, err)
	assert.True(t, isContributor)
}

func TestUserService_Seeded(t *testing.T) {
	s := newSeededServices(t)
	ctx := context.Background()

	users, err := s.users.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 5)

	user, err := s.users.GetUserByIDOrUsername(ctx, "johnnyb")
	require.NoError(t, err)
	assert.Equal(t, "a4", user.ID)
	assert.Equal(t, "hammer.io.team@gmail.com", user.Email)

	_, err = s.users.CreateUser(ctx, &model.User{Username: "jreach", Email: "new@example.com"}, "secret")
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.EqualError(t, err, "jreach is already taken.")

	created, err := s.users.CreateUser(ctx, &model.User{Username: " leo ", Email: "leo@example.com"}, "secret")
	require.NoError(t, err)
	assert.Equal(t, "leo", created.Username)
	assert.NotEqual(t, "secret", created.PasswordHash)

	_, err = s.users.UpdateUser(ctx, "leo", UserFields{Email: strPtr("hulk@example.com")})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	updated, err := s.users.UpdateUser(ctx, "leo", UserFields{FirstName: strPtr("Leonardo")})
	require.NoError(t, err)
	assert.Equal(t, "Leonardo", updated.FirstName)

	// johnnyb is the only owner of TMNT.
	_, err = s.users.DeleteUserByIDOrUsername(ctx, "a4")
	assert.ErrorIs(t, err, apperrors.ErrLastOwner)

	deleted, err := s.users.DeleteUserByIDOrUsername(ctx, "thehulk")
	require.NoError(t, err)
	assert.Equal(t, "a5", deleted.ID)
	_, err = s.users.GetUserByIDOrUsername(ctx, "a5")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	// Deleting a contributor drops the edge.
	_, err = s.users.DeleteUserByIDOrUsername(ctx, "a1")
	require.NoError(t, err)
	contributors, err := s.contributors.GetContributorsByProjectID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a2", "a3"}, ids(contributors))
}
