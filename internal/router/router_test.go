package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hammerio/internal/auth"
	apperrors "hammerio/internal/errors"
	"hammerio/internal/handler"
	"hammerio/internal/kv"
	"hammerio/internal/model"
	"hammerio/internal/repository"
	"hammerio/internal/seed"
	"hammerio/internal/service"
	"hammerio/internal/testutil"
	"hammerio/internal/tools"
)

type testServer struct {
	t *testing.T
	e *echo.Echo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gormDB := testutil.NewSeededDB(t)
	catalog, err := tools.Default()
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(gormDB)
	jwtService := auth.NewJWTService("test-secret")
	tokenStore := auth.NewTokenStore(kv.NewMemory())

	userService := service.NewUserService(userRepo)
	projectService := service.NewProjectService(repository.NewProjectRepository(gormDB), userService)
	credentialService := service.NewCredentialService(repository.NewCredentialRepository(gormDB))
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)

	e := echo.New()
	Register(e, jwtService, tokenStore, Handlers{
		Auth:       handler.NewAuthHandler(authService, jwtService),
		User:       handler.NewUserHandler(userService, projectService, credentialService),
		Credential: handler.NewCredentialHandler(credentialService),
		Project:    handler.NewProjectHandler(projectService, service.NewContributorService(projectService), userService),
		Tools:      handler.NewToolsHandler(catalog),
	})
	return &testServer{t: t, e: e}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(username string) handler.AuthResponse {
	s.t.Helper()

	rec := s.do(http.MethodPost, "/api/auth/login", "", handler.LoginRequest{Username: username, Password: seed.Password})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp handler.AuthResponse
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func userIDs(users []model.User) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func TestPublicRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/tools/ci", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ci := decode[[]tools.Tool](t, rec)
	require.NotEmpty(t, ci)
	assert.Equal(t, tools.TypeCI, ci[0].Type)

	rec = s.do(http.MethodGet, "/api/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/login", "", handler.LoginRequest{Username: "johnnyb", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/users", "", handler.CreateUserRequest{Username: "ab", Email: "bad"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMembershipRoutes(t *testing.T) {
	s := newTestServer(t)
	johnny := s.login("johnnyb").AccessToken
	bob := s.login("sagat@example.com").AccessToken

	rec := s.do(http.MethodGet, "/api/projects/b1/owners", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a4"}, userIDs(decode[[]model.User](t, rec)))

	rec = s.do(http.MethodGet, "/api/projects/b1/contributors", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a1", "a2", "a3"}, userIDs(decode[[]model.User](t, rec)))

	rec = s.do(http.MethodPost, "/api/projects/b1/owners/a1", johnny, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errResp := decode[apperrors.ErrorResponse](t, rec)
	assert.Equal(t, "BobSagat is already a contributor or owner on this project.", errResp.Error)
	assert.Equal(t, string(apperrors.KindDuplicate), errResp.Type)

	rec = s.do(http.MethodDelete, "/api/projects/b1/owners/a4", johnny, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Cannot delete the last owner for a project.", decode[apperrors.ErrorResponse](t, rec).Error)

	rec = s.do(http.MethodPost, "/api/projects/b1/owners/a10000", johnny, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User with a10000 could not be found.", decode[apperrors.ErrorResponse](t, rec).Error)

	rec = s.do(http.MethodPost, "/api/projects/b1/owners/thehulk", johnny, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"a4", "a5"}, userIDs(decode[[]model.User](t, rec)))

	// Contributors cannot manage the project.
	rec = s.do(http.MethodDelete, "/api/projects/b1", bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodDelete, "/api/projects/b1/contributors/a2", bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodDelete, "/api/projects/b10000", bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// but may leave it.
	rec = s.do(http.MethodDelete, "/api/projects/b1/contributors/BobSagat", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a2", "a3"}, userIDs(decode[[]model.User](t, rec)))

	rec = s.do(http.MethodGet, "/api/user/projects", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	projects := decode[service.UserProjects](t, rec)
	assert.Empty(t, projects.Owned)
	require.Len(t, projects.Contributed, 1)
	assert.Equal(t, "b2", projects.Contributed[0].ID)
}

func TestProjectRoutes(t *testing.T) {
	s := newTestServer(t)
	hulk := s.login("thehulk").AccessToken

	name := "Smash"
	author := "Bruce Banner"
	rec := s.do(http.MethodPost, "/api/projects", hulk, handler.ProjectRequest{ProjectName: &name, Author: &author})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Project](t, rec)
	assert.Equal(t, "Bruce Banner", created.Authors)

	rec = s.do(http.MethodPost, "/api/projects", hulk, handler.ProjectRequest{Author: &author})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	version := "2.0.0"
	rec = s.do(http.MethodPatch, "/api/projects/"+created.ID, hulk, handler.ProjectRequest{Version: &version})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2.0.0", decode[model.Project](t, rec).Version)

	rec = s.do(http.MethodPost, "/api/projects/"+created.ID+"/contributors/a2", hulk, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"a2"}, userIDs(decode[[]model.User](t, rec)))

	rec = s.do(http.MethodDelete, "/api/projects/"+created.ID, hulk, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Smash", decode[model.Project](t, rec).ProjectName)

	rec = s.do(http.MethodGet, "/api/projects", hulk, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Project](t, rec), 3)
}

func TestUserRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/users", "", handler.CreateUserRequest{
		Username: "splinter",
		Email:    "splinter@example.com",
		Password: seed.Password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do(http.MethodPost, "/api/users", "", handler.CreateUserRequest{
		Username: "splinter",
		Email:    "other@example.com",
		Password: seed.Password,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "splinter is already taken.", decode[apperrors.ErrorResponse](t, rec).Error)

	splinter := s.login("splinter").AccessToken
	johnny := s.login("johnnyb").AccessToken

	rec = s.do(http.MethodGet, "/api/user", johnny, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[handler.CurrentUserResponse](t, rec)
	assert.Equal(t, "a4", me.ID)
	assert.Equal(t, "hammer.io.team@gmail.com", me.HerokuEmail)
	assert.Empty(t, me.GithubUsername)

	rec = s.do(http.MethodGet, "/api/users/a10000", johnny, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	first := "Hamato"
	rec = s.do(http.MethodPatch, "/api/users/johnnyb", splinter, handler.UpdateUserRequest{FirstName: &first})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodPatch, "/api/users/splinter", splinter, handler.UpdateUserRequest{FirstName: &first})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hamato", decode[model.User](t, rec).FirstName)

	rec = s.do(http.MethodDelete, "/api/users/johnnyb", johnny, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "sole owner of TMNT")

	rec = s.do(http.MethodGet, "/api/users/jreach/projects", johnny, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	projects := decode[service.UserProjects](t, rec)
	require.Len(t, projects.Owned, 1)
	assert.Equal(t, "hammer-io", projects.Owned[0].ProjectName)
}

func TestUserRoutes_SelfCheckFollowsRenames(t *testing.T) {
	s := newTestServer(t)
	hulk := s.login("thehulk").AccessToken

	renamed := "bruce"
	rec := s.do(http.MethodPatch, "/api/users/thehulk", hulk, handler.UpdateUserRequest{Username: &renamed})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/users", "", handler.CreateUserRequest{
		Username: "thehulk",
		Email:    "other-hulk@example.com",
		Password: seed.Password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	impostor := decode[model.User](t, rec)

	first := "Bruce"
	rec = s.do(http.MethodPatch, "/api/users/thehulk", hulk, handler.UpdateUserRequest{FirstName: &first})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodDelete, "/api/users/thehulk", hulk, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodDelete, "/api/projects/b1/contributors/thehulk", hulk, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/api/users/"+impostor.ID, hulk, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[model.User](t, rec).FirstName)

	rec = s.do(http.MethodPatch, "/api/users/bruce", hulk, handler.UpdateUserRequest{FirstName: &first})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a5", decode[model.User](t, rec).ID)
	rec = s.do(http.MethodPatch, "/api/users/a5", hulk, handler.UpdateUserRequest{FirstName: &first})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCredentialRoutes(t *testing.T) {
	s := newTestServer(t)
	bob := s.login("BobSagat").AccessToken

	rec := s.do(http.MethodPut, "/api/user/credentials/travis", bob, handler.LinkCredentialRequest{
		Identity: "BobSagat",
		Token:    "travis-secret-token",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cred := decode[handler.CredentialResponse](t, rec)
	assert.Equal(t, "trav****oken", cred.Token)

	rec = s.do(http.MethodGet, "/api/user/credentials", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]handler.CredentialResponse](t, rec), 2)

	rec = s.do(http.MethodPut, "/api/user/credentials/bitbucket", bob, handler.LinkCredentialRequest{Identity: "x", Token: "y"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, "/api/user/credentials/heroku", bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(http.MethodDelete, "/api/user/credentials/travis", bob, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionRoutes(t *testing.T) {
	s := newTestServer(t)
	tokens := s.login("jreach")

	rec := s.do(http.MethodPost, "/api/auth/refresh", "", handler.RefreshRequest{RefreshToken: tokens.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[handler.AuthResponse](t, rec).AccessToken)

	rec = s.do(http.MethodPost, "/api/auth/logout", tokens.AccessToken, handler.LogoutRequest{RefreshToken: tokens.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/user", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/refresh", "", handler.RefreshRequest{RefreshToken: tokens.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
