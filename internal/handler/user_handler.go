package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hammerio/internal/errors"
	"hammerio/internal/logger"
	"hammerio/internal/model"
	"hammerio/internal/service"
)

// UserHandler handles user endpoints.
type UserHandler struct {
	userService       service.UserService
	projectService    service.ProjectService
	credentialService service.CredentialService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService, projectService service.ProjectService, credentialService service.CredentialService) *UserHandler {
	return &UserHandler{
		userService:       userService,
		projectService:    projectService,
		credentialService: credentialService,
	}
}

// CreateUserRequest represents a sign-up request.
type CreateUserRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Password  string `json:"password" validate:"required,min=6"`
}

// UpdateUserRequest represents a partial user update.
type UpdateUserRequest struct {
	Username  *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
}

// CurrentUserResponse is the authenticated user with the handles of the
// external accounts they linked.
type CurrentUserResponse struct {
	model.User
	GithubUsername string `json:"github_username,omitempty"`
	HerokuEmail    string `json:"heroku_email,omitempty"`
}

// CreateUser godoc
// @Summary Sign up a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "User data"
// @Success 201 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.userService.CreateUser(c.Request().Context(), &model.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// CurrentUser godoc
// @Summary Get the authenticated user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CurrentUserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user [get]
func (h *UserHandler) CurrentUser(c echo.Context) error {
	claims, err := caller(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.userService.GetUserByIDOrUsername(ctx, claims.UserID)
	if err != nil {
		return respondError(c, err)
	}

	resp := CurrentUserResponse{User: *user}
	if resp.GithubUsername, err = h.credentialService.GetGithubUsernameForUser(ctx, user.ID); err != nil {
		logger.Warn().Err(err).Str("user_id", user.ID).Msg("github lookup failed")
	}
	if resp.HerokuEmail, err = h.credentialService.GetHerokuEmailForUser(ctx, user.ID); err != nil {
		logger.Warn().Err(err).Str("user_id", user.ID).Msg("heroku lookup failed")
	}
	return c.JSON(http.StatusOK, resp)
}

// CurrentUserProjects godoc
// @Summary List the authenticated user's projects
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.UserProjects
// @Failure 401 {object} errors.ErrorResponse
// @Router /user/projects [get]
func (h *UserHandler) CurrentUserProjects(c echo.Context) error {
	claims, err := caller(c)
	if err != nil {
		return err
	}
	projects, err := h.projectService.GetProjectsByUser(c.Request().Context(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, projects)
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.GetAllUsers(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser godoc
// @Summary Get a user by id or username
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param user path string true "User id or username"
// @Success 200 {object} model.User
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{user} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userService.GetUserByIDOrUsername(c.Request().Context(), c.Param("user"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetUserProjects godoc
// @Summary List a user's projects
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param user path string true "User id or username"
// @Success 200 {object} service.UserProjects
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{user}/projects [get]
func (h *UserHandler) GetUserProjects(c echo.Context) error {
	projects, err := h.projectService.GetProjectsByUser(c.Request().Context(), c.Param("user"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, projects)
}

// UpdateUser godoc
// @Summary Update the authenticated user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user path string true "User id or username"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /users/{user} [patch]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	claims, err := caller(c)
	if err != nil {
		return err
	}
	self, err := isSelf(c.Request().Context(), h.userService, claims, c.Param("user"))
	if err != nil {
		return respondError(c, err)
	}
	if !self {
		return respondError(c, errors.Forbidden("You may only modify your own account."))
	}

	var req UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateUser(c.Request().Context(), claims.UserID, service.UserFields{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Delete the authenticated user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param user path string true "User id or username"
// @Success 200 {object} model.User
// @Failure 403 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /users/{user} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	claims, err := caller(c)
	if err != nil {
		return err
	}
	self, err := isSelf(c.Request().Context(), h.userService, claims, c.Param("user"))
	if err != nil {
		return respondError(c, err)
	}
	if !self {
		return respondError(c, errors.Forbidden("You may only delete your own account."))
	}

	user, err := h.userService.DeleteUserByIDOrUsername(c.Request().Context(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
