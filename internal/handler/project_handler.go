package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hammerio/internal/errors"
	"hammerio/internal/service"
)

// ProjectHandler handles project and membership endpoints.
type ProjectHandler struct {
	projectService     service.ProjectService
	contributorService service.ContributorService
	userService        service.UserService
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(projectService service.ProjectService, contributorService service.ContributorService, userService service.UserService) *ProjectHandler {
	return &ProjectHandler{
		projectService:     projectService,
		contributorService: contributorService,
		userService:        userService,
	}
}

// ProjectRequest carries project attributes. On create project_name is
// required; on update absent fields are left unchanged. author is accepted
// as an alias of authors.
type ProjectRequest struct {
	ProjectName *string `json:"project_name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Version     *string `json:"version" validate:"omitempty,max=64"`
	License     *string `json:"license" validate:"omitempty,max=64"`
	Authors     *string `json:"authors" validate:"omitempty,max=500"`
	Author      *string `json:"author" validate:"omitempty,max=500"`
}

func (r ProjectRequest) fields() service.ProjectFields {
	return service.ProjectFields{
		ProjectName: r.ProjectName,
		Description: r.Description,
		Version:     r.Version,
		License:     r.License,
		Authors:     r.Authors,
		Author:      r.Author,
	}
}

// ListProjects godoc
// @Summary List projects
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Project
// @Failure 401 {object} errors.ErrorResponse
// @Router /projects [get]
func (h *ProjectHandler) ListProjects(c echo.Context) error {
	projects, err := h.projectService.GetAllProjects(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, projects)
}

// GetProject godoc
// @Summary Get a project
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} model.Project
// @Failure 404 {object} errors.ErrorResponse
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetProject(c echo.Context) error {
	project, err := h.projectService.GetProjectByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, project)
}

// CreateProject godoc
// @Summary Create a project owned by the caller
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProjectRequest true "Project data"
// @Success 201 {object} model.Project
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /projects [post]
func (h *ProjectHandler) CreateProject(c echo.Context) error {
	claims, err := caller(c)
	if err != nil {
		return err
	}

	var req ProjectRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.ProjectName == nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "project_name is required",
			Code:  "VALIDATION_FAILED",
		})
	}

	project, err := h.projectService.CreateProject(c.Request().Context(), req.fields(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, project)
}

// UpdateProject godoc
// @Summary Update a project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param request body ProjectRequest true "Fields to change"
// @Success 200 {object} model.Project
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /projects/{id} [patch]
func (h *ProjectHandler) UpdateProject(c echo.Context) error {
	if err := h.requireOwner(c); err != nil {
		return err
	}

	var req ProjectRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	project, err := h.projectService.UpdateProject(c.Request().Context(), req.fields(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, project)
}

// DeleteProject godoc
// @Summary Delete a project
// @Description Returns the project as it was before deletion.
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} model.Project
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(c echo.Context) error {
	if err := h.requireOwner(c); err != nil {
		return err
	}

	project, err := h.projectService.DeleteProjectByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, project)
}

// GetOwners godoc
// @Summary List project owners
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {array} model.User
// @Failure 404 {object} errors.ErrorResponse
// @Router /projects/{id}/owners [get]
func (h *ProjectHandler) GetOwners(c echo.Context) error {
	owners, err := h.projectService.GetOwnersByProjectID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, owners)
}

// AddOwner godoc
// @Summary Add an owner to a project
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param user path string true "User id or username"
// @Success 201 {array} model.User
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /projects/{id}/owners/{user} [post]
func (h *ProjectHandler) AddOwner(c echo.Context) error {
	if err := h.requireOwner(c); err != nil {
		return err
	}

	owners, err := h.projectService.AddOwnerToProject(c.Request().Context(), c.Param("id"), c.Param("user"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, owners)
}

// RemoveOwner godoc
// @Summary Remove an owner from a project
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param user path string true "User id or username"
// @Success 200 {array} model.User
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /projects/{id}/owners/{user} [delete]
func (h *ProjectHandler) RemoveOwner(c echo.Context) error {
	if err := h.requireOwner(c); err != nil {
		return err
	}

	owners, err := h.projectService.DeleteOwnerFromProject(c.Request().Context(), c.Param("id"), c.Param("user"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, owners)
}

// GetContributors godoc
// @Summary List project contributors
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {array} model.User
// @Failure 404 {object} errors.ErrorResponse
// @Router /projects/{id}/contributors [get]
func (h *ProjectHandler) GetContributors(c echo.Context) error {
	contributors, err := h.contributorService.GetContributorsByProjectID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, contributors)
}

// AddContributor godoc
// @Summary Add a contributor to a project
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param user path string true "User id or username"
// @Success 201 {array} model.User
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /projects/{id}/contributors/{user} [post]
func (h *ProjectHandler) AddContributor(c echo.Context) error {
	if err := h.requireOwner(c); err != nil {
		return err
	}

	contributors, err := h.projectService.AddContributorToProject(c.Request().Context(), c.Param("id"), c.Param("user"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, contributors)
}

// RemoveContributor godoc
// @Summary Remove a contributor from a project
// @Description Owners may remove anyone; contributors may remove themselves.
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param user path string true "User id or username"
// @Success 200 {array} model.User
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /projects/{id}/contributors/{user} [delete]
func (h *ProjectHandler) RemoveContributor(c echo.Context) error {
	claims, err := caller(c)
	if err != nil {
		return err
	}
	self, err := isSelf(c.Request().Context(), h.userService, claims, c.Param("user"))
	if err != nil {
		return respondError(c, err)
	}
	if !self {
		if err := h.requireOwner(c); err != nil {
			return err
		}
	}

	contributors, err := h.projectService.DeleteContributorFromProject(c.Request().Context(), c.Param("id"), c.Param("user"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, contributors)
}

// requireOwner rejects callers that do not own the project in the :id
// parameter. An unknown project is reported as not found.
func (h *ProjectHandler) requireOwner(c echo.Context) error {
	claims, err := caller(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	projectID := c.Param("id")

	isOwner, err := h.projectService.CheckIfUserIsOwnerOnProject(ctx, projectID, claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	if isOwner {
		return nil
	}
	if _, err := h.projectService.GetProjectByID(ctx, projectID); err != nil {
		return respondError(c, err)
	}
	return respondError(c, errors.Forbidden("You must be an owner of this project."))
}
