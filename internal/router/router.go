package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"hammerio/internal/auth"
	"hammerio/internal/handler"
	"hammerio/internal/logger"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth       *handler.AuthHandler
	User       *handler.UserHandler
	Credential *handler.CredentialHandler
	Project    *handler.ProjectHandler
	Tools      *handler.ToolsHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, h Handlers) {
	e.Use(middleware.RequestID())
	e.Use(logger.EchoLogger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/logout", h.Auth.Logout)
	api.POST("/users", h.User.CreateUser)

	tools := api.Group("/tools")
	tools.GET("", h.Tools.GetTools)
	tools.GET("/sourcecontrol", h.Tools.GetSourceControlTools)
	tools.GET("/ci", h.Tools.GetCITools)
	tools.GET("/containerization", h.Tools.GetContainerizationTools)
	tools.GET("/deployment", h.Tools.GetDeploymentTools)
	tools.GET("/web", h.Tools.GetWebFrameworks)
	tools.GET("/test", h.Tools.GetTestFrameworks)
	tools.GET("/database", h.Tools.GetDatabaseTools)

	// Secured routes (require JWT authentication)
	secured := api.Group("", auth.Middleware(jwtService, tokenStore))

	// Authenticated user
	secured.GET("/user", h.User.CurrentUser)
	secured.GET("/user/projects", h.User.CurrentUserProjects)
	secured.GET("/user/credentials", h.Credential.ListCredentials)
	secured.PUT("/user/credentials/:provider", h.Credential.LinkCredential)
	secured.DELETE("/user/credentials/:provider", h.Credential.UnlinkCredential)

	// User directory
	secured.GET("/users", h.User.ListUsers)
	secured.GET("/users/:user", h.User.GetUser)
	secured.PATCH("/users/:user", h.User.UpdateUser)
	secured.DELETE("/users/:user", h.User.DeleteUser)
	secured.GET("/users/:user/projects", h.User.GetUserProjects)

	// Projects
	secured.GET("/projects", h.Project.ListProjects)
	secured.POST("/projects", h.Project.CreateProject)
	secured.GET("/projects/:id", h.Project.GetProject)
	secured.PATCH("/projects/:id", h.Project.UpdateProject)
	secured.DELETE("/projects/:id", h.Project.DeleteProject)

	// Membership
	secured.GET("/projects/:id/owners", h.Project.GetOwners)
	secured.POST("/projects/:id/owners/:user", h.Project.AddOwner)
	secured.DELETE("/projects/:id/owners/:user", h.Project.RemoveOwner)
	secured.GET("/projects/:id/contributors", h.Project.GetContributors)
	secured.POST("/projects/:id/contributors/:user", h.Project.AddContributor)
	secured.DELETE("/projects/:id/contributors/:user", h.Project.RemoveContributor)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
