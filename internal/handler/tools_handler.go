package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hammerio/internal/tools"
)

// ToolsHandler serves the tool catalog.
type ToolsHandler struct {
	catalog *tools.Catalog
}

// NewToolsHandler creates a new tools handler.
func NewToolsHandler(catalog *tools.Catalog) *ToolsHandler {
	return &ToolsHandler{catalog: catalog}
}

// GetTools godoc
// @Summary List every tool
// @Tags tools
// @Produce json
// @Success 200 {array} tools.Tool
// @Router /tools [get]
func (h *ToolsHandler) GetTools(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.GetTools())
}

// @Summary List source control tools
// @Tags tools
// @Produce json
// @Success 200 {array} tools.Tool
// @Router /tools/sourcecontrol [get]
func (h *ToolsHandler) GetSourceControlTools(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.GetSourceControlTools())
}

// @Summary List continuous integration tools
// @Tags tools
// @Produce json
// @Success 200 {array} tools.Tool
// @Router /tools/ci [get]
func (h *ToolsHandler) GetCITools(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.GetCITools())
}

// @Summary List containerization tools
// @Tags tools
// @Produce json
// @Success 200 {array} tools.Tool
// @Router /tools/containerization [get]
func (h *ToolsHandler) GetContainerizationTools(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.GetContainerizationTools())
}

// @Summary List deployment tools
// @Tags tools
// @Produce json
// @Success 200 {array} tools.Tool
// @Router /tools/deployment [get]
func (h *ToolsHandler) GetDeploymentTools(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.GetDeploymentTools())
}

// @Summary List web frameworks
// @Tags tools
// @Produce json
// @Success 200 {array} tools.Tool
// @Router /tools/web [get]
func (h *ToolsHandler) GetWebFrameworks(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.GetWebFrameworks())
}

// @Summary List test frameworks
// @Tags tools
// @Produce json
// @Success 200 {array} tools.Tool
// @Router /tools/test [get]
func (h *ToolsHandler) GetTestFrameworks(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.GetTestFrameworks())
}

// @Summary List database tools
// @Tags tools
// @Produce json
// @Success 200 {array} tools.Tool
// @Router /tools/database [get]
func (h *ToolsHandler) GetDatabaseTools(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.GetDatabaseTools())
}
