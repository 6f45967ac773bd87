package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hammerio/internal/errors"
	"hammerio/internal/model"
	"hammerio/internal/service"
)

// CredentialHandler manages the caller's links to external providers.
type CredentialHandler struct {
	credentialService service.CredentialService
}

// NewCredentialHandler creates a new credential handler.
func NewCredentialHandler(credentialService service.CredentialService) *CredentialHandler {
	return &CredentialHandler{credentialService: credentialService}
}

// LinkCredentialRequest carries the provider-side identity and access token.
type LinkCredentialRequest struct {
	Identity string `json:"identity" validate:"required,max=255"`
	Token    string `json:"token" validate:"required,max=500"`
}

// CredentialResponse is a linked provider with its token masked.
type CredentialResponse struct {
	Provider model.Provider `json:"provider"`
	Identity string         `json:"identity"`
	Token    string         `json:"token"`
}

func toCredentialResponse(cred *model.ExternalCredential) CredentialResponse {
	return CredentialResponse{
		Provider: cred.Provider,
		Identity: cred.Identity,
		Token:    cred.MaskToken(),
	}
}

// ListCredentials godoc
// @Summary List linked providers
// @Tags credentials
// @Produce json
// @Security BearerAuth
// @Success 200 {array} CredentialResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /user/credentials [get]
func (h *CredentialHandler) ListCredentials(c echo.Context) error {
	claims, err := caller(c)
	if err != nil {
		return err
	}
	creds, err := h.credentialService.ListCredentials(c.Request().Context(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	resp := make([]CredentialResponse, 0, len(creds))
	for i := range creds {
		resp = append(resp, toCredentialResponse(&creds[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// LinkCredential godoc
// @Summary Link or replace a provider account
// @Tags credentials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param provider path string true "github, travis or heroku"
// @Param request body LinkCredentialRequest true "Provider account"
// @Success 200 {object} CredentialResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /user/credentials/{provider} [put]
func (h *CredentialHandler) LinkCredential(c echo.Context) error {
	claims, err := caller(c)
	if err != nil {
		return err
	}
	provider, err := providerParam(c)
	if err != nil {
		return err
	}

	var req LinkCredentialRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	cred, err := h.credentialService.LinkCredential(c.Request().Context(), claims.UserID, provider, req.Identity, req.Token)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toCredentialResponse(cred))
}

// UnlinkCredential godoc
// @Summary Unlink a provider account
// @Tags credentials
// @Produce json
// @Security BearerAuth
// @Param provider path string true "github, travis or heroku"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/credentials/{provider} [delete]
func (h *CredentialHandler) UnlinkCredential(c echo.Context) error {
	claims, err := caller(c)
	if err != nil {
		return err
	}
	provider, err := providerParam(c)
	if err != nil {
		return err
	}

	if err := h.credentialService.UnlinkCredential(c.Request().Context(), claims.UserID, provider); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: string(provider) + " unlinked"})
}

func providerParam(c echo.Context) (model.Provider, error) {
	provider := model.Provider(c.Param("provider"))
	if !provider.Valid() {
		return "", echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "unsupported provider " + string(provider),
			Code:  "INVALID_PROVIDER",
		})
	}
	return provider, nil
}
