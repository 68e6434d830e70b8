package handlers

import (
	"net/http"

	"attendhq/internal/common"
	"attendhq/internal/services"

	"github.com/labstack/echo/v4"
)

type OrganizationHandlers struct {
	orgService services.OrganizationService
}

func NewOrganizationHandlers(orgService services.OrganizationService) *OrganizationHandlers {
	return &OrganizationHandlers{orgService: orgService}
}

// CreateOrganization registers a new organization owned by the caller.
func (h *OrganizationHandlers) CreateOrganization(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.CreateOrganizationRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	req.OwnerID = userID

	org, err := h.orgService.Create(ctx, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, org)
}

// ListOrganizations returns every organization the caller belongs to. An
// empty list is a normal response, not an error.
func (h *OrganizationHandlers) ListOrganizations(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	orgs, err := h.orgService.GetUserOrganizations(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orgs)
}

// GetOrganization returns a single organization the caller is a member of.
func (h *OrganizationHandlers) GetOrganization(c echo.Context) error {
	ctx := c.Request().Context()

	orgID, ok := common.GetOrganizationIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	org, err := h.orgService.GetByID(ctx, orgID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, org)
}

// UpdateOrganization updates the organization's profile fields.
func (h *OrganizationHandlers) UpdateOrganization(c echo.Context) error {
	ctx := c.Request().Context()

	orgID, ok := common.GetOrganizationIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.UpdateOrganizationRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	req.ID = orgID

	if err := h.orgService.Update(ctx, &req); err != nil {
		return respondError(c, err)
	}

	org, err := h.orgService.GetByID(ctx, orgID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, org)
}

// EnsureAccess records the caller's membership and login on the
// organization. Idempotent; used by clients after authentication.
func (h *OrganizationHandlers) EnsureAccess(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	orgID, ok := common.GetOrganizationIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.orgService.EnsureUserOrgAccess(ctx, userID, orgID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
