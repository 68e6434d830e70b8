package middleware

import (
	"context"
	"net/http"

	"attendhq/internal/common"
	"attendhq/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// OrgAccessMiddleware resolves the :orgID route parameter and refuses the
// request unless the authenticated user is a member of that organization.
// Handlers downstream read the organization ID from the request context and
// never trust a client-supplied body field for it.
type OrgAccessMiddleware struct {
	orgRepo repositories.OrganizationRepository
}

func NewOrgAccessMiddleware(orgRepo repositories.OrganizationRepository) *OrgAccessMiddleware {
	return &OrgAccessMiddleware{orgRepo: orgRepo}
}

func (m *OrgAccessMiddleware) RequireOrgAccess() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := common.GetUserIDFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authentication")
			}

			orgID, err := uuid.Parse(c.Param("orgID"))
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "Invalid organization ID")
			}

			member, err := m.orgRepo.IsMember(c.Request().Context(), orgID, userID)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check organization access")
			}
			if !member {
				// Reported as not-found so non-members cannot probe which
				// organization IDs exist.
				return echo.NewHTTPError(http.StatusNotFound, "Organization not found")
			}

			ctx := context.WithValue(c.Request().Context(), common.OrganizationIDKey, orgID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
