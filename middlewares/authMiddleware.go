package middlewares

import (
	"net/http"
	"strings"

	"bitbucket.org/mmdatafocus/erp_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthMiddleware validates the bearer token and attaches the caller's
// user id, company id and role to the request context. Every tenant-scoped
// query downstream reads the company id from there.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")

		bearer := "Bearer "
		if auth == "" || !strings.HasPrefix(auth, bearer) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		auth = auth[len(bearer):]

		validate, err := utils.JwtValidate(auth)
		if err != nil || !validate.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		claim, ok := validate.Claims.(*utils.JwtCustomClaim)
		if !ok || claim.CompanyId == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), auth)
		ctx = utils.SetCompanyIdInContext(ctx, claim.CompanyId)
		ctx = utils.SetUserIdInContext(ctx, claim.ID)
		ctx = utils.SetRoleInContext(ctx, claim.Role)

		correlationId := c.Request.Header.Get("X-Correlation-Id")
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		ctx = utils.SetCorrelationIdInContext(ctx, correlationId)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole gates an endpoint to one role (e.g. Admin-only deletes).
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, ok := utils.GetRoleFromContext(c.Request.Context())
		if !ok || current != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}
