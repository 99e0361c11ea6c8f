package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inventory_backend/utils"
)

// AuthMiddleware rejects requests without a valid bearer token and puts
// the authenticated user id into the request context. Every protected
// route reads the principal from context, never from request params.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")

		const bearer = "Bearer "
		if auth == "" || !strings.HasPrefix(auth, bearer) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "authorization token required"})
			c.Abort()
			return
		}
		auth = auth[len(bearer):]

		validate, err := utils.JwtValidate(auth)
		if err != nil || !validate.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			c.Abort()
			return
		}

		customClaim, ok := validate.Claims.(*utils.JwtCustomClaim)
		if !ok || customClaim.ID <= 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetUserIdInContext(c.Request.Context(), customClaim.ID)
		ctx = utils.SetTokenInContext(ctx, auth)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
