package middleware

import (
	"strings"

	"todo_backend/internal/apperr"
	"todo_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// JWT authenticates the request from the Authorization bearer header and
// stores the identity claims on the gin context for handlers downstream.
func JWT(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperr.Authentication("Authentication credentials were not provided."))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWithError(c, apperr.Authentication("Authorization header must be in the form: Bearer <token>."))
			return
		}

		claims, err := tokens.ParseAccess(parts[1])
		if err != nil {
			abortWithError(c, apperr.Authentication("Given token not valid for any token type."))
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("email", claims.Email)
		c.Next()
	}
}

func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
