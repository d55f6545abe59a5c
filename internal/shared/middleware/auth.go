package middleware

import (
	"errors"
	"strings"

	"folio-backend/internal/shared/response"
	"folio-backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const ContextAccountID = "account_id"

// AuthMiddleware validates the bearer token and stores the account id.
func AuthMiddleware(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		accountID, err := uuid.Parse(claims.AccountID)
		if err != nil {
			response.Unauthorized(c, "invalid account id in token")
			c.Abort()
			return
		}

		c.Set(ContextAccountID, accountID)
		c.Next()
	}
}

// AccountID reads the authenticated account id set by AuthMiddleware.
func AccountID(c *gin.Context) (uuid.UUID, error) {
	value, exists := c.Get(ContextAccountID)
	if !exists {
		return uuid.Nil, errors.New("account ID not found in context")
	}
	id, ok := value.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("invalid account ID type in context")
	}
	return id, nil
}
