package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
)

// UserContextKey is the key used to store user information in Gin context
const UserContextKey = "user"

// UserContext represents the authenticated user's information
type UserContext struct {
	UserID     int64           `json:"user_id"`
	Username   string          `json:"username"`
	Role       models.UserRole `json:"role"`
	EmployeeID *int64          `json:"employee_id,omitempty"`
}

func unauthorized(c *gin.Context, errCode, message, code string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   errCode,
		"message": message,
		"code":    code,
	})
}

// AuthMiddleware creates a middleware that validates JWT access tokens
func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logrus.WithFields(logrus.Fields{"path": c.Request.URL.Path, "ip": c.ClientIP()})

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Debug("Auth failed: missing authorization header")
			unauthorized(c, "unauthorized", "Authorization header is required", "MISSING_AUTH_HEADER")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			log.Debug("Auth failed: invalid authorization format")
			unauthorized(c, "unauthorized", "Invalid authorization header format. Expected: Bearer <token>", "INVALID_AUTH_FORMAT")
			return
		}

		claims, err := jwtService.ValidateAccessToken(strings.TrimSpace(parts[1]))
		if err != nil {
			if jwt.IsExpired(err) {
				log.Debug("Auth failed: token expired")
				unauthorized(c, "token_expired", "Access token has expired. Please refresh your token.", "TOKEN_EXPIRED")
			} else {
				log.WithError(err).Warn("Auth failed: invalid token")
				unauthorized(c, "invalid_token", "Invalid access token", "INVALID_TOKEN")
			}
			return
		}

		c.Set(UserContextKey, UserContext{
			UserID:     claims.UserID,
			Username:   claims.Username,
			Role:       models.UserRole(claims.Role),
			EmployeeID: claims.EmployeeID,
		})
		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RequireRole rejects users whose role is not listed
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			unauthorized(c, "unauthorized", "User context not found. Auth middleware may not be applied.", "MISSING_USER_CONTEXT")
			return
		}

		for _, role := range roles {
			if userCtx.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "You don't have permission to access this resource",
			"code":    "INSUFFICIENT_PERMISSIONS",
		})
	}
}

// RequireEmployeeLink rejects accounts that are not linked to an employee record
func RequireEmployeeLink() gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			unauthorized(c, "unauthorized", "User context not found", "MISSING_USER_CONTEXT")
			return
		}
		if userCtx.EmployeeID == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "This account is not linked to an employee",
				"code":    "NO_EMPLOYEE_LINK",
			})
			return
		}
		c.Next()
	}
}

// GetUserContext retrieves the user context from Gin context
func GetUserContext(c *gin.Context) (UserContext, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return UserContext{}, false
	}
	userCtx, ok := value.(UserContext)
	return userCtx, ok
}

// MustGetUserContext retrieves the user context or panics (use only after AuthMiddleware)
func MustGetUserContext(c *gin.Context) UserContext {
	userCtx, exists := GetUserContext(c)
	if !exists {
		panic("user context not found - ensure AuthMiddleware is applied")
	}
	return userCtx
}
