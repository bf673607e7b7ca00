package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/medcabinet/api/internal/model"
	"github.com/medcabinet/api/internal/repository"
	"github.com/medcabinet/api/pkg/auth"
	"github.com/medcabinet/api/pkg/httputil"
)

const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
	ContextUser     = "user"
)

type AuthMiddleware struct {
	jwtService auth.JWTService
	userRepo   repository.UserRepository
	// userCache avoids a DB round trip per authenticated request.
	userCache *gocache.Cache
}

func NewAuthMiddleware(jwtService auth.JWTService, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		userRepo:   userRepo,
		userCache:  gocache.New(5*time.Minute, 10*time.Minute),
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.Response{
		Success: false,
		Error:   &httputil.Error{Code: http.StatusUnauthorized, Message: message},
	})
}

// Authenticate verifies the bearer token and sets the user in context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		user, err := m.lookupUser(c, claims.UserID)
		if err != nil {
			abortUnauthorized(c, "account no longer exists")
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserRole, user.Role)
		c.Set(ContextUser, user)
		c.Next()
	}
}

func (m *AuthMiddleware) lookupUser(c *gin.Context, id uuid.UUID) (*model.User, error) {
	key := id.String()
	if cached, ok := m.userCache.Get(key); ok {
		return cached.(*model.User), nil
	}

	user, err := m.userRepo.Get(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	m.userCache.Set(key, user, gocache.DefaultExpiration)
	return user, nil
}

// RequireRole allows only the listed roles past.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(ContextUserRole)
		if !ok {
			abortUnauthorized(c, "authentication required")
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusForbidden, Message: "insufficient permissions"},
		})
	}
}

// RequireStaff allows any non-patient role.
func RequireStaff() gin.HandlerFunc {
	return RequireRole(model.RoleDoctor, model.RoleReceptionist, model.RoleAdmin)
}

func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func UserRole(c *gin.Context) (model.Role, bool) {
	v, ok := c.Get(ContextUserRole)
	if !ok {
		return "", false
	}
	role, ok := v.(model.Role)
	return role, ok
}

func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}
