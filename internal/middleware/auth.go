package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/asistia/care-api/internal/model"
	"github.com/asistia/care-api/internal/repository"
	"github.com/asistia/care-api/pkg/auth"
)

const ContextCaller = "caller"

// AuthMiddleware validates bearer tokens and resolves the caller. The
// user row behind a token is cached for a short TTL to keep hot paths
// off the database; caregiver assignment scopes are never cached, the
// services query those per request.
type AuthMiddleware struct {
	validator auth.TokenValidator
	users     repository.UserRepository
	cache     *gocache.Cache
}

func NewAuthMiddleware(validator auth.TokenValidator, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		users:     users,
		cache:     gocache.New(30*time.Second, time.Minute),
	}
}

func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Fail("falta el encabezado de autorización"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Fail("formato de autorización inválido"))
			return
		}

		claims, err := m.validator.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Fail("token inválido"))
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Fail("token inválido"))
			return
		}

		user, err := m.lookupUser(c, userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, model.Fail("error interno del servidor"))
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Fail("usuario no encontrado"))
			return
		}

		c.Set(ContextCaller, model.Caller{ID: user.ID, Role: user.Role})
		c.Next()
	}
}

func (m *AuthMiddleware) lookupUser(c *gin.Context, userID int64) (*model.User, error) {
	key := strconv.FormatInt(userID, 10)
	if cached, found := m.cache.Get(key); found {
		return cached.(*model.User), nil
	}

	user, err := m.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		m.cache.Set(key, user, gocache.DefaultExpiration)
	}
	return user, nil
}

// CallerFrom extracts the authenticated caller set by Authenticate.
func CallerFrom(c *gin.Context) (model.Caller, bool) {
	v, ok := c.Get(ContextCaller)
	if !ok {
		return model.Caller{}, false
	}
	caller, ok := v.(model.Caller)
	return caller, ok
}
