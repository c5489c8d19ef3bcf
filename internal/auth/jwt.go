package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/skyfare/flightbooking/internal/domain"
)

const actorContextKey = "auth.actor"

type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 access tokens carrying the user id
// and role.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

func (m *Manager) Issue(user *domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) Parse(token string) (domain.Actor, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return domain.Actor{}, errors.New("invalid token")
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return domain.Actor{}, errors.New("invalid token subject")
	}
	return domain.Actor{UserID: userID, Role: claims.Role}, nil
}

// Middleware extracts the bearer token, verifies it and stores the actor
// on the request context. Requests without a valid token get 401.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		actor, err := m.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		SetActor(c, actor)
		c.Next()
	}
}

// RequireAdmin gates admin-only routes. Must run after Middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok || !actor.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

// SetActor stores the actor on the request context. The middleware uses
// it; tests use it to skip token plumbing.
func SetActor(c *gin.Context, actor domain.Actor) {
	c.Set(actorContextKey, actor)
}

func ActorFromContext(c *gin.Context) (domain.Actor, bool) {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	return actor, ok
}
