package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shenikar/livestock_alerts/internal/models"
	"github.com/sirupsen/logrus"
)

const callerKey = "caller"

// Claims - утверждения токена, который выпускает сервис аутентификации
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator проверяет bearer JWT (HS256, общий секрет) и кладет вызывающего в контекст
type Authenticator struct {
	secret []byte
	logger *logrus.Logger
}

func NewAuthenticator(secret string, logger *logrus.Logger) *Authenticator {
	return &Authenticator{secret: []byte(secret), logger: logger}
}

var errInvalidClaims = errors.New("invalid token claims")

func (a *Authenticator) parse(tokenString string) (models.Caller, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return models.Caller{}, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil || userID == uuid.Nil {
		return models.Caller{}, errInvalidClaims
	}
	role := models.Role(claims.Role)
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return models.Caller{}, errInvalidClaims
	}
	return models.Caller{UserID: userID, Role: role}, nil
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func (a *Authenticator) authenticate(c *gin.Context, required bool) {
	token := extractToken(c)
	if token == "" {
		if required {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication token required")
			return
		}
		c.Next()
		return
	}

	caller, err := a.parse(token)
	if err != nil {
		a.logger.WithError(err).Warn("Invalid authentication token")
		abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid authentication token")
		return
	}
	c.Set(callerKey, caller)
	c.Next()
}

// RequireAuth пропускает только запросы с действительным токеном
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		a.authenticate(c, true)
	}
}

// OptionalAuth проверяет токен, если он передан; без токена запрос анонимный
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		a.authenticate(c, false)
	}
}

// callerFrom возвращает вызывающего; для анонимного запроса нулевое значение
func callerFrom(c *gin.Context) models.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(models.Caller); ok {
			return caller
		}
	}
	return models.Caller{}
}
