package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/AliNMackie/blackcard-concierge-ai/models"
	"github.com/AliNMackie/blackcard-concierge-ai/repository"
	"github.com/AliNMackie/blackcard-concierge-ai/types"
)

const minPasswordLen = 8

// HeaderAPIKey is the static credential header accepted alongside bearer
// tokens for backwards compatibility during the auth migration.
const HeaderAPIKey = "X-Elite-Key"

type AuthHandler struct {
	users     *repository.UsersRepository
	jwtSecret string
}

func NewAuthHandler(users *repository.UsersRepository, jwtSecret string) *AuthHandler {
	return &AuthHandler{users: users, jwtSecret: jwtSecret}
}

// AuthMiddleware authenticates requests. Two credential schemes are
// accepted, and both may be present on one request:
//   - Authorization: Bearer <jwt> signed by this service
//   - the static API key, either as X-Elite-Key or as the bearer value
//
// A valid key grants trainer-level access to every subject. Failures are
// 403, which feed consumers classify as authorization-denied rather than a
// transient fault.
func AuthMiddleware(secret, apiKey string, users *repository.UsersRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := bearerToken(c.GetHeader("Authorization"))

		if apiKey != "" && (c.GetHeader(HeaderAPIKey) == apiKey || bearer == apiKey) {
			c.Set("subjectId", "concierge-root")
			c.Set("role", models.RoleTrainer)
			c.Set("apiKeyAuth", true)
			c.Next()
			return
		}

		if bearer == "" {
			c.JSON(http.StatusForbidden, types.NewError("Invalid or missing API Key"))
			c.Abort()
			return
		}

		token, err := jwt.Parse(bearer, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusForbidden, types.NewError("Invalid token"))
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusForbidden, types.NewError("Invalid token claims"))
			c.Abort()
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			c.JSON(http.StatusForbidden, types.NewError("Subject not found in token"))
			c.Abort()
			return
		}
		role, _ := claims["role"].(string)
		if role == "" {
			if u, err := users.GetByID(sub); err == nil {
				role = u.Role
			} else {
				role = models.RoleClient
			}
		}
		c.Set("subjectId", sub)
		c.Set("role", role)
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// Register creates a client account. Weak passwords are rejected before the
// store is touched; duplicate emails map to 409 so callers can distinguish
// "account exists" from validation failures.
func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewError(err.Error()))
		return
	}
	if len(req.Password) < minPasswordLen {
		c.JSON(http.StatusBadRequest, types.NewError("Password must be at least 8 characters"))
		return
	}
	user, err := h.users.CreateUser(req.Email, req.Password, req.DisplayName)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			c.JSON(http.StatusConflict, types.NewError("Email already in use"))
			return
		}
		c.JSON(http.StatusInternalServerError, types.NewError("Failed to register user"))
		return
	}
	token, err := h.issueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewError("Failed to generate token"))
		return
	}
	c.JSON(http.StatusCreated, types.TokenResponse{Token: token, UserID: user.ID, DisplayName: user.DisplayName})
}

// Login verifies credentials and issues an HS256 token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewError(err.Error()))
		return
	}
	user, err := h.users.CheckPassword(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, types.NewError("Invalid email or password"))
		return
	}
	token, err := h.issueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewError("Failed to generate token"))
		return
	}
	c.JSON(http.StatusOK, types.TokenResponse{Token: token, UserID: user.ID, DisplayName: user.DisplayName})
}

func (h *AuthHandler) issueToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString([]byte(h.jwtSecret))
}
