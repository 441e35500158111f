package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliNMackie/blackcard-concierge-ai/models"
	"github.com/AliNMackie/blackcard-concierge-ai/repository"
)

func authTestRouter(secret, apiKey string, users *repository.UsersRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", AuthMiddleware(secret, apiKey, users), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"subjectId":  c.GetString("subjectId"),
			"role":       c.GetString("role"),
			"apiKeyAuth": c.GetBool("apiKeyAuth"),
		})
	})
	return r
}

func probe(t *testing.T, r *gin.Engine, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Empty(t, bearerToken("Basic abc"))
	assert.Empty(t, bearerToken("abc"))
	assert.Empty(t, bearerToken(""))
}

func TestAuthMiddlewareRejectsMissingCredential(t *testing.T) {
	r := authTestRouter("secret-secret-secret-secret-1234", "key", repository.NewUsersRepository())
	w := probe(t, r, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthMiddlewareAPIKeyGrantsTrainer(t *testing.T) {
	r := authTestRouter("secret-secret-secret-secret-1234", "key", repository.NewUsersRepository())

	w := probe(t, r, func(req *http.Request) { req.Header.Set(HeaderAPIKey, "key") })
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"trainer"`)
	assert.Contains(t, w.Body.String(), `"apiKeyAuth":true`)

	w = probe(t, r, func(req *http.Request) { req.Header.Set("Authorization", "Bearer key") })
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareRejectsWrongSecret(t *testing.T) {
	r := authTestRouter("secret-secret-secret-secret-1234", "", repository.NewUsersRepository())

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1", "exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("a-completely-different-secret!!"))
	require.NoError(t, err)

	w := probe(t, r, func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+signed) })
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	secret := "secret-secret-secret-secret-1234"
	r := authTestRouter(secret, "", repository.NewUsersRepository())

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1", "exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	w := probe(t, r, func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+signed) })
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthMiddlewareFillsRoleFromStore(t *testing.T) {
	secret := "secret-secret-secret-secret-1234"
	users := repository.NewUsersRepository()
	users.EnsureUser("u-1")
	require.NoError(t, users.SetRole("u-1", models.RoleTrainer))
	r := authTestRouter(secret, "", users)

	// Token without a role claim: the store supplies it.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1", "exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	w := probe(t, r, func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+signed) })
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"trainer"`)
}
