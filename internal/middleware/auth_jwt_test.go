package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shop/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test_secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return signed
}

func doRequest(t *testing.T, authz string) (*httptest.ResponseRecorder, int64) {
	t.Helper()

	e := echo.New()
	cfg := config.Config{JWTSecret: testSecret}

	var gotUserID int64
	h := AuthJWT(cfg)(func(c echo.Context) error {
		gotUserID, _ = c.Get(CtxUserIDKey).(int64)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()

	err := h(e.NewContext(req, rec))
	assert.NoError(t, err)

	return rec, gotUserID
}

// Test: 正しいトークンならuser_idがcontextに入る
func TestAuthJWT_ValidToken(t *testing.T) {
	now := time.Now()
	token := signToken(t, jwt.MapClaims{
		"sub": 42,
		"iat": now.Unix(),
		"exp": now.Add(15 * time.Minute).Unix(),
	})

	rec, userID := doRequest(t, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), userID)
}

// Test: ヘッダ無し・形式違いは401
func TestAuthJWT_MissingOrMalformedHeader(t *testing.T) {
	rec, _ := doRequest(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doRequest(t, "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doRequest(t, "Bearer ")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Test: 期限切れは401
func TestAuthJWT_ExpiredToken(t *testing.T) {
	past := time.Now().Add(-1 * time.Hour)
	token := signToken(t, jwt.MapClaims{
		"sub": 42,
		"iat": past.Unix(),
		"exp": past.Add(15 * time.Minute).Unix(),
	})

	rec, _ := doRequest(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Test: 別のシークレットで署名されたトークンは401
func TestAuthJWT_WrongSecret(t *testing.T) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": 42,
		"iat": now.Unix(),
		"exp": now.Add(15 * time.Minute).Unix(),
	})
	signed, err := tok.SignedString([]byte("other_secret"))
	assert.NoError(t, err)

	rec, _ := doRequest(t, "Bearer "+signed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Test: subが無い・不正なら401
func TestAuthJWT_InvalidSubject(t *testing.T) {
	now := time.Now()
	token := signToken(t, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(15 * time.Minute).Unix(),
	})

	rec, _ := doRequest(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
