package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// testKeyID — идентификатор ключа для тестов.
const testKeyID = "test-key-am"

const testIssuer = "https://keycloak.test/realms/finshield"

// generateTestKey генерирует RSA ключ для тестов.
func generateTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

// buildJWKSetJSON строит JWKS JSON из RSA публичного ключа.
func buildJWKSetJSON(pub *rsa.PublicKey, kid string) json.RawMessage {
	nB64 := base64.RawURLEncoding.EncodeToString(pub.N.Bytes())
	eB64 := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes())

	jwks := map[string]any{
		"keys": []map[string]any{
			{
				"kty": "RSA",
				"kid": kid,
				"use": "sig",
				"alg": "RS256",
				"n":   nB64,
				"e":   eB64,
			},
		},
	}

	data, _ := json.Marshal(jwks)
	return data
}

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestJWTAuth создаёт JWTAuth со статическим JWKS.
func newTestJWTAuth(t *testing.T, key *rsa.PrivateKey) *JWTAuth {
	t.Helper()
	jwksJSON := buildJWKSetJSON(&key.PublicKey, testKeyID)
	kf, err := keyfunc.NewJWKSetJSON(jwksJSON)
	if err != nil {
		t.Fatalf("не удалось создать keyfunc: %v", err)
	}

	return NewJWTAuthWithKeyfunc(
		kf,
		testIssuer,
		[]string{"/finshield-admins"},
		[]string{"/finshield-analysts"},
		testLogger(),
	)
}

// generateToken генерирует JWT с указанными группами.
func generateToken(t *testing.T, key *rsa.PrivateKey, sub, username, email string, groups []string, expired bool) string {
	t.Helper()

	exp := time.Now().Add(time.Hour)
	if expired {
		exp = time.Now().Add(-time.Hour)
	}

	claims := jwt.MapClaims{
		"sub":                sub,
		"preferred_username": username,
		"email":              email,
		"iss":                testIssuer,
		"exp":                jwt.NewNumericDate(exp),
		"nbf":                jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		"iat":                jwt.NewNumericDate(time.Now()),
	}
	if len(groups) > 0 {
		claims["groups"] = groups
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKeyID
	tokenStr, err := token.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return tokenStr
}

// --- Тесты JWT Middleware ---

// TestJWTAuth_ValidToken — валидный JWT аналитика из admin-группы.
func TestJWTAuth_ValidToken(t *testing.T) {
	key := generateTestKey(t)
	auth := newTestJWTAuth(t, key)

	handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			t.Fatal("claims не найдены в контексте")
		}

		if claims.Subject != "analyst-123" {
			t.Errorf("ожидался sub=analyst-123, получен %s", claims.Subject)
		}
		if claims.PreferredUsername != "a.petrova" {
			t.Errorf("ожидался username=a.petrova, получен %s", claims.PreferredUsername)
		}
		if claims.Email != "a.petrova@finshield.test" {
			t.Errorf("ожидался email=a.petrova@finshield.test, получен %s", claims.Email)
		}
		if claims.EffectiveRole != RoleAdmin {
			t.Errorf("ожидался EffectiveRole=admin, получен %s", claims.EffectiveRole)
		}

		w.WriteHeader(http.StatusOK)
	}))

	tokenStr := generateToken(t, key, "analyst-123", "a.petrova", "a.petrova@finshield.test",
		[]string{"/finshield-admins"}, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("ожидался статус 200, получен %d, тело: %s", rec.Code, rec.Body.String())
	}
}

// TestJWTAuth_ExpiredToken — просроченный JWT отклоняется.
func TestJWTAuth_ExpiredToken(t *testing.T) {
	key := generateTestKey(t)
	auth := newTestJWTAuth(t, key)

	handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("обработчик не должен вызываться для просроченного токена")
	}))

	tokenStr := generateToken(t, key, "analyst-123", "a.petrova", "a@test", nil, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("ожидался статус 401, получен %d", rec.Code)
	}
}

// TestJWTAuth_MissingHeader — запрос без Authorization отклоняется.
func TestJWTAuth_MissingHeader(t *testing.T) {
	key := generateTestKey(t)
	auth := newTestJWTAuth(t, key)

	handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("обработчик не должен вызываться без заголовка Authorization")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("ожидался статус 401, получен %d", rec.Code)
	}
}

// TestJWTAuth_RoleMapping — маппинг групп в роли.
func TestJWTAuth_RoleMapping(t *testing.T) {
	auth := &JWTAuth{
		adminGroups:    []string{"/finshield-admins"},
		readonlyGroups: []string{"/finshield-analysts"},
		logger:         testLogger(),
	}

	tests := []struct {
		name   string
		groups []string
		want   string
	}{
		{"admin группа", []string{"/finshield-admins"}, RoleAdmin},
		{"readonly группа", []string{"/finshield-analysts"}, RoleReadonly},
		{"обе группы — admin побеждает", []string{"/finshield-analysts", "/finshield-admins"}, RoleAdmin},
		{"чужая группа", []string{"/other-team"}, ""},
		{"без групп", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := auth.buildAuthClaims(&idpClaims{Groups: tt.groups})
			if claims.EffectiveRole != tt.want {
				t.Errorf("EffectiveRole = %q, ожидается %q", claims.EffectiveRole, tt.want)
			}
		})
	}
}

// TestRequireRole — middleware пропускает только нужные роли.
func TestRequireRole(t *testing.T) {
	key := generateTestKey(t)
	auth := newTestJWTAuth(t, key)

	handler := auth.Middleware()(RequireRole(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	// readonly-группа не проходит RequireRole(admin)
	tokenStr := generateToken(t, key, "analyst-1", "viewer", "v@test",
		[]string{"/finshield-analysts"}, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("ожидался статус 403, получен %d", rec.Code)
	}
}
