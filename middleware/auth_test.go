package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/N1femi/Thriva/internal/testutil"
)

func protectedEcho() http.Handler {
	return SupabaseAuthMiddleware([]byte(testutil.TestJWTSecret))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Write([]byte(userID.String()))
	}))
}

func authRequest(header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/badges", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	protectedEcho().ServeHTTP(rr, req)
	return rr
}

func TestSupabaseAuth_ValidToken(t *testing.T) {
	userID := uuid.New()
	token, err := testutil.GenerateSupabaseJWT(testutil.TestJWTSecret, userID.String(), time.Hour)
	require.NoError(t, err)

	rr := authRequest("Bearer " + token)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, userID.String(), rr.Body.String())
}

func TestSupabaseAuth_Rejections(t *testing.T) {
	good := uuid.New().String()
	wrongSecret, _ := testutil.GenerateSupabaseJWT("another-secret", good, time.Hour)
	expired, _ := testutil.GenerateSupabaseJWT(testutil.TestJWTSecret, good, -time.Minute)
	notUUID, _ := testutil.GenerateSupabaseJWT(testutil.TestJWTSecret, "user_2abc", time.Hour)
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": good}).
		SignedString([]byte(testutil.TestJWTSecret))
	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": good, "exp": time.Now().Add(time.Hour).Unix()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := map[string]string{
		"missing header":    "",
		"no bearer prefix":  "Token abc",
		"garbage":           "Bearer not-a-jwt",
		"wrong secret":      "Bearer " + wrongSecret,
		"expired":           "Bearer " + expired,
		"subject not uuid":  "Bearer " + notUUID,
		"no expiry":         "Bearer " + noExp,
		"unsigned none alg": "Bearer " + noneAlg,
	}

	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			rr := authRequest(header)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGetUserID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetUserID(req.Context())
	assert.False(t, ok)
}
