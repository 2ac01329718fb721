// Package testutil holds helpers shared by tests that need Postgres or a
// signed access token.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestJWTSecret signs tokens produced by GenerateSupabaseJWT.
const TestJWTSecret = "test-secret-key-for-testing-only"

// SetupTestDB connects to TEST_DATABASE_URL, skipping the test when it is
// unset. The pool is closed when the test ends.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("Failed to ping test database: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// GenerateSupabaseJWT signs an access token shaped like Supabase's.
func GenerateSupabaseJWT(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"aud":  "authenticated",
		"role": "authenticated",
		"iss":  "https://project.supabase.co/auth/v1",
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}
