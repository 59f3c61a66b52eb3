package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hongminglow/santuario-be/internal/models"
)

const sessionTTL = 30 * 24 * time.Hour

func testUser() models.User {
	return models.User{ID: 42, Name: "Ana", Email: "ana@x.com", Role: models.RoleCuidador}
}

func TestGenerateAndVerify_Success(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", "santuario", sessionTTL)
	tok, err := tm.Generate(testUser())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	claims, err := tm.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	id := claims.Identity()
	if id.UserID != 42 || id.Role != models.RoleCuidador || id.Email != "ana@x.com" || id.Name != "Ana" {
		t.Fatalf("identity mismatch: %+v", id)
	}
	if claims.Subject != "42" {
		t.Fatalf("subject = %q, want 42", claims.Subject)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != sessionTTL {
		t.Fatalf("lifetime = %v, want %v", got, sessionTTL)
	}
}

func TestVerify_RejectsTokenIssued31DaysAgo(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", "santuario", sessionTTL)
	issued := time.Now().Add(-31 * 24 * time.Hour)
	tm.now = func() time.Time { return issued }
	tok, err := tm.Generate(testUser())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	tm.now = time.Now
	_, err = tm.Verify(tok)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected jwt.ErrTokenExpired in chain, got %v", err)
	}
}

func TestVerify_AcceptsTokenIssued29DaysAgo(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", "santuario", sessionTTL)
	tm.now = func() time.Time { return time.Now().Add(-29 * 24 * time.Hour) }
	tok, err := tm.Generate(testUser())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	tm.now = time.Now
	if _, err := tm.Verify(tok); err != nil {
		t.Fatalf("Verify error: %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenManager("right-secret", "santuario", time.Hour).Generate(testUser())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if _, err := NewTokenManager("wrong-secret", "santuario", time.Hour).Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for invalid signature, got %v", err)
	}
}

func TestVerify_WrongIssuer(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenManager("secret", "someone-else", time.Hour).Generate(testUser())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if _, err := NewTokenManager("secret", "santuario", time.Hour).Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign issuer, got %v", err)
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", "santuario", time.Hour)
	tok, err := tm.Generate(testUser())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	maestro := testUser()
	maestro.Role = models.RoleMaestro
	other, err := tm.Generate(maestro)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	// Splice the maestro payload onto the cuidador signature.
	parts := strings.Split(tok, ".")
	otherParts := strings.Split(other, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]
	if _, err := tm.Verify(forged); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestVerify_RejectsUnsignedAlgorithm(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", "santuario", time.Hour)
	claims := Claims{
		UserID: 1,
		Role:   models.RoleMaestro,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "santuario",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := tm.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for alg=none, got %v", err)
	}
}

func TestVerify_MalformedAndEmpty(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("k", "santuario", time.Hour)
	for _, raw := range []string{"", "not.a.jwt", "abc"} {
		if _, err := tm.Verify(raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify(%q): expected ErrInvalidToken, got %v", raw, err)
		}
	}
}

func TestNeedsRefresh(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("k", "santuario", sessionTTL)
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return start }
	tok, err := tm.Generate(testUser())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	claims, err := tm.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}

	if tm.NeedsRefresh(claims, 24*time.Hour) {
		t.Fatal("fresh token should not need refresh")
	}
	tm.now = func() time.Time { return start.Add(25 * time.Hour) }
	if !tm.NeedsRefresh(claims, 24*time.Hour) {
		t.Fatal("day-old token should need refresh")
	}
	if tm.NeedsRefresh(claims, 0) {
		t.Fatal("zero update age disables refresh")
	}
}
