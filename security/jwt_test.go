package security

import (
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestAuthTokenRoundTrip(t *testing.T) {
	t.Parallel()

	token, err := MakeAuthToken("user-123", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("MakeAuthToken() error: %v", err)
	}

	userID, err := UserIDFromAuthToken(token, testSecret)
	if err != nil {
		t.Fatalf("UserIDFromAuthToken() error: %v", err)
	}

	if userID != "user-123" {
		t.Errorf("got user ID %q, want %q", userID, "user-123")
	}
}

func TestAuthTokenWrongSecret(t *testing.T) {
	t.Parallel()

	token, err := MakeAuthToken("user-123", testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := UserIDFromAuthToken(token, "other-secret"); err == nil {
		t.Error("token signed with a different secret was accepted")
	}
}

func TestAuthTokenExpired(t *testing.T) {
	t.Parallel()

	token, err := MakeAuthToken("user-123", testSecret, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := UserIDFromAuthToken(token, testSecret); err == nil {
		t.Error("expired token was accepted")
	}
}

func TestPendingTokenRoundTrip(t *testing.T) {
	t.Parallel()

	token, err := MakePendingToken("user@example.com", "verification", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("MakePendingToken() error: %v", err)
	}

	email, err := EmailFromPendingToken(token, "verification", testSecret)
	if err != nil {
		t.Fatalf("EmailFromPendingToken() error: %v", err)
	}

	if email != "user@example.com" {
		t.Errorf("got email %q, want %q", email, "user@example.com")
	}
}

func TestPendingTokenPurposeScoped(t *testing.T) {
	t.Parallel()

	token, err := MakePendingToken("user@example.com", "verification", testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := EmailFromPendingToken(token, "password_reset", testSecret); err == nil {
		t.Error("verification token was accepted for the reset purpose")
	}
}

func TestTokenTypesNotInterchangeable(t *testing.T) {
	t.Parallel()

	pending, err := MakePendingToken("user@example.com", "verification", testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := UserIDFromAuthToken(pending, testSecret); err == nil {
		t.Error("pending token was accepted as an auth token")
	}

	auth, err := MakeAuthToken("user-123", testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := EmailFromPendingToken(auth, "verification", testSecret); err == nil {
		t.Error("auth token was accepted as a pending token")
	}
}
