package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret-key-32-bytes-long!!!", time.Hour)

	t.Run("guest session gets a generated guest ID", func(t *testing.T) {
		tokenString, claims, err := manager.StartSession("12", "Alice", "")
		if err != nil {
			t.Fatalf("StartSession failed: %v", err)
		}
		if claims.GuestID == "" {
			t.Error("Expected a generated guest ID")
		}

		parsed, err := manager.Validate(tokenString)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if parsed.TableID != "12" || parsed.DisplayName != "Alice" {
			t.Errorf("Claims = %+v, want table 12 and name Alice", parsed)
		}
		if parsed.GuestID != claims.GuestID {
			t.Errorf("GuestID = %s, want %s", parsed.GuestID, claims.GuestID)
		}
	})

	t.Run("authenticated session carries the user ID, no guest ID", func(t *testing.T) {
		tokenString, claims, err := manager.StartSession("12", "Bob", "u-42")
		if err != nil {
			t.Fatalf("StartSession failed: %v", err)
		}
		if claims.GuestID != "" {
			t.Error("Expected no guest ID for an authenticated user")
		}

		parsed, err := manager.Validate(tokenString)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if parsed.UserID != "u-42" {
			t.Errorf("UserID = %s, want u-42", parsed.UserID)
		}
	})

	t.Run("rejects tokens signed with a different secret", func(t *testing.T) {
		other := NewTokenManager("a-completely-different-secret!!!", time.Hour)
		tokenString, _, err := other.StartSession("12", "Eve", "")
		if err != nil {
			t.Fatalf("StartSession failed: %v", err)
		}
		if _, err := manager.Validate(tokenString); err == nil {
			t.Error("Expected validation to fail for a foreign token")
		}
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		expired := NewTokenManager("test-secret-key-32-bytes-long!!!", -time.Minute)
		tokenString, _, err := expired.StartSession("12", "Alice", "")
		if err != nil {
			t.Fatalf("StartSession failed: %v", err)
		}
		if _, err := manager.Validate(tokenString); err == nil {
			t.Error("Expected validation to fail for an expired token")
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		if _, err := manager.Validate("not-a-token"); err == nil {
			t.Error("Expected validation to fail for garbage input")
		}
	})
}
