package auth

import (
	"strings"
	"testing"
	"time"
)

func TestSignAndVerify(t *testing.T) {
	t.Parallel()

	tk := NewTokens("secret", 15*time.Minute)
	tok := tk.Sign("staff-1", RoleKitchen, "venue-demo")

	claims := tk.Verify(tok)
	if claims == nil {
		t.Fatal("valid token rejected")
	}
	if claims.Sub != "staff-1" || claims.Role != RoleKitchen || claims.VenueID != "venue-demo" {
		t.Fatalf("claims=%+v", claims)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	t.Parallel()

	tk := NewTokens("secret", 15*time.Minute)
	tok := tk.Sign("staff-1", RoleWaiter, "venue-demo")

	parts := strings.Split(tok, ".")
	forged := parts[0] + "." + parts[1] + "x." + parts[2]
	if tk.Verify(forged) != nil {
		t.Fatal("tampered payload accepted")
	}
	if tk.Verify(parts[0]+"."+parts[1]) != nil {
		t.Fatal("two-part token accepted")
	}
	if tk.Verify("") != nil {
		t.Fatal("empty token accepted")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	tok := NewTokens("secret-a", time.Minute).Sign("s", RoleAdmin, "v")
	if NewTokens("secret-b", time.Minute).Verify(tok) != nil {
		t.Fatal("token signed with a different secret accepted")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	tk := NewTokens("secret", -time.Minute)
	if tk.Verify(tk.Sign("s", RoleAdmin, "v")) != nil {
		t.Fatal("expired token accepted")
	}
}

func TestParseBearer(t *testing.T) {
	t.Parallel()

	if got := ParseBearer("Bearer abc123"); got != "abc123" {
		t.Fatalf("got %q", got)
	}
	if got := ParseBearer("bearer abc123"); got != "abc123" {
		t.Fatalf("scheme should be case-insensitive, got %q", got)
	}
	if got := ParseBearer("Basic abc123"); got != "" {
		t.Fatalf("basic auth parsed as bearer: %q", got)
	}
	if got := ParseBearer(""); got != "" {
		t.Fatalf("empty header parsed: %q", got)
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "changeme") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("wrong password accepted")
	}
}
