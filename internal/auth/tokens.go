// Package auth holds the staff credential contract: HMAC-signed access
// tokens and bcrypt password helpers.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleKitchen Role = "KITCHEN"
	RoleWaiter  Role = "WAITER"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleKitchen || r == RoleWaiter
}

// StaffClaims is the verified payload of a staff access token.
type StaffClaims struct {
	Sub     string `json:"sub"`
	Role    Role   `json:"role"`
	VenueID string `json:"venueId"`
	Exp     int64  `json:"exp"`
}

// Tokens signs and verifies staff access tokens. The format is a compact
// HS256 JWT; only this process ever verifies them, so no JWK plumbing.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

var tokenHeader = b64(mustJSON(map[string]string{"alg": "HS256", "typ": "JWT"}))

func (t *Tokens) Sign(sub string, role Role, venueID string) string {
	claims := StaffClaims{Sub: sub, Role: role, VenueID: venueID, Exp: time.Now().Add(t.ttl).Unix()}
	body := b64(mustJSON(claims))
	return tokenHeader + "." + body + "." + t.sign(tokenHeader+"."+body)
}

// Verify returns the claims for a well-formed, correctly signed,
// unexpired token, or nil.
func (t *Tokens) Verify(token string) *StaffClaims {
	if token == "" {
		return nil
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil
	}
	if !hmac.Equal([]byte(parts[2]), []byte(t.sign(parts[0]+"."+parts[1]))) {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil
	}
	var claims StaffClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil
	}
	if claims.Exp != 0 && claims.Exp < time.Now().Unix() {
		return nil
	}
	if !claims.Role.Valid() {
		return nil
	}
	return &claims
}

func (t *Tokens) sign(signingInput string) string {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(signingInput))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// ParseBearer extracts the token from an Authorization header.
func ParseBearer(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return token
}

func b64(b []byte) string { return base64.RawURLEncoding.EncodeToString(b) }

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
