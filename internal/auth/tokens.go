package auth

import (
	"encoding/json/v2"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
	"github.com/shelfshare/shelfshare-server/internal/domain"
	"github.com/shelfshare/shelfshare-server/internal/id"
)

const (
	tokenIssuer     = "shelfshare-server"
	sessionAudience = "shelfshare-web"
	syncAudience    = "shelfshare-extension"

	// PASETO v4 symmetric key requirements.
	keyBytesSize = 32 // 256 bits
)

// TokenService handles PASETO token generation and verification for both
// browser sessions and single-use extension sync tokens.
type TokenService struct {
	symmetricKey    paseto.V4SymmetricKey
	sessionDuration time.Duration
	syncDuration    time.Duration
}

// NewTokenService creates a new token service with the given 32-byte key.
func NewTokenService(key []byte, sessionDuration, syncDuration time.Duration) (*TokenService, error) {
	if len(key) != keyBytesSize {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyBytesSize, len(key))
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		symmetricKey:    symmetricKey,
		sessionDuration: sessionDuration,
		syncDuration:    syncDuration,
	}, nil
}

// GenerateSessionToken creates a new PASETO v4.local session token for the
// user. The token is encrypted and carries the user's identity and admin flag.
func (s *TokenService) GenerateSessionToken(user *domain.User) (string, error) {
	now := time.Now()

	token := paseto.NewToken()

	token.SetIssuer(tokenIssuer)
	token.SetSubject(user.ID)
	token.SetAudience(sessionAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.sessionDuration))

	tokenID, err := id.Generate("sess")
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(tokenID)

	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("user_id", user.ID)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("email", user.Email)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("is_admin", user.IsAdmin)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifySessionToken verifies and parses a PASETO session token.
// Returns the claims if valid, or an error if invalid or expired.
func (s *TokenService) VerifySessionToken(tokenString string) (*SessionClaims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(sessionAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims SessionClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	return &claims, nil
}

// GenerateSyncToken creates a single-use sync token for the browser
// extension. The jti is returned alongside the token so the caller can record
// it for one-time redemption.
func (s *TokenService) GenerateSyncToken(userID string) (token string, jti string, expiresAt time.Time, err error) {
	now := time.Now()
	expiresAt = now.Add(s.syncDuration)
	jti = uuid.NewString()

	t := paseto.NewToken()
	t.SetIssuer(tokenIssuer)
	t.SetSubject(userID)
	t.SetAudience(syncAudience)
	t.SetIssuedAt(now)
	t.SetNotBefore(now)
	t.SetExpiration(expiresAt)
	t.SetJti(jti)

	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = t.Set("scope", domain.SyncTokenScope)

	return t.V4Encrypt(s.symmetricKey, nil), jti, expiresAt, nil
}

// VerifySyncToken verifies a sync token's signature, expiry, audience, and
// scope. Single-use enforcement happens against the sync_tokens table, not
// here.
func (s *TokenService) VerifySyncToken(tokenString string) (*SyncClaims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(syncAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims SyncClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	if claims.Scope != domain.SyncTokenScope {
		return nil, fmt.Errorf("wrong token scope %q", claims.Scope)
	}

	return &claims, nil
}

// SessionDuration returns the configured session token lifetime.
func (s *TokenService) SessionDuration() time.Duration {
	return s.sessionDuration
}

// SyncDuration returns the configured sync token lifetime.
func (s *TokenService) SyncDuration() time.Duration {
	return s.syncDuration
}
