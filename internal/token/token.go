package token

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures form a closed set so callers can branch on the
// failure kind instead of inspecting error strings. The gate treats
// ErrExpired differently from the other two.
var (
	ErrMalformed        = errors.New("token is malformed")
	ErrSignatureInvalid = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token is expired")
)

// Claims is the signed claim set carried by a bearer token. A token
// without a UserID (general token) is verifiable but cannot authenticate
// a user.
type Claims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"userId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// Codec signs and verifies bearer tokens with a fixed RSA keypair. The
// private key signs, the public key verifies. Pure; no I/O after
// construction.
type Codec struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	audience   string
	ttl        time.Duration
}

// NewCodec creates a Codec from an already parsed keypair.
func NewCodec(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, audience string, ttl time.Duration) *Codec {
	return &Codec{
		privateKey: privateKey,
		publicKey:  publicKey,
		audience:   audience,
		ttl:        ttl,
	}
}

// NewCodecFromFiles loads a PEM-encoded RSA keypair from disk. An absent
// or unreadable key is a startup configuration error: a server that
// cannot sign tokens must not start, so the caller is expected to treat
// a non-nil error as fatal.
func NewCodecFromFiles(privateKeyPath, publicKeyPath, audience string, ttl time.Duration) (*Codec, error) {
	privPEM, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	pubPEM, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading public key: %w", err)
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}

	return NewCodec(privateKey, publicKey, audience, ttl), nil
}

// GeneralClaims builds a claim set with no subject. The resulting token
// is valid for API access but carries no user identity.
func (c *Codec) GeneralClaims() Claims {
	now := time.Now()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
}

// UserClaims builds a claim set bound to a user and the session created
// by their login.
func (c *Codec) UserClaims(userID int64, sessionID string) Claims {
	claims := c.GeneralClaims()
	claims.UserID = userID
	claims.SessionID = sessionID
	return claims
}

// Sign produces a compact RS256 JWT for the given claims.
func (c *Codec) Sign(claims Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := tok.SignedString(c.privateKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature and expiry against the public key
// and returns its claims. Failures are reported as exactly one of
// ErrMalformed, ErrSignatureInvalid or ErrExpired.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.publicKey, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, ErrMalformed
	case err != nil:
		return nil, ErrSignatureInvalid
	case !tok.Valid:
		return nil, ErrSignatureInvalid
	}
	return claims, nil
}

// DecodeUnverified reads a token's claims without checking the signature
// or expiry. Used only for best-effort recovery of the session id from a
// token that already failed verification; never trust the result for
// authentication.
func (c *Codec) DecodeUnverified(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrMalformed
	}
	return claims, nil
}
