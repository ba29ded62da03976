package utils // package utils provides helper functions for token creation and hashing

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and verifying signed tokens
)

// ErrInvalidToken is returned by ParseAccessToken for any token that is
// malformed, expired, signed with another key or algorithm, or missing the
// subject claim.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT along with its expiry.  Tokens are
// stateless: there is no server-side session, so a token stays valid until
// Exp even after the user logs out on the client.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// TokenClaims are the claims carried by an access token.  Role is informative
// only; callers reload the user to learn the current role.
type TokenClaims struct {
    Role string `json:"role"`
    jwt.RegisteredClaims
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The token
// includes the subject (sub), role, issued at (iat) and expiration (exp)
// claims, with exp set ttl after now.
func NewAccessToken(secret, userID, role string, ttl time.Duration) (AccessToken, error) {
    issued := time.Now().UTC()
    exp := issued.Add(ttl)
    claims := TokenClaims{
        Role: role,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   userID,
            IssuedAt:  jwt.NewNumericDate(issued),
            ExpiresAt: jwt.NewNumericDate(exp),
        },
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies the signature and expiry of raw and returns its
// claims.  Only HS256 is accepted.
func ParseAccessToken(secret, raw string) (*TokenClaims, error) {
    var claims TokenClaims
    tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
        // Reject anything that isn't HMAC; "none" and RSA tokens never reach the key.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    },
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
        jwt.WithExpirationRequired(),
    )
    if err != nil || !tok.Valid {
        return nil, ErrInvalidToken
    }
    if claims.Subject == "" {
        return nil, ErrInvalidToken
    }
    return &claims, nil
}
