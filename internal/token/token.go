// Package token issues and verifies the signed access tokens exchanged
// between the gateway and its clients.
package token

import (
	"fmt"
	"strconv"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"

	"github.com/lindero/lindero-auth/internal/domain"
)

var signatureAlgorithms = []jose.SignatureAlgorithm{jose.HS256}

// Claims is the custom payload carried next to the registered JWT claims.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Issuer signs short-lived HS256 access tokens.
type Issuer struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
}

// NewIssuer builds an Issuer from the shared signing secret.
func NewIssuer(secret []byte, issuer string, accessTTL time.Duration) *Issuer {
	return &Issuer{secret: secret, issuer: issuer, accessTTL: accessTTL}
}

// AccessTTL exposes the configured access token lifetime.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// Sign produces an access token for the user. The subject is the decimal
// user ID.
func (i *Issuer) Sign(user domain.User) (string, error) {
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: i.secret},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("new signer: %w", err)
	}

	now := time.Now().UTC()
	std := jwt.Claims{
		Subject:   strconv.FormatInt(user.ID, 10),
		Issuer:    i.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Expiry:    jwt.NewNumericDate(now.Add(i.accessTTL)),
	}
	custom := Claims{Email: user.Email, Name: user.Name}

	signed, err := jwt.Signed(signer).Claims(std).Claims(custom).Serialize()
	if err != nil {
		return "", fmt.Errorf("serialize jwt: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and registered claims and returns the user ID
// the token was issued for.
func (i *Issuer) Verify(raw string) (int64, *Claims, error) {
	parsed, err := jwt.ParseSigned(raw, signatureAlgorithms)
	if err != nil {
		return 0, nil, fmt.Errorf("parse token: %w", err)
	}

	var std jwt.Claims
	var custom Claims
	if err := parsed.Claims(i.secret, &std, &custom); err != nil {
		return 0, nil, fmt.Errorf("verify token: %w", err)
	}
	if err := std.Validate(jwt.Expected{Issuer: i.issuer, Time: time.Now()}); err != nil {
		return 0, nil, fmt.Errorf("validate claims: %w", err)
	}

	userID, err := strconv.ParseInt(std.Subject, 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("subject claim: %w", err)
	}
	return userID, &custom, nil
}

// Expired reports whether the token's exp claim is at or before now. The
// claims are read without signature verification: clients only use this as a
// local hint, and anything unparsable counts as expired.
func Expired(raw string, now time.Time) bool {
	parsed, err := jwt.ParseSigned(raw, signatureAlgorithms)
	if err != nil {
		return true
	}
	var std jwt.Claims
	if err := parsed.UnsafeClaimsWithoutVerification(&std); err != nil {
		return true
	}
	if std.Expiry == nil {
		return true
	}
	return !std.Expiry.Time().After(now)
}
