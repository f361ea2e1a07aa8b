// Package jwtx signs and verifies the service's access and refresh tokens.
// Both token kinds are HS256 JWTs with the same claim shape but separate
// secrets and lifetimes, so a leaked access secret never validates refresh
// tokens.
package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campusconnect/campusconnect/pkg/idx"
)

const (
	// Issuer is the fixed iss claim on every token this service mints.
	Issuer = "CampusConnect"

	subjectAccess  = "accessToken"
	subjectRefresh = "refreshToken"
)

var (
	// ErrTokenExpired reports a structurally valid token past its expiry.
	ErrTokenExpired = errors.New("jwtx: token expired")

	// ErrTokenInvalid reports any other verification failure: bad signature,
	// wrong issuer, wrong audience, wrong subject, or malformed input.
	ErrTokenInvalid = errors.New("jwtx: token invalid")
)

// Principal is the identity a token asserts.
type Principal struct {
	UserID   string
	CampusID int64
	Role     string
}

// Claims is the wire shape of the signed payload.
type Claims struct {
	jwt.RegisteredClaims

	CampusID int64  `json:"campusId"`
	Role     string `json:"role"`
}

// Service is a stateless signer/verifier; pure function of secrets + config.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (s *Service) AccessTTL() time.Duration  { return s.accessTTL }
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueAccessToken mints a short-lived access token for p.
func (s *Service) IssueAccessToken(p Principal) (string, error) {
	return sign(p, subjectAccess, s.accessSecret, s.accessTTL)
}

// IssueRefreshToken mints a refresh token for p with the longer lifetime.
func (s *Service) IssueRefreshToken(p Principal) (string, error) {
	return sign(p, subjectRefresh, s.refreshSecret, s.refreshTTL)
}

// VerifyAccessToken validates token and returns the embedded principal.
func (s *Service) VerifyAccessToken(token string) (Principal, error) {
	return verify(token, subjectAccess, s.accessSecret)
}

// VerifyRefreshToken validates token against the refresh secret.
func (s *Service) VerifyRefreshToken(token string) (Principal, error) {
	return verify(token, subjectRefresh, s.refreshSecret)
}

func sign(p Principal, subject string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			// jti keeps tokens minted within the same second distinct; the
			// refresh store fingerprints the raw string and requires unique rows.
			ID:        idx.New().String(),
			Issuer:    Issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{audienceFor(p.UserID)},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		CampusID: p.CampusID,
		Role:     p.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: failed to sign %s: %w", subject, err)
	}
	return signed, nil
}

func verify(token, subject string, secret []byte) (Principal, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithSubject(subject),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, ErrTokenExpired
		}
		return Principal{}, ErrTokenInvalid
	}
	if !parsed.Valid {
		return Principal{}, ErrTokenInvalid
	}

	// Audience is bound to the user id the token claims to belong to.
	userID := userIDFromAudience(claims.Audience)
	if userID == "" {
		return Principal{}, ErrTokenInvalid
	}

	return Principal{
		UserID:   userID,
		CampusID: claims.CampusID,
		Role:     claims.Role,
	}, nil
}

func audienceFor(userID string) string { return "user_" + userID }

func userIDFromAudience(aud jwt.ClaimStrings) string {
	for _, a := range aud {
		if len(a) > len("user_") && a[:len("user_")] == "user_" {
			return a[len("user_"):]
		}
	}
	return ""
}
