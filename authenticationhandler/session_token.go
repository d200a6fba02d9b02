// authenticationhandler/session_token.go
package authenticationhandler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deploymenttheory/go-tryon-dashboard-client/logger"
	"github.com/deploymenttheory/go-tryon-dashboard-client/shopify"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSessionTokenTTL matches the lifetime of session tokens issued by Shopify App Bridge.
const DefaultSessionTokenTTL = time.Minute

// SessionClaims are the claims of an embedded-app session token.
type SessionClaims struct {
	jwt.RegisteredClaims
	Dest string `json:"dest"`
	Sid  string `json:"sid,omitempty"`
}

// SessionTokenMinter signs a new HS256 session token on every call using the app's API
// secret, the way the admin does for an embedded app. It lets tools outside the admin,
// such as the CLI, talk to the same backend.
type SessionTokenMinter struct {
	APIKey    string
	APISecret string
	Shop      string
	UserID    string
	TTL       time.Duration
	Logger    logger.Logger

	now func() time.Time
}

// NewSessionTokenMinter validates the credentials and returns a minter for shop.
func NewSessionTokenMinter(apiKey, apiSecret, shop, userID string, log logger.Logger) (*SessionTokenMinter, error) {
	if valid, msg := IsValidAPIKey(apiKey); !valid {
		return nil, errors.New(msg)
	}
	if valid, msg := IsValidAPISecret(apiSecret); !valid {
		return nil, errors.New(msg)
	}
	if !shopify.IsValidShopDomain(shop) {
		return nil, fmt.Errorf("%w: %q", shopify.ErrInvalidShop, shop)
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &SessionTokenMinter{
		APIKey:    apiKey,
		APISecret: apiSecret,
		Shop:      shop,
		UserID:    userID,
		TTL:       DefaultSessionTokenTTL,
		Logger:    log,
		now:       time.Now,
	}, nil
}

// IDToken mints and signs a fresh session token.
func (m *SessionTokenMinter) IDToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	now := time.Now
	if m.now != nil {
		now = m.now
	}
	ttl := m.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTokenTTL
	}

	issuedAt := now().UTC()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://" + m.Shop + "/admin",
			Subject:   m.UserID,
			Audience:  jwt.ClaimStrings{m.APIKey},
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
			NotBefore: jwt.NewNumericDate(issuedAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ID:        uuid.NewString(),
		},
		Dest: "https://" + m.Shop,
		Sid:  uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.APISecret))
	if err != nil {
		return "", fmt.Errorf("could not sign session token: %w", err)
	}

	if m.Logger != nil {
		m.Logger.Debug("Minted session token",
			zap.String("shop", m.Shop),
			zap.String("jti", claims.ID),
			zap.Time("expires", claims.ExpiresAt.Time),
		)
	}
	return signed, nil
}

// SessionInfo summarises a session token for display.
type SessionInfo struct {
	Shop      string    `json:"shop"`
	Subject   string    `json:"sub,omitempty"`
	Audience  []string  `json:"aud,omitempty"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
	Expired   bool      `json:"expired"`
}

// InspectSessionToken decodes a session token without checking its signature. It is
// meant for diagnostics; the backend remains the authority on whether a token is good.
func InspectSessionToken(token string, now time.Time) (*SessionInfo, error) {
	claims := &SessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode session token: %w", err)
	}
	return sessionInfo(claims, now)
}

// VerifySessionToken checks the signature, the time claims and the audience of a
// session token and returns its summary.
func VerifySessionToken(token, apiSecret, apiKey string) (*SessionInfo, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(apiSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(apiKey),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired session token: %w", err)
	}
	return sessionInfo(claims, time.Now())
}

func sessionInfo(claims *SessionClaims, now time.Time) (*SessionInfo, error) {
	shop, err := shopify.ShopFromDest(claims.Dest)
	if err != nil {
		return nil, err
	}
	info := &SessionInfo{
		Shop:     shop,
		Subject:  claims.Subject,
		Audience: claims.Audience,
	}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
		info.Expired = !now.Before(info.ExpiresAt)
	}
	return info, nil
}
