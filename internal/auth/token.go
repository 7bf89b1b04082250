package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Subject kinds carried in tokens
const (
	KindUser     = "user"
	KindCustomer = "customer"
)

// ErrInvalidToken is returned for malformed, expired or forged tokens
var ErrInvalidToken = errors.New("invalid token")

// Claims identifies the caller. StoreID is set for customer tokens only.
type Claims struct {
	Kind    string `json:"kind"`
	Email   string `json:"email"`
	Role    string `json:"role,omitempty"`
	StoreID string `json:"store_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 tokens
type TokenManager struct {
	secret    []byte
	issuer    string
	audience  string
	expiresIn time.Duration
	now       func() time.Time
}

// TokenConfig holds TokenManager settings
type TokenConfig struct {
	Secret    string
	Issuer    string
	Audience  string
	ExpiresIn time.Duration
}

// NewTokenManager creates a token manager
func NewTokenManager(cfg TokenConfig) *TokenManager {
	if cfg.ExpiresIn <= 0 {
		cfg.ExpiresIn = time.Hour
	}
	return &TokenManager{
		secret:    []byte(cfg.Secret),
		issuer:    cfg.Issuer,
		audience:  cfg.Audience,
		expiresIn: cfg.ExpiresIn,
		now:       time.Now,
	}
}

// ExpiresIn returns the token lifetime
func (tm *TokenManager) ExpiresIn() time.Duration { return tm.expiresIn }

// GenerateUserToken signs a token for a platform user
func (tm *TokenManager) GenerateUserToken(userID, email, role string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id required")
	}
	return tm.sign(Claims{Kind: KindUser, Email: email, Role: role}, userID)
}

// GenerateCustomerToken signs a token for a store customer
func (tm *TokenManager) GenerateCustomerToken(customerID, storeID, email string) (string, error) {
	if customerID == "" || storeID == "" {
		return "", fmt.Errorf("customer id and store id required")
	}
	return tm.sign(Claims{Kind: KindCustomer, Email: email, StoreID: storeID}, customerID)
}

func (tm *TokenManager) sign(claims Claims, subject string) (string, error) {
	now := tm.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tm.expiresIn)),
		Issuer:    tm.issuer,
	}
	if tm.audience != "" {
		claims.Audience = jwt.ClaimStrings{tm.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, returning its claims
func (tm *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(tm.now),
		jwt.WithExpirationRequired(),
	}
	if tm.issuer != "" {
		opts = append(opts, jwt.WithIssuer(tm.issuer))
	}
	if tm.audience != "" {
		opts = append(opts, jwt.WithAudience(tm.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractToken pulls the token out of a "Bearer <token>" header
func ExtractToken(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("invalid authorization header")
	}
	return parts[1], nil
}
