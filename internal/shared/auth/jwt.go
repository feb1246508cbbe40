package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Claims is the identity carried by an upstream-issued HS256 token. Sub
// becomes the owner id of every match record the caller creates.
type Claims struct {
	Sub   string `json:"sub"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Exp   int64  `json:"exp,omitempty"`
	Nbf   int64  `json:"nbf,omitempty"`
	Iat   int64  `json:"iat,omitempty"`
}

var (
	ErrMissingSecret = errors.New("jwt secret not configured")
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = fmt.Errorf("%w: expired", ErrInvalidToken)
)

const (
	devSecret      = "dev-secret"
	defaultTTL     = 24 * time.Hour
	defaultLeeway  = 30 * time.Second
	signingAlg     = "HS256"
	maxTokenLength = 8 << 10
)

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ,omitempty"`
}

// Verifier signs and verifies HS256 tokens with a shared secret.
type Verifier struct {
	secret []byte
	leeway time.Duration
	now    func() time.Time
}

// NewVerifier returns a verifier for the given secret. Outside production an
// empty secret falls back to a fixed development value.
func NewVerifier(secret, env string) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		if env == "production" {
			return nil, fmt.Errorf("%w: JWT_SECRET required in production", ErrMissingSecret)
		}
		secret = devSecret
	}
	return &Verifier{secret: []byte(secret), leeway: defaultLeeway, now: time.Now}, nil
}

// Sign issues a token for the claims. Iat and Exp default to now and now+24h.
func (v *Verifier) Sign(claims Claims) (string, error) {
	if strings.TrimSpace(claims.Sub) == "" {
		return "", errors.New("sub is required")
	}
	now := v.now().UTC().Unix()
	if claims.Iat == 0 {
		claims.Iat = now
	}
	if claims.Exp == 0 {
		claims.Exp = now + int64(defaultTTL/time.Second)
	}

	headerJSON, err := json.Marshal(header{Alg: signingAlg, Typ: "JWT"})
	if err != nil {
		return "", err
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	signingInput := encodeSegment(headerJSON) + "." + encodeSegment(payloadJSON)
	return signingInput + "." + v.sign(signingInput), nil
}

// Verify checks the algorithm, signature and time window and returns the
// claims. Exp and Nbf are checked with a small leeway for clock skew.
func (v *Verifier) Verify(token string) (Claims, error) {
	if len(token) > maxTokenLength {
		return Claims{}, ErrInvalidToken
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, ErrInvalidToken
	}

	var h header
	if err := decodeSegment(parts[0], &h); err != nil || h.Alg != signingAlg {
		return Claims{}, ErrInvalidToken
	}
	if !hmac.Equal([]byte(parts[2]), []byte(v.sign(parts[0]+"."+parts[1]))) {
		return Claims{}, ErrInvalidToken
	}

	var claims Claims
	if err := decodeSegment(parts[1], &claims); err != nil {
		return Claims{}, ErrInvalidToken
	}
	claims.Sub = strings.TrimSpace(claims.Sub)
	if claims.Sub == "" {
		return Claims{}, ErrInvalidToken
	}

	now := v.now().UTC()
	if claims.Exp > 0 && now.Add(-v.leeway).Unix() > claims.Exp {
		return Claims{}, ErrExpiredToken
	}
	if claims.Nbf > 0 && now.Add(v.leeway).Unix() < claims.Nbf {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

func (v *Verifier) sign(input string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(input))
	return encodeSegment(mac.Sum(nil))
}

func encodeSegment(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeSegment(seg string, dst any) error {
	raw, err := base64.RawURLEncoding.DecodeString(seg)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
