package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod names one of the supported HMAC algorithms.
type SigningMethod string

const (
	MethodHS256 SigningMethod = "HS256"
	MethodHS384 SigningMethod = "HS384"
	MethodHS512 SigningMethod = "HS512"
)

// Kind distinguishes access tokens from refresh tokens. It is carried in the
// "typ" claim so a refresh token cannot be replayed as an access token.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	// ErrMalformed is returned when the input is not a compact JWS.
	ErrMalformed = errors.New("token malformed")
	// ErrInvalidSignature covers bad signatures and unexpected algorithms.
	ErrInvalidSignature = errors.New("token signature invalid")
	// ErrExpired is returned by Verify when exp is in the past and expiration is not ignored.
	ErrExpired = errors.New("token expired")
	// ErrInvalidClaims is returned when required claims are missing or rejected.
	ErrInvalidClaims = errors.New("token claims invalid")
	// ErrWrongKind is returned when the typ claim does not match the requested kind.
	ErrWrongKind = errors.New("token kind mismatch")
)

// Config holds the codec settings. Access and refresh tokens share one
// secret and one algorithm.
type Config struct {
	SigningMethod SigningMethod
	Secret        []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

// Claims is the payload of every token minted by Manager.
type Claims struct {
	Kind Kind `json:"typ,omitempty"`
	jwt.RegisteredClaims
}

// Expiry returns the exp claim, or the zero time when absent.
func (c *Claims) Expiry() time.Time {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// VerifyOptions tunes a single Verify call.
type VerifyOptions struct {
	// IgnoreExpiration still checks the signature and algorithm but accepts
	// tokens whose exp has passed. Used when revoking tokens.
	IgnoreExpiration bool
	// Kind, when set, must equal the token's typ claim.
	Kind Kind
}

// Manager signs and verifies tokens.
type Manager struct {
	config Config
	method jwt.SigningMethod
	now    func() time.Time
}

// NewManager validates cfg and returns a ready codec.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if len(cfg.Secret) == 0 {
		return nil, errors.New("signing secret is required")
	}

	var method jwt.SigningMethod
	switch SigningMethod(strings.ToUpper(string(cfg.SigningMethod))) {
	case MethodHS256:
		method = jwt.SigningMethodHS256
	case MethodHS384:
		method = jwt.SigningMethodHS384
	case MethodHS512, "":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing method %q", cfg.SigningMethod)
	}

	cfg.Secret = append([]byte(nil), cfg.Secret...)
	return &Manager{config: cfg, method: method, now: time.Now}, nil
}

// Algorithm reports the pinned JWS alg header value.
func (m *Manager) Algorithm() string {
	return m.method.Alg()
}

// TTL returns the configured lifetime for kind.
func (m *Manager) TTL(kind Kind) time.Duration {
	if kind == KindRefresh {
		return m.config.RefreshTTL
	}
	return m.config.AccessTTL
}

// Sign mints a token of the given kind for subject and returns it along with
// its expiration instant.
func (m *Manager) Sign(subject string, kind Kind) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("empty subject")
	}
	if kind != KindAccess && kind != KindRefresh {
		return "", time.Time{}, fmt.Errorf("unknown token kind %q", kind)
	}

	// NumericDate has second precision; truncate so the returned instant
	// matches what a verifier will read back.
	now := m.now().Truncate(time.Second)
	exp := now.Add(m.TTL(kind))

	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token, err := jwt.NewWithClaims(m.method, claims).SignedString(m.config.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Verify checks the signature under the pinned algorithm and, unless
// opts.IgnoreExpiration is set, the exp claim.
func (m *Manager) Verify(tokenStr string, opts VerifyOptions) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if opts.IgnoreExpiration {
		options = append(options, jwt.WithoutClaimsValidation())
	} else {
		options = append(options, jwt.WithExpirationRequired())
		if m.config.Leeway > 0 {
			options = append(options, jwt.WithLeeway(m.config.Leeway))
		}
		if m.config.Issuer != "" {
			options = append(options, jwt.WithIssuer(m.config.Issuer))
		}
	}

	claims := &Claims{}
	_, err := jwt.NewParser(options...).ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != m.method.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidClaims
	}
	if opts.IgnoreExpiration && m.config.Issuer != "" && claims.Issuer != m.config.Issuer {
		return nil, ErrInvalidClaims
	}
	if opts.Kind != "" && claims.Kind != opts.Kind {
		return nil, ErrWrongKind
	}

	return claims, nil
}

// DecodeUntrusted reads the claims without verifying the signature. The
// result must only be used to pick which record to load, never to grant access.
func DecodeUntrusted(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, ErrMalformed
	}
	if claims.Subject == "" {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}
}
