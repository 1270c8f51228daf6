package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
)

// SignatureSuffix names the companion cookie carrying a value's signature.
const SignatureSuffix = ".sig"

// ErrNoKeys is returned by NewSigner when no usable key is supplied.
var ErrNoKeys = errors.New("cookie: at least one signing key is required")

// Signer signs "name=value" with HMAC-SHA256. New signatures always use the
// first key; verification accepts any key so older keys can be phased out.
type Signer struct {
	keys [][]byte
}

func NewSigner(keys ...[]byte) (*Signer, error) {
	out := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if len(k) == 0 {
			continue
		}
		out = append(out, append([]byte(nil), k...))
	}
	if len(out) == 0 {
		return nil, ErrNoKeys
	}
	return &Signer{keys: out}, nil
}

func (s *Signer) Sign(name, value string) string {
	return base64.RawURLEncoding.EncodeToString(mac(s.keys[0], name, value))
}

func (s *Signer) Verify(name, value, signature string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	for _, k := range s.keys {
		if hmac.Equal(raw, mac(k, name, value)) {
			return true
		}
	}
	return false
}

// Read returns the value of the named cookie only when its signature
// companion is present and valid.
func (s *Signer) Read(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	sig, err := r.Cookie(name + SignatureSuffix)
	if err != nil {
		return "", false
	}
	if !s.Verify(name, c.Value, sig.Value) {
		return "", false
	}
	return c.Value, true
}

func mac(key []byte, name, value string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(name))
	h.Write([]byte{'='})
	h.Write([]byte(value))
	return h.Sum(nil)
}
