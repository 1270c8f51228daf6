package credential

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/MrEthical07/tokenguard"
	"github.com/MrEthical07/tokenguard/cookie"
)

const maxBodyBytes = 1 << 20

// Field names one credential across the four sources.
type Field struct {
	Header string // also the cookie name
	Param  string // query parameter and body field
}

var (
	AccessField  = Field{Header: "x-access-token", Param: "access_token"}
	RefreshField = Field{Header: "x-refresh-token", Param: "refresh_token"}
)

// Extractor looks a credential up in header, query, signed cookie, then body.
// The first non-empty value wins; absence yields "".
type Extractor struct {
	Access  Field
	Refresh Field
	// Signer verifies cookie values. Without it cookies are not consulted.
	Signer *cookie.Signer
}

// New returns an extractor with the default field names.
func New(signer *cookie.Signer) *Extractor {
	return &Extractor{Access: AccessField, Refresh: RefreshField, Signer: signer}
}

func (e *Extractor) AccessToken(r *http.Request) string {
	return e.lookup(r, e.Access, nil)
}

func (e *Extractor) RefreshToken(r *http.Request) string {
	return e.lookup(r, e.Refresh, nil)
}

// Credentials extracts both tokens, reading the body at most once.
func (e *Extractor) Credentials(r *http.Request) tokenguard.Credentials {
	var body map[string]string
	loaded := false
	lazyBody := func() map[string]string {
		if !loaded {
			body = readBody(r)
			loaded = true
		}
		return body
	}

	return tokenguard.Credentials{
		AccessToken:  e.lookupWith(r, e.Access, lazyBody),
		RefreshToken: e.lookupWith(r, e.Refresh, lazyBody),
	}
}

func (e *Extractor) lookup(r *http.Request, f Field, body map[string]string) string {
	return e.lookupWith(r, f, func() map[string]string {
		if body == nil {
			body = readBody(r)
		}
		return body
	})
}

func (e *Extractor) lookupWith(r *http.Request, f Field, body func() map[string]string) string {
	if r == nil {
		return ""
	}
	if v := r.Header.Get(f.Header); v != "" {
		return v
	}
	if v := r.URL.Query().Get(f.Param); v != "" {
		return v
	}
	if e.Signer != nil {
		if v, ok := e.Signer.Read(r, f.Header); ok {
			return v
		}
	}
	return body()[f.Param]
}

// readBody parses a JSON or form body into string fields. The consumed
// bytes are put back in front of the unread remainder, so downstream
// handlers see the whole body. Bodies over maxBodyBytes are not parsed.
func readBody(r *http.Request) map[string]string {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	orig := r.Body
	raw, err := io.ReadAll(io.LimitReader(orig, maxBodyBytes+1))
	r.Body = restoredBody{Reader: io.MultiReader(bytes.NewReader(raw), orig), Closer: orig}
	if err != nil || len(raw) == 0 || len(raw) > maxBodyBytes {
		return nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return nil
		}
		out := make(map[string]string, len(values))
		for k := range values {
			out[k] = values.Get(k)
		}
		return out
	default:
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil
		}
		out := make(map[string]string, len(fields))
		for k, v := range fields {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
		return out
	}
}

type restoredBody struct {
	io.Reader
	io.Closer
}
