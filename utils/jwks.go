package utils

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// LineJWKSURL publishes the ES256 keys LINE signs LIFF ID tokens with.
const LineJWKSURL = "https://api.line.me/oauth2/v2.1/certs"

const (
	jwksTTL = time.Hour
	// Unknown kids trigger at most one refetch per interval.
	jwksMinRefresh = time.Minute
)

var ErrUnknownKey = errors.New("unknown signing key")

type jwk struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	Kid string `json:"kid"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

// JWKS caches the EC P-256 keys of a JSON Web Key Set.
type JWKS struct {
	url        string
	httpClient *http.Client
	now        func() time.Time

	mu        sync.Mutex
	keys      map[string]*ecdsa.PublicKey
	fetchedAt time.Time
}

func NewJWKS(url string, timeout time.Duration) *JWKS {
	return &JWKS{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Key returns the key for kid, fetching the set when the cache is stale or
// the kid is not in it.
func (j *JWKS) Key(ctx context.Context, kid string) (*ecdsa.PublicKey, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	key, ok := j.keys[kid]
	stale := j.keys == nil || now.Sub(j.fetchedAt) > jwksTTL
	if ok && !stale {
		return key, nil
	}
	if !stale && now.Sub(j.fetchedAt) < jwksMinRefresh {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, kid)
	}

	keys, err := j.fetch(ctx)
	if err != nil {
		if ok {
			return key, nil
		}
		return nil, err
	}
	j.keys, j.fetchedAt = keys, now

	if key, ok = keys[kid]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, kid)
	}
	return key, nil
}

func (j *JWKS) fetch(ctx context.Context) (map[string]*ecdsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.url, nil)
	if err != nil {
		return nil, fmt.Errorf("jwks request: %w", err)
	}
	resp, err := j.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jwks fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jwks fetch: status %d", resp.StatusCode)
	}

	var set jwkSet
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&set); err != nil {
		return nil, fmt.Errorf("jwks decode: %w", err)
	}

	keys := make(map[string]*ecdsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "EC" || k.Crv != "P-256" {
			continue
		}
		pub, err := parseP256(k.X, k.Y)
		if err != nil {
			return nil, fmt.Errorf("jwks key %q: %w", k.Kid, err)
		}
		keys[k.Kid] = pub
	}
	return keys, nil
}

func parseP256(x, y string) (*ecdsa.PublicKey, error) {
	xb, err := base64.RawURLEncoding.DecodeString(x)
	if err != nil {
		return nil, err
	}
	yb, err := base64.RawURLEncoding.DecodeString(y)
	if err != nil {
		return nil, err
	}
	if len(xb) > 32 || len(yb) > 32 {
		return nil, errors.New("coordinate too long")
	}

	point := make([]byte, 65)
	point[0] = 4
	copy(point[33-len(xb):33], xb)
	copy(point[65-len(yb):], yb)
	return ecdsa.ParseUncompressedPublicKey(elliptic.P256(), point)
}
