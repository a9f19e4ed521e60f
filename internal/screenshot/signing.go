package screenshot

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"
)

// DefaultSignedURLTTL is how long signed URLs stay valid when the caller
// does not say otherwise.
const DefaultSignedURLTTL = time.Hour

// URLSigner issues and verifies time-limited access URLs. Signatures are
// HMAC-SHA256 over the path and expiry with a server-held secret, so a URL
// cannot be forged or have its expiry extended without the secret.
type URLSigner struct {
	host   string
	secret []byte
}

// NewURLSigner creates a signer for the given public host and secret.
func NewURLSigner(host string, secret []byte) *URLSigner {
	return &URLSigner{host: host, secret: secret}
}

// PublicURL returns the unsigned public URL for a stored path.
func (s *URLSigner) PublicURL(path string) string {
	return fmt.Sprintf("https://%s/%s", s.host, path)
}

// SignedURL returns a URL with expires and signature query parameters.
// A non-positive ttl falls back to DefaultSignedURLTTL.
func (s *URLSigner) SignedURL(path string, ttl time.Duration, now time.Time) string {
	if ttl <= 0 {
		ttl = DefaultSignedURLTTL
	}
	expiry := now.Add(ttl).Unix()
	return fmt.Sprintf("https://%s/%s?expires=%d&signature=%s", s.host, path, expiry, s.sign(path, expiry))
}

// Verify reports whether a signature is valid for the path and expiry, and
// the expiry has not passed. Comparison is constant-time.
func (s *URLSigner) Verify(path string, expiry int64, signature string, now time.Time) bool {
	if now.Unix() >= expiry {
		return false
	}
	return hmac.Equal([]byte(s.sign(path, expiry)), []byte(signature))
}

func (s *URLSigner) sign(path string, expiry int64) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(path))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(strconv.FormatInt(expiry, 10)))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
