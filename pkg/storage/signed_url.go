package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidLink marks a malformed or tampered download token.
	ErrInvalidLink = errors.New("invalid download link")
	// ErrLinkExpired marks a correctly signed token past its expiry.
	ErrLinkExpired = errors.New("download link expired")
)

// Link is the content of a download token.
type Link struct {
	Owner     string
	Path      string
	ExpiresAt time.Time
}

// Signer issues and verifies HMAC-signed download tokens of the form
// owner.expiry.path.signature.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner constructs a signer. A non-positive ttl defaults to a week.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns how long issued links stay valid.
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// Sign returns a token granting read access to path.
func (s *Signer) Sign(owner, path string) (string, time.Time, error) {
	if owner == "" || path == "" {
		return "", time.Time{}, fmt.Errorf("owner and path required")
	}
	if strings.Contains(owner, ".") {
		return "", time.Time{}, fmt.Errorf("owner %q must not contain '.'", owner)
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	expiry := strconv.FormatInt(expiresAt.Unix(), 10)
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte(path))
	token := strings.Join([]string{owner, expiry, encodedPath, s.signature(owner, expiry, encodedPath)}, ".")
	return token, expiresAt, nil
}

// Verify checks the signature and expiry of token.
func (s *Signer) Verify(token string) (*Link, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return nil, ErrInvalidLink
	}
	owner, expiry, encodedPath, signature := parts[0], parts[1], parts[2], parts[3]
	if !hmac.Equal([]byte(s.signature(owner, expiry, encodedPath)), []byte(signature)) {
		return nil, ErrInvalidLink
	}
	unix, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		return nil, ErrInvalidLink
	}
	path, err := base64.RawURLEncoding.DecodeString(encodedPath)
	if err != nil {
		return nil, ErrInvalidLink
	}
	link := &Link{Owner: owner, Path: string(path), ExpiresAt: time.Unix(unix, 0)}
	if s.now().After(link.ExpiresAt) {
		return nil, ErrLinkExpired
	}
	return link, nil
}

func (s *Signer) signature(owner, expiry, encodedPath string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(owner + "|" + expiry + "|" + encodedPath))
	return hex.EncodeToString(mac.Sum(nil))
}
