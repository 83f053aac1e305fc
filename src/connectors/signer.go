package connectors

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"
)

// Signer produces the authentication headers for one signed request. Venues
// use one of two keyed-hash conventions and they are not interchangeable:
//
//   - expiry scheme: hex HMAC-SHA256 over path + query + expiry + body, sent
//     with access-token and request-expiry headers;
//   - timestamp scheme: base64 HMAC-SHA256 over timestamp + method +
//     requestPath + body, sent with key, sign, timestamp and an
//     HMAC-encrypted passphrase header.
//
// The REST client takes whichever Signer the target venue expects.
type Signer interface {
	Headers(method, path, query, body string) map[string]string
}

// ExpirySigner implements the expiry-based convention.
type ExpirySigner struct {
	APIKey    string
	APISecret string
	// HeaderPrefix names the venue header family, e.g. "x-phemex".
	HeaderPrefix string
	// Window is how far in the future the request expiry is set.
	Window time.Duration

	now func() time.Time
}

func NewExpirySigner(apiKey, apiSecret string) *ExpirySigner {
	return &ExpirySigner{
		APIKey:       apiKey,
		APISecret:    apiSecret,
		HeaderPrefix: "x-phemex",
		Window:       time.Minute,
		now:          time.Now,
	}
}

func (s *ExpirySigner) Headers(method, path, query, body string) map[string]string {
	expiry := s.now().Add(s.Window).Unix()

	base := path
	if query != "" {
		base += query
	}
	base += fmt.Sprintf("%d", expiry)
	if body != "" {
		base += body
	}

	mac := hmac.New(sha256.New, []byte(s.APISecret))
	mac.Write([]byte(base))

	return map[string]string{
		s.HeaderPrefix + "-access-token":      s.APIKey,
		s.HeaderPrefix + "-request-expiry":    fmt.Sprintf("%d", expiry),
		s.HeaderPrefix + "-request-signature": hex.EncodeToString(mac.Sum(nil)),
	}
}

// TimestampSigner implements the timestamp-based convention.
type TimestampSigner struct {
	APIKey        string
	APISecret     string
	APIPassphrase string
	// HeaderPrefix names the venue header family, e.g. "KC-API".
	HeaderPrefix string
	// KeyVersion is sent as-is when set, e.g. "3".
	KeyVersion string

	now func() time.Time
}

func NewTimestampSigner(apiKey, apiSecret, apiPassphrase string) *TimestampSigner {
	return &TimestampSigner{
		APIKey:        apiKey,
		APISecret:     apiSecret,
		APIPassphrase: apiPassphrase,
		HeaderPrefix:  "KC-API",
		KeyVersion:    "3",
		now:           time.Now,
	}
}

func (s *TimestampSigner) Headers(method, path, query, body string) map[string]string {
	requestPath := path
	if query != "" {
		requestPath = path + "?" + query
	}

	timestamp := fmt.Sprintf("%d", s.now().UnixNano()/int64(time.Millisecond))

	headers := map[string]string{
		s.HeaderPrefix + "-KEY":        s.APIKey,
		s.HeaderPrefix + "-SIGN":       signBase64(s.APISecret, timestamp+method+requestPath+body),
		s.HeaderPrefix + "-TIMESTAMP":  timestamp,
		s.HeaderPrefix + "-PASSPHRASE": signBase64(s.APISecret, s.APIPassphrase),
	}
	if s.KeyVersion != "" {
		headers[s.HeaderPrefix+"-KEY-VERSION"] = s.KeyVersion
	}
	return headers
}

func signBase64(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
