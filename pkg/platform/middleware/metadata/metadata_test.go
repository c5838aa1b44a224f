package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/pkg/requestcontext"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		realIP     string
		trusted    []string
		want       string
	}{
		{name: "no proxies trusted ignores XFF", remoteAddr: "192.168.1.1:1234", xff: "203.0.113.1", want: "192.168.1.1"},
		{name: "trusted proxy XFF", remoteAddr: "10.0.0.1:1234", xff: "203.0.113.1", trusted: []string{"10.0.0.0/8"}, want: "203.0.113.1"},
		{name: "spoofed leftmost hop is skipped", remoteAddr: "10.0.0.1:1234", xff: "1.1.1.1, 198.51.100.4, 10.0.0.7", trusted: []string{"10.0.0.0/8"}, want: "198.51.100.4"},
		{name: "malformed hop falls back to peer", remoteAddr: "10.0.0.1:1234", xff: "junk", trusted: []string{"10.0.0.0/8"}, want: "10.0.0.1"},
		{name: "X-Real-IP from trusted proxy", remoteAddr: "10.0.0.1:1234", realIP: "203.0.113.9", trusted: []string{"10.0.0.1"}, want: "203.0.113.9"},
		{name: "ipv6 peer", remoteAddr: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "mapped ipv4 peer", remoteAddr: "[::ffff:192.0.2.5]:80", want: "192.0.2.5"},
		{name: "empty remote", remoteAddr: "", want: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefixes, err := ParseTrustedProxies(tt.trusted)
			require.NoError(t, err)
			m := NewMiddleware(&Config{TrustedProxies: prefixes})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, m.ClientIP(req))
		})
	}
}

func TestHandler_StoresMetadata(t *testing.T) {
	var ip, ua string
	h := NewMiddleware(nil).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
		ua = requestcontext.UserAgent(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.20:5555"
	req.Header.Set("User-Agent", "curl/8.4.0")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "198.51.100.20", ip)
	assert.Equal(t, "curl/8.4.0", ua)
}

func TestParseTrustedProxies_RejectsGarbage(t *testing.T) {
	_, err := ParseTrustedProxies([]string{"10.0.0.0/33"})
	assert.Error(t, err)
	_, err = ParseTrustedProxies([]string{"proxy.local"})
	assert.Error(t, err)
}
