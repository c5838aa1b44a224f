package device

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"inkwell/pkg/requestcontext"
)

const (
	firefoxLinux = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
	googlebot    = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func TestDescribe(t *testing.T) {
	assert.Equal(t, "", Describe(""))
	assert.Equal(t, "Firefox on Linux", Describe(firefoxLinux))
	assert.Contains(t, Describe(googlebot), "bot")
}

func TestMiddleware_StoresDeviceName(t *testing.T) {
	var got string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = requestcontext.DeviceName(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), "198.51.100.1", firefoxLinux))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "Firefox on Linux", got)
}

func TestMiddleware_NoUserAgent(t *testing.T) {
	var got string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = requestcontext.DeviceName(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, got)
}
