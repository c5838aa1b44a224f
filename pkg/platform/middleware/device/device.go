// Package device summarizes the client's User-Agent into a short description
// ("Firefox on Linux", "bot: Googlebot") used in audit metadata.
package device

import (
	"net/http"

	"github.com/mssola/useragent"

	"inkwell/pkg/requestcontext"
)

// Describe turns a raw User-Agent into a short description. Empty input yields "".
func Describe(rawUA string) string {
	if rawUA == "" {
		return ""
	}
	ua := useragent.New(rawUA)
	name, _ := ua.Browser()
	if ua.Bot() {
		if name == "" {
			return "bot"
		}
		return "bot: " + name
	}
	os := ua.OSInfo().Name
	switch {
	case name == "" && os == "":
		return "unknown"
	case os == "":
		return name
	case name == "":
		return "unknown on " + os
	}
	if ua.Mobile() {
		return name + " on " + os + " (mobile)"
	}
	return name + " on " + os
}

// Middleware stores Describe(User-Agent) in the request context. It must run
// after the metadata middleware, which captures the User-Agent.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if name := Describe(requestcontext.UserAgent(ctx)); name != "" {
			ctx = requestcontext.WithDeviceName(ctx, name)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
