// Package requestcontext carries per-request values (request ID, client
// metadata, device summary) through context.Context.
package requestcontext

import "context"

type (
	ctxKeyRequestID  struct{}
	ctxKeyClientIP   struct{}
	ctxKeyUserAgent  struct{}
	ctxKeyDeviceName struct{}
)

// WithRequestID stores the request correlation ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID{}, requestID)
}

// RequestID returns the request correlation ID, or "" outside a request.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return v
}

// WithClientMetadata stores the resolved client address and raw User-Agent.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyClientIP{}, clientIP)
	return context.WithValue(ctx, ctxKeyUserAgent{}, userAgent)
}

// ClientIP returns the resolved source address of the request.
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyClientIP{}).(string)
	return v
}

// UserAgent returns the raw User-Agent header.
func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyUserAgent{}).(string)
	return v
}

// WithDeviceName stores a short human-readable device description.
func WithDeviceName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ctxKeyDeviceName{}, name)
}

// DeviceName returns the device description set by the device middleware.
func DeviceName(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyDeviceName{}).(string)
	return v
}
