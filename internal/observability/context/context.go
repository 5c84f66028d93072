// Package context carries request-scoped correlation values used by logs and spans.
package context

import "context"

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	hotelIDKey   ctxKey = "hotel_id"
	actorTypeKey ctxKey = "actor_type"
	actorIDKey   ctxKey = "actor_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

func WithHotelID(ctx context.Context, hotelID string) context.Context {
	return context.WithValue(ctx, hotelIDKey, hotelID)
}

func HotelIDFromContext(ctx context.Context) string {
	return stringValue(ctx, hotelIDKey)
}

func WithActor(ctx context.Context, actorType, actorID string) context.Context {
	ctx = context.WithValue(ctx, actorTypeKey, actorType)
	return context.WithValue(ctx, actorIDKey, actorID)
}

func ActorFromContext(ctx context.Context) (string, string) {
	return stringValue(ctx, actorTypeKey), stringValue(ctx, actorIDKey)
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(key).(string)
	return value
}
