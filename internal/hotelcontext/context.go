// Package hotelcontext carries the authenticated tenant on the request context.
package hotelcontext

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

type hotelIDKey struct{}
type userIDKey struct{}
type roleKey struct{}

const (
	RoleAdmin = "admin"
	RoleHotel = "hotel"
)

// WithHotelID stores the hotel ID in the context.
func WithHotelID(ctx context.Context, hotelID snowflake.ID) context.Context {
	return context.WithValue(ctx, hotelIDKey{}, hotelID)
}

// HotelIDFromContext returns the hotel ID from context, if set.
func HotelIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	switch typed := ctx.Value(hotelIDKey{}).(type) {
	case snowflake.ID:
		return typed, typed != 0
	case int64:
		return snowflake.ID(typed), typed != 0
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil && parsed != 0 {
			return parsed, true
		}
	}
	return 0, false
}

func WithUserID(ctx context.Context, userID snowflake.ID) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func UserIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(userIDKey{}).(snowflake.ID)
	return id, ok && id != 0
}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, strings.ToLower(strings.TrimSpace(role)))
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	role, _ := ctx.Value(roleKey{}).(string)
	return role
}
