package hotelcontext

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
)

func TestHotelIDRoundTrip(t *testing.T) {
	ctx := WithHotelID(context.Background(), snowflake.ID(42))
	id, ok := HotelIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, snowflake.ID(42), id)

	_, ok = HotelIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = HotelIDFromContext(WithHotelID(context.Background(), 0))
	assert.False(t, ok)
}

func TestRoleIsNormalized(t *testing.T) {
	ctx := WithRole(context.Background(), " Admin ")
	assert.Equal(t, RoleAdmin, RoleFromContext(ctx))
	assert.Equal(t, "", RoleFromContext(context.Background()))
}
