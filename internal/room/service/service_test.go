package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/innledger/internal/clock"
	"github.com/smallbiznis/innledger/internal/hotelcontext"
	"github.com/smallbiznis/innledger/internal/room/domain"
	"github.com/smallbiznis/innledger/internal/room/repository"
	"github.com/smallbiznis/innledger/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Room{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(conn),
		Clock: clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)),
	})
}

func TestCreateRejectsDuplicateNumberPerHotel(t *testing.T) {
	svc := newTestService(t)
	hotelA := hotelcontext.WithHotelID(context.Background(), snowflake.ID(1))
	hotelB := hotelcontext.WithHotelID(context.Background(), snowflake.ID(2))

	_, err := svc.Create(hotelA, domain.CreateRoomRequest{RoomNumber: "101", RoomName: "Deluxe"})
	require.NoError(t, err)

	_, err = svc.Create(hotelA, domain.CreateRoomRequest{RoomNumber: " 101 ", RoomName: "Suite"})
	assert.ErrorIs(t, err, domain.ErrRoomNumberTaken)

	_, err = svc.Create(hotelB, domain.CreateRoomRequest{RoomNumber: "101", RoomName: "Deluxe"})
	assert.NoError(t, err)
}

func TestCreateValidatesInput(t *testing.T) {
	svc := newTestService(t)
	ctx := hotelcontext.WithHotelID(context.Background(), snowflake.ID(1))

	_, err := svc.Create(context.Background(), domain.CreateRoomRequest{RoomNumber: "1", RoomName: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidHotel)

	_, err = svc.Create(ctx, domain.CreateRoomRequest{RoomNumber: "", RoomName: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidRoomNumber)

	_, err = svc.Create(ctx, domain.CreateRoomRequest{RoomNumber: "1", RoomName: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidRoomName)
}

func TestListOrdersByNumberAndFiltersInactive(t *testing.T) {
	svc := newTestService(t)
	ctx := hotelcontext.WithHotelID(context.Background(), snowflake.ID(1))

	for _, n := range []string{"203", "101", "102"} {
		_, err := svc.Create(ctx, domain.CreateRoomRequest{RoomNumber: n, RoomName: "Room " + n})
		require.NoError(t, err)
	}

	rooms, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, rooms, 3)
	assert.Equal(t, []string{"101", "102", "203"}, []string{rooms[0].RoomNumber, rooms[1].RoomNumber, rooms[2].RoomNumber})

	inactive := false
	_, err = svc.Update(ctx, rooms[1].ID.String(), domain.UpdateRoomRequest{IsActive: &inactive})
	require.NoError(t, err)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestGetIsScopedToHotel(t *testing.T) {
	svc := newTestService(t)
	hotelA := hotelcontext.WithHotelID(context.Background(), snowflake.ID(1))
	hotelB := hotelcontext.WithHotelID(context.Background(), snowflake.ID(2))

	room, err := svc.Create(hotelA, domain.CreateRoomRequest{RoomNumber: "7", RoomName: "Garden"})
	require.NoError(t, err)

	_, err = svc.Get(hotelB, room.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(hotelA, "not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	name := "Garden View"
	updated, err := svc.Update(hotelA, room.ID.String(), domain.UpdateRoomRequest{RoomName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Garden View", updated.RoomName)
}
