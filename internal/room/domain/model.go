package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Room is an inventory entry. Stays copy its number and name, so rooms are
// never deleted, only deactivated.
type Room struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	HotelID    snowflake.ID `gorm:"column:hotel_id;not null;uniqueIndex:ux_rooms_hotel_number,priority:1" json:"hotel_id"`
	RoomNumber string       `gorm:"column:room_number;type:varchar(32);not null;uniqueIndex:ux_rooms_hotel_number,priority:2" json:"room_number"`
	RoomName   string       `gorm:"column:room_name;type:text;not null" json:"room_name"`
	IsActive   bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt  time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null" json:"updated_at"`
}

func (Room) TableName() string { return "rooms" }

var (
	ErrInvalidHotel      = errors.New("invalid_hotel")
	ErrInvalidID         = errors.New("invalid_room_id")
	ErrInvalidRoomNumber = errors.New("invalid_room_number")
	ErrInvalidRoomName   = errors.New("invalid_room_name")
	ErrRoomNumberTaken   = errors.New("room_number_taken")
	ErrNotFound          = errors.New("room_not_found")
)

type CreateRoomRequest struct {
	RoomNumber string
	RoomName   string
}

type UpdateRoomRequest struct {
	RoomName *string
	IsActive *bool
}

type Repository interface {
	Insert(ctx context.Context, room *Room) error
	FindByID(ctx context.Context, hotelID, id snowflake.ID) (*Room, error)
	List(ctx context.Context, hotelID snowflake.ID, activeOnly bool) ([]Room, error)
	UpdateFields(ctx context.Context, hotelID, id snowflake.ID, fields map[string]any) error
}

type Service interface {
	Create(ctx context.Context, req CreateRoomRequest) (Room, error)
	List(ctx context.Context, activeOnly bool) ([]Room, error)
	Get(ctx context.Context, roomID string) (Room, error)
	GetForHotel(ctx context.Context, hotelID snowflake.ID, roomID string) (Room, error)
	Update(ctx context.Context, roomID string, req UpdateRoomRequest) (Room, error)
}
