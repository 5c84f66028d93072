package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/innledger/internal/clock"
	"github.com/smallbiznis/innledger/internal/hotelcontext"
	"github.com/smallbiznis/innledger/internal/room/domain"
	"github.com/smallbiznis/innledger/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Clock clock.Clock
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("room.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRoomRequest) (domain.Room, error) {
	hotelID, ok := hotelcontext.HotelIDFromContext(ctx)
	if !ok {
		return domain.Room{}, domain.ErrInvalidHotel
	}

	number := strings.TrimSpace(req.RoomNumber)
	if number == "" || len(number) > 32 {
		return domain.Room{}, domain.ErrInvalidRoomNumber
	}
	name := strings.TrimSpace(req.RoomName)
	if name == "" {
		return domain.Room{}, domain.ErrInvalidRoomName
	}

	now := s.clock.Now()
	room := domain.Room{
		ID:         s.genID.Generate(),
		HotelID:    hotelID,
		RoomNumber: number,
		RoomName:   name,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, &room); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Room{}, domain.ErrRoomNumberTaken
		}
		return domain.Room{}, err
	}
	return room, nil
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]domain.Room, error) {
	hotelID, ok := hotelcontext.HotelIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidHotel
	}
	return s.repo.List(ctx, hotelID, activeOnly)
}

func (s *Service) Get(ctx context.Context, roomID string) (domain.Room, error) {
	hotelID, ok := hotelcontext.HotelIDFromContext(ctx)
	if !ok {
		return domain.Room{}, domain.ErrInvalidHotel
	}
	return s.GetForHotel(ctx, hotelID, roomID)
}

// GetForHotel looks a room up for an explicit hotel, for callers that act
// outside a hotel session.
func (s *Service) GetForHotel(ctx context.Context, hotelID snowflake.ID, roomID string) (domain.Room, error) {
	if hotelID == 0 {
		return domain.Room{}, domain.ErrInvalidHotel
	}
	id, err := parseID(roomID)
	if err != nil {
		return domain.Room{}, err
	}
	room, err := s.repo.FindByID(ctx, hotelID, id)
	if err != nil {
		return domain.Room{}, err
	}
	if room == nil {
		return domain.Room{}, domain.ErrNotFound
	}
	return *room, nil
}

func (s *Service) Update(ctx context.Context, roomID string, req domain.UpdateRoomRequest) (domain.Room, error) {
	room, err := s.Get(ctx, roomID)
	if err != nil {
		return domain.Room{}, err
	}

	fields := map[string]any{}
	if req.RoomName != nil {
		name := strings.TrimSpace(*req.RoomName)
		if name == "" {
			return domain.Room{}, domain.ErrInvalidRoomName
		}
		fields["room_name"] = name
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if len(fields) == 0 {
		return room, nil
	}
	fields["updated_at"] = s.clock.Now()

	if err := s.repo.UpdateFields(ctx, room.HotelID, room.ID, fields); err != nil {
		return domain.Room{}, err
	}
	return s.GetForHotel(ctx, room.HotelID, roomID)
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
