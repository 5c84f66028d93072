package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/innledger/internal/invoice/domain"
	"github.com/smallbiznis/innledger/internal/invoice/totals"
	roomdomain "github.com/smallbiznis/innledger/internal/room/domain"
	"go.uber.org/zap"
)

func (s *Service) AttachRoom(ctx context.Context, invoiceID string, req invoicedomain.AttachRoomRequest) (invoicedomain.StayDetail, error) {
	id, err := parseID(invoiceID)
	if err != nil {
		return invoicedomain.StayDetail{}, err
	}

	// The room lookup runs before the transaction. The owning hotel of an
	// invoice never changes, and inDraft re-checks the status under lock.
	current, err := s.repo.FindInvoice(ctx, id)
	if err != nil {
		return invoicedomain.StayDetail{}, invoicedomain.StorageError("find invoice", err)
	}
	if current == nil || !visible(ctx, current) {
		return invoicedomain.StayDetail{}, invoicedomain.ErrInvoiceNotFound
	}
	if !current.Status.Editable() {
		return invoicedomain.StayDetail{}, invoicedomain.ErrInvoiceLocked
	}
	room, err := s.resolveRoom(ctx, current.HotelID, req)
	if err != nil {
		return invoicedomain.StayDetail{}, err
	}

	var detail invoicedomain.StayDetail
	err = s.repo.Transaction(ctx, func(repo invoicedomain.Repository) error {
		_, err := s.inDraft(ctx, repo, id, func(inv *invoicedomain.Invoice) (map[string]any, error) {
			stay, err := s.buildStay(ctx, repo, inv, room, req)
			if err != nil {
				return nil, err
			}
			if err := repo.InsertRoomStay(ctx, &stay.RoomStay, stay.NightRates); err != nil {
				return nil, invoicedomain.StorageError("insert room stay", err)
			}
			detail = stay
			return nil, nil
		})
		return err
	})
	if err != nil {
		return invoicedomain.StayDetail{}, storage("attach room", err)
	}

	s.log.Debug("room attached",
		zap.String("invoice_id", id.String()),
		zap.String("room_stay_id", detail.ID.String()),
		zap.Int("nights", detail.TotalNights),
	)
	return detail, nil
}

type stayRoom struct {
	id     *snowflake.ID
	number string
	name   string
}

func (s *Service) buildStay(ctx context.Context, repo invoicedomain.Repository, inv *invoicedomain.Invoice, room stayRoom, req invoicedomain.AttachRoomRequest) (invoicedomain.StayDetail, error) {
	if req.CheckinDate.IsZero() {
		return invoicedomain.StayDetail{}, invoicedomain.FieldError(invoicedomain.ErrInvalidDateRange, "checkin_date")
	}
	checkin := calendarDate(req.CheckinDate)
	checkout := calendarDate(req.CheckoutDate)
	nights := totals.Nights(checkin, checkout)
	if nights <= 0 {
		return invoicedomain.StayDetail{}, invoicedomain.FieldError(invoicedomain.ErrInvalidDateRange, "checkout_date")
	}

	now := s.clock.Now()
	seq, err := repo.NextStaySeq(ctx, inv.ID)
	if err != nil {
		return invoicedomain.StayDetail{}, invoicedomain.StorageError("next stay sequence", err)
	}

	stay := invoicedomain.RoomStay{
		ID:                s.genID.Generate(),
		InvoiceID:         inv.ID,
		RoomID:            room.id,
		RoomNumber:        room.number,
		RoomName:          room.name,
		CheckinDate:       checkin,
		CheckoutDate:      checkout,
		SameRateAllNights: req.SameRateAllNights,
		PerNightRate:      decimal.Zero,
		TotalNights:       nights,
		CreationSeq:       seq,
		CreatedAt:         now,
	}

	var rates []invoicedomain.RoomNightRate
	if req.SameRateAllNights {
		if req.PerNightRate.IsNegative() {
			return invoicedomain.StayDetail{}, invoicedomain.FieldError(invoicedomain.ErrInvalidRate, "per_night_rate")
		}
		stay.PerNightRate = totals.Round(req.PerNightRate)
	} else {
		if len(req.NightRates) != nights {
			return invoicedomain.StayDetail{}, invoicedomain.FieldError(invoicedomain.ErrRateScheduleLengthMismatch, "night_rates")
		}
		rates = make([]invoicedomain.RoomNightRate, 0, nights)
		for i, rate := range req.NightRates {
			if rate.IsNegative() {
				return invoicedomain.StayDetail{}, invoicedomain.FieldError(invoicedomain.ErrInvalidRate, "night_rates")
			}
			rates = append(rates, invoicedomain.RoomNightRate{
				ID:         s.genID.Generate(),
				RoomStayID: stay.ID,
				NightDate:  checkin.AddDate(0, 0, i),
				Rate:       totals.Round(rate),
				CreatedAt:  now,
			})
		}
	}

	rateValues := make([]decimal.Decimal, 0, len(rates))
	for _, r := range rates {
		rateValues = append(rateValues, r.Rate)
	}
	stay.TotalRoomAmount = totals.RoomCharge(totals.Stay{
		SameRateAllNights: stay.SameRateAllNights,
		TotalNights:       stay.TotalNights,
		PerNightRate:      stay.PerNightRate,
		NightRates:        rateValues,
	})

	return invoicedomain.StayDetail{
		RoomStay:   stay,
		NightRates: rates,
		Charges:    []invoicedomain.FoodServiceCharge{},
	}, nil
}

// resolveRoom copies number and name from the hotel's inventory when a room
// id is given. Free-text rooms are accepted for walk-in setups without
// inventory.
func (s *Service) resolveRoom(ctx context.Context, hotelID snowflake.ID, req invoicedomain.AttachRoomRequest) (stayRoom, error) {
	if strings.TrimSpace(req.RoomID) == "" {
		number := strings.TrimSpace(req.RoomNumber)
		if number == "" {
			return stayRoom{}, invoicedomain.FieldError(invoicedomain.ErrInvalidRoom, "room_number")
		}
		return stayRoom{number: number, name: strings.TrimSpace(req.RoomName)}, nil
	}

	room, err := s.rooms.GetForHotel(ctx, hotelID, req.RoomID)
	if err != nil {
		switch {
		case errors.Is(err, roomdomain.ErrNotFound):
			return stayRoom{}, invoicedomain.ErrRoomNotFound
		case errors.Is(err, roomdomain.ErrInvalidID), errors.Is(err, roomdomain.ErrInvalidHotel):
			return stayRoom{}, invoicedomain.FieldError(invoicedomain.ErrInvalidRoom, "room_id")
		default:
			return stayRoom{}, invoicedomain.StorageError("find room", err)
		}
	}
	if !room.IsActive {
		return stayRoom{}, invoicedomain.FieldError(invoicedomain.ErrRoomInactive, "room_id")
	}
	roomID := room.ID
	return stayRoom{id: &roomID, number: room.RoomNumber, name: room.RoomName}, nil
}

func (s *Service) RemoveRoom(ctx context.Context, roomStayID string) error {
	id, err := parseID(roomStayID)
	if err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(repo invoicedomain.Repository) error {
		stay, err := repo.FindRoomStay(ctx, id)
		if err != nil {
			return invoicedomain.StorageError("find room stay", err)
		}
		if stay == nil {
			return invoicedomain.ErrRoomStayNotFound
		}

		_, err = s.inDraft(ctx, repo, stay.InvoiceID, func(*invoicedomain.Invoice) (map[string]any, error) {
			if err := repo.DeleteRoomStay(ctx, stay.ID); err != nil {
				return nil, invoicedomain.StorageError("delete room stay", err)
			}
			return nil, nil
		})
		if errors.Is(err, invoicedomain.ErrInvoiceNotFound) {
			return invoicedomain.ErrRoomStayNotFound
		}
		return err
	})
	return storage("remove room", err)
}

// calendarDate drops the clock part so night counting works on whole days.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
