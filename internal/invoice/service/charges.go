package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	invoicedomain "github.com/smallbiznis/innledger/internal/invoice/domain"
	"github.com/smallbiznis/innledger/internal/invoice/totals"
)

func (s *Service) AddCharges(ctx context.Context, roomStayID string, specs []invoicedomain.ChargeSpec) ([]invoicedomain.FoodServiceCharge, error) {
	id, err := parseID(roomStayID)
	if err != nil {
		return nil, err
	}

	var created []invoicedomain.FoodServiceCharge
	err = s.repo.Transaction(ctx, func(repo invoicedomain.Repository) error {
		stay, err := repo.FindRoomStay(ctx, id)
		if err != nil {
			return invoicedomain.StorageError("find room stay", err)
		}
		if stay == nil {
			return invoicedomain.ErrRoomStayNotFound
		}

		_, err = s.inDraft(ctx, repo, stay.InvoiceID, func(*invoicedomain.Invoice) (map[string]any, error) {
			if len(specs) == 0 {
				return nil, invoicedomain.FieldError(invoicedomain.ErrEmptyChargeBatch, "charges")
			}
			seq, err := repo.NextChargeSeq(ctx, stay.ID)
			if err != nil {
				return nil, invoicedomain.StorageError("next charge sequence", err)
			}

			now := s.clock.Now()
			charges := make([]invoicedomain.FoodServiceCharge, 0, len(specs))
			for i, spec := range specs {
				chargeType, ok := invoicedomain.ParseChargeType(spec.Type)
				if !ok {
					return nil, invoicedomain.FieldError(invoicedomain.ErrInvalidChargeType, fmt.Sprintf("charges[%d].type", i))
				}
				if spec.Quantity != nil && *spec.Quantity < 1 {
					return nil, invoicedomain.FieldError(invoicedomain.ErrInvalidQuantity, fmt.Sprintf("charges[%d].quantity", i))
				}
				if spec.Rate.IsNegative() {
					return nil, invoicedomain.FieldError(invoicedomain.ErrInvalidRate, fmt.Sprintf("charges[%d].rate", i))
				}
				name := strings.TrimSpace(spec.Name)
				if name == "" {
					name = chargeType.DisplayName()
				}
				rate := totals.Round(spec.Rate)
				charges = append(charges, invoicedomain.FoodServiceCharge{
					ID:          s.genID.Generate(),
					RoomStayID:  stay.ID,
					Type:        chargeType,
					Name:        name,
					Quantity:    spec.Quantity,
					Rate:        rate,
					TotalAmount: totals.ChargeTotal(spec.Quantity, rate),
					CreationSeq: seq + i,
					CreatedAt:   now,
				})
			}

			if err := repo.InsertCharges(ctx, charges); err != nil {
				return nil, invoicedomain.StorageError("insert charges", err)
			}
			created = charges
			return nil, nil
		})
		if errors.Is(err, invoicedomain.ErrInvoiceNotFound) {
			return invoicedomain.ErrRoomStayNotFound
		}
		return err
	})
	if err != nil {
		return nil, storage("add charges", err)
	}
	return created, nil
}

func (s *Service) RemoveCharge(ctx context.Context, chargeID string) error {
	id, err := parseID(chargeID)
	if err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(repo invoicedomain.Repository) error {
		charge, err := repo.FindCharge(ctx, id)
		if err != nil {
			return invoicedomain.StorageError("find charge", err)
		}
		if charge == nil {
			return invoicedomain.ErrChargeNotFound
		}
		stay, err := repo.FindRoomStay(ctx, charge.RoomStayID)
		if err != nil {
			return invoicedomain.StorageError("find room stay", err)
		}
		if stay == nil {
			return invoicedomain.ErrChargeNotFound
		}

		_, err = s.inDraft(ctx, repo, stay.InvoiceID, func(*invoicedomain.Invoice) (map[string]any, error) {
			if err := repo.DeleteCharge(ctx, charge.ID); err != nil {
				return nil, invoicedomain.StorageError("delete charge", err)
			}
			return nil, nil
		})
		if errors.Is(err, invoicedomain.ErrInvoiceNotFound) {
			return invoicedomain.ErrChargeNotFound
		}
		return err
	})
	return storage("remove charge", err)
}
