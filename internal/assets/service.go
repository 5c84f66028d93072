package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/disintegration/imaging"
	"github.com/oklog/ulid/v2"
	hoteldomain "github.com/smallbiznis/innledger/internal/hotel/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Kind string

const (
	KindLogo      Kind = "logo"
	KindSignature Kind = "signature"
)

const (
	maxUploadBytes = 5 << 20
	// maxDimension bounds width and height before any pixels are decoded.
	maxDimension = 8000
)

var (
	ErrInvalidKind  = errors.New("invalid_asset_kind")
	ErrInvalidImage = errors.New("invalid_image")
	ErrTooLarge     = errors.New("image_too_large")
	ErrDimensions   = errors.New("image_dimensions_too_large")
)

func (k Kind) maxWidth() int {
	if k == KindSignature {
		return 400
	}
	return 600
}

type Params struct {
	fx.In

	Log    *zap.Logger
	Store  Store
	Hotels hoteldomain.Service
}

type Service struct {
	log    *zap.Logger
	store  Store
	hotels hoteldomain.Service
}

func NewService(p Params) *Service {
	return &Service{
		log:    p.Log.Named("assets.service"),
		store:  p.Store,
		hotels: p.Hotels,
	}
}

// Upload normalises an image to PNG, stores it and points the hotel profile
// at the new URL. Old objects are left in place; issued invoices may still
// reference them.
func (s *Service) Upload(ctx context.Context, hotelID snowflake.ID, kind Kind, r io.Reader) (hoteldomain.Hotel, error) {
	if kind != KindLogo && kind != KindSignature {
		return hoteldomain.Hotel{}, ErrInvalidKind
	}

	hotel, err := s.hotels.GetByID(ctx, hotelID)
	if err != nil {
		return hoteldomain.Hotel{}, err
	}

	data, err := io.ReadAll(io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return hoteldomain.Hotel{}, err
	}
	if len(data) > maxUploadBytes {
		return hoteldomain.Hotel{}, ErrTooLarge
	}

	encoded, err := normalise(data, kind.maxWidth())
	if err != nil {
		return hoteldomain.Hotel{}, err
	}

	key := fmt.Sprintf("hotels/%s/%s-%s.png", hotel.HotelCode, kind, strings.ToLower(ulid.Make().String()))
	url, err := s.store.Put(ctx, key, encoded, "image/png")
	if err != nil {
		return hoteldomain.Hotel{}, fmt.Errorf("store asset: %w", err)
	}

	s.log.Info("asset uploaded",
		zap.String("hotel_id", hotelID.String()),
		zap.String("kind", string(kind)),
		zap.String("key", key),
	)

	if kind == KindSignature {
		return s.hotels.SetSignature(ctx, hotelID, url)
	}
	return s.hotels.SetLogo(ctx, hotelID, url)
}

func normalise(data []byte, maxWidth int) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImage
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrInvalidImage
	}
	if cfg.Width > maxDimension || cfg.Height > maxDimension {
		return nil, ErrDimensions
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrInvalidImage
	}
	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
