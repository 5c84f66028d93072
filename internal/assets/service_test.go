package assets

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/disintegration/imaging"
	hoteldomain "github.com/smallbiznis/innledger/internal/hotel/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubHotels struct {
	hoteldomain.Service
	hotel hoteldomain.Hotel
}

func (s *stubHotels) GetByID(_ context.Context, id snowflake.ID) (hoteldomain.Hotel, error) {
	if id != s.hotel.ID {
		return hoteldomain.Hotel{}, hoteldomain.ErrNotFound
	}
	return s.hotel, nil
}

func (s *stubHotels) SetLogo(_ context.Context, _ snowflake.ID, url string) (hoteldomain.Hotel, error) {
	s.hotel.LogoURL = url
	return s.hotel, nil
}

func (s *stubHotels) SetSignature(_ context.Context, _ snowflake.ID, url string) (hoteldomain.Hotel, error) {
	s.hotel.SignatureURL = url
	return s.hotel, nil
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadResizesAndStoresLogo(t *testing.T) {
	dir := t.TempDir()
	hotels := &stubHotels{hotel: hoteldomain.Hotel{ID: 1, HotelCode: "000001"}}
	svc := NewService(Params{Log: zap.NewNop(), Store: NewLocalStore(dir, "/assets"), Hotels: hotels})

	updated, err := svc.Upload(context.Background(), 1, KindLogo, bytes.NewReader(pngOf(t, 1200, 300)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(updated.LogoURL, "/assets/hotels/000001/logo-"))
	assert.True(t, strings.HasSuffix(updated.LogoURL, ".png"))

	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(updated.LogoURL, "/assets")))
	require.NoError(t, err)
	img, err := imaging.Decode(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, 600, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestUploadRejectsBadInput(t *testing.T) {
	hotels := &stubHotels{hotel: hoteldomain.Hotel{ID: 1, HotelCode: "000001"}}
	svc := NewService(Params{Log: zap.NewNop(), Store: NewLocalStore(t.TempDir(), "/assets"), Hotels: hotels})
	ctx := context.Background()

	_, err := svc.Upload(ctx, 1, Kind("banner"), bytes.NewReader(pngOf(t, 10, 10)))
	assert.ErrorIs(t, err, ErrInvalidKind)

	_, err = svc.Upload(ctx, 1, KindSignature, strings.NewReader("not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = svc.Upload(ctx, 2, KindLogo, bytes.NewReader(pngOf(t, 10, 10)))
	assert.ErrorIs(t, err, hoteldomain.ErrNotFound)
}

// withDeclaredSize rewrites the IHDR chunk of a PNG so it claims w x h pixels
// while the pixel data stays tiny.
func withDeclaredSize(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	out := append([]byte(nil), data...)
	// 8-byte signature, 4-byte length, then "IHDR" and 13 bytes of header.
	require.Equal(t, "IHDR", string(out[12:16]))
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestUploadChecksDimensionsBeforeDecoding(t *testing.T) {
	dir := t.TempDir()
	hotels := &stubHotels{hotel: hoteldomain.Hotel{ID: 1, HotelCode: "000001"}}
	svc := NewService(Params{Log: zap.NewNop(), Store: NewLocalStore(dir, "/assets"), Hotels: hotels})
	ctx := context.Background()

	forged := withDeclaredSize(t, pngOf(t, 4, 4), 100000, 100000)
	_, err := svc.Upload(ctx, 1, KindLogo, bytes.NewReader(forged))
	assert.ErrorIs(t, err, ErrDimensions)

	_, err = svc.Upload(ctx, 1, KindLogo, bytes.NewReader(pngOf(t, maxDimension+1, 1)))
	assert.ErrorIs(t, err, ErrDimensions)

	_, err = svc.Upload(ctx, 1, KindSignature, bytes.NewReader(pngOf(t, 1, maxDimension+1)))
	assert.ErrorIs(t, err, ErrDimensions)
	assert.Empty(t, hotels.hotel.LogoURL)
	assert.Empty(t, hotels.hotel.SignatureURL)

	updated, err := svc.Upload(ctx, 1, KindLogo, bytes.NewReader(pngOf(t, maxDimension, 1)))
	require.NoError(t, err)
	assert.NotEmpty(t, updated.LogoURL)
}
