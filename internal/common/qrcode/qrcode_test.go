package qrcode

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptContent(t *testing.T) {
	checkIn := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	content := ReceiptContent("BK20250520100000123456", checkIn)
	assert.Equal(t, "BOOKING|BK20250520100000123456|2025-06-01", content)

	no, in, err := ParseReceiptContent(content)
	require.NoError(t, err)
	assert.Equal(t, "BK20250520100000123456", no)
	assert.True(t, in.Equal(checkIn))

	t.Run("非法内容", func(t *testing.T) {
		for _, bad := range []string{"", "BK1", "ORDER|BK1|2025-06-01", "BOOKING||2025-06-01", "BOOKING|BK1|06/01"} {
			_, _, err := ParseReceiptContent(bad)
			assert.Error(t, err, bad)
		}
	})
}

func TestEncoder_DataURL(t *testing.T) {
	enc := NewEncoder(0)
	assert.Equal(t, DefaultSize, enc.size)

	url, err := enc.DataURL("BOOKING|BK1|2025-06-01")
	require.NoError(t, err)

	data, err := DecodeDataURL(url)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, img.Bounds().Dx())
	assert.Equal(t, img.Bounds().Dx(), img.Bounds().Dy())
}

func TestEncoder_EmptyContent(t *testing.T) {
	_, err := NewEncoder(128).PNG("")
	assert.Error(t, err)
}

func TestDecodeDataURL_Invalid(t *testing.T) {
	_, err := DecodeDataURL("https://example.com/qr.png")
	assert.ErrorIs(t, err, ErrInvalidDataURL)
}
