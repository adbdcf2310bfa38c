// Package qrcode 生成预订凭证二维码
package qrcode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"
)

const (
	// DefaultSize 凭证二维码边长（像素）
	DefaultSize = 200

	dataURLPrefix = "data:image/png;base64,"
	receiptScheme = "BOOKING"
)

// ErrInvalidDataURL 不是 PNG Data URL
var ErrInvalidDataURL = errors.New("qrcode: not a png data url")

// Encoder 凭证二维码编码器
type Encoder struct {
	size  int
	level qrcode.RecoveryLevel
}

// NewEncoder 创建编码器，size 非正时使用默认边长
// 凭证会被打印或截图，使用 High 纠错级别
func NewEncoder(size int) *Encoder {
	if size <= 0 {
		size = DefaultSize
	}
	return &Encoder{size: size, level: qrcode.High}
}

// ReceiptContent 凭证二维码内容：BOOKING|预订号|入住日期
func ReceiptContent(bookingNo string, checkIn time.Time) string {
	return strings.Join([]string{receiptScheme, bookingNo, checkIn.Format("2006-01-02")}, "|")
}

// ParseReceiptContent 解析凭证二维码内容，前台核验时使用
func ParseReceiptContent(content string) (bookingNo string, checkIn time.Time, err error) {
	parts := strings.Split(content, "|")
	if len(parts) != 3 || parts[0] != receiptScheme || parts[1] == "" {
		return "", time.Time{}, fmt.Errorf("qrcode: unexpected receipt content %q", content)
	}
	checkIn, err = time.Parse("2006-01-02", parts[2])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("qrcode: bad check-in date: %w", err)
	}
	return parts[1], checkIn, nil
}

// PNG 生成 PNG 图片
func (e *Encoder) PNG(content string) ([]byte, error) {
	if content == "" {
		return nil, errors.New("qrcode: empty content")
	}
	data, err := qrcode.Encode(content, e.level, e.size)
	if err != nil {
		return nil, fmt.Errorf("创建二维码失败: %w", err)
	}
	return data, nil
}

// DataURL 生成可直接嵌入页面的 Data URL
func (e *Encoder) DataURL(content string) (string, error) {
	data, err := e.PNG(content)
	if err != nil {
		return "", err
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeDataURL 取回 Data URL 中的 PNG 数据
func DecodeDataURL(url string) ([]byte, error) {
	if !strings.HasPrefix(url, dataURLPrefix) {
		return nil, ErrInvalidDataURL
	}
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(url, dataURLPrefix))
}
