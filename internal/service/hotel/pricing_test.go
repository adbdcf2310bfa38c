package hotel

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRates_Quote(t *testing.T) {
	rates := DefaultRates()

	tests := []struct {
		name                      string
		price                     string
		nights                    int
		subtotal, fee, tax, total string
	}{
		{"100元三晚", "100", 3, "300.00", "8.40", "4.92", "313.32"},
		{"150元三晚", "150", 3, "450.00", "12.60", "7.38", "469.98"},
		{"单晚", "89.90", 1, "89.90", "2.52", "1.47", "93.89"},
		{"免费房间", "0", 2, "0.00", "0.00", "0.00", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := rates.Quote(decimal.RequireFromString(tt.price), tt.nights)
			v := q.View()
			assert.Equal(t, tt.subtotal, v.Subtotal)
			assert.Equal(t, tt.fee, v.ServiceFee)
			assert.Equal(t, tt.tax, v.Taxes)
			assert.Equal(t, tt.total, v.Total)
			assert.Equal(t, tt.nights, v.Nights)
		})
	}
}

func TestRates_Quote_TotalIsExactSum(t *testing.T) {
	q := DefaultRates().Quote(decimal.RequireFromString("99.99"), 7)

	// 保存完整精度，总价等于三项之和
	assert.True(t, q.Total.Equal(q.Subtotal.Add(q.ServiceFee).Add(q.Taxes)))
	assert.Equal(t, "19.59804", q.ServiceFee.String())
	assert.Equal(t, "11.478852", q.Taxes.String())
	assert.Equal(t, "731.006892", q.Total.String())
	assert.Equal(t, "731.01", q.View().Total)
}
