// Package hotel 提供酒店预订、可用性、定价与取消服务
package hotel

import (
	"github.com/shopspring/decimal"

	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
)

// Rates 服务费与税费费率
type Rates struct {
	ServiceFee decimal.Decimal
	Tax        decimal.Decimal
}

// DefaultRates 默认费率：服务费 2.8%，税费 1.64%
func DefaultRates() Rates {
	return Rates{
		ServiceFee: decimal.RequireFromString("0.028"),
		Tax:        decimal.RequireFromString("0.0164"),
	}
}

// Quote 报价，各项金额保持完整精度
type Quote struct {
	PricePerNight decimal.Decimal
	Nights        int
	Subtotal      decimal.Decimal
	ServiceFee    decimal.Decimal
	Taxes         decimal.Decimal
	Total         decimal.Decimal
}

// Quote 计算报价，总价为三项之和，不单独舍入
func (r Rates) Quote(pricePerNight decimal.Decimal, nights int) Quote {
	subtotal := pricePerNight.Mul(decimal.NewFromInt(int64(nights)))
	fee := subtotal.Mul(r.ServiceFee)
	tax := subtotal.Mul(r.Tax)
	return Quote{
		PricePerNight: pricePerNight,
		Nights:        nights,
		Subtotal:      subtotal,
		ServiceFee:    fee,
		Taxes:         tax,
		Total:         subtotal.Add(fee).Add(tax),
	}
}

// PricingView 展示用报价，金额保留两位小数
type PricingView struct {
	PricePerNight string `json:"price_per_night"`
	Nights        int    `json:"nights"`
	Subtotal      string `json:"subtotal"`
	ServiceFee    string `json:"service_fee"`
	Taxes         string `json:"taxes"`
	Total         string `json:"total_amount"`
}

// View 转换为展示格式
func (q Quote) View() PricingView {
	return PricingView{
		PricePerNight: utils.FormatMoney(q.PricePerNight),
		Nights:        q.Nights,
		Subtotal:      utils.FormatMoney(q.Subtotal),
		ServiceFee:    utils.FormatMoney(q.ServiceFee),
		Taxes:         utils.FormatMoney(q.Taxes),
		Total:         utils.FormatMoney(q.Total),
	}
}
