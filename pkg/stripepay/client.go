// Package stripepay 提供银行卡支付渠道（Stripe）SDK 封装
package stripepay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// 支付渠道事件类型
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// 交易状态
const (
	StatusSucceeded = "succeeded"
)

var (
	// ErrInvalidSignature 回调签名校验失败
	ErrInvalidSignature = errors.New("stripepay: invalid webhook signature")
	// ErrInvalidPayload 回调签名有效但内容无法解析
	ErrInvalidPayload = errors.New("stripepay: invalid webhook payload")
	// ErrCallFailed 调用支付渠道失败（网络、超时、渠道报错）
	ErrCallFailed = errors.New("stripepay: provider call failed")
)

// Config 支付渠道配置
type Config struct {
	SecretKey     string
	WebhookSecret string
	Timeout       time.Duration
	// BaseURL 仅测试时覆盖
	BaseURL string
}

// Intent 支付意图
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

// Transaction 渠道侧交易详情
type Transaction struct {
	ID        string
	Status    string
	Amount    int64
	Currency  string
	ChargeID  string
	CardLast4 string
	CardBrand string
}

// Refund 退款结果
type Refund struct {
	ID     string
	Status string
}

// Event 已验签的回调事件
type Event struct {
	ID             string
	Type           string
	IntentID       string
	FailureMessage string
}

// CreateIntentRequest 创建支付意图请求
type CreateIntentRequest struct {
	Amount         int64 // 最小货币单位，例如美分
	Currency       string
	Metadata       map[string]string
	IdempotencyKey string
}

// RefundRequest 退款请求
type RefundRequest struct {
	IntentID       string
	Amount         int64 // 最小货币单位
	IdempotencyKey string
}

// Provider 支付渠道接口
type Provider interface {
	CreatePaymentIntent(ctx context.Context, req *CreateIntentRequest) (*Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
	RetrieveTransaction(ctx context.Context, id string) (*Transaction, error)
	CreateRefund(ctx context.Context, req *RefundRequest) (*Refund, error)
	ConstructEvent(payload []byte, signatureHeader string) (*Event, error)
}

// Client 基于 stripe-go 的渠道客户端
type Client struct {
	config *Config
	api    *client.API
}

// NewClient 创建支付渠道客户端
func NewClient(config *Config) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	backendConfig := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if config.BaseURL != "" {
		backendConfig.URL = stripe.String(config.BaseURL)
	}

	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig),
	}

	return &Client{
		config: config,
		api:    client.New(config.SecretKey, backends),
	}
}

// CreatePaymentIntent 创建支付意图
func (c *Client) CreatePaymentIntent(ctx context.Context, req *CreateIntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, wrapCallError("create payment intent", err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

// RetrieveIntent 查询支付意图，用于复用已有意图的 client_secret
func (c *Client) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := c.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, wrapCallError("retrieve payment intent", err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

// RetrieveTransaction 查询交易详情（含卡信息）
func (c *Client) RetrieveTransaction(ctx context.Context, id string) (*Transaction, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("latest_charge")

	pi, err := c.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, wrapCallError("retrieve transaction", err)
	}

	tx := &Transaction{
		ID:       pi.ID,
		Status:   string(pi.Status),
		Amount:   pi.Amount,
		Currency: string(pi.Currency),
	}
	if ch := pi.LatestCharge; ch != nil {
		tx.ChargeID = ch.ID
		if ch.PaymentMethodDetails != nil && ch.PaymentMethodDetails.Card != nil {
			tx.CardLast4 = ch.PaymentMethodDetails.Card.Last4
			tx.CardBrand = string(ch.PaymentMethodDetails.Card.Brand)
		}
	}
	return tx, nil
}

// CreateRefund 发起退款
func (c *Client) CreateRefund(ctx context.Context, req *RefundRequest) (*Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.IntentID),
		Amount:        stripe.Int64(req.Amount),
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	r, err := c.api.Refunds.New(params)
	if err != nil {
		return nil, wrapCallError("create refund", err)
	}
	return &Refund{ID: r.ID, Status: string(r.Status)}, nil
}

// ConstructEvent 校验签名并解析回调事件
func (c *Client) ConstructEvent(payload []byte, signatureHeader string) (*Event, error) {
	return ParseEvent(payload, signatureHeader, c.config.WebhookSecret)
}

// ParseEvent 使用共享密钥校验签名并解析事件
func ParseEvent(payload []byte, signatureHeader, secret string) (*Event, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	out := &Event{ID: evt.ID, Type: string(evt.Type)}
	if evt.Data == nil || len(evt.Data.Raw) == 0 {
		return out, nil
	}

	switch out.Type {
	case EventPaymentSucceeded, EventPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(evt.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("%w: decode payment intent: %v", ErrInvalidPayload, err)
		}
		out.IntentID = pi.ID
		if pi.LastPaymentError != nil {
			out.FailureMessage = pi.LastPaymentError.Msg
		}
	}
	return out, nil
}

// isSignatureError 判断是否为签名头缺失、格式错误、签名不符或过期
func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}

// wrapCallError 统一包装为 ErrCallFailed，保留渠道错误信息
func wrapCallError(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return fmt.Errorf("%w: %s: %s (%s)", ErrCallFailed, op, stripeErr.Msg, stripeErr.Code)
	}
	return fmt.Errorf("%w: %s: %v", ErrCallFailed, op, err)
}
