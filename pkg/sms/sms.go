// Package sms 提供短信通知发送
package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	dysmsapi "github.com/alibabacloud-go/dysmsapi-20170525/v3/client"
	"github.com/alibabacloud-go/tea/tea"
	"go.uber.org/zap"
)

// ErrInvalidPhone 手机号为空
var ErrInvalidPhone = errors.New("sms: empty phone number")

// Sender 短信发送接口
type Sender interface {
	Send(ctx context.Context, phone, templateCode string, params map[string]string) error
}

// Config 阿里云短信配置
type Config struct {
	AccessKeyID     string
	AccessKeySecret string
	SignName        string
	Endpoint        string
}

// AliyunSender 阿里云短信发送器
type AliyunSender struct {
	client   *dysmsapi.Client
	signName string
}

// NewAliyunSender 创建阿里云短信发送器
func NewAliyunSender(cfg *Config) (*AliyunSender, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "dysmsapi.aliyuncs.com"
	}

	client, err := dysmsapi.NewClient(&openapi.Config{
		AccessKeyId:     tea.String(cfg.AccessKeyID),
		AccessKeySecret: tea.String(cfg.AccessKeySecret),
		Endpoint:        tea.String(endpoint),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sms client: %w", err)
	}

	return &AliyunSender{client: client, signName: cfg.SignName}, nil
}

// Send 发送模板短信
func (s *AliyunSender) Send(ctx context.Context, phone, templateCode string, params map[string]string) error {
	if strings.TrimSpace(phone) == "" {
		return ErrInvalidPhone
	}
	templateParam, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode sms params: %w", err)
	}

	resp, err := s.client.SendSms(&dysmsapi.SendSmsRequest{
		PhoneNumbers:  tea.String(phone),
		SignName:      tea.String(s.signName),
		TemplateCode:  tea.String(templateCode),
		TemplateParam: tea.String(string(templateParam)),
	})
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	if resp.Body == nil || tea.StringValue(resp.Body.Code) != "OK" {
		msg := "unknown error"
		if resp.Body != nil {
			msg = tea.StringValue(resp.Body.Code) + " - " + tea.StringValue(resp.Body.Message)
		}
		return fmt.Errorf("sms send failed: %s", msg)
	}
	return nil
}

// LogSender 只记录日志的发送器，开发环境使用
type LogSender struct {
	logger *zap.Logger

	mu   sync.Mutex
	sent []Message
}

// Message 已发送的短信
type Message struct {
	Phone        string
	TemplateCode string
	Params       map[string]string
}

// NewLogSender 创建日志发送器
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send 记录短信内容
func (s *LogSender) Send(_ context.Context, phone, templateCode string, params map[string]string) error {
	if strings.TrimSpace(phone) == "" {
		return ErrInvalidPhone
	}
	s.mu.Lock()
	s.sent = append(s.sent, Message{Phone: phone, TemplateCode: templateCode, Params: params})
	s.mu.Unlock()

	s.logger.Info("SMS sent",
		zap.String("phone", MaskPhone(phone)),
		zap.String("template", templateCode),
		zap.Any("params", params),
	)
	return nil
}

// Sent 返回已发送的短信
func (s *LogSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}

// MaskPhone 手机号脱敏，保留前三位和后四位
func MaskPhone(phone string) string {
	if len(phone) < 7 {
		return phone
	}
	return phone[:3] + strings.Repeat("*", len(phone)-7) + phone[len(phone)-4:]
}
