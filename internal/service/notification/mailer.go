package notification

import (
	"bytes"
	"context"
	"text/template"

	"go.uber.org/zap"
)

// Message 邮件内容
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer 邮件发送
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// LogMailer 只记录日志的邮件实现，用于未接入邮件服务的环境
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer 创建日志邮件发送器
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger.Named("mailer")}
}

// Send 记录邮件内容
func (m *LogMailer) Send(_ context.Context, msg *Message) error {
	m.logger.Info("Mail sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(
	`{{.GuestName}}，您好：

您在 {{.HotelName}} 的预订已确认。
预订号：{{.BookingNo}}
房间：{{.RoomName}}
入住：{{.CheckIn}}  退房：{{.CheckOut}}（共 {{.Nights}} 晚）
入住人数：{{.Guests}}
支付金额：{{.Amount}} {{.Currency}}{{if .CardLast4}}（{{.CardBrand}} 尾号 {{.CardLast4}}）{{end}}
`))

var priceDropTmpl = template.Must(template.New("price_drop").Parse(
	`{{.UserName}}，您好：

您收藏的 {{.HotelName}} {{.RoomName}} 房间价格由 {{.OldPrice}} 降至 {{.NewPrice}}。
`))

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
