package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/hotel-booking-backend/internal/common/clock"
	"github.com/dumeirei/hotel-booking-backend/internal/common/response"
	"github.com/dumeirei/hotel-booking-backend/internal/middleware"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	paymentService "github.com/dumeirei/hotel-booking-backend/internal/service/payment"
	"github.com/dumeirei/hotel-booking-backend/pkg/stripepay"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockProvider 支付渠道 mock
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreatePaymentIntent(ctx context.Context, req *stripepay.CreateIntentRequest) (*stripepay.Intent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripepay.Intent), args.Error(1)
}

func (m *MockProvider) RetrieveIntent(ctx context.Context, id string) (*stripepay.Intent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripepay.Intent), args.Error(1)
}

func (m *MockProvider) RetrieveTransaction(ctx context.Context, id string) (*stripepay.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripepay.Transaction), args.Error(1)
}

func (m *MockProvider) CreateRefund(ctx context.Context, req *stripepay.RefundRequest) (*stripepay.Refund, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripepay.Refund), args.Error(1)
}

func (m *MockProvider) ConstructEvent(payload []byte, header string) (*stripepay.Event, error) {
	args := m.Called(payload, header)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripepay.Event), args.Error(1)
}

type nopNotifier struct{}

func (nopNotifier) EnqueueBookingConfirmation(context.Context, int64, int64) error { return nil }

type testEnv struct {
	db       *gorm.DB
	provider *MockProvider
	router   *gin.Engine
	guest    *models.User
	booking  *models.Booking
}

// withActor 模拟认证中间件写入的上下文
func withActor(userID int64, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID > 0 {
			c.Set(middleware.ContextKeyUserID, userID)
			c.Set(middleware.ContextKeyRole, role)
		}
		c.Next()
	}
}

func setupEnv(t *testing.T, loggedIn bool) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	env := &testEnv{db: db, provider: &MockProvider{}}
	env.guest = &models.User{Name: "住客", Email: "guest@example.com", Role: models.RoleUser}
	require.NoError(t, db.Create(env.guest).Error)
	h := &models.Hotel{OwnerID: env.guest.ID, Name: "海景酒店", City: "厦门", Address: "环岛路1号", IsActive: true}
	require.NoError(t, db.Create(h).Error)
	room := &models.Room{HotelID: h.ID, Name: "201", Type: models.RoomTypeDouble, PricePerNight: decimal.NewFromInt(150), MaxGuests: 2, IsAvailable: true, IsActive: true}
	require.NoError(t, db.Create(room).Error)

	in := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	env.booking = &models.Booking{
		BookingNo: "BK202505201000001", UserID: env.guest.ID, RoomID: room.ID, HotelID: h.ID,
		CheckInDate: in, CheckOutDate: in.AddDate(0, 0, 3), TotalNights: 3,
		GuestName: "张三", GuestEmail: "guest@example.com", GuestPhone: "13800000000",
		GuestsCount: 2, RoomsCount: 1,
		PricePerNight: decimal.NewFromInt(150), Subtotal: decimal.NewFromInt(450),
		ServiceFee: decimal.RequireFromString("12.6"), Taxes: decimal.RequireFromString("7.38"),
		TotalAmount: decimal.RequireFromString("469.98"), Status: models.BookingStatusPending,
	}
	require.NoError(t, db.Create(env.booking).Error)

	svc := paymentService.NewPaymentService(
		db,
		repository.NewBookingRepository(db),
		repository.NewPaymentRepository(db),
		env.provider,
		nopNotifier{},
		clock.Fixed(time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)),
		paymentService.Options{},
	)
	handler := NewHandler(svc)

	r := gin.New()
	v1 := r.Group("/api/v1")
	handler.RegisterCallbackRoutes(v1)
	var actorID int64
	if loggedIn {
		actorID = env.guest.ID
	}
	handler.RegisterRoutes(v1.Group("", withActor(actorID, models.RoleUser)))
	env.router = r
	return env
}

func (e *testEnv) do(method, path string, body []byte, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandler_CreateIntentAndConfirm(t *testing.T) {
	env := setupEnv(t, true)

	env.provider.On("CreatePaymentIntent", mock.Anything, mock.MatchedBy(func(req *stripepay.CreateIntentRequest) bool {
		return req.Amount == 46998 && req.Currency == "usd"
	})).Return(&stripepay.Intent{ID: "pi_h1", ClientSecret: "pi_h1_secret", Status: "requires_payment_method"}, nil).Once()
	env.provider.On("RetrieveTransaction", mock.Anything, "pi_h1").Return(&stripepay.Transaction{
		ID: "pi_h1", Status: stripepay.StatusSucceeded, Amount: 46998, Currency: "usd",
		ChargeID: "ch_1", CardLast4: "4242", CardBrand: "visa",
	}, nil)

	body, _ := json.Marshal(map[string]int64{"booking_id": env.booking.ID})
	w := env.do(http.MethodPost, "/api/v1/payments/create-intent", body, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w).Data.(map[string]interface{})
	assert.Equal(t, "pi_h1_secret", data["client_secret"])
	assert.Equal(t, "469.98", data["amount"])

	w = env.do(http.MethodPost, "/api/v1/payments/confirm", []byte(`{"payment_intent_id":"pi_h1"}`), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode(t, w).Data.(map[string]interface{})
	assert.Equal(t, models.BookingStatusConfirmed, result["booking"].(map[string]interface{})["status"])
	assert.Equal(t, models.PaymentStatusSucceeded, result["payment"].(map[string]interface{})["status"])

	env.provider.AssertExpectations(t)
}

func TestHandler_CreateIntent(t *testing.T) {
	t.Run("未登录", func(t *testing.T) {
		env := setupEnv(t, false)
		w := env.do(http.MethodPost, "/api/v1/payments/create-intent", []byte(`{"booking_id":1}`), nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("缺少参数", func(t *testing.T) {
		env := setupEnv(t, true)
		w := env.do(http.MethodPost, "/api/v1/payments/create-intent", []byte(`{}`), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestHandler_Webhook(t *testing.T) {
	t.Run("签名无效返回 400", func(t *testing.T) {
		env := setupEnv(t, false)
		env.provider.On("ConstructEvent", mock.Anything, "t=1,v1=bad").Return(nil, stripepay.ErrInvalidSignature)

		w := env.do(http.MethodPost, "/api/v1/payments/webhook", []byte(`{}`), map[string]string{SignatureHeader: "t=1,v1=bad"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 6007, decode(t, w).Code)
	})

	t.Run("请求体过大", func(t *testing.T) {
		env := setupEnv(t, false)
		big := []byte(strings.Repeat("x", MaxWebhookBodySize+1))

		w := env.do(http.MethodPost, "/api/v1/payments/webhook", big, map[string]string{SignatureHeader: "sig"})
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		env.provider.AssertNotCalled(t, "ConstructEvent", mock.Anything, mock.Anything)
	})

	t.Run("支付成功回调确认预订", func(t *testing.T) {
		env := setupEnv(t, false)
		require.NoError(t, env.db.Create(&models.Payment{
			BookingID: env.booking.ID, UserID: env.guest.ID, PaymentIntentID: strPtr("pi_w1"),
			Amount: env.booking.TotalAmount, Currency: "usd", Status: models.PaymentStatusPending,
		}).Error)

		payload := []byte(`{"id":"evt_1"}`)
		env.provider.On("ConstructEvent", payload, "sig").Return(&stripepay.Event{
			ID: "evt_1", Type: stripepay.EventPaymentSucceeded, IntentID: "pi_w1",
		}, nil)
		env.provider.On("RetrieveTransaction", mock.Anything, "pi_w1").Return(&stripepay.Transaction{
			ID: "pi_w1", Status: stripepay.StatusSucceeded, Amount: 46998, CardLast4: "4242", CardBrand: "visa",
		}, nil)

		for i := 0; i < 2; i++ {
			w := env.do(http.MethodPost, "/api/v1/payments/webhook", payload, map[string]string{SignatureHeader: "sig"})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.JSONEq(t, `{"received":true}`, w.Body.String())
		}

		var booking models.Booking
		require.NoError(t, env.db.First(&booking, env.booking.ID).Error)
		assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
	})

	t.Run("未知事件类型直接确认", func(t *testing.T) {
		env := setupEnv(t, false)
		env.provider.On("ConstructEvent", mock.Anything, "sig").Return(&stripepay.Event{ID: "evt_2", Type: "charge.updated"}, nil)

		w := env.do(http.MethodPost, "/api/v1/payments/webhook", []byte(`{}`), map[string]string{SignatureHeader: "sig"})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func strPtr(s string) *string { return &s }
