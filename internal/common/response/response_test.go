package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSuccess(t *testing.T) {
	c, w := newContext()
	Success(c, gin.H{"available": true})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, map[string]interface{}{"available": true}, resp.Data)
}

func TestCreated(t *testing.T) {
	c, w := newContext()
	Created(c, gin.H{"id": 1})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "created", decode(t, w).Message)
}

func TestSuccessPage(t *testing.T) {
	c, w := newContext()
	SuccessPage(c, []int{1, 2}, 17, 2, 15)

	resp := decode(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(17), data["total"])
	assert.Equal(t, float64(2), data["page"])
	assert.Equal(t, float64(15), data["page_size"])
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		fn         func(c *gin.Context)
		wantStatus int
		wantCode   int
	}{
		{"业务错误", func(c *gin.Context) { Error(c, http.StatusConflict, 8007, "预订无法取消") }, http.StatusConflict, 8007},
		{"参数错误", func(c *gin.Context) { BadRequest(c, "bad") }, http.StatusBadRequest, 400},
		{"校验失败", func(c *gin.Context) { ValidationFailed(c, "invalid") }, http.StatusUnprocessableEntity, 422},
		{"未登录", func(c *gin.Context) { Unauthorized(c, "") }, http.StatusUnauthorized, 401},
		{"无权限", func(c *gin.Context) { Forbidden(c, "") }, http.StatusForbidden, 403},
		{"不存在", func(c *gin.Context) { NotFound(c, "") }, http.StatusNotFound, 404},
		{"内部错误", func(c *gin.Context) { InternalError(c, "") }, http.StatusInternalServerError, 500},
		{"限流", func(c *gin.Context) { TooManyRequests(c, "") }, http.StatusTooManyRequests, 429},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newContext()
			tt.fn(c)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decode(t, w).Code)
		})
	}
}

func TestErrorWithData(t *testing.T) {
	c, w := newContext()
	ErrorWithData(c, http.StatusOK, 6004, "已取消，退款将由人工处理", gin.H{"status": "cancelled"})

	resp := decode(t, w)
	assert.Equal(t, 6004, resp.Code)
	assert.NotNil(t, resp.Data)
}
