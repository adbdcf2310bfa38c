// Package utils 提供通用工具函数
package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// GenerateOrderNo 生成业务单号：前缀 + 时间戳 + 6 位随机数，例如 BK20250601120000123456
func GenerateOrderNo(prefix string, now time.Time) string {
	return fmt.Sprintf("%s%s%s", prefix, now.UTC().Format("20060102150405"), GenerateRandomNumber(6))
}

// GenerateRandomNumber 生成指定长度的随机数字字符串
func GenerateRandomNumber(length int) string {
	var result strings.Builder
	for i := 0; i < length; i++ {
		n, _ := rand.Int(rand.Reader, big.NewInt(10))
		result.WriteString(strconv.Itoa(int(n.Int64())))
	}
	return result.String()
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail 验证邮箱格式
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// FormatMoney 金额保留两位小数用于展示
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ToMinorUnits 转换为最小货币单位（分），四舍五入
func ToMinorUnits(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromMinorUnits 最小货币单位转换为金额
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// StringPtr 返回字符串指针
func StringPtr(s string) *string {
	return &s
}

// Int64Ptr 返回 int64 指针
func Int64Ptr(i int64) *int64 {
	return &i
}

// TimePtr 返回时间指针
func TimePtr(t time.Time) *time.Time {
	return &t
}

// SafeString 安全获取字符串值
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Unique 去重并保持顺序
func Unique[T comparable](slice []T) []T {
	seen := make(map[T]struct{}, len(slice))
	result := make([]T, 0, len(slice))
	for _, item := range slice {
		if _, ok := seen[item]; !ok {
			seen[item] = struct{}{}
			result = append(result, item)
		}
	}
	return result
}
