// Package handler 按业务域划分的 HTTP 处理器，具体实现位于 hotel、payment 子包
//
// swag init --dir ./internal/handler 需要该目录本身是合法的 Go 包
package handler
