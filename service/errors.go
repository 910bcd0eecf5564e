package service

import (
	"errors"
	"fmt"
)

// 账本引擎错误分类：
//   ValidationError — 请求结构或字段不合法，任何状态都未写入
//   NotFoundError   — 关联实体不存在或不在调用者的预算范围内
//   ConflictError   — 状态机不允许的转换（重复删除、重复恢复、修改已删除交易）
//   StoreError      — 底层存储失败，整个操作已回滚
// api 层按此分类映射 HTTP 状态码（400/404/409/500）。

// ValidationError 校验错误，指明出错字段
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError 创建校验错误
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError 实体不存在错误
type NotFoundError struct {
	Entity string `json:"entity"`
	ID     uint   `json:"id"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s不存在: id=%d", entityName(e.Entity), e.ID)
}

// ConflictError 状态冲突错误
type ConflictError struct {
	Message string `json:"message"`
}

func (e *ConflictError) Error() string {
	return e.Message
}

// StoreError 存储层错误，包装底层 gorm / 驱动错误
type StoreError struct {
	Op  string // 出错的操作，如 "创建交易"
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s失败: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// entityName 实体标识转中文名，用于错误信息
func entityName(entity string) string {
	switch entity {
	case "budget":
		return "预算账本"
	case "envelope":
		return "信封"
	case "payee":
		return "收款方"
	case "income_source":
		return "收入来源"
	case "transaction":
		return "交易"
	default:
		return entity
	}
}

// IsValidation 判断是否为校验错误
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound 判断是否为实体不存在错误
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

// IsConflict 判断是否为状态冲突错误
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}
