package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	validation := NewValidationError("amount", "金额必须大于 0")
	notFound := &NotFoundError{Entity: "envelope", ID: 7}
	conflict := &ConflictError{Message: "交易已处于删除状态"}
	store := &StoreError{Op: "创建交易", Err: errors.New("connection refused")}

	assert.True(t, IsValidation(validation))
	assert.False(t, IsValidation(notFound))

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(conflict))

	assert.True(t, IsConflict(conflict))
	assert.False(t, IsConflict(store))

	// 包装后依然能识别
	wrapped := fmt.Errorf("处理请求: %w", notFound)
	assert.True(t, IsNotFound(wrapped))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "amount: 金额必须大于 0", NewValidationError("amount", "金额必须大于 0").Error())
	assert.Equal(t, "信封不存在: id=7", (&NotFoundError{Entity: "envelope", ID: 7}).Error())
	assert.Equal(t, "预算账本不存在: id=1", (&NotFoundError{Entity: "budget", ID: 1}).Error())
}

func TestStoreErrorUnwrap(t *testing.T) {
	inner := errors.New("driver: bad connection")
	store := &StoreError{Op: "更新资金池", Err: inner}
	assert.ErrorIs(t, store, inner)
	assert.Contains(t, store.Error(), "更新资金池失败")
}
