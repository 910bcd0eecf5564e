package service

import (
	"encoding/json"
	"strings"

	"envelope/models"

	"gorm.io/gorm"
)

// transactionSnapshot 写入审计事件 old_values/new_values 的交易快照
// 金额统一格式化为两位小数字符串，避免 JSON 浮点精度问题
type transactionSnapshot struct {
	TransactionType string  `json:"transaction_type"`
	Amount          string  `json:"amount"`
	TransactionDate string  `json:"transaction_date"`
	Description     string  `json:"description"`
	FromEnvelopeID  *uint   `json:"from_envelope_id"`
	ToEnvelopeID    *uint   `json:"to_envelope_id"`
	IncomeSourceID  *uint   `json:"income_source_id"`
	PayeeID         *uint   `json:"payee_id"`
	IsCleared       bool    `json:"is_cleared"`
	IsDeleted       bool    `json:"is_deleted"`
	DeletedAt       *string `json:"deleted_at"`
	DeletedBy       *uint   `json:"deleted_by"`
}

// makeSnapshot 从交易行生成快照
func makeSnapshot(txn *models.Transaction) *transactionSnapshot {
	if txn == nil {
		return nil
	}
	snap := &transactionSnapshot{
		TransactionType: txn.TransactionType,
		Amount:          txn.Amount.StringFixed(2),
		TransactionDate: txn.TransactionDate.Format("2006-01-02"),
		Description:     txn.Description,
		FromEnvelopeID:  txn.FromEnvelopeID,
		ToEnvelopeID:    txn.ToEnvelopeID,
		IncomeSourceID:  txn.IncomeSourceID,
		PayeeID:         txn.PayeeID,
		IsCleared:       txn.IsCleared,
		IsDeleted:       txn.IsDeleted,
		DeletedBy:       txn.DeletedBy,
	}
	if txn.DeletedAt != nil {
		s := txn.DeletedAt.Format("2006-01-02 15:04:05")
		snap.DeletedAt = &s
	}
	return snap
}

// snapshotJSON 快照序列化，nil 快照（创建事件的 old_values）序列化为 null
func snapshotJSON(snap *transactionSnapshot) string {
	if snap == nil {
		return "null"
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return "null"
	}
	return string(data)
}

// changedFields 比较两个快照，返回发生变化的字段名列表
func changedFields(before, after *transactionSnapshot) []string {
	if before == nil || after == nil {
		return nil
	}
	var fields []string
	if before.TransactionType != after.TransactionType {
		fields = append(fields, "transaction_type")
	}
	if before.Amount != after.Amount {
		fields = append(fields, "amount")
	}
	if before.TransactionDate != after.TransactionDate {
		fields = append(fields, "transaction_date")
	}
	if before.Description != after.Description {
		fields = append(fields, "description")
	}
	if !uintPtrEqual(before.FromEnvelopeID, after.FromEnvelopeID) {
		fields = append(fields, "from_envelope_id")
	}
	if !uintPtrEqual(before.ToEnvelopeID, after.ToEnvelopeID) {
		fields = append(fields, "to_envelope_id")
	}
	if !uintPtrEqual(before.IncomeSourceID, after.IncomeSourceID) {
		fields = append(fields, "income_source_id")
	}
	if !uintPtrEqual(before.PayeeID, after.PayeeID) {
		fields = append(fields, "payee_id")
	}
	if before.IsCleared != after.IsCleared {
		fields = append(fields, "is_cleared")
	}
	if before.IsDeleted != after.IsDeleted {
		fields = append(fields, "is_deleted")
	}
	if !strPtrEqual(before.DeletedAt, after.DeletedAt) {
		fields = append(fields, "deleted_at")
	}
	if !uintPtrEqual(before.DeletedBy, after.DeletedBy) {
		fields = append(fields, "deleted_by")
	}
	return fields
}

func uintPtrEqual(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// recordTransactionEvent 追加一条审计事件
// 必须在余额变更所属的同一个 gorm 事务内调用：审计写入失败会让整个操作回滚，
// 保证余额变更和审计记录永不分叉。
func recordTransactionEvent(tx *gorm.DB, eventType string, actorID uint, before, after *models.Transaction) error {
	var (
		transactionID uint
		budgetID      uint
	)
	if after != nil {
		transactionID = after.ID
		budgetID = after.BudgetID
	} else if before != nil {
		transactionID = before.ID
		budgetID = before.BudgetID
	}

	oldSnap := makeSnapshot(before)
	newSnap := makeSnapshot(after)

	event := models.TransactionEvent{
		TransactionID: transactionID,
		BudgetID:      budgetID,
		EventType:     eventType,
		OldValues:     snapshotJSON(oldSnap),
		NewValues:     snapshotJSON(newSnap),
		ChangedFields: strings.Join(changedFields(oldSnap, newSnap), ","),
		ActorID:       actorID,
	}

	if err := tx.Create(&event).Error; err != nil {
		return &StoreError{Op: "写入审计事件", Err: err}
	}
	return nil
}
