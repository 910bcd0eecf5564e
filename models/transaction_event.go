package models

import "time"

// 审计事件类型常量
const (
	TransactionEventCreated  = "created"
	TransactionEventUpdated  = "updated"
	TransactionEventDeleted  = "deleted"
	TransactionEventRestored = "restored"
)

// TransactionEvent 交易审计事件，追加写入、永不修改
//
// 每次交易状态变更（创建/修改/删除/恢复）在同一个数据库事务内写入一行，
// 记录变更前后的完整快照和变更字段列表，是核对余额正确性的最终依据。
// 没有 UpdatedAt / DeletedAt：审计行在正常流程中不允许被编辑或删除。
type TransactionEvent struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	TransactionID uint      `json:"transaction_id" gorm:"index;not null"`
	BudgetID      uint      `json:"budget_id" gorm:"index;not null"`
	EventType     string    `json:"event_type" gorm:"size:20;not null"`
	OldValues     string    `json:"old_values" gorm:"type:json"`
	NewValues     string    `json:"new_values" gorm:"type:json"`
	ChangedFields string    `json:"changed_fields" gorm:"size:500"`
	ActorID       uint      `json:"actor_id" gorm:"index"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName 设置表名
func (TransactionEvent) TableName() string {
	return "transaction_events"
}

// GetTransactionEventTypes 获取所有审计事件类型
func GetTransactionEventTypes() []string {
	return []string{
		TransactionEventCreated,
		TransactionEventUpdated,
		TransactionEventDeleted,
		TransactionEventRestored,
	}
}
