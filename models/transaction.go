package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// 交易类型常量
const (
	TransactionTypeIncome      = "income"       // 收入：进入待分配资金池
	TransactionTypeAllocation  = "allocation"   // 分配：资金池 -> 信封
	TransactionTypeExpense     = "expense"      // 支出：信封 -> 收款方
	TransactionTypeDebtPayment = "debt_payment" // 还款：信封 -> 收款方
	TransactionTypeTransfer    = "transfer"     // 转账：信封 -> 信封
)

// 每种交易类型允许的关联字段组合见 service/validator.go

// Transaction 交易模型，账本的唯一变更单元
//
// 软删除不使用 gorm.DeletedAt：删除/恢复必须经过账本引擎的冲正逻辑
// （先反向应用余额效果再打标记），is_deleted 等字段只允许引擎写入。
type Transaction struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	BudgetID        uint            `json:"budget_id" gorm:"index;not null"`
	TransactionType string          `json:"transaction_type" gorm:"size:20;not null;index"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	TransactionDate time.Time       `json:"transaction_date" gorm:"not null;index"`
	Description     string          `json:"description" gorm:"size:255"`
	FromEnvelopeID  *uint           `json:"from_envelope_id,omitempty" gorm:"index"`
	ToEnvelopeID    *uint           `json:"to_envelope_id,omitempty" gorm:"index"`
	IncomeSourceID  *uint           `json:"income_source_id,omitempty" gorm:"index"`
	PayeeID         *uint           `json:"payee_id,omitempty" gorm:"index"`
	IsCleared       bool            `json:"is_cleared" gorm:"default:false"`
	IsDeleted       bool            `json:"is_deleted" gorm:"default:false;index"`
	DeletedAt       *time.Time      `json:"deleted_at,omitempty"`
	DeletedBy       *uint           `json:"deleted_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Budget          Budget          `json:"-" gorm:"foreignKey:BudgetID"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}

// GetTransactionTypes 获取所有交易类型
func GetTransactionTypes() []string {
	return []string{
		TransactionTypeIncome,
		TransactionTypeAllocation,
		TransactionTypeExpense,
		TransactionTypeDebtPayment,
		TransactionTypeTransfer,
	}
}
