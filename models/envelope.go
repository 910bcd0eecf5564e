package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 信封类型常量，只影响客户端的提醒展示，不影响账本规则
const (
	EnvelopeTypeRegular = "regular" // 常规支出信封
	EnvelopeTypeSavings = "savings" // 储蓄信封
	EnvelopeTypeDebt    = "debt"    // 债务信封
)

// Envelope 信封模型
// CurrentBalance 是缓存余额，由账本引擎随交易增量维护，
// 始终可以通过活跃交易的带符号效果求和复核（见 service/reconcile.go）。
// 允许为负：引擎不阻止超支，只做超支追踪。
type Envelope struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	BudgetID       uint            `json:"budget_id" gorm:"index;not null"`
	CategoryID     *uint           `json:"category_id,omitempty" gorm:"index"`
	Name           string          `json:"name" gorm:"size:50;not null"`
	Type           string          `json:"type" gorm:"size:20;not null;default:regular"`
	CurrentBalance decimal.Decimal `json:"current_balance" gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `json:"-" gorm:"index"`
	Budget         Budget          `json:"-" gorm:"foreignKey:BudgetID"`
	Category       *Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// TableName 设置表名
func (Envelope) TableName() string {
	return "envelopes"
}

// GetEnvelopeTypes 获取所有信封类型
func GetEnvelopeTypes() []string {
	return []string{
		EnvelopeTypeRegular,
		EnvelopeTypeSavings,
		EnvelopeTypeDebt,
	}
}

// IsValidEnvelopeType 校验信封类型是否合法
func IsValidEnvelopeType(t string) bool {
	for _, v := range GetEnvelopeTypes() {
		if v == t {
			return true
		}
	}
	return false
}
