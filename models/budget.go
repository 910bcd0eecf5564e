package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Budget 预算账本模型
// AvailableAmount 是"待分配资金池"：收入先进入资金池，再分配到各个信封。
// 该字段只允许账本引擎（service 包）在余额效果应用时修改，其他代码只读。
type Budget struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	UserID          uint            `json:"user_id" gorm:"index;not null"`
	Name            string          `json:"name" gorm:"size:50;not null"`
	AvailableAmount decimal.Decimal `json:"available_amount" gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `json:"-" gorm:"index"`
	User            User            `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Budget) TableName() string {
	return "budgets"
}
