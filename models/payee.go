package models

import (
	"time"

	"gorm.io/gorm"
)

// Payee 收款方模型
// 钱离开系统（expense / debt_payment）时的去向标识，本身不持有余额
type Payee struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	BudgetID  uint           `json:"budget_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"size:50;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	Budget    Budget         `json:"-" gorm:"foreignKey:BudgetID"`
}

// TableName 设置表名
func (Payee) TableName() string {
	return "payees"
}
