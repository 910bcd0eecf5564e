package models

import (
	"time"

	"gorm.io/gorm"
)

// IncomeSource 收入来源模型
// 钱进入系统（income）时的来源标识，本身不持有余额
type IncomeSource struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	BudgetID  uint           `json:"budget_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"size:50;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	Budget    Budget         `json:"-" gorm:"foreignKey:BudgetID"`
}

// TableName 设置表名
func (IncomeSource) TableName() string {
	return "income_sources"
}
