package models

import (
	"time"

	"gorm.io/gorm"
)

// Category 信封分类（后台维护，用于客户端分组展示）
type Category struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"size:50;not null;uniqueIndex"`
	Sort      int            `json:"sort" gorm:"default:0;index"`
	Color     string         `json:"color" gorm:"size:20;default:#64748b"` // 颜色代码，如 #ef4444
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (Category) TableName() string {
	return "categories"
}

// 默认信封分类常量
const (
	CategoryFixed   = "固定支出"
	CategoryDaily   = "日常开销"
	CategorySavings = "储蓄目标"
	CategoryDebt    = "债务偿还"
	CategoryFun     = "休闲娱乐"
	CategoryOther   = "其他"
)

// GetDefaultCategories 获取默认信封分类
func GetDefaultCategories() []string {
	return []string{
		CategoryFixed,
		CategoryDaily,
		CategorySavings,
		CategoryDebt,
		CategoryFun,
		CategoryOther,
	}
}
