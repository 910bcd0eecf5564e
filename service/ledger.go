package service

import (
	"errors"
	"time"

	"envelope/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerService 账本引擎
//
// 所有会影响余额的交易变更（创建/修改/软删除/恢复）都必须经过这里。
// 每个操作在一个 gorm 事务内完成：校验 -> 余额效果 -> 交易行 -> 审计事件，
// 任何一步失败整体回滚，余额和审计永远一致。
//
// 并发控制：预算行（创建时）或交易行连同预算行（其余操作）SELECT ... FOR UPDATE，
// 同一预算内的余额变更串行执行，不同预算互不阻塞。余额增量用
// UPDATE ... SET x = x + ? 原子应用，杜绝丢失更新。
type LedgerService struct {
	db *gorm.DB
}

// NewLedgerService 创建账本引擎
func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// TransactionInput 创建交易的输入
type TransactionInput struct {
	TransactionType string
	Amount          decimal.Decimal
	TransactionDate time.Time
	Description     string
	FromEnvelopeID  *uint
	ToEnvelopeID    *uint
	IncomeSourceID  *uint
	PayeeID         *uint
	IsCleared       bool
}

// TransactionPatch 修改交易的输入，nil 字段表示不修改
// 四个引用字段整组替换：SetReferences 为 true 时以补丁中的四个引用为准
// （修改交易类型时必须整组给出新的引用组合）
type TransactionPatch struct {
	TransactionType *string
	Amount          *decimal.Decimal
	TransactionDate *time.Time
	Description     *string
	IsCleared       *bool
	SetReferences   bool
	FromEnvelopeID  *uint
	ToEnvelopeID    *uint
	IncomeSourceID  *uint
	PayeeID         *uint
}

// CreateTransaction 创建交易并应用余额效果
// 校验失败返回 ValidationError，关联实体不在预算内返回 NotFoundError，
// 全部写入（交易行 + 余额变更 + 审计事件）在同一事务内完成。
func (s *LedgerService) CreateTransaction(budgetID, actorID uint, in *TransactionInput) (*models.Transaction, error) {
	txn := &models.Transaction{
		BudgetID:        budgetID,
		TransactionType: in.TransactionType,
		Amount:          in.Amount,
		TransactionDate: in.TransactionDate,
		Description:     in.Description,
		FromEnvelopeID:  in.FromEnvelopeID,
		ToEnvelopeID:    in.ToEnvelopeID,
		IncomeSourceID:  in.IncomeSourceID,
		PayeeID:         in.PayeeID,
		IsCleared:       in.IsCleared,
	}

	// 结构校验在任何写入之前完成
	if err := ValidateTransaction(txn); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockBudget(tx, budgetID, actorID); err != nil {
			return err
		}
		if err := verifyReferences(tx, txn); err != nil {
			return err
		}
		if err := tx.Create(txn).Error; err != nil {
			return &StoreError{Op: "创建交易", Err: err}
		}
		if err := applyEffect(tx, txn, ComputeBalanceEffect(txn)); err != nil {
			return err
		}
		return recordTransactionEvent(tx, models.TransactionEventCreated, actorID, nil, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// UpdateTransaction 修改交易
// 等价于"先冲正旧效果，再应用新效果"，但保留交易身份和审计链，
// 整个替换在一个事务内原子完成。已软删除的交易不允许修改（ConflictError）。
func (s *LedgerService) UpdateTransaction(id, actorID uint, patch *TransactionPatch) (*models.Transaction, error) {
	var updated models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		txn, err := lockTransaction(tx, id, actorID)
		if err != nil {
			return err
		}
		if txn.IsDeleted {
			return &ConflictError{Message: "交易已被删除，恢复后才能修改"}
		}

		before := *txn
		applyPatch(txn, patch)

		if err := ValidateTransaction(txn); err != nil {
			return err
		}
		if err := verifyReferences(tx, txn); err != nil {
			return err
		}

		// 先冲正旧效果再应用新效果，两步与交易行更新同属一个事务
		if err := applyEffect(tx, &before, ComputeBalanceEffect(&before).Reversed()); err != nil {
			return err
		}
		if err := applyEffect(tx, txn, ComputeBalanceEffect(txn)); err != nil {
			return err
		}

		if err := tx.Save(txn).Error; err != nil {
			return &StoreError{Op: "更新交易", Err: err}
		}
		if err := recordTransactionEvent(tx, models.TransactionEventUpdated, actorID, &before, txn); err != nil {
			return err
		}
		updated = *txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SoftDeleteTransaction 软删除交易（ACTIVE -> DELETED）
// 冲正余额效果并打删除标记，写入 deleted 审计事件。
// 重复删除返回 ConflictError，不产生任何余额变更和审计事件。
func (s *LedgerService) SoftDeleteTransaction(id, actorID uint) (*models.Transaction, error) {
	var deleted models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		txn, err := lockTransaction(tx, id, actorID)
		if err != nil {
			return err
		}
		if txn.IsDeleted {
			return &ConflictError{Message: "交易已处于删除状态"}
		}

		before := *txn
		now := time.Now()
		txn.IsDeleted = true
		txn.DeletedAt = &now
		txn.DeletedBy = &actorID

		if err := applyEffect(tx, txn, ComputeBalanceEffect(txn).Reversed()); err != nil {
			return err
		}

		res := tx.Model(&models.Transaction{}).Where("id = ?", txn.ID).Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": now,
			"deleted_by": actorID,
		})
		if res.Error != nil {
			return &StoreError{Op: "删除交易", Err: res.Error}
		}

		if err := recordTransactionEvent(tx, models.TransactionEventDeleted, actorID, &before, txn); err != nil {
			return err
		}
		deleted = *txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// RestoreTransaction 恢复软删除的交易（DELETED -> ACTIVE）
// 重新应用原始余额效果并清除删除标记，写入 restored 审计事件。
// 交易本就处于活跃状态时返回 ConflictError。
func (s *LedgerService) RestoreTransaction(id, actorID uint) (*models.Transaction, error) {
	var restored models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		txn, err := lockTransaction(tx, id, actorID)
		if err != nil {
			return err
		}
		if !txn.IsDeleted {
			return &ConflictError{Message: "交易未被删除，无需恢复"}
		}

		before := *txn
		txn.IsDeleted = false
		txn.DeletedAt = nil
		txn.DeletedBy = nil

		if err := applyEffect(tx, txn, ComputeBalanceEffect(txn)); err != nil {
			return err
		}

		res := tx.Model(&models.Transaction{}).Where("id = ?", txn.ID).Updates(map[string]interface{}{
			"is_deleted": false,
			"deleted_at": nil,
			"deleted_by": nil,
		})
		if res.Error != nil {
			return &StoreError{Op: "恢复交易", Err: res.Error}
		}

		if err := recordTransactionEvent(tx, models.TransactionEventRestored, actorID, &before, txn); err != nil {
			return err
		}
		restored = *txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &restored, nil
}

// lockBudget 按调用者范围锁定预算行（FOR UPDATE）
// 这是同一预算内余额变更的串行化点，也顺带完成预算归属校验
func lockBudget(tx *gorm.DB, budgetID, userID uint) error {
	var budget models.Budget
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", budgetID, userID).
		First(&budget).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: "budget", ID: budgetID}
	}
	if err != nil {
		return &StoreError{Op: "锁定预算", Err: err}
	}
	return nil
}

// lockTransaction 按调用者范围锁定交易行和所属预算行（FOR UPDATE）
func lockTransaction(tx *gorm.DB, id, userID uint) (*models.Transaction, error) {
	var txn models.Transaction
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Joins("JOIN budgets ON budgets.id = transactions.budget_id").
		Where("transactions.id = ? AND budgets.user_id = ?", id, userID).
		First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "transaction", ID: id}
	}
	if err != nil {
		return nil, &StoreError{Op: "锁定交易", Err: err}
	}
	return &txn, nil
}

// verifyReferences 校验交易引用的实体都存在且属于同一预算
func verifyReferences(tx *gorm.DB, txn *models.Transaction) error {
	if txn.FromEnvelopeID != nil {
		if err := checkReference(tx, &models.Envelope{}, "envelope", *txn.FromEnvelopeID, txn.BudgetID); err != nil {
			return err
		}
	}
	if txn.ToEnvelopeID != nil {
		if err := checkReference(tx, &models.Envelope{}, "envelope", *txn.ToEnvelopeID, txn.BudgetID); err != nil {
			return err
		}
	}
	if txn.IncomeSourceID != nil {
		if err := checkReference(tx, &models.IncomeSource{}, "income_source", *txn.IncomeSourceID, txn.BudgetID); err != nil {
			return err
		}
	}
	if txn.PayeeID != nil {
		if err := checkReference(tx, &models.Payee{}, "payee", *txn.PayeeID, txn.BudgetID); err != nil {
			return err
		}
	}
	return nil
}

// checkReference 实体存在性校验
func checkReference(tx *gorm.DB, model interface{}, entity string, id, budgetID uint) error {
	var count int64
	if err := tx.Model(model).Where("id = ? AND budget_id = ?", id, budgetID).Count(&count).Error; err != nil {
		return &StoreError{Op: "校验关联实体", Err: err}
	}
	if count == 0 {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

// applyEffect 把余额效果原子地应用到预算资金池和相关信封
// 增量用 UPDATE ... SET x = x + ? 表达式完成，配合预算行锁保证并发正确
func applyEffect(tx *gorm.DB, txn *models.Transaction, effect BalanceEffect) error {
	if !effect.BudgetDelta.IsZero() {
		res := tx.Model(&models.Budget{}).Where("id = ?", txn.BudgetID).
			UpdateColumn("available_amount", gorm.Expr("available_amount + ?", effect.BudgetDelta))
		if res.Error != nil {
			return &StoreError{Op: "更新资金池", Err: res.Error}
		}
		if res.RowsAffected == 0 {
			return &NotFoundError{Entity: "budget", ID: txn.BudgetID}
		}
	}
	if txn.FromEnvelopeID != nil && !effect.FromEnvelopeDelta.IsZero() {
		if err := bumpEnvelope(tx, *txn.FromEnvelopeID, effect.FromEnvelopeDelta); err != nil {
			return err
		}
	}
	if txn.ToEnvelopeID != nil && !effect.ToEnvelopeDelta.IsZero() {
		if err := bumpEnvelope(tx, *txn.ToEnvelopeID, effect.ToEnvelopeDelta); err != nil {
			return err
		}
	}
	return nil
}

// bumpEnvelope 信封余额原子增量
func bumpEnvelope(tx *gorm.DB, envelopeID uint, delta decimal.Decimal) error {
	res := tx.Model(&models.Envelope{}).Where("id = ?", envelopeID).
		UpdateColumn("current_balance", gorm.Expr("current_balance + ?", delta))
	if res.Error != nil {
		return &StoreError{Op: "更新信封余额", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "envelope", ID: envelopeID}
	}
	return nil
}

// applyPatch 把补丁合并到交易行
func applyPatch(txn *models.Transaction, patch *TransactionPatch) {
	if patch.TransactionType != nil {
		txn.TransactionType = *patch.TransactionType
	}
	if patch.Amount != nil {
		txn.Amount = *patch.Amount
	}
	if patch.TransactionDate != nil {
		txn.TransactionDate = *patch.TransactionDate
	}
	if patch.Description != nil {
		txn.Description = *patch.Description
	}
	if patch.IsCleared != nil {
		txn.IsCleared = *patch.IsCleared
	}
	if patch.SetReferences {
		txn.FromEnvelopeID = patch.FromEnvelopeID
		txn.ToEnvelopeID = patch.ToEnvelopeID
		txn.IncomeSourceID = patch.IncomeSourceID
		txn.PayeeID = patch.PayeeID
	}
}
