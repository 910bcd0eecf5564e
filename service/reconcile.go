package service

import (
	"errors"

	"envelope/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EnvelopeDrift 单个信封的核对结果
type EnvelopeDrift struct {
	EnvelopeID      uint            `json:"envelope_id"`
	Name            string          `json:"name"`
	CachedBalance   decimal.Decimal `json:"cached_balance"`
	ComputedBalance decimal.Decimal `json:"computed_balance"`
	Drift           decimal.Decimal `json:"drift"`
}

// ReconcileReport 预算核对报告
//
// 缓存余额（budgets.available_amount / envelopes.current_balance）由引擎增量维护，
// 这里从活跃交易全量重算并比对，用于验证删除/恢复等操作没有造成余额漂移。
// ZeroSumHolds 检查零和不变式：
//
//	资金池 + Σ信封余额 == Σ收入 − Σ(支出+还款)
//
// 分配和转账在求和里互相抵消。
type ReconcileReport struct {
	BudgetID          uint            `json:"budget_id"`
	CachedAvailable   decimal.Decimal `json:"cached_available"`
	ComputedAvailable decimal.Decimal `json:"computed_available"`
	AvailableDrift    decimal.Decimal `json:"available_drift"`
	Envelopes         []EnvelopeDrift `json:"envelopes"`
	ZeroSumHolds      bool            `json:"zero_sum_holds"`
	Consistent        bool            `json:"consistent"`
}

// ReconcileBudget 核对一个预算账本
// 只读操作，不持有行锁；并发写入时结果只代表某个一致性快照。
func (s *LedgerService) ReconcileBudget(budgetID, userID uint) (*ReconcileReport, error) {
	var budget models.Budget
	err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "budget", ID: budgetID}
	}
	if err != nil {
		return nil, &StoreError{Op: "查询预算", Err: err}
	}

	totalIncome, err := s.sumByType(budgetID, models.TransactionTypeIncome)
	if err != nil {
		return nil, err
	}
	totalAllocation, err := s.sumByType(budgetID, models.TransactionTypeAllocation)
	if err != nil {
		return nil, err
	}
	totalExpense, err := s.sumByType(budgetID, models.TransactionTypeExpense)
	if err != nil {
		return nil, err
	}
	totalDebt, err := s.sumByType(budgetID, models.TransactionTypeDebtPayment)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{
		BudgetID:          budgetID,
		CachedAvailable:   budget.AvailableAmount,
		ComputedAvailable: totalIncome.Sub(totalAllocation),
	}
	report.AvailableDrift = report.CachedAvailable.Sub(report.ComputedAvailable)

	var envelopes []models.Envelope
	if err := s.db.Where("budget_id = ?", budgetID).Order("id ASC").Find(&envelopes).Error; err != nil {
		return nil, &StoreError{Op: "查询信封", Err: err}
	}

	consistent := report.AvailableDrift.IsZero()
	envelopeTotal := decimal.Zero
	for _, env := range envelopes {
		computed, err := s.RecomputeEnvelopeBalance(env.ID)
		if err != nil {
			return nil, err
		}
		drift := env.CurrentBalance.Sub(computed)
		report.Envelopes = append(report.Envelopes, EnvelopeDrift{
			EnvelopeID:      env.ID,
			Name:            env.Name,
			CachedBalance:   env.CurrentBalance,
			ComputedBalance: computed,
			Drift:           drift,
		})
		if !drift.IsZero() {
			consistent = false
		}
		envelopeTotal = envelopeTotal.Add(computed)
	}

	report.ZeroSumHolds = report.ComputedAvailable.Add(envelopeTotal).
		Equal(totalIncome.Sub(totalExpense).Sub(totalDebt))
	report.Consistent = consistent && report.ZeroSumHolds

	return report, nil
}

// RecomputeEnvelopeBalance 从活跃交易全量重算信封余额
// 转入方向计 +amount，转出方向计 -amount，软删除的交易不参与
func (s *LedgerService) RecomputeEnvelopeBalance(envelopeID uint) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(CASE WHEN to_envelope_id = ? THEN amount ELSE -amount END), 0)", envelopeID).
		Where("is_deleted = ? AND (from_envelope_id = ? OR to_envelope_id = ?)", false, envelopeID, envelopeID).
		Scan(&balance).Error
	if err != nil {
		return decimal.Zero, &StoreError{Op: "重算信封余额", Err: err}
	}
	return balance, nil
}

// sumByType 活跃交易按类型求和
func (s *LedgerService) sumByType(budgetID uint, transactionType string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("budget_id = ? AND transaction_type = ? AND is_deleted = ?", budgetID, transactionType, false).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, &StoreError{Op: "汇总交易金额", Err: err}
	}
	return total, nil
}
