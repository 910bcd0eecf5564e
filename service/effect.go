package service

import (
	"envelope/models"

	"github.com/shopspring/decimal"
)

// BalanceEffect 一笔交易对各余额的带符号变动（Δ 为交易金额）
//
//	类型          资金池   转出信封  转入信封
//	income        +Δ      —        —
//	allocation    -Δ      —        +Δ
//	expense       —       -Δ       —
//	debt_payment  —       -Δ       —
//	transfer      —       -Δ       +Δ
//
// 余额维护用显式的纯函数而不是数据库触发器，
// 可以脱离存储引擎单独测试，并在交易写入的同一个数据库事务内同步应用。
type BalanceEffect struct {
	BudgetDelta       decimal.Decimal // 预算资金池变动
	FromEnvelopeDelta decimal.Decimal // 转出信封变动
	ToEnvelopeDelta   decimal.Decimal // 转入信封变动
}

// ComputeBalanceEffect 计算交易的余额效果
func ComputeBalanceEffect(txn *models.Transaction) BalanceEffect {
	amount := txn.Amount
	switch txn.TransactionType {
	case models.TransactionTypeIncome:
		return BalanceEffect{BudgetDelta: amount}
	case models.TransactionTypeAllocation:
		return BalanceEffect{BudgetDelta: amount.Neg(), ToEnvelopeDelta: amount}
	case models.TransactionTypeExpense, models.TransactionTypeDebtPayment:
		return BalanceEffect{FromEnvelopeDelta: amount.Neg()}
	case models.TransactionTypeTransfer:
		return BalanceEffect{FromEnvelopeDelta: amount.Neg(), ToEnvelopeDelta: amount}
	}
	return BalanceEffect{}
}

// Reversed 返回反向效果，软删除时用来冲正原交易
func (e BalanceEffect) Reversed() BalanceEffect {
	return BalanceEffect{
		BudgetDelta:       e.BudgetDelta.Neg(),
		FromEnvelopeDelta: e.FromEnvelopeDelta.Neg(),
		ToEnvelopeDelta:   e.ToEnvelopeDelta.Neg(),
	}
}

// IsZero 三个变动是否全为零
func (e BalanceEffect) IsZero() bool {
	return e.BudgetDelta.IsZero() && e.FromEnvelopeDelta.IsZero() && e.ToEnvelopeDelta.IsZero()
}
