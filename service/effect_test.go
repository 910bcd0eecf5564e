package service

import (
	"testing"

	"envelope/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint {
	return &v
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestComputeBalanceEffect(t *testing.T) {
	amount := dec("100.50")

	tests := []struct {
		name            string
		transactionType string
		wantBudget      string
		wantFrom        string
		wantTo          string
	}{
		{"收入进资金池", models.TransactionTypeIncome, "100.50", "0", "0"},
		{"分配从资金池到信封", models.TransactionTypeAllocation, "-100.50", "0", "100.50"},
		{"支出从信封扣减", models.TransactionTypeExpense, "0", "-100.50", "0"},
		{"还款与支出同向", models.TransactionTypeDebtPayment, "0", "-100.50", "0"},
		{"转账两边对冲", models.TransactionTypeTransfer, "0", "-100.50", "100.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effect := ComputeBalanceEffect(&models.Transaction{
				TransactionType: tt.transactionType,
				Amount:          amount,
			})
			assert.True(t, effect.BudgetDelta.Equal(dec(tt.wantBudget)), "BudgetDelta = %s", effect.BudgetDelta)
			assert.True(t, effect.FromEnvelopeDelta.Equal(dec(tt.wantFrom)), "FromEnvelopeDelta = %s", effect.FromEnvelopeDelta)
			assert.True(t, effect.ToEnvelopeDelta.Equal(dec(tt.wantTo)), "ToEnvelopeDelta = %s", effect.ToEnvelopeDelta)
		})
	}
}

func TestComputeBalanceEffectUnknownType(t *testing.T) {
	effect := ComputeBalanceEffect(&models.Transaction{
		TransactionType: "refund",
		Amount:          dec("10.00"),
	})
	assert.True(t, effect.IsZero())
}

func TestBalanceEffectReversed(t *testing.T) {
	// 冲正是对称操作：应用效果再应用反向效果，余额应回到原点
	for _, transactionType := range models.GetTransactionTypes() {
		effect := ComputeBalanceEffect(&models.Transaction{
			TransactionType: transactionType,
			Amount:          dec("33.33"),
		})
		reversed := effect.Reversed()

		assert.True(t, effect.BudgetDelta.Add(reversed.BudgetDelta).IsZero(), transactionType)
		assert.True(t, effect.FromEnvelopeDelta.Add(reversed.FromEnvelopeDelta).IsZero(), transactionType)
		assert.True(t, effect.ToEnvelopeDelta.Add(reversed.ToEnvelopeDelta).IsZero(), transactionType)

		// 二次反转恢复原效果
		twice := reversed.Reversed()
		assert.True(t, twice.BudgetDelta.Equal(effect.BudgetDelta), transactionType)
		assert.True(t, twice.FromEnvelopeDelta.Equal(effect.FromEnvelopeDelta), transactionType)
		assert.True(t, twice.ToEnvelopeDelta.Equal(effect.ToEnvelopeDelta), transactionType)
	}
}

func TestBalanceEffectZeroSum(t *testing.T) {
	// 分配和转账只在内部挪钱，资金池 + 信封的总和不变
	alloc := ComputeBalanceEffect(&models.Transaction{
		TransactionType: models.TransactionTypeAllocation,
		Amount:          dec("500.00"),
	})
	total := alloc.BudgetDelta.Add(alloc.FromEnvelopeDelta).Add(alloc.ToEnvelopeDelta)
	assert.True(t, total.IsZero())

	transfer := ComputeBalanceEffect(&models.Transaction{
		TransactionType: models.TransactionTypeTransfer,
		Amount:          dec("500.00"),
	})
	total = transfer.BudgetDelta.Add(transfer.FromEnvelopeDelta).Add(transfer.ToEnvelopeDelta)
	assert.True(t, total.IsZero())
}
