package service

import (
	"testing"

	"envelope/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// book 内存账本，按余额效果逐笔推演，模拟引擎在数据库里做的增量
type book struct {
	pool      decimal.Decimal
	envelopes map[uint]decimal.Decimal
}

func newBook() *book {
	return &book{pool: decimal.Zero, envelopes: make(map[uint]decimal.Decimal)}
}

func (b *book) apply(txn *models.Transaction, effect BalanceEffect) {
	b.pool = b.pool.Add(effect.BudgetDelta)
	if txn.FromEnvelopeID != nil {
		b.envelopes[*txn.FromEnvelopeID] = b.envelopes[*txn.FromEnvelopeID].Add(effect.FromEnvelopeDelta)
	}
	if txn.ToEnvelopeID != nil {
		b.envelopes[*txn.ToEnvelopeID] = b.envelopes[*txn.ToEnvelopeID].Add(effect.ToEnvelopeDelta)
	}
}

func (b *book) post(txn *models.Transaction) {
	b.apply(txn, ComputeBalanceEffect(txn))
}

func (b *book) reverse(txn *models.Transaction) {
	b.apply(txn, ComputeBalanceEffect(txn).Reversed())
}

func income(amount string) *models.Transaction {
	return &models.Transaction{
		TransactionType: models.TransactionTypeIncome,
		Amount:          dec(amount),
		IncomeSourceID:  uintPtr(1),
	}
}

func allocation(amount string, to uint) *models.Transaction {
	return &models.Transaction{
		TransactionType: models.TransactionTypeAllocation,
		Amount:          dec(amount),
		ToEnvelopeID:    &to,
	}
}

func expense(amount string, from uint) *models.Transaction {
	return &models.Transaction{
		TransactionType: models.TransactionTypeExpense,
		Amount:          dec(amount),
		FromEnvelopeID:  &from,
		PayeeID:         uintPtr(3),
	}
}

func transfer(amount string, from, to uint) *models.Transaction {
	return &models.Transaction{
		TransactionType: models.TransactionTypeTransfer,
		Amount:          dec(amount),
		FromEnvelopeID:  &from,
		ToEnvelopeID:    &to,
	}
}

func TestFlow_IncomeThenAllocation(t *testing.T) {
	b := newBook()

	b.post(income("3000.00"))
	assert.True(t, b.pool.Equal(dec("3000.00")))

	b.post(allocation("500.00", 1))
	assert.True(t, b.pool.Equal(dec("2500.00")))
	assert.True(t, b.envelopes[1].Equal(dec("500.00")))
}

func TestFlow_OverdraftAllowed(t *testing.T) {
	b := newBook()
	b.post(income("500.00"))
	b.post(allocation("500.00", 1))

	// 超支不被拒绝，信封余额转负
	b.post(expense("700.00", 1))
	assert.True(t, b.envelopes[1].Equal(dec("-200.00")))
}

func TestFlow_TransferMovesBetweenEnvelopes(t *testing.T) {
	b := newBook()
	b.post(income("1000.00"))
	b.post(allocation("1000.00", 1))

	b.post(transfer("300.00", 1, 2))
	assert.True(t, b.envelopes[1].Equal(dec("700.00")))
	assert.True(t, b.envelopes[2].Equal(dec("300.00")))
	// 转账不动资金池
	assert.True(t, b.pool.IsZero())
}

func TestFlow_SoftDeleteReversal(t *testing.T) {
	b := newBook()
	b.post(income("1000.00"))
	b.post(allocation("1000.00", 1))

	exp := expense("200.00", 1)
	b.post(exp)
	assert.True(t, b.envelopes[1].Equal(dec("800.00")))

	// 软删除冲正后信封回到删除前的余额
	b.reverse(exp)
	assert.True(t, b.envelopes[1].Equal(dec("1000.00")))
}

func TestFlow_DeleteRestoreRoundTrip(t *testing.T) {
	b := newBook()
	b.post(income("3000.00"))
	b.post(allocation("800.00", 1))
	txn := transfer("250.00", 1, 2)
	b.post(txn)

	poolBefore := b.pool
	e1Before := b.envelopes[1]
	e2Before := b.envelopes[2]

	// 删除再恢复，所有余额与删除前完全一致
	b.reverse(txn)
	b.post(txn)

	assert.True(t, b.pool.Equal(poolBefore))
	assert.True(t, b.envelopes[1].Equal(e1Before))
	assert.True(t, b.envelopes[2].Equal(e2Before))
}

func TestFlow_ZeroSumInvariant(t *testing.T) {
	b := newBook()

	txns := []*models.Transaction{
		income("3000.00"),
		allocation("1200.00", 1),
		allocation("600.00", 2),
		expense("450.50", 1),
		transfer("100.00", 2, 1),
		{
			TransactionType: models.TransactionTypeDebtPayment,
			Amount:          dec("200.00"),
			FromEnvelopeID:  uintPtr(2),
			PayeeID:         uintPtr(5),
		},
	}
	for _, txn := range txns {
		b.post(txn)
	}

	// 资金池 + Σ信封 == Σ收入 − Σ(支出+还款)
	envelopeTotal := decimal.Zero
	for _, v := range b.envelopes {
		envelopeTotal = envelopeTotal.Add(v)
	}
	left := b.pool.Add(envelopeTotal)
	right := dec("3000.00").Sub(dec("450.50")).Sub(dec("200.00"))
	assert.True(t, left.Equal(right), "left=%s right=%s", left, right)
}
