package service

import (
	"envelope/models"
)

// 每种交易类型的合法字段组合：必填引用之外的引用字段一律禁止。
// 例如 income 只允许 income_source_id，带上任何信封或收款方都判为非法。
type typeShape struct {
	required  []string
	forbidden []string
}

var typeShapes = map[string]typeShape{
	models.TransactionTypeIncome: {
		required:  []string{"income_source_id"},
		forbidden: []string{"from_envelope_id", "to_envelope_id", "payee_id"},
	},
	models.TransactionTypeAllocation: {
		required:  []string{"to_envelope_id"},
		forbidden: []string{"from_envelope_id", "income_source_id", "payee_id"},
	},
	models.TransactionTypeExpense: {
		required:  []string{"from_envelope_id", "payee_id"},
		forbidden: []string{"to_envelope_id", "income_source_id"},
	},
	models.TransactionTypeDebtPayment: {
		required:  []string{"from_envelope_id", "payee_id"},
		forbidden: []string{"to_envelope_id", "income_source_id"},
	},
	models.TransactionTypeTransfer: {
		required:  []string{"from_envelope_id", "to_envelope_id"},
		forbidden: []string{"income_source_id", "payee_id"},
	},
}

// ValidateTransaction 校验交易的结构合法性
// 在计算任何余额效果之前调用，失败时不会写入任何状态。
// 余额不做检查：信封允许为负（超支追踪而非超支阻止）。
func ValidateTransaction(txn *models.Transaction) error {
	shape, ok := typeShapes[txn.TransactionType]
	if !ok {
		return NewValidationError("transaction_type", "未知的交易类型: "+txn.TransactionType)
	}

	if !txn.Amount.IsPositive() {
		return NewValidationError("amount", "金额必须大于 0")
	}
	// 固定两位小数的货币精度
	if txn.Amount.Exponent() < -2 {
		return NewValidationError("amount", "金额最多保留两位小数")
	}

	// 日期必须有效，允许未来日期（收入可以预先排期）
	if txn.TransactionDate.IsZero() {
		return NewValidationError("transaction_date", "交易日期不能为空")
	}

	for _, field := range shape.required {
		if refField(txn, field) == nil {
			return NewValidationError(field, typeLabel(txn.TransactionType)+"交易必须指定 "+field)
		}
	}
	for _, field := range shape.forbidden {
		if refField(txn, field) != nil {
			return NewValidationError(field, typeLabel(txn.TransactionType)+"交易不允许指定 "+field)
		}
	}

	if txn.TransactionType == models.TransactionTypeTransfer &&
		txn.FromEnvelopeID != nil && txn.ToEnvelopeID != nil &&
		*txn.FromEnvelopeID == *txn.ToEnvelopeID {
		return NewValidationError("to_envelope_id", "转账的转出信封和转入信封不能相同")
	}

	return nil
}

// refField 按字段名取交易的引用字段
func refField(txn *models.Transaction, field string) *uint {
	switch field {
	case "from_envelope_id":
		return txn.FromEnvelopeID
	case "to_envelope_id":
		return txn.ToEnvelopeID
	case "income_source_id":
		return txn.IncomeSourceID
	case "payee_id":
		return txn.PayeeID
	}
	return nil
}

// typeLabel 交易类型中文名
func typeLabel(transactionType string) string {
	switch transactionType {
	case models.TransactionTypeIncome:
		return "收入"
	case models.TransactionTypeAllocation:
		return "分配"
	case models.TransactionTypeExpense:
		return "支出"
	case models.TransactionTypeDebtPayment:
		return "还款"
	case models.TransactionTypeTransfer:
		return "转账"
	default:
		return transactionType
	}
}
