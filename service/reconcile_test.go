package service

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumRows(v string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"sum"}).AddRow(v)
}

func TestReconcileBudget_Consistent(t *testing.T) {
	ledger, mock, cleanup := setupLedgerDB(t)
	defer cleanup()

	// 账面：收入 1000，分配 600，支出 150，还款 50
	// 资金池应为 400，信封合计应为 400（600 进，200 出）
	// 零和：400 + 400 == 1000 - 150 - 50
	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "available_amount", "created_at", "updated_at", "deleted_at"}).
			AddRow(1, 1, "家庭账本", "400.00", time.Now(), time.Now(), nil))

	// 按类型求和：income / allocation / expense / debt_payment
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `transactions`").
		WillReturnRows(sumRows("1000.00"))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `transactions`").
		WillReturnRows(sumRows("600.00"))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `transactions`").
		WillReturnRows(sumRows("150.00"))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `transactions`").
		WillReturnRows(sumRows("50.00"))

	// 两个信封
	mock.ExpectQuery("SELECT .* FROM `envelopes`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "budget_id", "category_id", "name", "type", "current_balance", "created_at", "updated_at", "deleted_at"}).
			AddRow(2, 1, nil, "餐饮", "regular", "250.00", time.Now(), time.Now(), nil).
			AddRow(3, 1, nil, "房租", "regular", "150.00", time.Now(), time.Now(), nil))

	// 逐信封重算
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(CASE WHEN to_envelope_id = .*").
		WillReturnRows(sumRows("250.00"))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(CASE WHEN to_envelope_id = .*").
		WillReturnRows(sumRows("150.00"))

	report, err := ledger.ReconcileBudget(1, 1)
	require.NoError(t, err)

	assert.True(t, report.AvailableDrift.IsZero())
	assert.True(t, report.ComputedAvailable.Equal(dec("400.00")))
	require.Len(t, report.Envelopes, 2)
	assert.True(t, report.Envelopes[0].Drift.IsZero())
	assert.True(t, report.Envelopes[1].Drift.IsZero())
	assert.True(t, report.ZeroSumHolds)
	assert.True(t, report.Consistent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileBudget_DetectsDrift(t *testing.T) {
	ledger, mock, cleanup := setupLedgerDB(t)
	defer cleanup()

	// 缓存的资金池是 500，但按交易重算只有 400
	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "available_amount", "created_at", "updated_at", "deleted_at"}).
			AddRow(1, 1, "家庭账本", "500.00", time.Now(), time.Now(), nil))

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `transactions`").
		WillReturnRows(sumRows("1000.00"))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `transactions`").
		WillReturnRows(sumRows("600.00"))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `transactions`").
		WillReturnRows(sumRows("0"))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `transactions`").
		WillReturnRows(sumRows("0"))

	mock.ExpectQuery("SELECT .* FROM `envelopes`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "budget_id", "category_id", "name", "type", "current_balance", "created_at", "updated_at", "deleted_at"}).
			AddRow(2, 1, nil, "餐饮", "regular", "600.00", time.Now(), time.Now(), nil))

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(CASE WHEN to_envelope_id = .*").
		WillReturnRows(sumRows("600.00"))

	report, err := ledger.ReconcileBudget(1, 1)
	require.NoError(t, err)

	assert.True(t, report.AvailableDrift.Equal(dec("100.00")))
	assert.False(t, report.Consistent)
	// 零和基于重算值检查，信封没有漂移时依然成立
	assert.True(t, report.ZeroSumHolds)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileBudget_NotFound(t *testing.T) {
	ledger, mock, cleanup := setupLedgerDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := ledger.ReconcileBudget(42, 1)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
