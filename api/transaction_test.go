package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"envelope/config"
	"envelope/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTransactionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	h := NewTransactionHandler()
	router.POST("/transactions", h.Create)
	router.GET("/transactions", h.List)
	router.DELETE("/transactions/:id", h.Delete)
	router.POST("/transactions/:id/restore", h.Restore)
	return router
}

func activeBudgetRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "name", "available_amount", "created_at", "updated_at", "deleted_at"}).
		AddRow(1, 1, "家庭账本", "1000.00", time.Now(), time.Now(), nil)
}

func storedTransactionRows(isDeleted bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "budget_id", "transaction_type", "amount", "transaction_date", "description",
		"from_envelope_id", "to_envelope_id", "income_source_id", "payee_id",
		"is_cleared", "is_deleted", "deleted_at", "deleted_by", "created_at", "updated_at",
	}).AddRow(10, 1, "expense", "80.00", time.Date(2024, 1, 15, 0, 0, 0, 0, time.Local), "超市",
		2, nil, nil, 3, false, isDeleted, nil, nil, time.Now(), time.Now())
}

func TestTransactionHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testAuthConfig()
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `budgets` .*FOR UPDATE").
		WillReturnRows(activeBudgetRows())
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `income_sources`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec("UPDATE `budgets` SET `available_amount`=available_amount \\+ .*").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `transaction_events`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := setupTransactionRouter()
	body := `{"budget_id":1,"transaction_type":"income","amount":1000,"transaction_date":"2024-01-01","description":"一月工资","income_source_id":1}`
	req := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Message string             `json:"message"`
		Data    models.Transaction `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "创建成功", resp.Message)
	assert.Equal(t, uint(10), resp.Data.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Create_ShapeViolation(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testAuthConfig()
	defer func() { config.GlobalConfig = nil }()

	// income 带 payee_id，校验层直接拒绝，不产生任何数据库访问
	router := setupTransactionRouter()
	body := `{"budget_id":1,"transaction_type":"income","amount":100,"transaction_date":"2024-01-01","income_source_id":1,"payee_id":3}`
	req := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Create_BadDate(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testAuthConfig()
	defer func() { config.GlobalConfig = nil }()

	router := setupTransactionRouter()
	body := `{"budget_id":1,"transaction_type":"income","amount":100,"transaction_date":"01/15/2024","income_source_id":1}`
	req := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "日期格式错误")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Delete_AlreadyDeletedMapsTo409(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testAuthConfig()
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `transactions` JOIN budgets .*FOR UPDATE").
		WillReturnRows(storedTransactionRows(true))
	mock.ExpectRollback()

	router := setupTransactionRouter()
	req := httptest.NewRequest("DELETE", "/transactions/10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 409, w.Code)
	assert.Contains(t, w.Body.String(), "删除状态")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Restore_ActiveMapsTo409(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testAuthConfig()
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `transactions` JOIN budgets .*FOR UPDATE").
		WillReturnRows(storedTransactionRows(false))
	mock.ExpectRollback()

	router := setupTransactionRouter()
	req := httptest.NewRequest("POST", "/transactions/10/restore", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 409, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Delete_NotFoundMapsTo404(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testAuthConfig()
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `transactions` JOIN budgets .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	router := setupTransactionRouter()
	req := httptest.NewRequest("DELETE", "/transactions/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_List(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testAuthConfig()
	defer func() { config.GlobalConfig = nil }()

	// 预算归属校验
	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WillReturnRows(activeBudgetRows())
	// COUNT + 分页查询
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(storedTransactionRows(false))

	router := setupTransactionRouter()
	req := httptest.NewRequest("GET", "/transactions?budget_id=1&page=1&page_size=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Data struct {
			Total int64                `json:"total"`
			List  []models.Transaction `json:"list"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Data.Total)
	require.Len(t, resp.Data.List, 1)
	assert.Equal(t, "expense", resp.Data.List[0].TransactionType)
	require.NoError(t, mock.ExpectationsWereMet())
}
