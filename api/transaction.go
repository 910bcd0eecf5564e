package api

import (
	"strconv"
	"time"

	"envelope/database"
	"envelope/middleware"
	"envelope/models"
	"envelope/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TransactionHandler 交易处理器
// 所有写操作都交给账本引擎（service.LedgerService），这里只做参数解析和错误映射
type TransactionHandler struct{}

// NewTransactionHandler 创建交易处理器
func NewTransactionHandler() *TransactionHandler {
	return &TransactionHandler{}
}

// CreateTransactionRequest 创建交易请求
// 金额接受 JSON 数字或字符串，服务端按两位小数校验
type CreateTransactionRequest struct {
	BudgetID        uint            `json:"budget_id" binding:"required" example:"1"`
	TransactionType string          `json:"transaction_type" binding:"required" example:"expense"` // income/allocation/expense/debt_payment/transfer
	Amount          decimal.Decimal `json:"amount" swaggertype:"number" example:"99.99"`
	TransactionDate string          `json:"transaction_date" binding:"required" example:"2024-01-15"`
	Description     string          `json:"description" example:"午餐"`
	FromEnvelopeID  *uint           `json:"from_envelope_id" example:"2"`
	ToEnvelopeID    *uint           `json:"to_envelope_id" example:"3"`
	IncomeSourceID  *uint           `json:"income_source_id" example:"1"`
	PayeeID         *uint           `json:"payee_id" example:"5"`
	IsCleared       bool            `json:"is_cleared" example:"false"`
}

// UpdateTransactionRequest 更新交易请求
// 未出现的字段保持不变；set_references 为 true 时四个引用字段整组替换
// （修改交易类型时必须同时给出与新类型匹配的引用组合）
type UpdateTransactionRequest struct {
	TransactionType *string          `json:"transaction_type" example:"expense"`
	Amount          *decimal.Decimal `json:"amount" swaggertype:"number" example:"88.00"`
	TransactionDate *string          `json:"transaction_date" example:"2024-01-16"`
	Description     *string          `json:"description" example:"晚餐"`
	IsCleared       *bool            `json:"is_cleared" example:"true"`
	SetReferences   bool             `json:"set_references" example:"false"`
	FromEnvelopeID  *uint            `json:"from_envelope_id" example:"2"`
	ToEnvelopeID    *uint            `json:"to_envelope_id" example:"3"`
	IncomeSourceID  *uint            `json:"income_source_id" example:"1"`
	PayeeID         *uint            `json:"payee_id" example:"5"`
}

// TransactionListRequest 交易列表请求
type TransactionListRequest struct {
	BudgetID        uint   `form:"budget_id" binding:"required" example:"1"`
	Page            int    `form:"page" example:"1"`
	PageSize        int    `form:"page_size" example:"10"`
	TransactionType string `form:"transaction_type" example:"expense"`
	EnvelopeID      uint   `form:"envelope_id" example:"2"`
	StartDate       string `form:"start_date" example:"2024-01-01"`
	EndDate         string `form:"end_date" example:"2024-12-31"`
	IncludeDeleted  bool   `form:"include_deleted" example:"false"`
}

// parseTransactionDate 解析交易日期，允许未来日期（收入可预先排期）
func parseTransactionDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Create 创建交易
// @Summary 创建交易
// @Description 创建一笔交易并应用余额效果。五种类型各自要求固定的引用字段组合：
// @Description - income: income_source_id，资金池 +amount
// @Description - allocation: to_envelope_id，资金池 -amount、信封 +amount
// @Description - expense / debt_payment: from_envelope_id + payee_id，信封 -amount
// @Description - transfer: from_envelope_id + to_envelope_id（不可相同），转出 -amount、转入 +amount
// @Description 信封允许透支为负，引擎不会拒绝超支。
// @Tags 交易
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "交易信息"
// @Success 200 {object} Response{data=models.Transaction} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "关联实体不存在"
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	date, ok := parseTransactionDate(req.TransactionDate)
	if !ok {
		BadRequest(c, "日期格式错误，应为: 2006-01-02")
		return
	}

	ledger := service.NewLedgerService(database.DB)
	txn, err := ledger.CreateTransaction(req.BudgetID, userID, &service.TransactionInput{
		TransactionType: req.TransactionType,
		Amount:          req.Amount,
		TransactionDate: date,
		Description:     req.Description,
		FromEnvelopeID:  req.FromEnvelopeID,
		ToEnvelopeID:    req.ToEnvelopeID,
		IncomeSourceID:  req.IncomeSourceID,
		PayeeID:         req.PayeeID,
		IsCleared:       req.IsCleared,
	})
	if err != nil {
		FailWithLedgerError(c, err, "创建交易失败")
		return
	}

	SuccessWithMessage(c, "创建成功", txn)
}

// List 获取交易列表
// @Summary 获取交易列表
// @Description 获取预算账本下的交易列表，支持分页和筛选。默认只返回活跃交易，
// @Description include_deleted=true 时额外返回软删除的交易（这种视图不可用于计算余额）。
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param budget_id query int true "预算账本ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param transaction_type query string false "类型筛选"
// @Param envelope_id query int false "信封筛选（转入或转出）"
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Param include_deleted query bool false "是否包含已删除交易" default(false)
// @Success 200 {object} Response{data=PageResponse{list=[]models.Transaction}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算账本不存在"
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if _, ok := findBudget(c, req.BudgetID); !ok {
		return
	}

	// 默认分页参数
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	query := database.DB.Model(&models.Transaction{}).Where("budget_id = ?", req.BudgetID)

	// 默认排除软删除交易，需要显式传 include_deleted=true 才能看到
	if !req.IncludeDeleted {
		query = query.Where("is_deleted = ?", false)
	}

	if req.TransactionType != "" {
		query = query.Where("transaction_type = ?", req.TransactionType)
	}
	if req.EnvelopeID > 0 {
		query = query.Where("from_envelope_id = ? OR to_envelope_id = ?", req.EnvelopeID, req.EnvelopeID)
	}
	if req.StartDate != "" {
		if t, ok := parseTransactionDate(req.StartDate); ok {
			query = query.Where("transaction_date >= ?", t)
		}
	}
	if req.EndDate != "" {
		if t, ok := parseTransactionDate(req.EndDate); ok {
			// 包含结束日期当天
			t = t.Add(24*time.Hour - time.Second)
			query = query.Where("transaction_date <= ?", t)
		}
	}

	var total int64
	query.Count(&total)

	var transactions []models.Transaction
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("transaction_date DESC, id DESC").
		Offset(offset).Limit(req.PageSize).Find(&transactions).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     transactions,
	})
}

// Get 获取单笔交易
// @Summary 获取单笔交易
// @Description 根据ID获取交易详情（包含已软删除的交易）
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Success 200 {object} Response{data=models.Transaction} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "交易不存在"
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var txn models.Transaction
	if err := database.DB.
		Joins("JOIN budgets ON budgets.id = transactions.budget_id").
		Where("transactions.id = ? AND budgets.user_id = ?", id, userID).
		First(&txn).Error; err != nil {
		NotFound(c, "交易不存在")
		return
	}

	Success(c, txn)
}

// Update 更新交易
// @Summary 更新交易
// @Description 更新一笔交易：引擎先冲正旧的余额效果，再应用新的效果，整个替换原子完成。
// @Description 已软删除的交易不允许修改，需先恢复。
// @Tags 交易
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Param request body UpdateTransactionRequest true "交易信息"
// @Success 200 {object} Response{data=models.Transaction} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "交易不存在"
// @Failure 409 {object} Response "交易已被删除"
// @Router /api/v1/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	patch := &service.TransactionPatch{
		TransactionType: req.TransactionType,
		Amount:          req.Amount,
		Description:     req.Description,
		IsCleared:       req.IsCleared,
		SetReferences:   req.SetReferences,
		FromEnvelopeID:  req.FromEnvelopeID,
		ToEnvelopeID:    req.ToEnvelopeID,
		IncomeSourceID:  req.IncomeSourceID,
		PayeeID:         req.PayeeID,
	}
	if req.TransactionDate != nil {
		date, ok := parseTransactionDate(*req.TransactionDate)
		if !ok {
			BadRequest(c, "日期格式错误，应为: 2006-01-02")
			return
		}
		patch.TransactionDate = &date
	}

	ledger := service.NewLedgerService(database.DB)
	txn, err := ledger.UpdateTransaction(uint(id), userID, patch)
	if err != nil {
		FailWithLedgerError(c, err, "更新交易失败")
		return
	}

	SuccessWithMessage(c, "更新成功", txn)
}

// Delete 软删除交易
// @Summary 软删除交易
// @Description 软删除一笔交易：冲正余额效果并打删除标记，可通过恢复接口撤销。
// @Description 重复删除返回 409，不会产生二次冲正。
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Success 200 {object} Response{data=models.Transaction} "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "交易不存在"
// @Failure 409 {object} Response "交易已处于删除状态"
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	ledger := service.NewLedgerService(database.DB)
	txn, err := ledger.SoftDeleteTransaction(uint(id), userID)
	if err != nil {
		FailWithLedgerError(c, err, "删除交易失败")
		return
	}

	SuccessWithMessage(c, "删除成功", txn)
}

// Restore 恢复交易
// @Summary 恢复软删除的交易
// @Description 恢复一笔软删除的交易：重新应用原始余额效果并清除删除标记。
// @Description 交易本就处于活跃状态时返回 409。
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Success 200 {object} Response{data=models.Transaction} "恢复成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "交易不存在"
// @Failure 409 {object} Response "交易未被删除"
// @Router /api/v1/transactions/{id}/restore [post]
func (h *TransactionHandler) Restore(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	ledger := service.NewLedgerService(database.DB)
	txn, err := ledger.RestoreTransaction(uint(id), userID)
	if err != nil {
		FailWithLedgerError(c, err, "恢复交易失败")
		return
	}

	SuccessWithMessage(c, "恢复成功", txn)
}

// ListEvents 获取交易审计事件
// @Summary 获取交易审计事件
// @Description 按时间顺序返回一笔交易的全部审计事件（created/updated/deleted/restored），
// @Description 每条事件带变更前后的完整快照，可用于核对余额没有漂移。
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Success 200 {object} Response{data=[]models.TransactionEvent} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "交易不存在"
// @Router /api/v1/transactions/{id}/events [get]
func (h *TransactionHandler) ListEvents(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var txn models.Transaction
	if err := database.DB.
		Joins("JOIN budgets ON budgets.id = transactions.budget_id").
		Where("transactions.id = ? AND budgets.user_id = ?", id, userID).
		First(&txn).Error; err != nil {
		NotFound(c, "交易不存在")
		return
	}

	var events []models.TransactionEvent
	if err := database.DB.Where("transaction_id = ?", txn.ID).
		Order("id ASC").Find(&events).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, events)
}
