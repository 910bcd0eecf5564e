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

// SummaryHandler 汇总统计处理器
type SummaryHandler struct{}

// NewSummaryHandler 创建汇总统计处理器
func NewSummaryHandler() *SummaryHandler {
	return &SummaryHandler{}
}

// DashboardResponse 仪表盘响应
type DashboardResponse struct {
	BudgetID           uint                 `json:"budget_id"`
	BudgetName         string               `json:"budget_name"`
	AvailableAmount    decimal.Decimal      `json:"available_amount"`
	EnvelopeTotal      decimal.Decimal      `json:"envelope_total"`
	Envelopes          []models.Envelope    `json:"envelopes"`
	NegativeEnvelopes  []models.Envelope    `json:"negative_envelopes"`
	MonthIncome        decimal.Decimal      `json:"month_income"`
	MonthExpense       decimal.Decimal      `json:"month_expense"`
	RecentTransactions []models.Transaction `json:"recent_transactions"`
}

// Dashboard 获取仪表盘数据
// @Summary 获取仪表盘数据
// @Description 获取预算账本的概览：待分配资金池、信封余额、透支信封、
// @Description 本月收支合计和最近交易。所有金额只统计活跃交易。
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param budget_id query int true "预算账本ID"
// @Success 200 {object} Response{data=DashboardResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算账本不存在"
// @Router /api/v1/dashboard [get]
func (h *SummaryHandler) Dashboard(c *gin.Context) {
	budgetID, err := strconv.ParseUint(c.Query("budget_id"), 10, 32)
	if err != nil {
		BadRequest(c, "budget_id 参数必填")
		return
	}

	budget, ok := findBudget(c, uint(budgetID))
	if !ok {
		return
	}

	resp := DashboardResponse{
		BudgetID:        budget.ID,
		BudgetName:      budget.Name,
		AvailableAmount: budget.AvailableAmount,
		MonthIncome:     decimal.Zero,
		MonthExpense:    decimal.Zero,
	}

	var envelopes []models.Envelope
	if err := database.DB.Preload("Category").
		Where("budget_id = ?", budget.ID).Order("id ASC").Find(&envelopes).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	resp.Envelopes = envelopes
	resp.EnvelopeTotal = decimal.Zero
	for _, env := range envelopes {
		resp.EnvelopeTotal = resp.EnvelopeTotal.Add(env.CurrentBalance)
		if env.CurrentBalance.IsNegative() {
			resp.NegativeEnvelopes = append(resp.NegativeEnvelopes, env)
		}
	}

	// 本月收支，支出口径含还款
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	monthEnd := monthStart.AddDate(0, 1, 0)

	database.DB.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("budget_id = ? AND transaction_type = ? AND is_deleted = ? AND transaction_date >= ? AND transaction_date < ?",
			budget.ID, models.TransactionTypeIncome, false, monthStart, monthEnd).
		Scan(&resp.MonthIncome)

	database.DB.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("budget_id = ? AND transaction_type IN ? AND is_deleted = ? AND transaction_date >= ? AND transaction_date < ?",
			budget.ID, []string{models.TransactionTypeExpense, models.TransactionTypeDebtPayment},
			false, monthStart, monthEnd).
		Scan(&resp.MonthExpense)

	if err := database.DB.
		Where("budget_id = ? AND is_deleted = ?", budget.ID, false).
		Order("transaction_date DESC, id DESC").Limit(10).
		Find(&resp.RecentTransactions).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, resp)
}

// Upcoming 获取未来排期的交易
// @Summary 获取未来排期的交易
// @Description 获取交易日期在今天之后的活跃交易，例如预先录入的工资收入
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param budget_id query int true "预算账本ID"
// @Success 200 {object} Response{data=[]models.Transaction} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算账本不存在"
// @Router /api/v1/transactions/upcoming [get]
func (h *SummaryHandler) Upcoming(c *gin.Context) {
	budgetID, err := strconv.ParseUint(c.Query("budget_id"), 10, 32)
	if err != nil {
		BadRequest(c, "budget_id 参数必填")
		return
	}

	if _, ok := findBudget(c, uint(budgetID)); !ok {
		return
	}

	now := time.Now()
	todayEnd := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local).Add(24 * time.Hour)

	var transactions []models.Transaction
	if err := database.DB.
		Where("budget_id = ? AND is_deleted = ? AND transaction_date >= ?", budgetID, false, todayEnd).
		Order("transaction_date ASC, id ASC").
		Find(&transactions).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, transactions)
}

// Reconcile 核对预算账本余额
// @Summary 核对预算账本余额
// @Description 从活跃交易全量重算资金池和各信封余额，与缓存值比对并检查零和不变式。
// @Description consistent 为 false 表示出现余额漂移，需要人工排查。
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param budget_id query int true "预算账本ID"
// @Success 200 {object} Response{data=service.ReconcileReport} "核对完成"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算账本不存在"
// @Router /api/v1/budgets/reconcile [get]
func (h *SummaryHandler) Reconcile(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	budgetID, err := strconv.ParseUint(c.Query("budget_id"), 10, 32)
	if err != nil {
		BadRequest(c, "budget_id 参数必填")
		return
	}

	ledger := service.NewLedgerService(database.DB)
	report, err := ledger.ReconcileBudget(uint(budgetID), userID)
	if err != nil {
		FailWithLedgerError(c, err, "核对失败")
		return
	}

	Success(c, report)
}
