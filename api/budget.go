package api

import (
	"strconv"

	"envelope/database"
	"envelope/middleware"
	"envelope/models"

	"github.com/gin-gonic/gin"
)

// BudgetHandler 预算账本处理器
type BudgetHandler struct{}

// NewBudgetHandler 创建预算账本处理器
func NewBudgetHandler() *BudgetHandler {
	return &BudgetHandler{}
}

// CreateBudgetRequest 创建预算账本请求
type CreateBudgetRequest struct {
	Name string `json:"name" binding:"required,max=50" example:"家庭预算"`
}

// UpdateBudgetRequest 更新预算账本请求
type UpdateBudgetRequest struct {
	Name string `json:"name" binding:"required,max=50" example:"家庭预算"`
}

// Create 创建预算账本
// @Summary 创建预算账本
// @Description 创建一个新的预算账本，资金池初始为 0、没有信封
// @Tags 预算账本
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBudgetRequest true "预算账本信息"
// @Success 200 {object} Response{data=models.Budget} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets [post]
func (h *BudgetHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// AvailableAmount 零值即空资金池，之后只由账本引擎变更
	budget := models.Budget{
		UserID: userID,
		Name:   req.Name,
	}

	if err := database.DB.Create(&budget).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建预算账本失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", budget)
}

// List 获取预算账本列表
// @Summary 获取预算账本列表
// @Description 获取当前用户的所有预算账本
// @Tags 预算账本
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Budget} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets [get]
func (h *BudgetHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var budgets []models.Budget
	if err := database.DB.Where("user_id = ?", userID).Order("id ASC").Find(&budgets).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, budgets)
}

// Get 获取单个预算账本
// @Summary 获取单个预算账本
// @Description 根据ID获取预算账本详情，包含名下所有信封
// @Tags 预算账本
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算账本ID"
// @Success 200 {object} Response "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算账本不存在"
// @Router /api/v1/budgets/{id} [get]
func (h *BudgetHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var budget models.Budget
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&budget).Error; err != nil {
		NotFound(c, "预算账本不存在")
		return
	}

	var envelopes []models.Envelope
	if err := database.DB.Where("budget_id = ?", budget.ID).Order("id ASC").Find(&envelopes).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询信封失败"))
		return
	}

	Success(c, gin.H{
		"budget":    budget,
		"envelopes": envelopes,
	})
}

// Update 更新预算账本
// @Summary 更新预算账本
// @Description 更新预算账本名称。资金池余额不可直接修改，只能通过交易变动。
// @Tags 预算账本
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算账本ID"
// @Param request body UpdateBudgetRequest true "预算账本信息"
// @Success 200 {object} Response{data=models.Budget} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算账本不存在"
// @Router /api/v1/budgets/{id} [put]
func (h *BudgetHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var budget models.Budget
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&budget).Error; err != nil {
		NotFound(c, "预算账本不存在")
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if err := database.DB.Model(&budget).Update("name", req.Name).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", budget)
}

// Delete 删除预算账本
// @Summary 删除预算账本
// @Description 删除预算账本。账本下仍有活跃交易时不允许删除。
// @Tags 预算账本
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算账本ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算账本不存在"
// @Failure 409 {object} Response "账本下仍有活跃交易"
// @Router /api/v1/budgets/{id} [delete]
func (h *BudgetHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var budget models.Budget
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&budget).Error; err != nil {
		NotFound(c, "预算账本不存在")
		return
	}

	var activeCount int64
	database.DB.Model(&models.Transaction{}).
		Where("budget_id = ? AND is_deleted = ?", budget.ID, false).
		Count(&activeCount)
	if activeCount > 0 {
		Conflict(c, "账本下仍有活跃交易，请先删除相关交易")
		return
	}

	if err := database.DB.Delete(&budget).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
