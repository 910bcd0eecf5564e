package api

import (
	"strconv"

	"envelope/database"
	"envelope/middleware"
	"envelope/models"

	"github.com/gin-gonic/gin"
)

// IncomeSourceHandler 收入来源处理器
type IncomeSourceHandler struct{}

// NewIncomeSourceHandler 创建收入来源处理器
func NewIncomeSourceHandler() *IncomeSourceHandler {
	return &IncomeSourceHandler{}
}

// CreateIncomeSourceRequest 创建收入来源请求
type CreateIncomeSourceRequest struct {
	BudgetID uint   `json:"budget_id" binding:"required" example:"1"`
	Name     string `json:"name" binding:"required,max=50" example:"工资"`
}

// UpdateIncomeSourceRequest 更新收入来源请求
type UpdateIncomeSourceRequest struct {
	Name string `json:"name" binding:"required,max=50" example:"工资"`
}

// Create 创建收入来源
// @Summary 创建收入来源
// @Description 在预算账本下创建一个收入来源
// @Tags 收入来源
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateIncomeSourceRequest true "收入来源信息"
// @Success 200 {object} Response{data=models.IncomeSource} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算账本不存在"
// @Router /api/v1/income-sources [post]
func (h *IncomeSourceHandler) Create(c *gin.Context) {
	var req CreateIncomeSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if _, ok := findBudget(c, req.BudgetID); !ok {
		return
	}

	source := models.IncomeSource{
		BudgetID: req.BudgetID,
		Name:     req.Name,
	}

	if err := database.DB.Create(&source).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建收入来源失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", source)
}

// List 获取收入来源列表
// @Summary 获取收入来源列表
// @Description 获取指定预算账本下的全部收入来源
// @Tags 收入来源
// @Produce json
// @Security BearerAuth
// @Param budget_id query int true "预算账本ID"
// @Success 200 {object} Response{data=[]models.IncomeSource} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算账本不存在"
// @Router /api/v1/income-sources [get]
func (h *IncomeSourceHandler) List(c *gin.Context) {
	budgetID, err := strconv.ParseUint(c.Query("budget_id"), 10, 32)
	if err != nil {
		BadRequest(c, "budget_id 参数必填")
		return
	}

	if _, ok := findBudget(c, uint(budgetID)); !ok {
		return
	}

	var sources []models.IncomeSource
	if err := database.DB.Where("budget_id = ?", budgetID).Order("name ASC").Find(&sources).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, sources)
}

// Update 更新收入来源
// @Summary 更新收入来源
// @Description 更新收入来源名称
// @Tags 收入来源
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "收入来源ID"
// @Param request body UpdateIncomeSourceRequest true "收入来源信息"
// @Success 200 {object} Response{data=models.IncomeSource} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "收入来源不存在"
// @Router /api/v1/income-sources/{id} [put]
func (h *IncomeSourceHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var source models.IncomeSource
	if err := database.DB.
		Joins("JOIN budgets ON budgets.id = income_sources.budget_id").
		Where("income_sources.id = ? AND budgets.user_id = ?", id, userID).
		First(&source).Error; err != nil {
		NotFound(c, "收入来源不存在")
		return
	}

	var req UpdateIncomeSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if err := database.DB.Model(&source).Update("name", req.Name).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", source)
}

// Delete 删除收入来源
// @Summary 删除收入来源
// @Description 删除收入来源。已被交易引用时不允许删除。
// @Tags 收入来源
// @Produce json
// @Security BearerAuth
// @Param id path int true "收入来源ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "收入来源不存在"
// @Failure 409 {object} Response "收入来源已被交易引用"
// @Router /api/v1/income-sources/{id} [delete]
func (h *IncomeSourceHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var source models.IncomeSource
	if err := database.DB.
		Joins("JOIN budgets ON budgets.id = income_sources.budget_id").
		Where("income_sources.id = ? AND budgets.user_id = ?", id, userID).
		First(&source).Error; err != nil {
		NotFound(c, "收入来源不存在")
		return
	}

	var refCount int64
	database.DB.Model(&models.Transaction{}).Where("income_source_id = ?", source.ID).Count(&refCount)
	if refCount > 0 {
		Conflict(c, "收入来源已被交易引用，不能删除")
		return
	}

	if err := database.DB.Delete(&source).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
