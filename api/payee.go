package api

import (
	"strconv"

	"envelope/database"
	"envelope/middleware"
	"envelope/models"

	"github.com/gin-gonic/gin"
)

// PayeeHandler 收款方处理器
type PayeeHandler struct{}

// NewPayeeHandler 创建收款方处理器
func NewPayeeHandler() *PayeeHandler {
	return &PayeeHandler{}
}

// CreatePayeeRequest 创建收款方请求
type CreatePayeeRequest struct {
	BudgetID uint   `json:"budget_id" binding:"required" example:"1"`
	Name     string `json:"name" binding:"required,max=50" example:"超市"`
}

// UpdatePayeeRequest 更新收款方请求
type UpdatePayeeRequest struct {
	Name string `json:"name" binding:"required,max=50" example:"超市"`
}

// Create 创建收款方
// @Summary 创建收款方
// @Description 在预算账本下创建一个收款方
// @Tags 收款方
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePayeeRequest true "收款方信息"
// @Success 200 {object} Response{data=models.Payee} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算账本不存在"
// @Router /api/v1/payees [post]
func (h *PayeeHandler) Create(c *gin.Context) {
	var req CreatePayeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if _, ok := findBudget(c, req.BudgetID); !ok {
		return
	}

	payee := models.Payee{
		BudgetID: req.BudgetID,
		Name:     req.Name,
	}

	if err := database.DB.Create(&payee).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建收款方失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", payee)
}

// List 获取收款方列表
// @Summary 获取收款方列表
// @Description 获取指定预算账本下的全部收款方
// @Tags 收款方
// @Produce json
// @Security BearerAuth
// @Param budget_id query int true "预算账本ID"
// @Success 200 {object} Response{data=[]models.Payee} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算账本不存在"
// @Router /api/v1/payees [get]
func (h *PayeeHandler) List(c *gin.Context) {
	budgetID, err := strconv.ParseUint(c.Query("budget_id"), 10, 32)
	if err != nil {
		BadRequest(c, "budget_id 参数必填")
		return
	}

	if _, ok := findBudget(c, uint(budgetID)); !ok {
		return
	}

	var payees []models.Payee
	if err := database.DB.Where("budget_id = ?", budgetID).Order("name ASC").Find(&payees).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, payees)
}

// Update 更新收款方
// @Summary 更新收款方
// @Description 更新收款方名称
// @Tags 收款方
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "收款方ID"
// @Param request body UpdatePayeeRequest true "收款方信息"
// @Success 200 {object} Response{data=models.Payee} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "收款方不存在"
// @Router /api/v1/payees/{id} [put]
func (h *PayeeHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var payee models.Payee
	if err := database.DB.
		Joins("JOIN budgets ON budgets.id = payees.budget_id").
		Where("payees.id = ? AND budgets.user_id = ?", id, userID).
		First(&payee).Error; err != nil {
		NotFound(c, "收款方不存在")
		return
	}

	var req UpdatePayeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if err := database.DB.Model(&payee).Update("name", req.Name).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", payee)
}

// Delete 删除收款方
// @Summary 删除收款方
// @Description 删除收款方。已被交易引用时不允许删除。
// @Tags 收款方
// @Produce json
// @Security BearerAuth
// @Param id path int true "收款方ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "收款方不存在"
// @Failure 409 {object} Response "收款方已被交易引用"
// @Router /api/v1/payees/{id} [delete]
func (h *PayeeHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var payee models.Payee
	if err := database.DB.
		Joins("JOIN budgets ON budgets.id = payees.budget_id").
		Where("payees.id = ? AND budgets.user_id = ?", id, userID).
		First(&payee).Error; err != nil {
		NotFound(c, "收款方不存在")
		return
	}

	var refCount int64
	database.DB.Model(&models.Transaction{}).Where("payee_id = ?", payee.ID).Count(&refCount)
	if refCount > 0 {
		Conflict(c, "收款方已被交易引用，不能删除")
		return
	}

	if err := database.DB.Delete(&payee).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
