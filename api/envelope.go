package api

import (
	"strconv"

	"envelope/database"
	"envelope/middleware"
	"envelope/models"

	"github.com/gin-gonic/gin"
)

// EnvelopeHandler 信封处理器
type EnvelopeHandler struct{}

// NewEnvelopeHandler 创建信封处理器
func NewEnvelopeHandler() *EnvelopeHandler {
	return &EnvelopeHandler{}
}

// CreateEnvelopeRequest 创建信封请求
type CreateEnvelopeRequest struct {
	BudgetID   uint   `json:"budget_id" binding:"required" example:"1"`
	Name       string `json:"name" binding:"required,max=50" example:"餐饮"`
	Type       string `json:"type" example:"regular"` // regular/savings/debt，默认 regular
	CategoryID *uint  `json:"category_id" example:"2"`
}

// UpdateEnvelopeRequest 更新信封请求
type UpdateEnvelopeRequest struct {
	Name       string `json:"name" example:"餐饮"`
	Type       string `json:"type" example:"savings"`
	CategoryID *uint  `json:"category_id" example:"2"`
}

// findBudget 按当前用户范围查找预算账本
func findBudget(c *gin.Context, budgetID uint) (*models.Budget, bool) {
	userID := middleware.GetCurrentUserID(c)
	var budget models.Budget
	if err := database.DB.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		NotFound(c, "预算账本不存在")
		return nil, false
	}
	return &budget, true
}

// Create 创建信封
// @Summary 创建信封
// @Description 在预算账本下创建一个信封，余额初始为 0
// @Tags 信封
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateEnvelopeRequest true "信封信息"
// @Success 200 {object} Response{data=models.Envelope} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算账本不存在"
// @Router /api/v1/envelopes [post]
func (h *EnvelopeHandler) Create(c *gin.Context) {
	var req CreateEnvelopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if _, ok := findBudget(c, req.BudgetID); !ok {
		return
	}

	if req.Type == "" {
		req.Type = models.EnvelopeTypeRegular
	}
	if !models.IsValidEnvelopeType(req.Type) {
		BadRequest(c, "无效的信封类型，可选值: regular/savings/debt")
		return
	}

	if req.CategoryID != nil {
		var cat models.Category
		if err := database.DB.First(&cat, *req.CategoryID).Error; err != nil {
			BadRequest(c, "无效的信封分类")
			return
		}
	}

	envelope := models.Envelope{
		BudgetID:   req.BudgetID,
		Name:       req.Name,
		Type:       req.Type,
		CategoryID: req.CategoryID,
	}

	if err := database.DB.Create(&envelope).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建信封失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", envelope)
}

// List 获取信封列表
// @Summary 获取信封列表
// @Description 获取指定预算账本下的全部信封及其当前余额
// @Tags 信封
// @Produce json
// @Security BearerAuth
// @Param budget_id query int true "预算账本ID"
// @Success 200 {object} Response{data=[]models.Envelope} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算账本不存在"
// @Router /api/v1/envelopes [get]
func (h *EnvelopeHandler) List(c *gin.Context) {
	budgetID, err := strconv.ParseUint(c.Query("budget_id"), 10, 32)
	if err != nil {
		BadRequest(c, "budget_id 参数必填")
		return
	}

	if _, ok := findBudget(c, uint(budgetID)); !ok {
		return
	}

	var envelopes []models.Envelope
	if err := database.DB.Preload("Category").
		Where("budget_id = ?", budgetID).Order("id ASC").Find(&envelopes).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, envelopes)
}

// Get 获取单个信封
// @Summary 获取单个信封
// @Description 根据ID获取信封详情
// @Tags 信封
// @Produce json
// @Security BearerAuth
// @Param id path int true "信封ID"
// @Success 200 {object} Response{data=models.Envelope} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "信封不存在"
// @Router /api/v1/envelopes/{id} [get]
func (h *EnvelopeHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var envelope models.Envelope
	if err := database.DB.Preload("Category").
		Joins("JOIN budgets ON budgets.id = envelopes.budget_id").
		Where("envelopes.id = ? AND budgets.user_id = ?", id, userID).
		First(&envelope).Error; err != nil {
		NotFound(c, "信封不存在")
		return
	}

	Success(c, envelope)
}

// Update 更新信封
// @Summary 更新信封
// @Description 更新信封名称、类型和分类。余额不可直接修改，只能通过交易变动。
// @Tags 信封
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "信封ID"
// @Param request body UpdateEnvelopeRequest true "信封信息"
// @Success 200 {object} Response{data=models.Envelope} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "信封不存在"
// @Router /api/v1/envelopes/{id} [put]
func (h *EnvelopeHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var envelope models.Envelope
	if err := database.DB.
		Joins("JOIN budgets ON budgets.id = envelopes.budget_id").
		Where("envelopes.id = ? AND budgets.user_id = ?", id, userID).
		First(&envelope).Error; err != nil {
		NotFound(c, "信封不存在")
		return
	}

	var req UpdateEnvelopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 只允许改名称/类型/分类，余额字段归账本引擎所有
	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Type != "" {
		if !models.IsValidEnvelopeType(req.Type) {
			BadRequest(c, "无效的信封类型，可选值: regular/savings/debt")
			return
		}
		updates["type"] = req.Type
	}
	if req.CategoryID != nil {
		var cat models.Category
		if err := database.DB.First(&cat, *req.CategoryID).Error; err != nil {
			BadRequest(c, "无效的信封分类")
			return
		}
		updates["category_id"] = *req.CategoryID
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&envelope).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}

	database.DB.First(&envelope, envelope.ID)
	SuccessWithMessage(c, "更新成功", envelope)
}

// Delete 删除信封
// @Summary 删除信封
// @Description 删除信封。余额不为零或仍被交易引用时不允许删除，避免破坏余额核对。
// @Tags 信封
// @Produce json
// @Security BearerAuth
// @Param id path int true "信封ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "信封不存在"
// @Failure 409 {object} Response "信封仍有余额或被交易引用"
// @Router /api/v1/envelopes/{id} [delete]
func (h *EnvelopeHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var envelope models.Envelope
	if err := database.DB.
		Joins("JOIN budgets ON budgets.id = envelopes.budget_id").
		Where("envelopes.id = ? AND budgets.user_id = ?", id, userID).
		First(&envelope).Error; err != nil {
		NotFound(c, "信封不存在")
		return
	}

	if !envelope.CurrentBalance.IsZero() {
		Conflict(c, "信封余额不为零，请先转出余额")
		return
	}

	// 包含软删除交易：删除被引用的信封会让恢复操作悬空
	var refCount int64
	database.DB.Model(&models.Transaction{}).
		Where("from_envelope_id = ? OR to_envelope_id = ?", envelope.ID, envelope.ID).
		Count(&refCount)
	if refCount > 0 {
		Conflict(c, "信封已被交易引用，不能删除")
		return
	}

	if err := database.DB.Delete(&envelope).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
