package api

import (
	"strconv"

	"envelope/database"
	"envelope/models"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 信封分类处理器
type CategoryHandler struct{}

// NewCategoryHandler 创建信封分类处理器
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// CreateCategoryRequest 创建分类请求
type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required,max=50" example:"日常开销"`
	Sort  int    `json:"sort" example:"10"`
	Color string `json:"color" example:"#ef4444"`
}

// UpdateCategoryRequest 更新分类请求
type UpdateCategoryRequest struct {
	Name  string `json:"name" example:"日常开销"`
	Sort  *int   `json:"sort" example:"10"`
	Color string `json:"color" example:"#ef4444"`
}

// List 获取分类列表
// @Summary 获取信封分类列表
// @Description 获取所有信封分类，按排序字段升序排列
// @Tags 信封分类
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Category} "获取成功"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	var list []models.Category
	if err := database.DB.Order("sort ASC, id ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, list)
}

// Create 创建分类
// @Summary 创建信封分类
// @Description 创建一个新的信封分类
// @Tags 信封分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "分类信息"
// @Success 200 {object} Response{data=models.Category} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	cat := models.Category{
		Name:  req.Name,
		Sort:  req.Sort,
		Color: req.Color,
	}
	if cat.Color == "" {
		cat.Color = "#64748b"
	}

	if err := database.DB.Create(&cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建分类失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", cat)
}

// Update 更新分类
// @Summary 更新信封分类
// @Description 更新分类名称、排序和颜色
// @Tags 信封分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Param request body UpdateCategoryRequest true "分类信息"
// @Success 200 {object} Response{data=models.Category} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "分类不存在"
// @Router /api/v1/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var cat models.Category
	if err := database.DB.First(&cat, id).Error; err != nil {
		NotFound(c, "分类不存在")
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Sort != nil {
		updates["sort"] = *req.Sort
	}
	if req.Color != "" {
		updates["color"] = req.Color
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&cat).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}

	SuccessWithMessage(c, "更新成功", cat)
}

// Delete 删除分类
// @Summary 删除信封分类
// @Description 删除分类。仍有信封使用该分类时不允许删除。
// @Tags 信封分类
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "分类不存在"
// @Failure 409 {object} Response "分类仍被信封使用"
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var cat models.Category
	if err := database.DB.First(&cat, id).Error; err != nil {
		NotFound(c, "分类不存在")
		return
	}

	var refCount int64
	database.DB.Model(&models.Envelope{}).Where("category_id = ?", cat.ID).Count(&refCount)
	if refCount > 0 {
		Conflict(c, "分类仍被信封使用，不能删除")
		return
	}

	if err := database.DB.Delete(&cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
