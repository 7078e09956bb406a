package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/blog-rbac/internal/auth"
	"github.com/d60-Lab/blog-rbac/internal/service"
	"github.com/d60-Lab/blog-rbac/pkg/response"
)

type createPostRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	IsPublic *bool  `json:"is_public"`
}

type updatePostRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	IsPublic *bool   `json:"is_public"`
}

// renderPostError 服务层哨兵错误到响应码的唯一映射点。
func renderPostError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		response.NotFound(c, "post not found")
	case errors.Is(err, service.ErrForbidden):
		// 拒绝原因不外漏，只回通用信息。
		response.Forbidden(c, "permission denied")
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}

// ListPosts 文章列表（任意已认证角色，倒序分页）
// @Summary 文章列表
// @Tags 文章
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 401 {object} response.Response
// @Router /api/v1/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	list, err := h.postSvc.List(c.Request.Context(), page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// GetPost 文章详情
// @Summary 文章详情
// @Tags 文章
// @Security BearerAuth
// @Param id path string true "文章ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.postSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderPostError(c, err)
		return
	}
	response.Success(c, post)
}

// CreatePost 发布文章（editor/admin，作者恒为当前身份）
// @Summary 发布文章
// @Tags 文章
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body createPostRequest true "文章内容"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	id, ok := auth.FromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	post, err := h.postSvc.Create(c.Request.Context(), id, req.Title, req.Content, isPublic)
	if err != nil {
		renderPostError(c, err)
		return
	}
	response.Created(c, post)
}

// UpdatePost 编辑文章（存在性 -> 角色 -> 所有权，见 service 层）
// @Summary 编辑文章
// @Tags 文章
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "文章ID"
// @Param request body updatePostRequest true "更新字段（均可选）"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [put]
func (h *Handler) UpdatePost(c *gin.Context) {
	id, ok := auth.FromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.postSvc.Update(c.Request.Context(), id, c.Param("id"), service.UpdatePostInput{
		Title:    req.Title,
		Content:  req.Content,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		renderPostError(c, err)
		return
	}
	response.Success(c, post)
}

// DeletePost 删除文章（admin-only）
// @Summary 删除文章
// @Tags 文章
// @Security BearerAuth
// @Param id path string true "文章ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := auth.FromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}
	if err := h.postSvc.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
		renderPostError(c, err)
		return
	}
	response.Success(c, nil)
}
