package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"familytree_go/internal/response"
	"familytree_go/internal/service"
)

// GalleryHandler 相册接口
type GalleryHandler struct {
	gallery *service.GalleryService
}

// NewGalleryHandler 创建相册接口
func NewGalleryHandler(gallery *service.GalleryService) *GalleryHandler {
	return &GalleryHandler{gallery: gallery}
}

// Create 上传相册图片，multipart字段image必填
func (h *GalleryHandler) Create(c *gin.Context) {
	var in service.GalleryInput
	if err := c.ShouldBind(&in); err != nil {
		badRequest(c, err)
		return
	}
	file, err := optionalFile(c, "image")
	if err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.gallery.Create(c.Request.Context(), file, &in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "gallery item created successfully", item)
}

// List 相册列表
func (h *GalleryHandler) List(c *gin.Context) {
	page, perPage := pageParams(c)
	result, err := h.gallery.List(c.Request.Context(), page, perPage)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", result)
}

// Get 相册详情
func (h *GalleryHandler) Get(c *gin.Context) {
	item, err := h.gallery.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", item)
}

// Update 更新相册元数据
func (h *GalleryHandler) Update(c *gin.Context) {
	var in service.GalleryInput
	if err := c.ShouldBind(&in); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.gallery.Update(c.Request.Context(), c.Param("id"), &in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "gallery item updated successfully", item)
}

// Delete 删除相册记录
func (h *GalleryHandler) Delete(c *gin.Context) {
	if err := h.gallery.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "gallery item deleted successfully", nil)
}

// optionalFile 读取上传文件，字段缺失时返回nil
func optionalFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	file, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	return file, err
}
