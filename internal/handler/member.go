package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"familytree_go/internal/response"
	"familytree_go/internal/service"
)

// MemberHandler 家族成员接口
type MemberHandler struct {
	family *service.FamilyService
}

// NewMemberHandler 创建成员接口
func NewMemberHandler(family *service.FamilyService) *MemberHandler {
	return &MemberHandler{family: family}
}

// Register 新建成员及其配偶、子女
func (h *MemberHandler) Register(c *gin.Context) {
	var in service.RegisterMemberInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	reg, err := h.family.RegisterMemberWithRelationships(c.Request.Context(), &in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "member registered successfully", reg)
}

// List 成员目录
func (h *MemberHandler) List(c *gin.Context) {
	page, perPage := pageParams(c)
	result, err := h.family.ListMembers(c.Request.Context(), page, perPage, c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", result)
}

// Get 成员详情
func (h *MemberHandler) Get(c *gin.Context) {
	view, err := h.family.GetMember(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", view)
}

// Edit 更新成员及追加关系
func (h *MemberHandler) Edit(c *gin.Context) {
	var in service.EditMemberInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	view, err := h.family.EditMember(c.Request.Context(), c.Param("id"), &in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "member updated successfully", view)
}

// Delete 级联删除成员
func (h *MemberHandler) Delete(c *gin.Context) {
	result, err := h.family.DeleteMemberCascade(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "member deleted successfully", result)
}

// Family 家族链
func (h *MemberHandler) Family(c *gin.Context) {
	chain, err := h.family.GetFamilyChain(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", chain)
}

// UploadImage 上传成员头像
func (h *MemberHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		response.Error(c, service.NewError(service.ErrValidation, "image file is required", err))
		return
	}

	view, err := h.family.SetMemberImage(c.Request.Context(), c.Param("id"), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "image uploaded successfully", view)
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(service.DefaultPerPage)))
	return page, perPage
}

func badRequest(c *gin.Context, err error) {
	response.Error(c, service.NewError(service.ErrValidation, "invalid request body", err))
}
