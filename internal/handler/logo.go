package handler

import (
	"github.com/gin-gonic/gin"

	"familytree_go/internal/response"
	"familytree_go/internal/service"
)

// LogoHandler 站点标识接口
type LogoHandler struct {
	logo *service.LogoService
}

// NewLogoHandler 创建站点标识接口
func NewLogoHandler(logo *service.LogoService) *LogoHandler {
	return &LogoHandler{logo: logo}
}

// Get 获取站点标识
func (h *LogoHandler) Get(c *gin.Context) {
	logo, err := h.logo.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", logo)
}

// Update 更新站点标识，可选文件字段logo_image与hero_image
func (h *LogoHandler) Update(c *gin.Context) {
	var in service.LogoInput
	if err := c.ShouldBind(&in); err != nil {
		badRequest(c, err)
		return
	}
	logoFile, err := optionalFile(c, "logo_image")
	if err != nil {
		badRequest(c, err)
		return
	}
	heroFile, err := optionalFile(c, "hero_image")
	if err != nil {
		badRequest(c, err)
		return
	}

	logo, err := h.logo.Update(c.Request.Context(), &in, logoFile, heroFile)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "logo updated successfully", logo)
}
