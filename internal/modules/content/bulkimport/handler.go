package bulkimport

import (
	"net/http"

	"github.com/baytfix/core/internal/middleware"
	"github.com/baytfix/core/internal/models"
	"github.com/baytfix/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type PayloadDTO struct {
	Markdown string `json:"markdown" binding:"required"`
	Selected []int  `json:"selected"`
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/blogs", authMW, middleware.RequireRole(models.RoleAdmin))

	g.POST("/import/preview", h.preview)
	g.POST("/import", h.importPosts)
	g.GET("/export", h.export)
}

func (h *Handler) preview(c *gin.Context) {
	var dto PayloadDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestText(c, err.Error())
		return
	}
	records, err := h.svc.Preview(dto.Markdown)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, records)
}

func (h *Handler) importPosts(c *gin.Context) {
	var dto PayloadDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestText(c, err.Error())
		return
	}
	result, err := h.svc.Import(middleware.CurrentUserID(c), dto.Markdown, dto.Selected)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *Handler) export(c *gin.Context) {
	data, filename, err := h.svc.ExportZip()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/zip", data)
}
