package blog

import (
	"errors"

	"github.com/baytfix/core/internal/middleware"
	"github.com/baytfix/core/internal/models"
	"github.com/baytfix/core/internal/pkg/pagination"
	"github.com/baytfix/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/blogs")

	g.GET("", h.list)
	g.GET("/slug/:slug", h.getBySlug)

	admin := g.Group("", authMW, middleware.RequireRole(models.RoleAdmin))
	admin.GET("/manage", h.listAll)
	admin.GET("/manage/:id", h.getByID)
	admin.POST("", h.create)
	admin.PUT("/:id", h.update)
	admin.DELETE("/:id", h.delete)
	admin.POST("/seo-score", h.seoScore)
}

func listQuery(c *gin.Context) ListQuery {
	return ListQuery{
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
	}
}

func (h *Handler) list(c *gin.Context) {
	posts, page, err := h.svc.ListPublished(pagination.FromContext(c), listQuery(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, posts, page)
}

func (h *Handler) listAll(c *gin.Context) {
	posts, page, err := h.svc.ListAll(pagination.FromContext(c), listQuery(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, posts, page)
}

func (h *Handler) getBySlug(c *gin.Context) {
	post, err := h.svc.GetBySlug(c.Param("slug"), false)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if post == nil {
		response.NotFound(c)
		return
	}
	h.svc.IncrementRead(post.ID)
	response.OK(c, post)
}

func (h *Handler) getByID(c *gin.Context) {
	post, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if post == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, post)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateBlogDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestText(c, err.Error())
		return
	}
	post, err := h.svc.Create(middleware.CurrentUserID(c), &dto)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Created(c, post)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateBlogDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestText(c, err.Error())
		return
	}
	post, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if post == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, post)
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.Delete(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !ok {
		response.NotFound(c)
		return
	}
	response.NoContent(c)
}

func (h *Handler) seoScore(c *gin.Context) {
	var dto SEOScoreDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestText(c, err.Error())
		return
	}
	response.OK(c, ScoreSEO(SEOInput{
		Title:      dto.Title,
		ExcerptEN:  dto.ExcerptEN,
		SEOTitle:   dto.SEOTitle,
		SEODesc:    dto.SEODesc,
		Slug:       dto.Slug,
		CoverImage: dto.CoverImage,
		Tags:       dto.Tags,
		ContentEN:  dto.ContentEN,
	}))
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSlugTaken):
		response.Conflict(c, response.Msg(
			"This slug is already in use",
			"هذا الرابط مستخدم بالفعل",
		))
	case errors.Is(err, ErrInvalidSlug):
		response.BadRequest(c, response.Msg(
			"Slug may only contain lowercase letters, digits and hyphens",
			"يجب أن يحتوي الرابط على أحرف صغيرة وأرقام وشرطات فقط",
		))
	case errors.Is(err, ErrInvalidBlocks):
		response.BadRequest(c, response.Msg(
			"Content blocks must have unique ids",
			"يجب أن تحتوي كتل المحتوى على معرفات فريدة",
		))
	case errors.Is(err, ErrScheduleInput):
		response.BadRequest(c, response.Msg(
			"Scheduled posts need a future publish time",
			"تحتاج المقالات المجدولة إلى وقت نشر مستقبلي",
		))
	default:
		response.InternalError(c, err)
	}
}
