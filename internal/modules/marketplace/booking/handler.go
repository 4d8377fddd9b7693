package booking

import (
	"errors"

	"github.com/baytfix/core/internal/middleware"
	"github.com/baytfix/core/internal/models"
	"github.com/baytfix/core/internal/pkg/pagination"
	"github.com/baytfix/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	buyer := middleware.RequireRole(models.RoleBuyer)
	seller := middleware.RequireRole(models.RoleSeller)

	g := rg.Group("/bookings", authMW)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("", buyer, h.create)
	g.POST("/:id/respond", seller, h.sellerRespond)
	g.POST("/:id/accept", buyer, h.buyerAccept)
	g.POST("/:id/counter", buyer, h.buyerCounter)
	g.POST("/:id/cancel", h.cancel)
	g.POST("/:id/on-way", seller, h.markOnWay)
	g.POST("/:id/start", seller, h.markStarted)
	g.POST("/:id/seller-complete", seller, h.sellerComplete)
	g.POST("/:id/buyer-complete", buyer, h.buyerComplete)
	g.POST("/:id/halt", h.halt)
	g.POST("/:id/approve-resolution", h.approveResolution)

	r := rg.Group("/requests", authMW)
	r.GET("", h.listOpenRequests)
	r.GET("/mine", buyer, h.listOwnRequests)
	r.GET("/:id", h.getRequest)
	r.POST("", buyer, h.createRequest)
	r.POST("/:id/cancel", buyer, h.cancelRequest)
	r.POST("/:id/quotes", seller, h.submitQuote)
	r.POST("/:id/quotes/:quoteId/accept", buyer, h.acceptQuote)
}

func (h *Handler) list(c *gin.Context) {
	out, page, err := h.svc.ListForUser(
		middleware.CurrentUserID(c), pagination.FromContext(c), c.Query("status"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, out, page)
}

func (h *Handler) get(c *gin.Context) {
	b, err := h.svc.loadFor(c.Param("id"), middleware.CurrentUserID(c), "")
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, b)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateBookingDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestText(c, err.Error())
		return
	}
	b, err := h.svc.Create(middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, b)
}

func (h *Handler) sellerRespond(c *gin.Context) {
	var dto ProposalDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestText(c, err.Error())
		return
	}
	b, err := h.svc.SellerRespond(c.Param("id"), middleware.CurrentUserID(c), &dto)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, b)
}

func (h *Handler) buyerAccept(c *gin.Context) {
	var dto AcceptDTO
	// Terms are optional; an empty body means default terms.
	_ = c.ShouldBindJSON(&dto)
	b, contract, err := h.svc.BuyerAccept(c.Param("id"), middleware.CurrentUserID(c), &dto)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, gin.H{"booking": b, "contract": contract})
}

func (h *Handler) buyerCounter(c *gin.Context) {
	var dto ProposalDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestText(c, err.Error())
		return
	}
	b, err := h.svc.BuyerCounter(c.Param("id"), middleware.CurrentUserID(c), &dto)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, b)
}

func (h *Handler) cancel(c *gin.Context) {
	var dto CancelDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestText(c, err.Error())
		return
	}
	b, err := h.svc.Cancel(c.Param("id"), middleware.CurrentUserID(c), &dto)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, b)
}

func (h *Handler) markOnWay(c *gin.Context) {
	b, err := h.svc.MarkOnWay(c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, b)
}

func (h *Handler) markStarted(c *gin.Context) {
	b, err := h.svc.MarkWorkStarted(c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, b)
}

func (h *Handler) sellerComplete(c *gin.Context) {
	var dto CompleteDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestText(c, err.Error())
		return
	}
	b, err := h.svc.SellerComplete(c.Param("id"), middleware.CurrentUserID(c), &dto)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, b)
}

func (h *Handler) buyerComplete(c *gin.Context) {
	b, err := h.svc.BuyerComplete(c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, b)
}

func (h *Handler) halt(c *gin.Context) {
	var dto HaltDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestText(c, err.Error())
		return
	}
	b, err := h.svc.Halt(c.Param("id"), middleware.CurrentUserID(c), &dto)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, b)
}

func (h *Handler) approveResolution(c *gin.Context) {
	b, err := h.svc.ApproveResolution(c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, b)
}

func (h *Handler) listOpenRequests(c *gin.Context) {
	out, page, err := h.svc.ListOpenRequests(pagination.FromContext(c), c.Query("category"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, out, page)
}

func (h *Handler) listOwnRequests(c *gin.Context) {
	out, page, err := h.svc.ListOwnRequests(middleware.CurrentUserID(c), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, out, page)
}

func (h *Handler) getRequest(c *gin.Context) {
	req, err := h.svc.GetRequest(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if req == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, req)
}

func (h *Handler) createRequest(c *gin.Context) {
	var dto CreateRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestText(c, err.Error())
		return
	}
	req, err := h.svc.CreateRequest(middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, req)
}

func (h *Handler) cancelRequest(c *gin.Context) {
	req, err := h.svc.CancelRequest(c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, req)
}

func (h *Handler) submitQuote(c *gin.Context) {
	var dto QuoteDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestText(c, err.Error())
		return
	}
	quote, err := h.svc.SubmitQuote(c.Param("id"), middleware.CurrentUserID(c), &dto)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Created(c, quote)
}

func (h *Handler) acceptQuote(c *gin.Context) {
	var dto AcceptQuoteDTO
	_ = c.ShouldBindJSON(&dto)
	contract, err := h.svc.AcceptQuote(
		c.Param("id"), c.Param("quoteId"), middleware.CurrentUserID(c), &dto)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, contract)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.NotFound(c)
	case errors.Is(err, ErrNotParty):
		response.Forbidden(c)
	case errors.Is(err, ErrBadTransition):
		response.Conflict(c, response.Msg(
			"This action is not available in the current state",
			"هذا الإجراء غير متاح في الحالة الحالية",
		))
	case errors.Is(err, ErrHalted):
		response.Conflict(c, response.Msg(
			"The job is halted; resolve the issue first",
			"العمل متوقف؛ يرجى حل المشكلة أولاً",
		))
	case errors.Is(err, ErrNoProposal):
		response.Conflict(c, response.Msg(
			"There is no proposal to accept",
			"لا يوجد عرض للقبول",
		))
	case errors.Is(err, ErrRequestClosed):
		response.Conflict(c, response.Msg(
			"This request no longer accepts quotes",
			"لم يعد هذا الطلب يقبل عروض الأسعار",
		))
	case errors.Is(err, ErrOwnRequest):
		response.Conflict(c, response.Msg(
			"You cannot quote your own request",
			"لا يمكنك تقديم عرض سعر لطلبك الخاص",
		))
	case errors.Is(err, ErrQuoteDecided):
		response.Conflict(c, response.Msg(
			"This quote has already been decided",
			"تم البت في عرض السعر هذا بالفعل",
		))
	default:
		response.InternalError(c, err)
	}
}
