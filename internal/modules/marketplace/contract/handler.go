package contract

import (
	"errors"

	"github.com/baytfix/core/internal/middleware"
	"github.com/baytfix/core/internal/pkg/pagination"
	"github.com/baytfix/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/contracts", authMW)

	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("/:id/sign", h.sign)
	g.POST("/:id/withdraw", h.withdraw)
}

func (h *Handler) list(c *gin.Context) {
	out, page, err := h.svc.ListForUser(
		middleware.CurrentUserID(c),
		pagination.FromContext(c),
		c.Query("status"),
	)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, out, page)
}

func (h *Handler) get(c *gin.Context) {
	contract, err := h.svc.Get(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if contract == nil {
		response.NotFound(c)
		return
	}
	userID := middleware.CurrentUserID(c)
	if contract.BuyerID != userID && contract.SellerID != userID {
		response.Forbidden(c)
		return
	}
	response.OK(c, contract)
}

func (h *Handler) sign(c *gin.Context) {
	contract, err := h.svc.Sign(c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, contract)
}

func (h *Handler) withdraw(c *gin.Context) {
	contract, err := h.svc.Withdraw(c.Param("id"), middleware.CurrentUserID(c))
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
	case errors.Is(err, ErrAlreadySigned):
		response.Conflict(c, response.Msg(
			"You have already signed this contract",
			"لقد وقعت هذا العقد بالفعل",
		))
	case errors.Is(err, ErrWithdrawLocked):
		response.Conflict(c, response.Msg(
			"The seller has already signed; withdrawal is no longer possible",
			"وقع مقدم الخدمة بالفعل؛ لم يعد السحب ممكناً",
		))
	case errors.Is(err, ErrNotWithdrawable):
		response.Conflict(c, response.Msg(
			"There is no signature to withdraw",
			"لا يوجد توقيع لسحبه",
		))
	case errors.Is(err, ErrStaleVersion):
		response.Conflict(c, response.Msg(
			"The contract changed while you were signing, try again",
			"تغير العقد أثناء التوقيع، حاول مرة أخرى",
		))
	default:
		response.InternalError(c, err)
	}
}
