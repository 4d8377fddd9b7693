// Package review handles post-completion seller ratings and keeps the
// seller profile aggregate in step with the review rows.
package review

import (
	"errors"

	"github.com/baytfix/core/internal/middleware"
	"github.com/baytfix/core/internal/models"
	"github.com/baytfix/core/internal/modules/notify"
	"github.com/baytfix/core/internal/pkg/pagination"
	"github.com/baytfix/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotBuyer        = errors.New("only the contract's buyer may review")
	ErrNotCompleted    = errors.New("contract is not completed")
	ErrContractMissing = errors.New("contract not found")
)

type SubmitDTO struct {
	ContractID string           `json:"contract_id" binding:"required"`
	Rating     int              `json:"rating" binding:"required,min=1,max=5"`
	Text       models.Localized `json:"text"`
}

type Service struct {
	db     *gorm.DB
	notify *notify.Service
	log    *zap.Logger
}

func NewService(db *gorm.DB, notifySvc *notify.Service, log *zap.Logger) *Service {
	return &Service{db: db, notify: notifySvc, log: log}
}

// Submit creates or replaces the buyer's review for one contract and
// recomputes the seller's rating aggregate in the same transaction.
func (s *Service) Submit(buyerID string, dto *SubmitDTO) (*models.SellerReviewModel, error) {
	var c models.ContractModel
	if err := s.db.First(&c, "id = ?", dto.ContractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractMissing
		}
		return nil, err
	}
	if c.BuyerID != buyerID {
		return nil, ErrNotBuyer
	}
	if c.Status != models.ContractStatusCompleted {
		return nil, ErrNotCompleted
	}

	var review models.SellerReviewModel
	isNew := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("contract_id = ? AND buyer_id = ?", c.ID, buyerID).
			First(&review).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			isNew = true
			review = models.SellerReviewModel{
				ContractID: c.ID,
				RequestID:  c.RequestID,
				BuyerID:    buyerID,
				SellerID:   c.SellerID,
			}
		case err != nil:
			return err
		}

		review.Rating = dto.Rating
		review.Text = dto.Text
		if err := tx.Save(&review).Error; err != nil {
			return err
		}
		return s.recomputeAggregate(tx, c.SellerID)
	})
	if err != nil {
		return nil, err
	}

	if isNew {
		s.notify.Emit(notify.Event{
			UserID:  c.SellerID,
			Kind:    models.NotifyReviewReceived,
			Title:   models.Localized{EN: "New review", AR: "تقييم جديد"},
			Body:    models.Localized{EN: "A buyer reviewed your work.", AR: "قام مشترٍ بتقييم عملك."},
			RefType: "review",
			RefID:   review.ID,
		})
	}
	return &review, nil
}

// recomputeAggregate rewrites the seller profile's average and count from
// the review rows rather than adjusting them incrementally, so resubmitted
// reviews can never skew the aggregate.
func (s *Service) recomputeAggregate(tx *gorm.DB, sellerID string) error {
	type agg struct {
		Avg   float64
		Count int64
	}
	var a agg
	err := tx.Model(&models.SellerReviewModel{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("seller_id = ?", sellerID).
		Scan(&a).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.SellerProfileModel{}).
		Where("user_id = ?", sellerID).
		Updates(map[string]interface{}{
			"rating_avg":   a.Avg,
			"rating_count": a.Count,
		}).Error
}

// ListForSeller returns a seller's reviews, newest first.
func (s *Service) ListForSeller(sellerID string, q pagination.Query) ([]models.SellerReviewModel, response.Pagination, error) {
	tx := s.db.Model(&models.SellerReviewModel{}).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC")
	var out []models.SellerReviewModel
	page, err := pagination.Paginate(tx, q, &out)
	return out, page, err
}

func (s *Service) GetOwn(contractID, buyerID string) (*models.SellerReviewModel, error) {
	var review models.SellerReviewModel
	err := s.db.Where("contract_id = ? AND buyer_id = ?", contractID, buyerID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/reviews")

	g.GET("/sellers/:id", h.listForSeller)

	a := g.Group("", authMW)
	a.POST("", middleware.RequireRole(models.RoleBuyer), h.submit)
	a.GET("/contracts/:id", h.getOwn)
}

func (h *Handler) submit(c *gin.Context) {
	var dto SubmitDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestText(c, err.Error())
		return
	}
	review, err := h.svc.Submit(middleware.CurrentUserID(c), &dto)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, review)
}

func (h *Handler) listForSeller(c *gin.Context) {
	out, page, err := h.svc.ListForSeller(c.Param("id"), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, out, page)
}

func (h *Handler) getOwn(c *gin.Context) {
	review, err := h.svc.GetOwn(c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if review == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, review)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrContractMissing):
		response.NotFoundMsg(c, response.Msg("Contract not found", "العقد غير موجود"))
	case errors.Is(err, ErrNotBuyer):
		response.Forbidden(c)
	case errors.Is(err, ErrNotCompleted):
		response.Conflict(c, response.Msg(
			"You can review only after the job is completed",
			"يمكنك التقييم فقط بعد اكتمال العمل",
		))
	default:
		response.InternalError(c, err)
	}
}
