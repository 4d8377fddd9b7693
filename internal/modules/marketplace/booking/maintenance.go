package booking

import (
	"errors"

	"github.com/baytfix/core/internal/models"
	"github.com/baytfix/core/internal/modules/marketplace/contract"
	"github.com/baytfix/core/internal/modules/notify"
	"github.com/baytfix/core/internal/pkg/pagination"
	"github.com/baytfix/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrRequestClosed = errors.New("request is no longer open for quotes")
	ErrOwnRequest    = errors.New("cannot quote your own request")
	ErrQuoteDecided  = errors.New("quote already decided")
)

func (s *Service) CreateRequest(buyerID string, dto *CreateRequestDTO) (*models.MaintenanceRequestModel, error) {
	req := models.MaintenanceRequestModel{
		BuyerID:   buyerID,
		AddressID: dto.AddressID,
		Category:  dto.Category,
		Details:   dto.Details,
		BudgetMin: dto.BudgetMin,
		BudgetMax: dto.BudgetMax,
		Photos:    models.StringArray(dto.Photos),
		Status:    models.MaintenanceStatusOpen,
	}
	if err := s.db.Create(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// ListOpenRequests is the seller-facing job board.
func (s *Service) ListOpenRequests(q pagination.Query, category string) ([]models.MaintenanceRequestModel, response.Pagination, error) {
	tx := s.db.Model(&models.MaintenanceRequestModel{}).
		Where("status IN ?", []string{models.MaintenanceStatusOpen, models.MaintenanceStatusQuoted}).
		Order("created_at DESC")
	if category != "" {
		tx = tx.Where("category = ?", category)
	}
	var out []models.MaintenanceRequestModel
	page, err := pagination.Paginate(tx, q, &out)
	return out, page, err
}

func (s *Service) ListOwnRequests(buyerID string, q pagination.Query) ([]models.MaintenanceRequestModel, response.Pagination, error) {
	tx := s.db.Model(&models.MaintenanceRequestModel{}).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC")
	var out []models.MaintenanceRequestModel
	page, err := pagination.Paginate(tx, q, &out)
	return out, page, err
}

func (s *Service) GetRequest(id string) (*models.MaintenanceRequestModel, error) {
	var req models.MaintenanceRequestModel
	err := s.db.Preload("Quotes").First(&req, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// SubmitQuote files a seller's offer and flips an open request to quoted.
func (s *Service) SubmitQuote(requestID, sellerID string, dto *QuoteDTO) (*models.QuoteModel, error) {
	req, err := s.GetRequest(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, gorm.ErrRecordNotFound
	}
	if req.BuyerID == sellerID {
		return nil, ErrOwnRequest
	}
	if req.Status != models.MaintenanceStatusOpen && req.Status != models.MaintenanceStatusQuoted {
		return nil, ErrRequestClosed
	}

	quote := models.QuoteModel{
		RequestID:    req.ID,
		SellerID:     sellerID,
		Price:        dto.Price,
		Note:         dto.Note,
		ProposedDate: dto.ProposedDate,
		WarrantyDays: dto.WarrantyDays,
		Status:       models.QuoteStatusPending,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&quote).Error; err != nil {
			return err
		}
		if req.Status == models.MaintenanceStatusOpen {
			if err := tx.Model(req).Update("status", models.MaintenanceStatusQuoted).Error; err != nil {
				return err
			}
		}
		return s.notify.EmitTx(tx, notify.Event{
			UserID:  req.BuyerID,
			Kind:    models.NotifyQuoteReceived,
			Title:   models.Localized{EN: "New quote received", AR: "تم استلام عرض سعر جديد"},
			Body:    models.Localized{EN: "A seller quoted your maintenance request.", AR: "قدم مقدم خدمة عرض سعر لطلب الصيانة الخاص بك."},
			RefType: "request",
			RefID:   req.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// AcceptQuote awards the request to one quote: the chosen quote is accepted,
// its rivals declined, the request awarded and the contract created with its
// binding terms, all in one transaction.
func (s *Service) AcceptQuote(requestID, quoteID, buyerID string, dto *AcceptQuoteDTO) (*models.ContractModel, error) {
	req, err := s.GetRequest(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, gorm.ErrRecordNotFound
	}
	if req.BuyerID != buyerID {
		return nil, ErrNotParty
	}
	if req.Status != models.MaintenanceStatusQuoted {
		return nil, ErrRequestClosed
	}

	var quote models.QuoteModel
	if err := s.db.First(&quote, "id = ? AND request_id = ?", quoteID, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	if quote.Status != models.QuoteStatusPending {
		return nil, ErrQuoteDecided
	}

	c := models.ContractModel{
		BuyerID:   buyerID,
		SellerID:  quote.SellerID,
		RequestID: req.ID,
		QuoteID:   quote.ID,
		Price:     quote.Price,
		Metadata:  models.JSONMap{"warranty_days": quote.WarrantyDays},
	}

	var terms *contract.TermsInput
	if dto != nil {
		terms = dto.Terms
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&quote).Update("status", models.QuoteStatusAccepted).Error; err != nil {
			return err
		}
		err := tx.Model(&models.QuoteModel{}).
			Where("request_id = ? AND id <> ? AND status = ?",
				req.ID, quote.ID, models.QuoteStatusPending).
			Update("status", models.QuoteStatusDeclined).Error
		if err != nil {
			return err
		}
		if err := tx.Model(req).Update("status", models.MaintenanceStatusAwarded).Error; err != nil {
			return err
		}
		return s.contracts.CreateInTx(tx, &c, terms)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("quote accepted",
		zap.String("request", req.ID),
		zap.String("quote", quote.ID),
		zap.String("contract", c.ID))
	return &c, nil
}

// CancelRequest withdraws an un-awarded request.
func (s *Service) CancelRequest(requestID, buyerID string) (*models.MaintenanceRequestModel, error) {
	req, err := s.GetRequest(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, gorm.ErrRecordNotFound
	}
	if req.BuyerID != buyerID {
		return nil, ErrNotParty
	}
	if req.Status == models.MaintenanceStatusAwarded || req.Status == models.MaintenanceStatusCancelled {
		return nil, ErrBadTransition
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(req).Update("status", models.MaintenanceStatusCancelled).Error; err != nil {
			return err
		}
		return tx.Model(&models.QuoteModel{}).
			Where("request_id = ? AND status = ?", req.ID, models.QuoteStatusPending).
			Update("status", models.QuoteStatusDeclined).Error
	})
	if err != nil {
		return nil, err
	}
	req.Status = models.MaintenanceStatusCancelled
	return req, nil
}
