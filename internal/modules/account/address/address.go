package address

import (
	"errors"

	"github.com/baytfix/core/internal/middleware"
	"github.com/baytfix/core/internal/models"
	"github.com/baytfix/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AddressDTO struct {
	Label     string  `json:"label" binding:"required"`
	City      string  `json:"city" binding:"required"`
	District  string  `json:"district"`
	Street    string  `json:"street"`
	Building  string  `json:"building"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	IsDefault bool    `json:"is_default"`
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(userID string) ([]models.AddressModel, error) {
	var out []models.AddressModel
	err := s.db.Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").Find(&out).Error
	return out, err
}

func (s *Service) Create(userID string, dto *AddressDTO) (*models.AddressModel, error) {
	addr := models.AddressModel{
		UserID:    userID,
		Label:     dto.Label,
		City:      dto.City,
		District:  dto.District,
		Street:    dto.Street,
		Building:  dto.Building,
		Latitude:  dto.Latitude,
		Longitude: dto.Longitude,
		IsDefault: dto.IsDefault,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.AddressModel{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		// The first saved address is always the default.
		if count == 0 {
			addr.IsDefault = true
		}
		if addr.IsDefault {
			if err := clearDefault(tx, userID); err != nil {
				return err
			}
		}
		return tx.Create(&addr).Error
	})
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func (s *Service) Update(userID, id string, dto *AddressDTO) (*models.AddressModel, error) {
	var addr models.AddressModel
	if err := s.db.First(&addr, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	addr.Label = dto.Label
	addr.City = dto.City
	addr.District = dto.District
	addr.Street = dto.Street
	addr.Building = dto.Building
	addr.Latitude = dto.Latitude
	addr.Longitude = dto.Longitude

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if dto.IsDefault && !addr.IsDefault {
			if err := clearDefault(tx, userID); err != nil {
				return err
			}
			addr.IsDefault = true
		}
		return tx.Save(&addr).Error
	})
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

// SetDefault marks one address default and clears the flag on the rest,
// both inside one transaction so exactly one default survives.
func (s *Service) SetDefault(userID, id string) (*models.AddressModel, error) {
	var addr models.AddressModel
	if err := s.db.First(&addr, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := clearDefault(tx, userID); err != nil {
			return err
		}
		return tx.Model(&addr).Update("is_default", true).Error
	})
	if err != nil {
		return nil, err
	}
	addr.IsDefault = true
	return &addr, nil
}

func (s *Service) Delete(userID, id string) (bool, error) {
	res := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.AddressModel{})
	return res.RowsAffected > 0, res.Error
}

func clearDefault(tx *gorm.DB, userID string) error {
	return tx.Model(&models.AddressModel{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/addresses", authMW)

	g.GET("", h.list)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.PATCH("/:id/default", h.setDefault)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	out, err := h.svc.List(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, out)
}

func (h *Handler) create(c *gin.Context) {
	var dto AddressDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestText(c, err.Error())
		return
	}
	addr, err := h.svc.Create(middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, addr)
}

func (h *Handler) update(c *gin.Context) {
	var dto AddressDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestText(c, err.Error())
		return
	}
	addr, err := h.svc.Update(middleware.CurrentUserID(c), c.Param("id"), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if addr == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, addr)
}

func (h *Handler) setDefault(c *gin.Context) {
	addr, err := h.svc.SetDefault(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if addr == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, addr)
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.Delete(middleware.CurrentUserID(c), c.Param("id"))
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
