package profile

import (
	"errors"

	"github.com/baytfix/core/internal/middleware"
	"github.com/baytfix/core/internal/models"
	"github.com/baytfix/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UpdateProfileDTO struct {
	DisplayName *models.Localized `json:"display_name"`
	Bio         *models.Localized `json:"bio"`
	Avatar      *string           `json:"avatar"`
	Phone       *string           `json:"phone"`
}

type UpdateSellerDTO struct {
	ServiceCategories *[]string       `json:"service_categories"`
	ServiceRadiusKM   *int            `json:"service_radius_km" binding:"omitempty,min=1,max=500"`
	Availability      *models.JSONMap `json:"availability"`
}

type sellerPublic struct {
	ID                string             `json:"id"`
	DisplayName       models.Localized   `json:"display_name"`
	Bio               models.Localized   `json:"bio"`
	Avatar            string             `json:"avatar"`
	ServiceCategories models.StringArray `json:"service_categories"`
	ServiceRadiusKM   int                `json:"service_radius_km"`
	Availability      models.JSONMap     `json:"availability"`
	RatingAvg         float64            `json:"rating_avg"`
	RatingCount       int                `json:"rating_count"`
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) Update(userID string, dto *UpdateProfileDTO) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.First(&u, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.DisplayName != nil {
		updates["display_name"] = *dto.DisplayName
		u.DisplayName = *dto.DisplayName
	}
	if dto.Bio != nil {
		updates["bio"] = *dto.Bio
		u.Bio = *dto.Bio
	}
	if dto.Avatar != nil {
		updates["avatar"] = *dto.Avatar
		u.Avatar = *dto.Avatar
	}
	if dto.Phone != nil {
		updates["phone"] = *dto.Phone
		u.Phone = *dto.Phone
	}
	if len(updates) == 0 {
		return &u, nil
	}
	return &u, s.db.Model(&u).Updates(updates).Error
}

func (s *Service) GetSeller(userID string) (*models.UserModel, error) {
	var u models.UserModel
	err := s.db.Preload("Profile").
		First(&u, "id = ? AND role = ?", userID, models.RoleSeller).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) UpdateSeller(userID string, dto *UpdateSellerDTO) (*models.SellerProfileModel, error) {
	var p models.SellerProfileModel
	if err := s.db.First(&p, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.ServiceCategories != nil {
		p.ServiceCategories = models.StringArray(*dto.ServiceCategories)
		updates["service_categories"] = p.ServiceCategories
	}
	if dto.ServiceRadiusKM != nil {
		p.ServiceRadiusKM = *dto.ServiceRadiusKM
		updates["service_radius_km"] = p.ServiceRadiusKM
	}
	if dto.Availability != nil {
		p.Availability = *dto.Availability
		updates["availability"] = p.Availability
	}
	if len(updates) == 0 {
		return &p, nil
	}
	return &p, s.db.Model(&p).Updates(updates).Error
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/profile")

	g.GET("/sellers/:id", h.getSeller)

	a := g.Group("", authMW)
	a.PATCH("", h.update)
	a.GET("/seller", middleware.RequireRole(models.RoleSeller), h.getOwnSeller)
	a.PATCH("/seller", middleware.RequireRole(models.RoleSeller), h.updateSeller)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateProfileDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestText(c, err.Error())
		return
	}
	u, err := h.svc.Update(middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, u)
}

func (h *Handler) getSeller(c *gin.Context) {
	u, err := h.svc.GetSeller(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil || u.Profile == nil {
		response.NotFoundMsg(c, response.Msg("Seller not found", "مقدم الخدمة غير موجود"))
		return
	}
	response.OK(c, sellerPublic{
		ID:                u.ID,
		DisplayName:       u.DisplayName,
		Bio:               u.Bio,
		Avatar:            u.Avatar,
		ServiceCategories: u.Profile.ServiceCategories,
		ServiceRadiusKM:   u.Profile.ServiceRadiusKM,
		Availability:      u.Profile.Availability,
		RatingAvg:         u.Profile.RatingAvg,
		RatingCount:       u.Profile.RatingCount,
	})
}

func (h *Handler) getOwnSeller(c *gin.Context) {
	u, err := h.svc.GetSeller(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil || u.Profile == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, u.Profile)
}

func (h *Handler) updateSeller(c *gin.Context) {
	var dto UpdateSellerDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestText(c, err.Error())
		return
	}
	p, err := h.svc.UpdateSeller(middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, p)
}
