// Package notify owns the in-app notification feed and its best-effort
// push/email side channels.
package notify

import (
	"time"

	"github.com/baytfix/core/internal/middleware"
	"github.com/baytfix/core/internal/models"
	"github.com/baytfix/core/internal/pkg/mail"
	"github.com/baytfix/core/internal/pkg/pagination"
	"github.com/baytfix/core/internal/pkg/push"
	"github.com/baytfix/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Event is one notification to deliver to a user.
type Event struct {
	UserID  string
	Kind    string
	Title   models.Localized
	Body    models.Localized
	RefType string
	RefID   string
}

type Service struct {
	db     *gorm.DB
	push   *push.Service
	mailer *mail.Sender
	log    *zap.Logger
}

func NewService(db *gorm.DB, pushSvc *push.Service, mailer *mail.Sender, log *zap.Logger) *Service {
	return &Service{db: db, push: pushSvc, mailer: mailer, log: log}
}

// Emit inserts the notification row and fires push/email without blocking
// the caller. The insert is the only part that matters for correctness;
// side-channel failures are logged and dropped.
func (s *Service) Emit(ev Event) {
	row := models.NotificationModel{
		UserID:  ev.UserID,
		Kind:    ev.Kind,
		Title:   ev.Title,
		Body:    ev.Body,
		RefType: ev.RefType,
		RefID:   ev.RefID,
	}
	if err := s.db.Create(&row).Error; err != nil {
		s.log.Error("notification insert failed",
			zap.String("kind", ev.Kind),
			zap.String("user", ev.UserID),
			zap.Error(err))
		return
	}

	go s.deliver(ev)
}

// EmitTx inserts the notification inside the caller's transaction, for
// operations that must not commit without their notification row.
func (s *Service) EmitTx(tx *gorm.DB, ev Event) error {
	row := models.NotificationModel{
		UserID:  ev.UserID,
		Kind:    ev.Kind,
		Title:   ev.Title,
		Body:    ev.Body,
		RefType: ev.RefType,
		RefID:   ev.RefID,
	}
	if err := tx.Create(&row).Error; err != nil {
		return err
	}
	go s.deliver(ev)
	return nil
}

func (s *Service) deliver(ev Event) {
	var user models.UserModel
	if err := s.db.Select("id, email, push_token").First(&user, "id = ?", ev.UserID).Error; err != nil {
		return
	}

	if s.push != nil && user.PushToken != "" {
		if err := s.push.Push(user.PushToken, ev.Title.EN, ev.Body.EN); err != nil {
			s.log.Debug("push delivery failed", zap.String("user", ev.UserID), zap.Error(err))
		}
	}

	if s.mailer != nil && user.Email != "" {
		err := s.mailer.Send(mail.Message{
			To:      []string{user.Email},
			Subject: ev.Title.EN,
			HTML:    "<p>" + ev.Body.EN + "</p><p dir=\"rtl\">" + ev.Body.AR + "</p>",
		})
		if err != nil {
			s.log.Debug("mail delivery failed", zap.String("user", ev.UserID), zap.Error(err))
		}
	}
}

// List returns a user's notifications, newest first.
func (s *Service) List(userID string, q pagination.Query, unreadOnly bool) ([]models.NotificationModel, response.Pagination, error) {
	tx := s.db.Model(&models.NotificationModel{}).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if unreadOnly {
		tx = tx.Where("read_at IS NULL")
	}
	var out []models.NotificationModel
	page, err := pagination.Paginate(tx, q, &out)
	return out, page, err
}

func (s *Service) UnreadCount(userID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.NotificationModel{}).
		Where("user_id = ? AND read_at IS NULL", userID).Count(&count).Error
	return count, err
}

func (s *Service) MarkRead(userID, id string) (bool, error) {
	res := s.db.Model(&models.NotificationModel{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, userID).
		Update("read_at", time.Now())
	return res.RowsAffected > 0, res.Error
}

func (s *Service) MarkAllRead(userID string) (int64, error) {
	res := s.db.Model(&models.NotificationModel{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", time.Now())
	return res.RowsAffected, res.Error
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/notifications", authMW)

	g.GET("", h.list)
	g.GET("/unread-count", h.unreadCount)
	g.PATCH("/:id/read", h.markRead)
	g.PATCH("/read-all", h.markAllRead)
}

func (h *Handler) list(c *gin.Context) {
	out, page, err := h.svc.List(
		middleware.CurrentUserID(c),
		pagination.FromContext(c),
		c.Query("unread") == "true",
	)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, out, page)
}

func (h *Handler) unreadCount(c *gin.Context) {
	count, err := h.svc.UnreadCount(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"count": count})
}

func (h *Handler) markRead(c *gin.Context) {
	ok, err := h.svc.MarkRead(middleware.CurrentUserID(c), c.Param("id"))
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

func (h *Handler) markAllRead(c *gin.Context) {
	n, err := h.svc.MarkAllRead(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"updated": n})
}
