package blog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/baytfix/core/internal/models"
	"github.com/baytfix/core/internal/modules/content/blockmd"
	"github.com/baytfix/core/internal/pkg/pagination"
	"github.com/baytfix/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrSlugTaken     = errors.New("slug already in use")
	ErrInvalidSlug   = errors.New("invalid slug")
	ErrInvalidBlocks = errors.New("invalid block sequence")
	ErrScheduleInput = errors.New("scheduled post needs a future scheduled_at")
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// ListPublished returns published posts for the public site.
func (s *Service) ListPublished(q pagination.Query, f ListQuery) ([]models.BlogModel, response.Pagination, error) {
	tx := s.db.Model(&models.BlogModel{}).
		Where("status = ?", models.BlogStatusPublished).
		Order("published_at DESC")
	tx = applyFilters(tx, f)

	var out []models.BlogModel
	page, err := pagination.Paginate(tx, q, &out)
	return out, page, err
}

// ListAll returns posts in every status, for the admin editor.
func (s *Service) ListAll(q pagination.Query, f ListQuery) ([]models.BlogModel, response.Pagination, error) {
	tx := s.db.Model(&models.BlogModel{}).Order("created_at DESC")
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	tx = applyFilters(tx, f)

	var out []models.BlogModel
	page, err := pagination.Paginate(tx, q, &out)
	return out, page, err
}

func applyFilters(tx *gorm.DB, f ListQuery) *gorm.DB {
	if f.Category != "" {
		tx = tx.Where("category = ?", f.Category)
	}
	if f.Tag != "" {
		tx = tx.Where("tags LIKE ?", "%\""+f.Tag+"\"%")
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		tx = tx.Where("slug LIKE ? OR title LIKE ?", like, like)
	}
	return tx
}

// GetBySlug fetches one post. Unpublished posts are only visible when
// includeHidden is set (admin callers).
func (s *Service) GetBySlug(slug string, includeHidden bool) (*models.BlogModel, error) {
	tx := s.db.Where("slug = ?", slug)
	if !includeHidden {
		tx = tx.Where("status = ?", models.BlogStatusPublished)
	}
	var post models.BlogModel
	if err := tx.First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (s *Service) GetByID(id string) (*models.BlogModel, error) {
	var post models.BlogModel
	if err := s.db.First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// IncrementRead bumps the read counter without touching updated_at.
func (s *Service) IncrementRead(id string) {
	err := s.db.Model(&models.BlogModel{}).Where("id = ?", id).
		UpdateColumn("read_count", gorm.Expr("read_count + 1")).Error
	if err != nil {
		s.log.Warn("read count bump failed", zap.String("id", id), zap.Error(err))
	}
}

func (s *Service) Create(authorID string, dto *CreateBlogDTO) (*models.BlogModel, error) {
	slug := strings.TrimSpace(dto.Slug)
	if slug == "" {
		slug = Slugify(dto.Title.EN)
	}
	if !ValidSlug(slug) {
		return nil, ErrInvalidSlug
	}
	dto.BlocksEN = dto.BlocksEN.EnsureIDs()
	dto.BlocksAR = dto.BlocksAR.EnsureIDs()
	if err := validateBlocks(dto.BlocksEN, dto.BlocksAR); err != nil {
		return nil, err
	}

	taken, err := s.SlugExists(slug, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}

	post := models.BlogModel{
		Slug:       slug,
		Title:      dto.Title,
		Excerpt:    dto.Excerpt,
		BlocksEN:   dto.BlocksEN,
		BlocksAR:   dto.BlocksAR,
		SEOTitle:   dto.SEOTitle,
		SEODesc:    dto.SEODesc,
		Category:   dto.Category,
		Tags:       models.StringArray(dto.Tags),
		CoverImage: dto.CoverImage,
		Status:     models.BlogStatusDraft,
		AuthorID:   authorID,
	}
	// Blocks are canonical; the flattened markdown pair is always derived.
	post.Content = models.Localized{
		EN: blockmd.Render(post.BlocksEN),
		AR: blockmd.Render(post.BlocksAR),
	}

	if dto.Status != "" {
		if err := applyStatus(&post, dto.Status, dto.ScheduledAt); err != nil {
			return nil, err
		}
	}

	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *Service) Update(id string, dto *UpdateBlogDTO) (*models.BlogModel, error) {
	post, err := s.GetByID(id)
	if err != nil || post == nil {
		return post, err
	}

	if dto.Slug != nil && *dto.Slug != post.Slug {
		slug := strings.TrimSpace(*dto.Slug)
		if !ValidSlug(slug) {
			return nil, ErrInvalidSlug
		}
		taken, err := s.SlugExists(slug, post.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrSlugTaken
		}
		post.Slug = slug
	}
	if dto.Title != nil {
		post.Title = *dto.Title
	}
	if dto.Excerpt != nil {
		post.Excerpt = *dto.Excerpt
	}
	if dto.SEOTitle != nil {
		post.SEOTitle = *dto.SEOTitle
	}
	if dto.SEODesc != nil {
		post.SEODesc = *dto.SEODesc
	}
	if dto.Category != nil {
		post.Category = *dto.Category
	}
	if dto.Tags != nil {
		post.Tags = models.StringArray(*dto.Tags)
	}
	if dto.CoverImage != nil {
		post.CoverImage = *dto.CoverImage
	}

	blocksTouched := false
	if dto.BlocksEN != nil {
		post.BlocksEN = *dto.BlocksEN
		blocksTouched = true
	}
	if dto.BlocksAR != nil {
		post.BlocksAR = *dto.BlocksAR
		blocksTouched = true
	}
	if blocksTouched {
		post.BlocksEN = post.BlocksEN.EnsureIDs()
		post.BlocksAR = post.BlocksAR.EnsureIDs()
		if err := validateBlocks(post.BlocksEN, post.BlocksAR); err != nil {
			return nil, err
		}
		post.Content = models.Localized{
			EN: blockmd.Render(post.BlocksEN),
			AR: blockmd.Render(post.BlocksAR),
		}
	}

	if dto.Status != nil {
		if err := applyStatus(post, *dto.Status, dto.ScheduledAt); err != nil {
			return nil, err
		}
	} else if dto.ScheduledAt != nil && post.Status == models.BlogStatusScheduled {
		post.ScheduledAt = dto.ScheduledAt
	}

	return post, s.db.Save(post).Error
}

func (s *Service) Delete(id string) (bool, error) {
	res := s.db.Where("id = ?", id).Delete(&models.BlogModel{})
	return res.RowsAffected > 0, res.Error
}

// SlugExists reports whether another post already uses the slug.
func (s *Service) SlugExists(slug, excludeID string) (bool, error) {
	tx := s.db.Model(&models.BlogModel{}).Where("slug = ?", slug)
	if excludeID != "" {
		tx = tx.Where("id <> ?", excludeID)
	}
	var count int64
	err := tx.Count(&count).Error
	return count > 0, err
}

// PublishScheduled flips scheduled posts whose time has passed to published.
// Called from the cron scheduler; returns how many posts were published.
func (s *Service) PublishScheduled() (int64, error) {
	now := time.Now()
	res := s.db.Model(&models.BlogModel{}).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?",
			models.BlogStatusScheduled, now).
		Updates(map[string]interface{}{
			"status":       models.BlogStatusPublished,
			"published_at": now,
			"scheduled_at": nil,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		s.log.Info("scheduled posts published", zap.Int64("count", res.RowsAffected))
	}
	return res.RowsAffected, nil
}

func applyStatus(post *models.BlogModel, status string, scheduledAt *time.Time) error {
	switch status {
	case models.BlogStatusPublished:
		if post.PublishedAt == nil {
			now := time.Now()
			post.PublishedAt = &now
		}
		post.ScheduledAt = nil
	case models.BlogStatusScheduled:
		if scheduledAt != nil {
			post.ScheduledAt = scheduledAt
		}
		if post.ScheduledAt == nil || !post.ScheduledAt.After(time.Now()) {
			return ErrScheduleInput
		}
	case models.BlogStatusDraft:
		post.ScheduledAt = nil
	}
	post.Status = status
	return nil
}

func validateBlocks(lists ...models.BlockList) error {
	for _, l := range lists {
		if err := l.ValidateIDs(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBlocks, err)
		}
	}
	return nil
}
