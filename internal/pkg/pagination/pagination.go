package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/baytfix/core/internal/pkg/response"
)

// Marketplace and feed listings stay small; the cap keeps one oversized
// "size" param from dragging a whole table over the wire.
const (
	DefaultSize = 20
	MaxSize     = 50
)

// Query is a normalized page request.
type Query struct {
	Page int
	Size int
}

// FromContext reads the page/size query params, falling back to defaults.
func FromContext(c *gin.Context) Query {
	return Query{
		Page: atoiOr(c.Query("page"), 1),
		Size: atoiOr(c.Query("size"), DefaultSize),
	}.normalized()
}

func (q Query) normalized() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Size < 1 {
		q.Size = DefaultSize
	}
	if q.Size > MaxSize {
		q.Size = MaxSize
	}
	return q
}

func (q Query) offset() int { return (q.Page - 1) * q.Size }

// Paginate runs the count and the windowed find for the given query and
// assembles the page metadata. The caller's filters and ordering apply to
// both statements.
func Paginate[T any](db *gorm.DB, q Query, dest *[]T) (response.Pagination, error) {
	q = q.normalized()

	var total int64
	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return response.Pagination{}, err
	}
	if err := db.Offset(q.offset()).Limit(q.Size).Find(dest).Error; err != nil {
		return response.Pagination{}, err
	}

	totalPage := int((total + int64(q.Size) - 1) / int64(q.Size))
	return response.Pagination{
		Total:       total,
		CurrentPage: q.Page,
		TotalPage:   totalPage,
		Size:        q.Size,
		HasNextPage: int64(q.offset()+len(*dest)) < total,
	}, nil
}

func atoiOr(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
