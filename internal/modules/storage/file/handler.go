package file

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/baytfix/core/internal/config"
	"github.com/baytfix/core/internal/middleware"
	"github.com/baytfix/core/internal/pkg/response"
)

// Handler serves and accepts user uploads: avatars, work photos, signature
// images and documents. Objects go to S3 when configured, otherwise to the
// local static directory.
type Handler struct {
	cfg      *config.AppConfig
	uploader *Uploader
	log      *zap.Logger
}

func NewHandler(cfg *config.AppConfig, log *zap.Logger) *Handler {
	h := &Handler{cfg: cfg, log: log}
	if cfg.S3.Enable {
		uploader, err := NewUploader(cfg.S3)
		if err != nil {
			log.Warn("s3 storage unavailable, falling back to local static dir", zap.Error(err))
		} else {
			h.uploader = uploader
		}
	}
	return h
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/files")
	g.GET("/:type/:name", h.get)
	g.POST("/upload", authMW, h.upload)
	g.GET("/:type", authMW, middleware.RequireRole("admin"), h.list)
	g.DELETE("/:type/:name", authMW, middleware.RequireRole("admin"), h.delete)
}

var msgFileRequired = response.Msg("A file is required", "الملف مطلوب")

func (h *Handler) upload(c *gin.Context) {
	typ := normalizeTypeDefault(c.Query("type"), "file")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, msgFileRequired)
		return
	}

	if err := validateUpload(fileHeader.Filename, fileHeader.Size, h.cfg.Uploads); err != nil {
		response.BadRequest(c, response.Msg(err.Error(), "الملف غير مقبول"))
		return
	}

	filename := buildFileName(fileHeader.Filename)

	if h.uploader != nil {
		src, err := fileHeader.Open()
		if err != nil {
			response.InternalError(c, err)
			return
		}
		defer src.Close()
		payload, err := io.ReadAll(src)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		// Size from the multipart header can lie; re-check the real payload.
		if err := validateUpload(fileHeader.Filename, int64(len(payload)), h.cfg.Uploads); err != nil {
			response.BadRequest(c, response.Msg(err.Error(), "الملف غير مقبول"))
			return
		}

		key := buildObjectKey(typ, filename, time.Now())
		contentType := detectContentType(fileHeader.Filename, payload, fileHeader.Header.Get("Content-Type"))
		url, err := h.uploader.Upload(c.Request.Context(), key, payload, contentType)
		if err != nil {
			h.log.Error("s3 upload failed", zap.String("key", key), zap.Error(err))
			response.InternalError(c, err)
			return
		}
		response.OK(c, gin.H{
			"url":     url,
			"name":    filename,
			"storage": "s3",
		})
		return
	}

	dir := filepath.Join(h.cfg.StaticDir, typ)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		response.InternalError(c, err)
		return
	}
	if err := c.SaveUploadedFile(fileHeader, filepath.Join(dir, filename)); err != nil {
		response.InternalError(c, err)
		return
	}

	response.OK(c, gin.H{
		"url":     "/api/v1/files/" + typ + "/" + filename,
		"name":    filename,
		"storage": "local",
	})
}

func (h *Handler) get(c *gin.Context) {
	typ := normalizeType(c.Param("type"))
	name := safeName(c.Param("name"))
	if typ == "" || name == "" {
		response.NotFound(c)
		return
	}

	path := filepath.Join(h.cfg.StaticDir, typ, name)
	if _, err := os.Stat(path); err != nil {
		response.NotFound(c)
		return
	}

	// Names are content-addressed so the payload never changes.
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.File(path)
}

type fileEntry struct {
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

func (h *Handler) list(c *gin.Context) {
	typ := normalizeType(c.Param("type"))
	if typ == "" {
		response.NotFound(c)
		return
	}

	entries, err := os.ReadDir(filepath.Join(h.cfg.StaticDir, typ))
	if err != nil {
		if os.IsNotExist(err) {
			response.OK(c, []fileEntry{})
			return
		}
		response.InternalError(c, err)
		return
	}

	files := make([]fileEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, fileEntry{
			Name:     entry.Name(),
			URL:      "/api/v1/files/" + typ + "/" + entry.Name(),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Modified.After(files[j].Modified) })

	response.OK(c, files)
}

func (h *Handler) delete(c *gin.Context) {
	typ := normalizeType(c.Param("type"))
	name := safeName(c.Param("name"))
	if typ == "" || name == "" {
		response.NotFound(c)
		return
	}

	if err := os.Remove(filepath.Join(h.cfg.StaticDir, typ, name)); err != nil && !os.IsNotExist(err) {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
