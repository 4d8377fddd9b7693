package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/baytfix/core/internal/middleware"
	"github.com/baytfix/core/internal/modules/account/address"
	"github.com/baytfix/core/internal/modules/account/profile"
	"github.com/baytfix/core/internal/modules/auth"
	"github.com/baytfix/core/internal/modules/content/blog"
	"github.com/baytfix/core/internal/modules/content/bulkimport"
	"github.com/baytfix/core/internal/modules/marketplace/booking"
	"github.com/baytfix/core/internal/modules/marketplace/contract"
	"github.com/baytfix/core/internal/modules/marketplace/review"
	"github.com/baytfix/core/internal/modules/notify"
	"github.com/baytfix/core/internal/modules/storage/file"
	"github.com/baytfix/core/internal/pkg/mail"
	"github.com/baytfix/core/internal/pkg/push"
	pkgredis "github.com/baytfix/core/internal/pkg/redis"
	"github.com/baytfix/core/internal/pkg/response"
)

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router
	db := a.db
	authMW := middleware.Auth()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	// Rate limiting and idempotence run on every route (requires Redis).
	r.Use(middleware.RateLimit(rc.Raw()))
	r.Use(middleware.Idempotence(rc.Raw()))

	var pushSvc *push.Service
	if a.cfg.Push.Enable {
		pushCfg := a.cfg.Push
		pushSvc = push.New(func() (serverURL, apiKey, appName string) {
			return pushCfg.ServerURL, pushCfg.APIKey, pushCfg.AppName
		})
	}
	mailer := mail.New(a.cfg.Mail)

	// Shared services
	notifySvc := notify.NewService(db, pushSvc, mailer, a.logger)
	contractSvc := contract.NewService(db, notifySvc, a.logger)
	bookingSvc := booking.NewService(db, contractSvc, notifySvc, a.logger)
	blogSvc := blog.NewService(db, a.logger)

	api := r.Group("/api/v1")
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })

	// Accounts
	auth.NewHandler(auth.NewService(db)).RegisterRoutes(api, authMW)
	profile.NewHandler(profile.NewService(db)).RegisterRoutes(api, authMW)
	address.NewHandler(address.NewService(db)).RegisterRoutes(api, authMW)

	// Content
	blog.NewHandler(blogSvc).RegisterRoutes(api, authMW)
	bulkimport.NewHandler(bulkimport.NewService(db, a.logger)).RegisterRoutes(api, authMW)

	// Marketplace
	booking.NewHandler(bookingSvc).RegisterRoutes(api, authMW)
	contract.NewHandler(contractSvc).RegisterRoutes(api, authMW)
	review.NewHandler(review.NewService(db, notifySvc, a.logger)).RegisterRoutes(api, authMW)

	// Notifications & uploads
	notify.NewHandler(notifySvc).RegisterRoutes(api, authMW)
	file.NewHandler(a.cfg, a.logger).RegisterRoutes(api, authMW)

	a.registerCronJobs(blogSvc)
}
