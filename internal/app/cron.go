package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/baytfix/core/internal/modules/content/blog"
	pkgcron "github.com/baytfix/core/internal/pkg/cron"
)

// registerCronJobs registers all scheduled background jobs.
func (a *App) registerCronJobs(blogSvc *blog.Service) {
	log := a.logger.Named("cron")

	a.sched.Register(pkgcron.Job{
		Name:        "publish_scheduled_blogs",
		Description: "Publish blog posts whose scheduled time has passed",
		Interval:    time.Minute,
		Fn: func(ctx context.Context) error {
			n, err := blogSvc.PublishScheduled()
			if err != nil {
				log.Warn("scheduled publish sweep failed", zap.Error(err))
				return err
			}
			if n > 0 {
				log.Info("published scheduled blogs", zap.Int64("count", n))
			}
			return nil
		},
	})
}
