package cronjob

import (
	"time"

	"ingest-console/internal/config"

	"github.com/robfig/cron/v3"
)

// CronJob 后台定时任务调度器
type CronJob struct {
	cron *cron.Cron
}

// NewCronJob 创建调度器
func NewCronJob() *CronJob {
	return &CronJob{}
}

// Start 注册并启动全部定时任务
func (c *CronJob) Start(cfg *config.Config) error {
	c.cron = cron.New(cron.WithLocation(time.Local))
	c.cron.Start()

	// RSS 到期检查 (每分钟)
	if _, err := c.cron.AddJob("@every 1m", NewFeedPollJob(cfg.N8N)); err != nil {
		return err
	}
	// Webhook 历史清理 (每天)
	if _, err := c.cron.AddJob("@daily", NewHistoryPurgeJob(cfg.Cron.HistoryRetentionDays)); err != nil {
		return err
	}

	return nil
}

// Stop 停止调度器
func (c *CronJob) Stop() {
	if c.cron != nil {
		c.cron.Stop()
	}
}
