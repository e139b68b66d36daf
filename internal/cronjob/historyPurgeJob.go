package cronjob

import (
	"time"

	"ingest-console/internal/logger"
	"ingest-console/internal/service"
)

// HistoryPurgeJob 按保留期清理 Webhook 触发历史
type HistoryPurgeJob struct {
	retentionDays int
	webhook       *service.WebhookService
}

// NewHistoryPurgeJob 创建历史清理任务
func NewHistoryPurgeJob(retentionDays int) *HistoryPurgeJob {
	return &HistoryPurgeJob{
		retentionDays: retentionDays,
		webhook:       service.NewWebhookService(),
	}
}

func (j *HistoryPurgeJob) Run() {
	if j.retentionDays <= 0 {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -j.retentionDays)
	deleted, err := j.webhook.PurgeHistoryBefore(cutoff)
	if err != nil {
		logger.Errorf("history purge: %v", err)
		return
	}
	if deleted > 0 {
		logger.Infof("history purge: removed %d records older than %d days", deleted, j.retentionDays)
	}
}
