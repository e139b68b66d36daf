package cronjob

import (
	"time"

	"ingest-console/internal/config"
	"ingest-console/internal/logger"
	"ingest-console/internal/model"
	"ingest-console/internal/service"
)

// FeedPollJob 检查到期的 RSS 源并触发外部轮询工作流。
// 抓取由 n8n 完成，本服务只负责按周期踢一脚。
type FeedPollJob struct {
	cfg      config.N8NConfig
	workflow *service.WorkflowService
}

// NewFeedPollJob 创建 RSS 到期检查任务
func NewFeedPollJob(cfg config.N8NConfig) *FeedPollJob {
	return &FeedPollJob{
		cfg:      cfg,
		workflow: service.NewWorkflowService(cfg),
	}
}

func (j *FeedPollJob) Run() {
	if j.cfg.PollerWorkflow == "" {
		return
	}

	var feeds []model.RSSFeed
	if err := model.DB.Where("is_active = ?", true).Find(&feeds).Error; err != nil {
		logger.Errorf("feed poll: failed to load feeds: %v", err)
		return
	}

	now := time.Now()
	var due []model.RSSFeed
	for _, f := range feeds {
		if f.FetchDue(now) {
			due = append(due, f)
		}
	}
	if len(due) == 0 {
		return
	}

	payload := map[string]interface{}{
		"feeds": feedPayload(due),
	}
	if _, err := j.workflow.Trigger(j.cfg.PollerWorkflow, payload); err != nil {
		logger.Errorf("feed poll: failed to trigger workflow %q: %v", j.cfg.PollerWorkflow, err)
		return
	}

	// 触发成功即更新拉取时间，避免下一轮重复触发
	ids := make([]uint, len(due))
	for i, f := range due {
		ids[i] = f.ID
	}
	if err := model.DB.Model(&model.RSSFeed{}).Where("id IN ?", ids).Update("last_fetched_at", now).Error; err != nil {
		logger.Errorf("feed poll: failed to update last_fetched_at: %v", err)
		return
	}

	logger.Infof("feed poll: triggered %q for %d due feeds", j.cfg.PollerWorkflow, len(due))
}

func feedPayload(feeds []model.RSSFeed) []map[string]interface{} {
	items := make([]map[string]interface{}, len(feeds))
	for i, f := range feeds {
		items[i] = map[string]interface{}{
			"id":       f.ID,
			"name":     f.Name,
			"url":      f.URL,
			"category": f.Category,
		}
	}
	return items
}
