package handler

import (
	"ingest-console/internal/config"
	"ingest-console/internal/service"
)

// Handlers 聚合全部处理器
type Handlers struct {
	Tag        *TagHandler
	DataSource *DataSourceHandler
	RSS        *RSSHandler
	Dataset    *DatasetHandler
	Webhook    *WebhookHandler
	Setting    *SettingHandler
	RagFlow    *RagFlowHandler
	Workflow   *WorkflowHandler
	Health     *HealthHandler
	System     *SystemHandler
}

// NewHandlers 创建全部处理器
func NewHandlers(cfg *config.Config, version string, shutdownChan chan struct{}) *Handlers {
	routing := service.NewRoutingService()

	return &Handlers{
		Tag:        NewTagHandler(service.NewTagService()),
		DataSource: NewDataSourceHandler(),
		RSS:        NewRSSHandler(),
		Dataset:    NewDatasetHandler(routing),
		Webhook:    NewWebhookHandler(service.NewWebhookService()),
		Setting:    NewSettingHandler(),
		RagFlow:    NewRagFlowHandler(service.NewRagFlowService(cfg.RagFlow, routing)),
		Workflow:   NewWorkflowHandler(service.NewWorkflowService(cfg.N8N)),
		Health:     NewHealthHandler(service.NewHealthService(cfg, version)),
		System:     NewSystemHandler(shutdownChan),
	}
}
