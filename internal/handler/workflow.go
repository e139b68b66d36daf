package handler

import (
	"strconv"

	"ingest-console/internal/pkg/response"
	"ingest-console/internal/service"

	"github.com/gin-gonic/gin"
)

// WorkflowHandler 工作流引擎桥接
type WorkflowHandler struct {
	workflow *service.WorkflowService
}

// NewWorkflowHandler 创建工作流处理器
func NewWorkflowHandler(workflow *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflow: workflow}
}

// Status 获取全部工作流状态
func (h *WorkflowHandler) Status(c *gin.Context) {
	workflows, err := h.workflow.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, workflows)
}

// Get 获取单个工作流
func (h *WorkflowHandler) Get(c *gin.Context) {
	workflow, err := h.workflow.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, workflow)
}

// Activate 激活工作流
func (h *WorkflowHandler) Activate(c *gin.Context) {
	if err := h.workflow.Activate(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "workflow activated")
}

// Deactivate 停用工作流
func (h *WorkflowHandler) Deactivate(c *gin.Context) {
	if err := h.workflow.Deactivate(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "workflow deactivated")
}

// Executions 获取执行记录
func (h *WorkflowHandler) Executions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	workflowID := c.Query("workflow_id")

	executions, err := h.workflow.Executions(workflowID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, executions)
}

// Trigger 按名称触发工作流
func (h *WorkflowHandler) Trigger(c *gin.Context) {
	name := c.Param("name")

	var payload map[string]interface{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			return
		}
	}

	result, err := h.workflow.Trigger(name, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
