package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SystemHandler 系统级操作
type SystemHandler struct {
	shutdownChan chan struct{}
}

// NewSystemHandler 创建系统处理器
func NewSystemHandler(shutdownChan chan struct{}) *SystemHandler {
	return &SystemHandler{shutdownChan: shutdownChan}
}

// Restart 优雅重启。先回 202，再通知主进程退出，
// 容器编排的 restart 策略负责拉起新进程。
func (h *SystemHandler) Restart(c *gin.Context) {
	c.JSON(http.StatusAccepted, gin.H{"message": "server is restarting"})

	// 稍作延迟，保证响应先刷给客户端
	go func() {
		time.Sleep(500 * time.Millisecond)
		select {
		case h.shutdownChan <- struct{}{}:
		default:
			// 已在关闭流程中
		}
	}()
}
