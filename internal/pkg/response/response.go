package response

import (
	"net/http"
	"strconv"

	"ingest-console/internal/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// Success 200 响应，payload 放在 data 字段
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created 201 响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// Page 分页响应
func Page(c *gin.Context, data interface{}, total int64, page, perPage int) {
	c.JSON(http.StatusOK, gin.H{
		"data":     data,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// Message 200 响应，仅携带提示信息
func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// Deleted 删除成功响应
func Deleted(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// Error 按错误分类返回对应状态码
func Error(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
}

// BadRequest 400 响应
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// NotFound 404 响应
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"error": msg})
}

// Unauthorized 401 响应
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// Conflict 409 响应
func Conflict(c *gin.Context, msg string) {
	c.JSON(http.StatusConflict, gin.H{"error": msg})
}

// InternalError 500 响应
func InternalError(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// ParsePagination 解析分页参数，越界时回退默认值
func ParsePagination(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return
}

// ParseID 解析路径中的整型 ID，失败时已写出 400 响应
func ParseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		BadRequest(c, "invalid "+param)
		return 0, false
	}
	return uint(id), true
}
