package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误分类，决定 HTTP 状态码与展示方式
type Kind int

const (
	KindValidation Kind = iota + 1 // 入参不合法
	KindConflict                   // 名称重复、删除被引用阻止
	KindNotFound
	KindUpstreamUnavailable // 上游未配置或不可达（如缺少 API Key）
	KindDispatchFailure     // 外呼本身失败（已记录历史后再上抛）
	KindInternal
)

// Error 带分类的业务错误
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 创建业务错误
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap 包装底层错误
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Upstream(message string, err error) *Error {
	return Wrap(KindUpstreamUnavailable, message, err)
}

func Dispatch(message string, err error) *Error {
	return Wrap(KindDispatchFailure, message, err)
}

// KindOf 提取错误分类，普通错误视为 Internal
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// HTTPStatus 错误分类对应的 HTTP 状态码
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case KindDispatchFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
