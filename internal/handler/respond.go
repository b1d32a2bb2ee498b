package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recycleadmin/internal/form"
	"recycleadmin/internal/qr"
	"recycleadmin/internal/schedule"
	"recycleadmin/internal/store"
	"recycleadmin/pkg/logger"
	"recycleadmin/pkg/util"
)

// statusFor 错误到 HTTP 状态码
func statusFor(err error) int {
	var fe form.FieldErrors
	var insufficient *qr.InsufficientPointsError
	switch {
	case errors.As(err, &fe), errors.Is(err, schedule.ErrUnknownStatus):
		return http.StatusBadRequest
	case errors.Is(err, schedule.ErrNotConfirmed):
		return http.StatusPreconditionRequired
	case errors.Is(err, schedule.ErrIllegalTransition), errors.Is(err, schedule.ErrMarkerActionInvalid):
		return http.StatusConflict
	case errors.Is(err, qr.ErrReplayed):
		return http.StatusConflict
	case errors.Is(err, schedule.ErrScheduleNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, qr.ErrExpired), errors.Is(err, qr.ErrInvalidCode), errors.Is(err, qr.ErrMissingUID):
		return http.StatusUnprocessableEntity
	case errors.As(err, &insufficient):
		return http.StatusUnprocessableEntity
	case errors.Is(err, schedule.ErrMarkersClosed):
		return http.StatusGone
	}

	switch util.ClassifyError(err) {
	case util.KindTransport, util.KindRejected, util.KindCircuitOpen, util.KindDecode:
		return http.StatusBadGateway
	case util.KindCanceled:
		return 499
	}
	return http.StatusInternalServerError
}

// errorBody 错误响应体
func errorBody(err error) gin.H {
	body := gin.H{"error": err.Error()}

	var fe form.FieldErrors
	var insufficient *qr.InsufficientPointsError
	switch {
	case errors.As(err, &fe):
		body["error"] = "invalid form"
		body["fields"] = fe
	case errors.Is(err, schedule.ErrNotConfirmed):
		body["error"] = "confirmation_required"
		body["details"] = err.Error()
	case errors.As(err, &insufficient):
		body["balance"] = insufficient.Balance
		body["requested"] = insufficient.Requested
	default:
		if kind := util.ClassifyError(err); kind != util.KindUnknown {
			body["kind"] = kind
		}
	}
	return body
}

// respondError 记录日志并写错误响应；操作员可纠正的错误只记 Warn
func respondError(c *gin.Context, log *zap.Logger, action string, err error) {
	status := statusFor(err)
	l := logger.WithTrace(c.Request.Context(), log)
	if status >= http.StatusInternalServerError {
		l.Error(action+" failed", zap.Int("status", status), zap.Error(err))
	} else {
		l.Warn(action+" rejected", zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, errorBody(err))
}

// bindForm 解析 JSON 请求体，失败时直接写 400
func bindForm(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return false
	}
	return true
}

// pathID 解析 :id
func pathID(c *gin.Context, log *zap.Logger) (int, bool) {
	id, err := form.ParseID("id", c.Param("id"))
	if err != nil {
		respondError(c, log, "parse id", err)
		return 0, false
	}
	return id, true
}

// confirmed 读取 ?confirm=true
func confirmed(c *gin.Context) bool {
	switch c.Query("confirm") {
	case "1", "true", "yes":
		return true
	}
	return false
}
