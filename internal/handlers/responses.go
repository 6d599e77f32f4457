package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"frameworks/api_tunnels/internal/apperrors"
	"frameworks/api_tunnels/internal/wireguard"
	"frameworks/api_tunnels/pkg/logging"
	"frameworks/api_tunnels/pkg/middleware"
)

const (
	statusSuccess = "success"
	statusWarning = "warning"
	statusError   = "error"
)

// Response is the envelope every API route answers with.
type Response struct {
	Status       string      `json:"status"`
	Message      string      `json:"message,omitempty"`
	Data         interface{} `json:"data,omitempty"`
	ErrorCode    *int        `json:"error_code,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

func code(n int) *int { return &n }

func respondOK(c *gin.Context, httpStatus int, message string, data interface{}) {
	c.JSON(httpStatus, Response{Status: statusSuccess, Message: message, Data: data})
}

// respondOutcome answers a lifecycle call that did not fail.
func respondOutcome(c *gin.Context, message string, out wireguard.Outcome) {
	status := statusSuccess
	if out.Status == wireguard.OutcomeWarning {
		status = statusWarning
	}
	c.JSON(http.StatusOK, Response{Status: status, Message: message, ErrorCode: code(out.Code)})
}

// respondError maps err onto the envelope and logs it at a level matching
// the status class.
func respondError(c *gin.Context, logger logging.Logger, err error) {
	httpStatus := apperrors.HTTPStatus(err)
	resp := Response{Status: statusError, Message: err.Error()}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		resp.Message = appErr.Message
		if appErr.Kind == apperrors.KindExternalTool {
			resp.ErrorCode = code(appErr.ExitCode)
			resp.ErrorMessage = appErr.Stderr
		}
	}
	if httpStatus >= http.StatusInternalServerError && appErr == nil {
		resp.Message = "internal error"
	}

	entry := middleware.GetContextLogger(c, logger).WithFields(logging.Fields{
		"error":      err.Error(),
		"error_kind": apperrors.KindOf(err).String(),
		"status":     httpStatus,
	})
	if resp.ErrorCode != nil {
		entry = entry.WithField("exit_code", *resp.ErrorCode)
	}
	if httpStatus >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	c.JSON(httpStatus, resp)
}

// bind decodes form, query or JSON input; failures are validation errors.
func bind(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBind(dst); err != nil {
		return apperrors.Validation("invalid request: %v", err)
	}
	return nil
}
