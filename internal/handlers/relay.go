package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"frameworks/api_tunnels/internal/apperrors"
)

// GenerateCommand shows the relay command line without starting anything.
// An empty ledger yields the bare relay binary.
func (h *ListenerHandler) GenerateCommand(c *gin.Context) {
	cmd, err := h.command()
	if err != nil {
		h.fail(c, "command", err)
		return
	}
	h.metrics.IncListener("command", statusSuccess)
	respondOK(c, http.StatusOK, "", cmd.String())
}

func (h *ListenerHandler) Start(c *gin.Context) {
	cmd, err := h.command()
	if err != nil {
		h.fail(c, "start", err)
		return
	}
	if cmd.Empty() {
		h.fail(c, "start", apperrors.Validation("no listeners configured"))
		return
	}
	res, err := h.launcher.Start(c.Request.Context(), cmd)
	if err != nil {
		h.fail(c, "start", err)
		return
	}
	if res.AlreadyRunning {
		h.metrics.IncListener("start", statusWarning)
		c.JSON(http.StatusOK, Response{Status: statusWarning, Message: "relay is already running"})
		return
	}
	h.metrics.IncListener("start", statusSuccess)
	respondOK(c, http.StatusOK, "relay started", gin.H{"command": cmd.String()})
}

func (h *ListenerHandler) Status(c *gin.Context) {
	running, err := h.launcher.IsRunning(c.Request.Context())
	if err != nil {
		h.fail(c, "status", err)
		return
	}
	message := "relay is not running"
	if running {
		message = "relay is running"
	}
	respondOK(c, http.StatusOK, message, gin.H{"running": running})
}

func (h *ListenerHandler) Stop(c *gin.Context) {
	n, err := h.launcher.StopAll(c.Request.Context())
	if err != nil {
		h.fail(c, "stop", err)
		return
	}
	h.metrics.IncListener("stop", statusSuccess)
	message := "relay stopped"
	if n == 0 {
		message = "relay was not running"
	}
	respondOK(c, http.StatusOK, message, gin.H{"stopped": n})
}
