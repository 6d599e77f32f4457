package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"frameworks/api_tunnels/internal/apperrors"
	"frameworks/api_tunnels/internal/wireguard"
	"frameworks/api_tunnels/pkg/logging"
)

type TunnelHandler struct {
	store      TunnelStore
	reconciler TunnelReconciler
	status     wireguard.StatusSource
	logger     logging.Logger
	metrics    *BosunMetrics
}

func NewTunnelHandler(
	store TunnelStore,
	reconciler TunnelReconciler,
	status wireguard.StatusSource,
	logger logging.Logger,
	metrics *BosunMetrics,
) *TunnelHandler {
	return &TunnelHandler{
		store:      store,
		reconciler: reconciler,
		status:     status,
		logger:     logger,
		metrics:    metrics,
	}
}

// Register mounts the tunnel routes on rg (normally /api/wireguard).
func (h *TunnelHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/interfaces", h.ListInterfaces)
	rg.GET("/get_active_interfaces", h.ActiveInterfaces)
	rg.POST("/add", h.Add)
	rg.GET("/get_config", h.GetConfig)
	rg.POST("/modify_config", h.ModifyConfig)
	rg.GET("/start_config", h.StartConfig)
	rg.GET("/stop_config", h.StopConfig)
	rg.POST("/stop_config", h.StopConfig)
	rg.GET("/remove_config", h.RemoveConfig)
	rg.DELETE("/remove_config", h.RemoveConfig)
}

type interfaceRequest struct {
	Interface string `form:"interface" json:"interface"`
}

type addTunnelRequest struct {
	Config string `form:"wg_config" json:"wg_config"`
}

type modifyTunnelRequest struct {
	Interface string `form:"interface" json:"interface"`
	Config    string `form:"config" json:"config"`
}

type tunnelData struct {
	Interface string            `json:"interface"`
	Config    string            `json:"config,omitempty"`
	Summary   *wireguard.Config `json:"summary,omitempty"`
}

// interfaceParam binds and validates the interface parameter before any
// collaborator runs.
func (h *TunnelHandler) interfaceParam(c *gin.Context) (string, error) {
	var req interfaceRequest
	if err := bind(c, &req); err != nil {
		return "", err
	}
	if req.Interface == "" {
		return "", apperrors.Validation("interface name is required")
	}
	if err := wireguard.ValidateInterfaceName(req.Interface); err != nil {
		return "", err
	}
	return req.Interface, nil
}

func (h *TunnelHandler) fail(c *gin.Context, operation string, err error) {
	h.metrics.IncTunnel(operation, apperrors.KindOf(err).String())
	respondError(c, h.logger, err)
}

func (h *TunnelHandler) ListInterfaces(c *gin.Context) {
	names, err := h.store.List()
	if err != nil {
		h.fail(c, "list", err)
		return
	}
	h.metrics.IncTunnel("list", statusSuccess)
	respondOK(c, http.StatusOK, "", names)
}

func (h *TunnelHandler) ActiveInterfaces(c *gin.Context) {
	names, err := h.status.ActiveInterfaces(c.Request.Context())
	if err != nil {
		h.fail(c, "active", err)
		return
	}
	h.metrics.IncTunnel("active", statusSuccess)
	respondOK(c, http.StatusOK, "", names)
}

func (h *TunnelHandler) Add(c *gin.Context) {
	var req addTunnelRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, "add", err)
		return
	}
	if req.Config == "" {
		h.fail(c, "add", apperrors.Validation("no configuration provided"))
		return
	}

	iface, body, err := h.store.Add(c.Request.Context(), req.Config)
	if err != nil {
		h.fail(c, "add", err)
		return
	}
	h.metrics.IncTunnel("add", statusSuccess)
	respondOK(c, http.StatusCreated, fmt.Sprintf("WireGuard interface %s added", iface), tunnelData{Interface: iface, Config: body})
}

// GetConfig returns the raw config in message and a summary in data.
func (h *TunnelHandler) GetConfig(c *gin.Context) {
	iface, err := h.interfaceParam(c)
	if err != nil {
		h.fail(c, "get_config", err)
		return
	}
	text, err := h.store.Read(iface)
	if err != nil {
		h.fail(c, "get_config", err)
		return
	}
	summary := wireguard.Summarize(text)
	h.metrics.IncTunnel("get_config", statusSuccess)
	respondOK(c, http.StatusOK, text, tunnelData{Interface: iface, Summary: &summary})
}

func (h *TunnelHandler) ModifyConfig(c *gin.Context) {
	var req modifyTunnelRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, "modify", err)
		return
	}
	if req.Interface == "" || req.Config == "" {
		h.fail(c, "modify", apperrors.Validation("interface and config are required"))
		return
	}
	if err := wireguard.ValidateInterfaceName(req.Interface); err != nil {
		h.fail(c, "modify", err)
		return
	}

	body, out, err := h.reconciler.ReplaceConfig(c.Request.Context(), req.Interface, req.Config)
	if err != nil {
		h.fail(c, "modify", err)
		return
	}
	h.metrics.IncTunnel("modify", string(out.Status))
	c.JSON(http.StatusOK, Response{
		Status:    statusSuccess,
		Message:   fmt.Sprintf("WireGuard config %s modified", req.Interface),
		Data:      tunnelData{Interface: req.Interface, Config: body},
		ErrorCode: code(out.Code),
	})
}

func (h *TunnelHandler) StartConfig(c *gin.Context) {
	iface, err := h.interfaceParam(c)
	if err != nil {
		h.fail(c, "up", err)
		return
	}
	out, err := h.reconciler.BringUp(c.Request.Context(), iface)
	if err != nil {
		h.fail(c, "up", err)
		return
	}
	h.metrics.IncTunnel("up", string(out.Status))
	respondOutcome(c, fmt.Sprintf("%s brought up successfully", iface), out)
}

func (h *TunnelHandler) StopConfig(c *gin.Context) {
	iface, err := h.interfaceParam(c)
	if err != nil {
		h.fail(c, "down", err)
		return
	}
	out, err := h.reconciler.BringDown(c.Request.Context(), iface)
	if err != nil {
		h.fail(c, "down", err)
		return
	}
	h.metrics.IncTunnel("down", string(out.Status))
	respondOutcome(c, fmt.Sprintf("%s brought down successfully", iface), out)
}

func (h *TunnelHandler) RemoveConfig(c *gin.Context) {
	iface, err := h.interfaceParam(c)
	if err != nil {
		h.fail(c, "remove", err)
		return
	}
	redirected, err := h.reconciler.RemoveInterface(iface)
	if err != nil {
		h.fail(c, "remove", err)
		return
	}
	h.metrics.IncTunnel("remove", statusSuccess)
	respondOK(c, http.StatusOK, fmt.Sprintf("WireGuard interface '%s' removed successfully.", iface), gin.H{
		"interface":            iface,
		"redirected_listeners": redirected,
	})
}
