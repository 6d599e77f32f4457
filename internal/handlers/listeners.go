package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"frameworks/api_tunnels/internal/apperrors"
	"frameworks/api_tunnels/internal/ledger"
	"frameworks/api_tunnels/internal/relay"
	"frameworks/api_tunnels/pkg/logging"
)

type ListenerHandler struct {
	ledger   ListenerLedger
	lister   InterfaceLister
	launcher RelayLauncher
	relayBin string
	logger   logging.Logger
	metrics  *BosunMetrics
}

func NewListenerHandler(
	ledger ListenerLedger,
	lister InterfaceLister,
	launcher RelayLauncher,
	relayBin string,
	logger logging.Logger,
	metrics *BosunMetrics,
) *ListenerHandler {
	return &ListenerHandler{
		ledger:   ledger,
		lister:   lister,
		launcher: launcher,
		relayBin: relayBin,
		logger:   logger,
		metrics:  metrics,
	}
}

// Register mounts the listener and relay routes on rg (normally /api/gost).
func (h *ListenerHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/get_config", h.GetConfig)
	rg.POST("/add_config", h.AddConfig)
	rg.POST("/edit_config", h.EditConfig)
	rg.GET("/remove_config", h.RemoveConfig)
	rg.POST("/remove_config", h.RemoveConfig)
	rg.DELETE("/remove_config", h.RemoveConfig)
	rg.GET("/get_interfaces", h.GetInterfaces)
	rg.GET("/generate_command", h.GenerateCommand)
	rg.POST("/start", h.Start)
	rg.GET("/status", h.Status)
	rg.POST("/stop", h.Stop)
}

type listenerRequest struct {
	ID        string `form:"id" json:"id"`
	Username  string `form:"username" json:"username"`
	Password  string `form:"password" json:"password"`
	Port      string `form:"port" json:"port"`
	Interface string `form:"interface" json:"interface"`
}

func (r listenerRequest) input() ledger.Input {
	return ledger.Input{Username: r.Username, Password: r.Password, Port: r.Port, Interface: r.Interface}
}

func (r listenerRequest) complete() bool {
	return r.Username != "" && r.Password != "" && r.Port != "" && r.Interface != ""
}

type listQuery struct {
	Format string `form:"format"`
}

func parseID(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperrors.Validation("no id specified")
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, apperrors.Validation("id %q is not a positive integer", raw)
	}
	return id, nil
}

func (h *ListenerHandler) fail(c *gin.Context, operation string, err error) {
	h.metrics.IncListener(operation, apperrors.KindOf(err).String())
	respondError(c, h.logger, err)
}

func (h *ListenerHandler) refreshGauge() {
	records, err := h.ledger.ListAll()
	if err != nil {
		return
	}
	h.metrics.SetListeners(len(records))
}

// GetConfig lists the ledger. format=rows returns positional value rows
// instead of objects.
func (h *ListenerHandler) GetConfig(c *gin.Context) {
	var q listQuery
	_ = c.ShouldBindQuery(&q)

	records, err := h.ledger.ListAll()
	if err != nil {
		h.fail(c, "list", err)
		return
	}
	h.metrics.IncListener("list", statusSuccess)
	h.metrics.SetListeners(len(records))

	if q.Format == "rows" {
		rows := make([][]string, len(records))
		for i, r := range records {
			rows[i] = []string{strconv.Itoa(r.ID), r.Username, r.Password, r.Port, r.Interface}
		}
		respondOK(c, http.StatusOK, "", rows)
		return
	}
	respondOK(c, http.StatusOK, "", records)
}

func (h *ListenerHandler) AddConfig(c *gin.Context) {
	var req listenerRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, "add", err)
		return
	}
	if !req.complete() {
		h.fail(c, "add", apperrors.Validation("all fields are required"))
		return
	}

	rec, err := h.ledger.AddItem(c.Request.Context(), req.input())
	if err != nil {
		h.fail(c, "add", err)
		return
	}
	h.metrics.IncListener("add", statusSuccess)
	h.refreshGauge()
	respondOK(c, http.StatusOK, "Configuration added successfully", rec)
}

func (h *ListenerHandler) EditConfig(c *gin.Context) {
	var req listenerRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, "edit", err)
		return
	}
	id, err := parseID(req.ID)
	if err != nil {
		h.fail(c, "edit", err)
		return
	}
	if !req.complete() {
		h.fail(c, "edit", apperrors.Validation("all fields are required"))
		return
	}

	rec, err := h.ledger.EditItem(id, req.input())
	if err != nil {
		h.fail(c, "edit", err)
		return
	}
	h.metrics.IncListener("edit", statusSuccess)
	respondOK(c, http.StatusOK, fmt.Sprintf("Item with ID %d has been updated", id), rec)
}

func (h *ListenerHandler) RemoveConfig(c *gin.Context) {
	var req listenerRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, "remove", err)
		return
	}
	id, err := parseID(req.ID)
	if err != nil {
		h.fail(c, "remove", err)
		return
	}
	if err := h.ledger.RemoveItemByID(id); err != nil {
		h.fail(c, "remove", err)
		return
	}
	h.metrics.IncListener("remove", statusSuccess)
	h.refreshGauge()
	respondOK(c, http.StatusOK, fmt.Sprintf("Item with ID %d has been removed", id), nil)
}

func (h *ListenerHandler) GetInterfaces(c *gin.Context) {
	names, err := h.lister.Interfaces(c.Request.Context())
	if err != nil {
		h.fail(c, "interfaces", apperrors.IO(err, "failed to list network interfaces"))
		return
	}
	respondOK(c, http.StatusOK, "", names)
}

func (h *ListenerHandler) command() (relay.Command, error) {
	specs, err := h.ledger.ToCommandFragments()
	if err != nil {
		return relay.Command{}, err
	}
	return relay.NewCommand(h.relayBin, specs), nil
}
