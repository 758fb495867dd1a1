package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"remindme/internal/services"
	"remindme/internal/utils"
	"remindme/internal/whatsapp"

	"github.com/gin-gonic/gin"
)

// GatewayWebhookHandler receives lifecycle callbacks from the WhatsApp
// gateway and feeds them to the session manager
type GatewayWebhookHandler struct {
	manager *services.SessionManager
	token   string
}

func NewGatewayWebhookHandler(manager *services.SessionManager) *GatewayWebhookHandler {
	return &GatewayWebhookHandler{
		manager: manager,
		token:   os.Getenv("WA_GATEWAY_WEBHOOK_TOKEN"),
	}
}

// gatewayEvent is the bridge's callback payload
type gatewayEvent struct {
	Session string `json:"session"` // owner ID the bridge session was started with
	Event   string `json:"event"`   // qr_code | authenticated | disconnected | auth_failure
	Code    string `json:"code,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Handle processes one gateway callback
func (h *GatewayWebhookHandler) Handle(c *gin.Context) {
	if h.token != "" && c.GetHeader("X-Webhook-Token") != h.token {
		log.Printf("Rejected gateway callback from %s: bad token", utils.GetRealClientIP(c))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook token"})
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		handleError(c, http.StatusBadRequest, "Failed to read payload", err)
		return
	}

	var payload gatewayEvent
	if err := json.Unmarshal(raw, &payload); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid payload", err)
		return
	}
	if payload.Session == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing session"})
		return
	}

	evt, err := translateGatewayEvent(payload, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.manager.Dispatch(evt)
	c.JSON(http.StatusOK, gin.H{"accepted": true})
}

func translateGatewayEvent(payload gatewayEvent, raw []byte) (whatsapp.Event, error) {
	evt := whatsapp.Event{
		OwnerID: payload.Session,
		Reason:  payload.Reason,
		Raw:     json.RawMessage(raw),
	}

	switch payload.Event {
	case "qr_code":
		evt.Type = whatsapp.EventPairingCode
		evt.PairingCode = payload.Code
	case "authenticated":
		evt.Type = whatsapp.EventAuthenticated
	case "disconnected":
		evt.Type = whatsapp.EventDisconnected
	case "auth_failure":
		evt.Type = whatsapp.EventAuthFailure
	default:
		return evt, fmt.Errorf("unknown gateway event %q", payload.Event)
	}

	return evt, nil
}
