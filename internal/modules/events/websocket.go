package events

import (
	"net/http"
	"strings"
	"time"

	"gearvault/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// TokenVerifier resolves a bearer credential into a principal.
type TokenVerifier interface {
	Verify(token string) (domain.Principal, error)
}

type WSHandler struct {
	hub      *Hub
	verifier TokenVerifier
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewWSHandler accepts browser origins from allowedOrigins; an empty list
// accepts any origin.
func NewWSHandler(hub *Hub, verifier TokenVerifier, allowedOrigins []string, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return &WSHandler{
		hub:      hub,
		verifier: verifier,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowed) == 0 {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

func (h *WSHandler) RegisterRoutes(v1 *gin.RouterGroup) {
	v1.GET("/events/ws", h.HandleWebSocket)
}

// HandleWebSocket streams the caller's equipment events.
//
// Endpoint: GET /api/v1/events/ws?token=JWT (or Authorization: Bearer JWT)
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"code": "AUTH_HEADER_MISSING", "message": "Token is required. Use ?token=YOUR_JWT_TOKEN"},
		})
		return
	}

	principal, err := h.verifier.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_TOKEN", "message": "Invalid or expired token"},
		})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	clientID := h.hub.Register(principal.UserID, conn)
	h.log.Info("websocket connected", zap.Int64("user_id", principal.UserID), zap.String("client_id", clientID))

	defer func() {
		h.hub.Unregister(principal.UserID, clientID)
		h.log.Info("websocket disconnected", zap.Int64("user_id", principal.UserID), zap.String("client_id", clientID))
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go pingLoop(conn, done)

	// the feed is server to client; reads only surface close and pong frames
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read error", zap.Int64("user_id", principal.UserID), zap.Error(err))
			}
			return
		}
	}
}

func pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
