package controller

import (
	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	apperrors "github.com/ikkim/sangjo-partner-backend/internal/errors"
	"github.com/ikkim/sangjo-partner-backend/internal/middleware"
	ws "github.com/ikkim/sangjo-partner-backend/internal/websocket"
)

type WSController struct {
	hub      *ws.Hub
	upgrader *gorillaws.Upgrader
}

func NewWSController(hub *ws.Hub, allowedOrigins []string) *WSController {
	return &WSController{
		hub:      hub,
		upgrader: ws.NewUpgrader(allowedOrigins),
	}
}

// Connect 새 리드/상태 변경 알림. 브라우저는 헤더를 못 붙이니 ?token= 으로 인증한다
// GET /api/ws
func (ctrl *WSController) Connect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	session, ok := middleware.GetSession(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, session.PartnerID, session.IsAdmin())
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("WebSocket connection established", map[string]interface{}{
		"partner_id": session.PartnerID,
		"admin":      session.IsAdmin(),
	})
}
