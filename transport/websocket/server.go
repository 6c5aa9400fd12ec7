package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

type sessionManager interface {
	Create() *usecase.Session
	Close(id string) error
}

type handlerFunc func(c *client, session *usecase.Session, msg *Message) error

// Server binds every WebSocket connection to its own game session.
type Server struct {
	logger   *slog.Logger
	sessions sessionManager
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, sessions sessionManager) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionMove] = server.handleMove
	server.handlers[actionUndo] = server.handleUndo
	server.handlers[actionReset] = server.handleReset
	server.handlers[actionState] = server.handleState
	server.handlers[actionMystery] = server.handleMystery
	server.handlers[actionSound] = server.handleSound

	return server
}

// ServeHTTP - upgrades the connection and plays one session over it until the peer goes away.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	session := that.sessions.Create()
	c := newClient(that.logger.With("session_id", session.ID), conn)

	unsubscribe := session.Engine.Subscribe(func(event tictactoe.Event) {
		that.pushEvent(c, event)
	})

	defer func() {
		unsubscribe()
		c.close()

		if err = that.sessions.Close(session.ID); err != nil {
			log.Error("failed to close session", "session_id", session.ID, "error", err)
		}
	}()

	go c.writePump()

	log.Info("WebSocket connection established", "session_id", session.ID)

	state := session.Engine.State()
	that.sendMessage(c, actionConnect, ResponsePayload{SessionID: session.ID, State: &state})

	that.handleMessages(c, session)
}

// handleMessages - processes messages from the client until the connection fails.
func (that *Server) handleMessages(c *client, session *usecase.Session) {
	log := that.logger.With("method", "handleMessages", "session_id", session.ID)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}

			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			that.sendErrorResponse(c, actionError, "malformed message")
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			that.sendErrorResponse(c, message.Action, apperror.ErrUnknownAction.Error())
			continue
		}

		if err = handler(c, session, &message); err != nil {
			that.handleError(c, message.Action, err)
		}
	}
}

func (that *Server) pushEvent(c *client, event tictactoe.Event) {
	data, err := encode(eventAction(event), event)
	if err != nil {
		that.logger.Error("failed to encode event", "event", event.Type, "error", err)
		return
	}

	c.enqueue(data)
}

func (that *Server) sendMessage(c *client, action string, payload ResponsePayload) {
	data, err := encode(action, payload)
	if err != nil {
		that.logger.Error("failed to encode response", "action", action, "error", err)
		return
	}

	c.enqueue(data)
}

func (that *Server) sendErrorResponse(c *client, action, errorMsg string) {
	that.sendMessage(c, action, ResponsePayload{Error: errorMsg})
}
