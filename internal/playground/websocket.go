package playground

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"textorder/internal/evaluation"
	"textorder/internal/models"
	"textorder/internal/processing"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 64 * 1024
)

// Message types
const (
	TypeParse            = "parse"
	TypeEvaluate         = "evaluate"
	TypeParseResult      = "parse_result"
	TypeEvaluationResult = "evaluation_result"
	TypeError            = "error"
)

// Request is a message sent by the client. An empty type means parse.
type Request struct {
	Type     string `json:"type,omitempty"`
	ID       string `json:"id,omitempty"`
	Text     string `json:"text,omitempty"`
	Parser   string `json:"parser,omitempty"`
	Scenario string `json:"scenario,omitempty"`
}

// Response is a message sent to the client
type Response struct {
	Type       string                       `json:"type"`
	ID         string                       `json:"id,omitempty"`
	Parser     string                       `json:"parser,omitempty"`
	Order      *models.Order                `json:"order,omitempty"`
	Result     *processing.Result           `json:"result,omitempty"`
	Evaluation *evaluation.EvaluationResult `json:"evaluation,omitempty"`
	Error      string                       `json:"error,omitempty"`
}

// WSConnection maintains the WebSocket connection with the client
type WSConnection struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	ctx    context.Context
	cancel context.CancelFunc
	server *PlaygroundServer
}

// handleWebSocket handles WebSocket connections
func (s *PlaygroundServer) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket_upgrade_failed", map[string]any{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	wsConn := &WSConnection{
		conn:   conn,
		send:   make(chan []byte, 256),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
		server: s,
	}
	s.logger.Debug("websocket_connected", map[string]any{"remote": c.Request.RemoteAddr})

	// Start the read and write pumps
	go wsConn.writePump()
	go wsConn.readPump()
}

func (c *WSConnection) close() {
	c.once.Do(func() {
		c.cancel()
		close(c.done)
		c.conn.Close()
	})
}

// readPump pumps messages from the WebSocket connection to the handler
func (c *WSConnection) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.logger.Warn("websocket_read_failed", map[string]any{"error": err.Error()})
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the server to the WebSocket connection
func (c *WSConnection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// handleMessage processes incoming messages
func (c *WSConnection) handleMessage(message []byte) {
	var req Request
	if err := json.Unmarshal(message, &req); err != nil {
		c.sendError("", "invalid message: "+err.Error())
		return
	}

	switch req.Type {
	case "", TypeParse:
		go c.parse(req)
	case TypeEvaluate:
		go c.evaluate(req)
	default:
		c.sendError(req.ID, "unknown message type: "+req.Type)
	}
}

func (c *WSConnection) parse(req Request) {
	mode, err := processing.ParseMode(req.Parser)
	if err != nil {
		c.sendError(req.ID, err.Error())
		return
	}

	result, err := c.server.processor.Process(c.ctx, req.Text, mode)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.sendError(req.ID, err.Error())
		return
	}
	c.sendResponse(Response{
		Type:   TypeParseResult,
		ID:     req.ID,
		Parser: result.PreferredParser(),
		Order:  result.Preferred(),
		Result: result,
	})
}

func (c *WSConnection) evaluate(req Request) {
	mode, err := processing.ParseMode(req.Parser)
	if err != nil {
		c.sendError(req.ID, err.Error())
		return
	}
	p, err := c.server.processor.Parser(mode)
	if err != nil {
		c.sendError(req.ID, err.Error())
		return
	}

	result, err := c.server.evaluator.EvaluateParser(c.ctx, string(mode), p, req.Scenario)
	if err != nil {
		c.sendError(req.ID, err.Error())
		return
	}
	c.sendResponse(Response{
		Type:       TypeEvaluationResult,
		ID:         req.ID,
		Parser:     string(mode),
		Evaluation: result,
	})
}

// sendResponse queues a message for the client
func (c *WSConnection) sendResponse(resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		c.server.logger.Error("websocket_marshal_failed", err, nil)
		return
	}

	select {
	case c.send <- data:
	case <-c.done:
	default:
		c.server.logger.Warn("websocket_buffer_full", map[string]any{"type": resp.Type})
	}
}

// sendError sends an error message to the client
func (c *WSConnection) sendError(id, message string) {
	c.sendResponse(Response{Type: TypeError, ID: id, Error: message})
}
