package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	authWait       = 10 * time.Second
	maxMessageSize = 1024
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The bearer credential, not the origin, is the access control here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type connection struct {
	userID int
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
}

// authFrame is the first client frame after upgrade, mirroring the auth
// payload a Socket.IO client sends during its connect handshake.
type authFrame struct {
	Auth struct {
		Token string `json:"token"`
	} `json:"auth"`
}

type accessClaims struct {
	jwt.RegisteredClaims
}

// Server owns the HTTP endpoint that upgrades progress subscriptions.
type Server struct {
	hub    *Hub
	secret []byte
	logger *zap.Logger
}

func NewServer(hub *Hub, jwtSecret string, logger *zap.Logger) *Server {
	return &Server{hub: hub, secret: []byte(jwtSecret), logger: logger}
}

// Start serves the websocket endpoint until ctx is cancelled.
func Start(ctx context.Context, srv *Server, port int, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.HandleConnection)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		logger.Info("websocket server starting", zap.Int("port", port))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("websocket server error", zap.Error(err))
		}
	}()

	return httpSrv
}

func (s *Server) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	userID, err := s.authenticate(conn)
	if err != nil {
		// Hard close without an error payload so channel existence is not
		// leaked to unauthenticated clients.
		conn.Close()
		return
	}

	c := &connection{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		hub:    s.hub,
	}
	s.hub.register(c)

	go c.writePump()
	go c.readPump()
}

// authenticate reads the auth payload from the handshake's first frame and
// verifies the bearer token.
func (s *Server) authenticate(conn *websocket.Conn) (int, error) {
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(authWait)); err != nil {
		return 0, err
	}

	_, raw, err := conn.ReadMessage()
	if err != nil {
		return 0, fmt.Errorf("read auth frame: %w", err)
	}

	var frame authFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return 0, fmt.Errorf("parse auth frame: %w", err)
	}
	if frame.Auth.Token == "" {
		return 0, fmt.Errorf("missing bearer token")
	}

	return s.verifyToken(frame.Auth.Token)
}

func (s *Server) verifyToken(tokenString string) (int, error) {
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("verify token: %w", err)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, fmt.Errorf("invalid subject %q: %w", claims.Subject, err)
	}
	return userID, nil
}

func (c *connection) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Clients only listen; reads exist to notice closes and pongs.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
