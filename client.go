package main

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBufSize    = 256
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	sendOnce   sync.Once
	id         string
	remoteAddr string
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// NewClient creates a new Client with a fresh connection id
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	id := uuid.NewString()
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		id:         id,
		remoteAddr: remoteAddr,
		limiter:    rate.NewLimiter(rate.Limit(hub.cfg.MessagesPerSecond), hub.cfg.MessageBurst),
		log:        hub.log.With().Str("conn", id).Logger(),
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.hub.Release(c.remoteAddr)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("ws read error")
			}
			break
		}

		if !c.limiter.Allow() {
			messagesDropped.WithLabelValues("rate_limit").Inc()
			continue
		}
		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 0xFF prefix marks binary frames from SendBinary
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error().Err(err).Msg("marshal")
		return
	}
	c.sendRaw(data)
}

// SendBinary sends pre-encoded bytes as a binary WebSocket message
func (c *Client) SendBinary(data []byte) {
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	c.sendRaw(msg)
}

func (c *Client) sendRaw(data []byte) {
	defer func() { recover() }() // send on closed channel after disconnect
	select {
	case c.send <- data:
	default:
		// client too slow, drop message
	}
}

func (c *Client) closeSend() {
	c.sendOnce.Do(func() { close(c.send) })
}

func (c *Client) reply(id int64, data interface{}) {
	c.SendJSON(Envelope{T: MsgReply, ID: id, Data: data})
}

// handleMessage routes one request and answers it with a reply envelope
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		messagesDropped.WithLabelValues("malformed").Inc()
		c.log.Debug().Err(err).Msg("unmarshal")
		return
	}

	switch env.T {
	case MsgLogin:
		c.handleLogin(env)
	case MsgResume:
		c.handleResume(env)
	case MsgJoin:
		c.handleJoin(env)
	case MsgLeave:
		c.handleLeave(env)
	case MsgAction:
		c.handleAction(env)
	case MsgGetColors:
		c.handleGetColors(env)
	case MsgConsole:
		c.handleConsole(env)
	default:
		messagesDropped.WithLabelValues("malformed").Inc()
	}
}

func (c *Client) handleLogin(env InEnvelope) {
	var msg LoginMsg
	if err := json.Unmarshal(env.D, &msg); err != nil {
		c.reply(env.ID, LoginReply{OK: false})
		return
	}
	c.login(env.ID, msg.Name)
}

func (c *Client) handleResume(env InEnvelope) {
	var msg ResumeMsg
	if err := json.Unmarshal(env.D, &msg); err != nil {
		c.reply(env.ID, LoginReply{OK: false})
		return
	}
	name, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.log.Debug().Err(err).Msg("resume rejected")
		c.reply(env.ID, LoginReply{OK: false})
		return
	}
	c.login(env.ID, name)
}

func (c *Client) login(id int64, name string) {
	if err := c.hub.game.Login(c.id, name); err != nil {
		c.log.Debug().Err(err).Str("name", name).Msg("login rejected")
		c.reply(id, LoginReply{OK: false})
		return
	}
	token, err := c.hub.auth.IssueToken(name)
	if err != nil {
		// the login stands, the client just cannot resume later
		c.log.Error().Err(err).Msg("issue token")
	}
	c.log.Info().Str("name", name).Msg("logged in")
	c.reply(id, LoginReply{OK: true, Name: name, Token: token})
}

func (c *Client) handleJoin(env InEnvelope) {
	if err := c.hub.game.Join(c.id); err != nil {
		if !errors.Is(err, ErrArenaFull) {
			c.log.Debug().Err(err).Msg("join rejected")
		}
		c.reply(env.ID, ReplyFailed)
		return
	}
	c.reply(env.ID, ReplyJoined)
}

func (c *Client) handleLeave(env InEnvelope) {
	if err := c.hub.game.Leave(c.id); err != nil {
		c.reply(env.ID, ReplyFailed)
		return
	}
	c.reply(env.ID, ReplyLeft)
}

func (c *Client) handleAction(env InEnvelope) {
	var msg ActionMsg
	if err := json.Unmarshal(env.D, &msg); err != nil {
		messagesDropped.WithLabelValues("malformed").Inc()
		return
	}
	c.hub.game.Action(c.id, msg.Code)
}

func (c *Client) handleGetColors(env InEnvelope) {
	var msg ColorsMsg
	if err := json.Unmarshal(env.D, &msg); err != nil {
		c.reply(env.ID, []string{})
		return
	}
	c.reply(env.ID, c.hub.game.Colors(msg.Names))
}

func (c *Client) handleConsole(env InEnvelope) {
	var msg ConsoleMsg
	if err := json.Unmarshal(env.D, &msg); err != nil || !c.hub.auth.CheckConsole(msg.Password) {
		c.log.Warn().Msg("console password rejected")
		c.reply(env.ID, ConsoleReply{OK: false})
		return
	}
	c.hub.game.SubscribeConsole(c.id)
	c.reply(env.ID, ConsoleReply{OK: true})
}
