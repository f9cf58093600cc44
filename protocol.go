package main

import "encoding/json"

// Client -> Server message types
const (
	MsgLogin     = "login"
	MsgResume    = "resume"
	MsgJoin      = "join"
	MsgLeave     = "leave"
	MsgAction    = "action"
	MsgGetColors = "getColors"
	MsgConsole   = "console" // also pushed server -> client once subscribed
)

// Server -> Client message types
const (
	MsgReply   = "reply"
	MsgFrame   = "frame"
	MsgInfo    = "info"
	MsgCanJoin = "canjoin"
	MsgQueue   = "queue"
	MsgRanking = "ranking"
)

// join/leave reply codes understood by the client
const (
	ReplyFailed = 0
	ReplyJoined = 1
	ReplyLeft   = 2
)

// Envelope wraps all outgoing JSON messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	ID   int64       `json:"id,omitempty"` // request id, replies only
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages
type InEnvelope struct {
	T  string          `json:"t"`
	ID int64           `json:"id,omitempty"`
	D  json.RawMessage `json:"d,omitempty"`
}

// LoginMsg asks to enter the spectator queue under a name
type LoginMsg struct {
	Name string `json:"name"`
}

// LoginReply answers a login or resume
type LoginReply struct {
	OK    bool   `json:"ok"`
	Name  string `json:"name,omitempty"`
	Token string `json:"token,omitempty"`
}

// ResumeMsg re-logs a name with a token from an earlier login
type ResumeMsg struct {
	Token string `json:"token"`
}

// ActionMsg carries one steering transition
type ActionMsg struct {
	Code ActionCode `json:"code"`
}

// ColorsMsg asks for the colors of active ships
type ColorsMsg struct {
	Names []string `json:"names"`
}

// ConsoleMsg subscribes to debug lines
type ConsoleMsg struct {
	Password string `json:"password"`
}

// ConsoleReply answers a console subscription
type ConsoleReply struct {
	OK bool `json:"ok"`
}

// ShipState is the truncated per-ship view broadcast each tick
type ShipState struct {
	Color string  `json:"c" msgpack:"c"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	Speed float64 `json:"s" msgpack:"s"`
	Angle float64 `json:"a" msgpack:"a"`
	HP    float64 `json:"hp" msgpack:"hp"`
	FP    float64 `json:"fp" msgpack:"fp"`
}

// ProjectileState is the truncated per-projectile view
type ProjectileState struct {
	Diameter float64 `json:"d" msgpack:"d"`
	Power    float64 `json:"p" msgpack:"p"`
	Color    string  `json:"c" msgpack:"c"`
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
}

// Frame is the full state broadcast, sent as a binary msgpack message
type Frame struct {
	Ships       []ShipState       `json:"ships" msgpack:"ships"`
	Projectiles []ProjectileState `json:"balls" msgpack:"balls"`
	Tick        uint64            `json:"tick" msgpack:"tick"`
}
