package models

import "encoding/json"

// Client → server message types.
const (
	MsgTypeHelloWeb = "hello_web"
	MsgTypeState    = "state"
	MsgTypeMic      = "mic"
	MsgTypeMute     = "mute"
	MsgTypeTeamV    = "teamv"
	MsgTypeTeam     = "team"
	MsgTypeSetName  = "set_name"
	MsgTypePos      = "pos"
	MsgTypeSignal   = "signal"
	MsgTypePing     = "ping"
)

// Server → client message types.
const (
	MsgTypePlayers      = "players"
	MsgTypeRoom         = "room"
	MsgTypePong         = "pong"
	MsgTypeError        = "error"
	MsgTypeNotification = "notification"
	MsgTypeProximity    = "proximity_update"
)

// VoiceState is the state block reported by game clients on identification
// and on later state messages.
type VoiceState struct {
	Mute      bool   `json:"mute"`
	Team      bool   `json:"team"`
	TeamColor string `json:"teamColor,omitempty"`
}

// Inbound is the closed set of messages a connection may send. Adding a
// message kind means adding a variant here and a case in the hub dispatch.
type Inbound interface{ inbound() }

type Hello struct{ ClientID string }

type StateUpdate struct{ State VoiceState }

type MicToggle struct{ On bool }

type MuteSet struct{ Muted bool }

type TeamVoice struct{ Enabled bool }

type TeamSet struct{ Color string }

type NameSet struct{ Name string }

type PosUpdate struct{ Pos Position }

type SignalRequest struct {
	To      string
	Action  string
	Payload json.RawMessage
}

type PingProbe struct{ Timestamp int64 }

// UnknownMessage carries a type the server does not recognize. It is
// ignored rather than rejected so older servers tolerate newer clients.
type UnknownMessage struct{ Type string }

func (Hello) inbound()          {}
func (StateUpdate) inbound()    {}
func (MicToggle) inbound()      {}
func (MuteSet) inbound()        {}
func (TeamVoice) inbound()      {}
func (TeamSet) inbound()        {}
func (NameSet) inbound()        {}
func (PosUpdate) inbound()      {}
func (SignalRequest) inbound()  {}
func (PingProbe) inbound()      {}
func (UnknownMessage) inbound() {}

// Decoded is one parsed inbound frame. Player is the game-client identity
// carrier and may accompany any message type; the hub uses it to identify
// a connection on its first frame.
type Decoded struct {
	Player string
	Msg    Inbound
}

// envelope covers every field any inbound type may carry. Several fields
// are aliased across client generations: mute and pos historically arrived
// under "data", teamv under either "enabled" or "data".
type envelope struct {
	Type      string          `json:"type"`
	Player    string          `json:"player"`
	ClientID  string          `json:"clientId"`
	Data      json.RawMessage `json:"data"`
	State     json.RawMessage `json:"state"`
	Enabled   *bool           `json:"enabled"`
	Color     string          `json:"color"`
	Name      string          `json:"name"`
	Pos       json.RawMessage `json:"pos"`
	To        string          `json:"to"`
	Action    string          `json:"action"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

// Decode parses a raw frame into its message variant. It returns an error
// only for unparsable JSON; recognized types with missing or mistyped
// optional fields decode to their zero values and unknown types decode to
// UnknownMessage.
func Decode(raw []byte) (Decoded, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Decoded{}, err
	}

	d := Decoded{Player: env.Player}

	switch env.Type {
	case MsgTypeHelloWeb:
		d.Msg = Hello{ClientID: env.ClientID}

	case MsgTypeState:
		d.Msg = StateUpdate{State: decodeVoiceState(env.Data, env.State)}

	case MsgTypeMic:
		var on bool
		unmarshalLax(env.State, &on)
		d.Msg = MicToggle{On: on}

	case MsgTypeMute:
		var muted bool
		unmarshalLax(env.Data, &muted)
		d.Msg = MuteSet{Muted: muted}

	case MsgTypeTeamV:
		enabled := false
		if env.Enabled != nil {
			enabled = *env.Enabled
		} else {
			unmarshalLax(env.Data, &enabled)
		}
		d.Msg = TeamVoice{Enabled: enabled}

	case MsgTypeTeam:
		d.Msg = TeamSet{Color: env.Color}

	case MsgTypeSetName:
		d.Msg = NameSet{Name: env.Name}

	case MsgTypePos:
		var pos Position
		if len(env.Pos) > 0 {
			unmarshalLax(env.Pos, &pos)
		} else {
			unmarshalLax(env.Data, &pos)
		}
		d.Msg = PosUpdate{Pos: pos}

	case MsgTypeSignal:
		d.Msg = SignalRequest{To: env.To, Action: env.Action, Payload: env.Payload}

	case MsgTypePing:
		d.Msg = PingProbe{Timestamp: env.Timestamp}

	default:
		d.Msg = UnknownMessage{Type: env.Type}
	}

	return d, nil
}

// unmarshalLax decodes into dst, leaving dst untouched when raw is absent
// or of the wrong shape.
func unmarshalLax(raw json.RawMessage, dst any) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, dst)
}

// decodeVoiceState prefers the "data" block and falls back to "state",
// matching the game client's identification frames.
func decodeVoiceState(data, state json.RawMessage) VoiceState {
	var vs VoiceState
	if len(data) > 0 && string(data) != "null" {
		unmarshalLax(data, &vs)
		return vs
	}
	unmarshalLax(state, &vs)
	return vs
}

// Outbound frames. Each carries its own type tag so they marshal directly.

type RoomAssigned struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	ID    string `json:"id"`
}

func NewRoomAssigned(roomID, clientID string) RoomAssigned {
	return RoomAssigned{Type: MsgTypeRoom, Value: roomID, ID: clientID}
}

type RosterUpdate struct {
	Type string                 `json:"type"`
	List map[string]Participant `json:"list"`
}

func NewRosterUpdate(list map[string]Participant) RosterUpdate {
	return RosterUpdate{Type: MsgTypePlayers, List: list}
}

type SignalDelivery struct {
	Type    string          `json:"type"`
	From    string          `json:"from"`
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewSignalDelivery(from, action string, payload json.RawMessage) SignalDelivery {
	return SignalDelivery{Type: MsgTypeSignal, From: from, Action: action, Payload: payload}
}

type PingValue struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

func NewPingValue(value int) PingValue {
	return PingValue{Type: MsgTypePing, Value: value}
}

type Pong struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

func NewPong(timestamp int64) Pong {
	return Pong{Type: MsgTypePong, Timestamp: timestamp}
}

type TeamVoiceAck struct {
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
}

func NewTeamVoiceAck(enabled bool) TeamVoiceAck {
	return TeamVoiceAck{Type: MsgTypeTeamV, Enabled: enabled}
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewErrorMessage(message string) ErrorMessage {
	return ErrorMessage{Type: MsgTypeError, Message: message}
}

type Notification struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Level   string `json:"level"`
}

func NewNotification(message, level string) Notification {
	return Notification{Type: MsgTypeNotification, Message: message, Level: level}
}

// HearEntry is one participant's audible-peers projection.
type HearEntry struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Hear []string `json:"hear"`
}

type ProximityUpdate struct {
	Type string      `json:"type"`
	Data []HearEntry `json:"data"`
}

func NewProximityUpdate(entries []HearEntry) ProximityUpdate {
	return ProximityUpdate{Type: MsgTypeProximity, Data: entries}
}
