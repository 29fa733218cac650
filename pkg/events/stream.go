package events

// Stream signal kinds, in the order a streaming interaction emits them. The
// values double as wire event names for push transports.
const (
	SignalConversationCreated = "new_conversation_id"
	SignalUserMessageAccepted = "user_message_id"
	SignalToken               = "token"
	SignalAssistantPersisted  = "assistant_message_id"
	SignalError               = "error"
	SignalDone                = "done"
)

// Coarse error kinds carried by SignalError. Internal detail never crosses
// the transport boundary.
const (
	ErrKindNotFound  = "not_found"
	ErrKindInvalid   = "invalid_argument"
	ErrKindTransient = "transient_failure"
	ErrKindPrepare   = "failed_to_prepare"
	ErrKindStream    = "stream_error"
)

// StreamSignal is one control signal pushed to the caller during a streaming
// interaction.
type StreamSignal struct {
	Kind  string
	Value string
}

// Emitter abstracts the push channel signals travel over; SSE and WebSocket
// transports both satisfy it. An Emit error means the caller is gone and the
// producer should stop relaying.
type Emitter interface {
	Emit(signal StreamSignal) error
}

// EmitterFunc adapts a plain function to the Emitter interface.
type EmitterFunc func(signal StreamSignal) error

func (f EmitterFunc) Emit(signal StreamSignal) error {
	return f(signal)
}
