package models

type ConversationState int

const (
	ConversationIdle ConversationState = iota
	ConversationAwaitingProduct
	ConversationAwaitingImage
	ConversationSubmitted
	ConversationCancelled
)

func (s ConversationState) String() string {
	switch s {
	case ConversationIdle:
		return "idle"
	case ConversationAwaitingProduct:
		return "awaiting_product"
	case ConversationAwaitingImage:
		return "awaiting_image"
	case ConversationSubmitted:
		return "submitted"
	case ConversationCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Terminal states end a conversation; the transient entry is dropped.
func (s ConversationState) Terminal() bool {
	return s == ConversationSubmitted || s == ConversationCancelled
}

type EventKind int

const (
	EventStart EventKind = iota
	EventText
	EventImage
	EventCancel
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventText:
		return "text"
	case EventImage:
		return "image"
	case EventCancel:
		return "cancel"
	}
	return "unknown"
}

// ConversationEvent is one inbound user action, already stripped of transport details.
type ConversationEvent struct {
	Kind        EventKind
	UserID      string
	DisplayName string
	Text        string
	ImageURL    string
}

// Reply is what the user should be told after an event.
type Reply struct {
	Text  string
	State ConversationState
}
