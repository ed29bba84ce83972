package notify

import (
	"github.com/nfrund/eventdesk/internal/domain"
	"github.com/nfrund/eventdesk/internal/pubsub"
	"github.com/nfrund/eventdesk/internal/topicmgr"
)

// EventNewMessage is the event name carried by every contact notification.
const EventNewMessage = "new_message"

// Event is the notification emitted once per persisted contact message.
type Event struct {
	Name    string                `json:"event"`
	Message domain.ContactMessage `json:"payload"`
}

// NewMessageEvent wraps a copy of the persisted message.
func NewMessageEvent(msg *domain.ContactMessage) Event {
	return Event{Name: EventNewMessage, Message: *msg}
}

// MessageCreated carries an Event for every contact message that reached the store.
var MessageCreated = pubsub.NewTopic[Event](topicmgr.Default(), topicmgr.TopicConfig{
	Name:        "contact.message.created",
	Module:      "contact",
	Description: "A contact message was persisted; relayed to realtime clients as new_message",
	Example:     `{"event":"new_message","payload":{"id":"...","subject":"Socket Routing"}}`,
})
