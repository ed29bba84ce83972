package registry

import (
	"github.com/nfrund/eventdesk/internal/domain"
	"github.com/nfrund/eventdesk/internal/notify"
	"github.com/nfrund/eventdesk/internal/pubsub"
	"github.com/nfrund/eventdesk/internal/topicmgr"
	"github.com/nfrund/eventdesk/internal/websocket"
)

// Service keys shared between the server and its modules. Using constants prevents typos.
const (
	ContactStoreKey Key[domain.ContactRepository] = "core.contact.store"
	NotifyBusKey    Key[*notify.Bus]              = "core.notify.bus"
	PublisherKey    Key[pubsub.Publisher]         = "core.pubsub.publisher"
	SubscriberKey   Key[pubsub.Subscriber]        = "core.pubsub.subscriber"
	GatewayKey      Key[*websocket.Gateway]       = "core.websocket.gateway"
	TopicManagerKey Key[*topicmgr.Manager]        = "core.topicmgr.manager"
)
