package websocket

import (
	"github.com/nfrund/eventdesk/internal/pubsub"
	"github.com/nfrund/eventdesk/internal/topicmgr"
)

// ClientEvent describes a realtime client lifecycle change.
type ClientEvent struct {
	ClientID   string `json:"clientID"`
	RemoteAddr string `json:"remoteAddr,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

var (
	// TopicClientConnected is published when a realtime client completes its handshake.
	TopicClientConnected = pubsub.NewTopic[ClientEvent](topicmgr.Default(), topicmgr.TopicConfig{
		Name:        "gateway.client.connected",
		Description: "Published when a realtime client completes its handshake and is registered",
		Example:     `{"clientID":"conn456","remoteAddr":"127.0.0.1:53122"}`,
		Metadata:    map[string]any{"event_type": "lifecycle"},
	})

	// TopicClientDisconnected is published once when a realtime client is removed.
	TopicClientDisconnected = pubsub.NewTopic[ClientEvent](topicmgr.Default(), topicmgr.TopicConfig{
		Name:        "gateway.client.disconnected",
		Description: "Published when a realtime client is removed from the registry",
		Example:     `{"clientID":"conn456","reason":"client_closed"}`,
		Metadata:    map[string]any{"event_type": "lifecycle"},
	})
)
