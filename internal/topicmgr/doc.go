// Package topicmgr keeps the set of bus topics the application is allowed to
// publish on. Topics are declared once, at package level, and registered with
// a Manager; publishing on a topic that was never registered is rejected.
//
// Framework topics belong to core services (the realtime gateway, the server
// lifecycle) and carry no module:
//
//	var ClientConnected = topicmgr.DefineFramework(topicmgr.TopicConfig{
//		Name:        "gateway.client.connected",
//		Description: "A realtime client completed its handshake",
//		Pattern:     "gateway.client.connected",
//	})
//
// Module topics are owned by a feature module:
//
//	var MessageCreated = topicmgr.DefineModule(topicmgr.TopicConfig{
//		Name:        "contact.message.created",
//		Module:      "contact",
//		Description: "A contact message was persisted",
//		Pattern:     "contact.message.created",
//	})
package topicmgr
