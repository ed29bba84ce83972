package app

import (
	"github.com/nfrund/eventdesk/internal/config"
	"github.com/nfrund/eventdesk/internal/contact"
	"github.com/nfrund/eventdesk/internal/domain"
	"github.com/nfrund/eventdesk/internal/notify"
	"github.com/nfrund/eventdesk/internal/pubsub"
	"github.com/nfrund/eventdesk/internal/topicmgr"
)

// Dependencies holds the core services that are required by the application's modules.
// This struct is passed from the application entrypoint to wire up the modules.
type Dependencies struct {
	Config     config.Provider
	Publisher  pubsub.Publisher
	Subscriber pubsub.Subscriber
	TopicMgr   *topicmgr.Manager
	Store      domain.ContactRepository
	Bus        *notify.Bus
}

// contactDeps creates the dependency struct for the contact module.
func contactDeps(deps Dependencies) contact.Dependencies {
	d := contact.Dependencies{Store: deps.Store}
	if deps.Bus != nil {
		d.Notifier = deps.Bus
	}
	if deps.Config != nil {
		d.RateLimit = deps.Config.GetContactRateLimit()
	}
	return d
}
