package app

import (
	"github.com/nfrund/eventdesk/internal/contact"
	"github.com/nfrund/eventdesk/internal/module"
)

// NewModules lists the feature modules in boot order. Shutdown runs in reverse.
func NewModules(deps Dependencies) []module.Module {
	return []module.Module{
		contact.New(contactDeps(deps)),
	}
}
