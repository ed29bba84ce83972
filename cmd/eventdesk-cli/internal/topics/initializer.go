package topics

import (
	"io"
	"log"
	"log/slog"

	"github.com/nfrund/eventdesk/internal/app"
	"github.com/nfrund/eventdesk/internal/topicmgr"
)

// Initialize registers every topic the application publishes on the
// process-wide manager and returns it. Logging is silenced so command
// output stays readable.
func Initialize() (*topicmgr.Manager, error) {
	log.SetOutput(io.Discard)
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	manager := topicmgr.Default()
	if err := app.RegisterTopics(manager); err != nil {
		return nil, err
	}
	return manager, nil
}
