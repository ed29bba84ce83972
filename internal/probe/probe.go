// Package probe is a diagnostic client for the realtime notification
// channel. It opens a gateway connection, submits one contact message and
// waits for the matching new_message frame.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nfrund/eventdesk/internal/domain"
)

// Probe phases reported in TimeoutError.
const (
	PhaseConnect = "connect"
	PhaseSubmit  = "submit"
	PhaseAwait   = "await_notification"
)

const (
	notificationsPath = "/ws/notifications"
	contactPath       = "/api/contact"
	eventNewMessage   = "new_message"
	eventConnected    = "connected"
)

var errConnectionClosed = errors.New("realtime connection closed before the expected frame arrived")

// DefaultTimeout bounds a whole probe run.
const DefaultTimeout = 5 * time.Second

// TimeoutError reports that the deadline expired before the probe finished.
// Phase tells whether the probe was still connecting, submitting or
// waiting for the notification.
type TimeoutError struct {
	Phase  string
	Waited time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("probe timed out after %s during %s", e.Waited.Round(time.Millisecond), e.Phase)
}

// Timeout lets callers treat the error like a net.Error timeout.
func (e *TimeoutError) Timeout() bool { return true }

// SubmitError reports a submission the server did not accept.
type SubmitError struct {
	Status int
	Body   string
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("contact submission rejected with status %d: %s", e.Status, e.Body)
}

// Config controls a probe run.
type Config struct {
	// BaseURL is the server root, e.g. http://localhost:8080.
	BaseURL string
	// Token is sent as a bearer token on the realtime handshake.
	Token string
	// Timeout bounds the whole run. Zero means DefaultTimeout.
	Timeout time.Duration
	// Submission is the payload to submit. Zero means DefaultSubmission.
	Submission domain.ContactSubmission

	HTTPClient *http.Client
	Dialer     *websocket.Dialer
}

// Result describes a successful run.
type Result struct {
	Message domain.ContactMessage
	// Latency is measured from the start of the submission to the arrival
	// of the notification.
	Latency time.Duration
}

// DefaultSubmission is the fixed payload submitted by the probe.
func DefaultSubmission() domain.ContactSubmission {
	return domain.ContactSubmission{
		Name:      "Socket Test",
		Email:     "test@socket.com",
		Subject:   "Socket Routing",
		Message:   "Checking the link payload",
		IPAddress: "127.0.0.1",
	}
}

type frame struct {
	Type    string                `json:"type"`
	Payload domain.ContactMessage `json:"payload"`
}

// Run performs one probe: connect, submit, await. It returns a
// *TimeoutError when the deadline expires in any phase.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Submission == (domain.ContactSubmission{}) {
		cfg.Submission = DefaultSubmission()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	logger := slog.Default().With("service", "probe")

	wsURL, err := notificationsURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	header := http.Header{}
	if cfg.Token != "" {
		header.Set("Authorization", "Bearer "+cfg.Token)
	}
	conn, resp, err := cfg.Dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &TimeoutError{Phase: PhaseConnect, Waited: time.Since(start)}
		}
		if resp != nil {
			return nil, fmt.Errorf("connect %s: %w (status %d)", wsURL, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("connect %s: %w", wsURL, err)
	}
	defer conn.Close()
	logger.Debug("Connected to realtime gateway", "url", wsURL)

	// The reader runs before the submission so no frame can be missed.
	frames := make(chan frame, 16)
	go readFrames(ctx, conn, frames, logger)
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	// The gateway confirms registration with a connected frame; until then
	// the connection is still CONNECTING and a notification could be missed.
	if err := awaitFrame(ctx, frames, func(f frame) bool { return f.Type == eventConnected }); err != nil {
		if ctx.Err() != nil {
			return nil, &TimeoutError{Phase: PhaseConnect, Waited: time.Since(start)}
		}
		return nil, err
	}
	logger.Debug("Realtime connection open")

	submitted := time.Now()
	msg, err := submit(ctx, cfg.HTTPClient, cfg.BaseURL, cfg.Submission)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &TimeoutError{Phase: PhaseSubmit, Waited: time.Since(start)}
		}
		return nil, err
	}
	logger.Debug("Contact message submitted", "message_id", msg.ID)

	var got frame
	err = awaitFrame(ctx, frames, func(f frame) bool {
		if f.Type != eventNewMessage || f.Payload.ID != msg.ID || f.Payload.Subject != cfg.Submission.Subject {
			return false
		}
		got = f
		return true
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, &TimeoutError{Phase: PhaseAwait, Waited: time.Since(start)}
		}
		return nil, err
	}
	return &Result{Message: got.Payload, Latency: time.Since(submitted)}, nil
}

// awaitFrame consumes frames until match accepts one, the connection
// closes or ctx is done.
func awaitFrame(ctx context.Context, frames <-chan frame, match func(frame) bool) error {
	for {
		select {
		case f, ok := <-frames:
			if !ok {
				if err := ctx.Err(); err != nil {
					return err
				}
				return errConnectionClosed
			}
			if match(f) {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func readFrames(ctx context.Context, conn *websocket.Conn, out chan<- frame, logger *slog.Logger) {
	defer close(out)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			logger.Debug("Ignoring undecodable frame", "error", err)
			continue
		}
		select {
		case out <- f:
		case <-ctx.Done():
			return
		}
	}
}

func submit(ctx context.Context, client *http.Client, baseURL string, sub domain.ContactSubmission) (*domain.ContactMessage, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+contactPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit contact message: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read submission response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, &SubmitError{Status: resp.StatusCode, Body: string(raw)}
	}

	var out struct {
		Success bool                  `json:"success"`
		Message domain.ContactMessage `json:"message"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode submission response: %w", err)
	}
	return &out.Message, nil
}

func notificationsURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid base URL %q: unsupported scheme", base)
	}
	u.Path = strings.TrimRight(u.Path, "/") + notificationsPath
	return u.String(), nil
}
