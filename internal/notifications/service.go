package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"slidemovie/internal/config"
)

const userAgent = "slidemovie/0.1"

// Event names an action outcome worth telling the operator about.
type Event string

const (
	EventDeckDrafted    Event = "deck_drafted"
	EventBuildCompleted Event = "build_completed"
	EventBuildFailed    Event = "build_failed"
	EventTest           Event = "test"
)

// Message carries the details rendered into a notification.
type Message struct {
	ProjectID   string
	File        string
	Slides      int
	DurationSec float64
	Warnings    int
	Failed      int
	Err         error
}

// Service publishes events.
type Service interface {
	Publish(ctx context.Context, event Event, msg Message) error
}

// NewService builds an ntfy-backed service, or a no-op when no topic is
// configured.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: cfg.NtfyTimeout()},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, event Event, msg Message) error {
	data, ok := format(event, msg)
	if !ok {
		return nil
	}
	return n.send(ctx, data)
}

func format(event Event, msg Message) (payload, bool) {
	project := strings.TrimSpace(msg.ProjectID)
	switch event {
	case EventDeckDrafted:
		return payload{
			title:   "slidemovie - Deck Drafted",
			message: fmt.Sprintf("Deck ready for editing: %s\nFile: %s", project, msg.File),
			tags:    []string{"slidemovie", "deck", "drafted"},
		}, true
	case EventBuildCompleted:
		data := payload{
			title:   "slidemovie - Video Ready",
			message: fmt.Sprintf("%s: %d slides, %.1f min\nFile: %s", project, msg.Slides, msg.DurationSec/60, msg.File),
			tags:    []string{"slidemovie", "video", "completed"},
		}
		if msg.Warnings > 0 || msg.Failed > 0 {
			data.title = "slidemovie - Video Ready (with warnings)"
			data.message += fmt.Sprintf("\n%d warning(s), %d failure(s)", msg.Warnings, msg.Failed)
		}
		return data, true
	case EventBuildFailed:
		reason := "unknown"
		if msg.Err != nil {
			reason = strings.TrimSpace(msg.Err.Error())
		}
		return payload{
			title:    "slidemovie - Build Failed",
			message:  fmt.Sprintf("Build failed for %s: %s", project, reason),
			tags:     []string{"slidemovie", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return payload{
			title:    "slidemovie - Test",
			message:  "Notification system test",
			tags:     []string{"slidemovie", "test"},
			priority: "low",
		}, true
	default:
		return payload{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Message) error { return nil }
