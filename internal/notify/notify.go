package notify

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kumar-pratik/create-es-snapshot/internal/config"
)

// Event describes the outcome of a snapshot run.
type Event struct {
	Repository     string    `json:"repository"`
	Snapshot       string    `json:"snapshot"`
	Cluster        string    `json:"cluster"`
	Status         string    `json:"status"`
	RegisterStatus int       `json:"register_status"`
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at"`
	Duration       string    `json:"duration"`
	Error          string    `json:"error,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

type Multi struct {
	Targets []Notifier
}

func (m Multi) Notify(ctx context.Context, event Event) error {
	var err error
	for _, target := range m.Targets {
		if target == nil {
			continue
		}
		if nerr := target.Notify(ctx, event); nerr != nil {
			err = nerr
		}
	}
	return err
}

type Webhook struct {
	Name    string
	URL     string
	Headers map[string]string
}

func (w Webhook) Notify(ctx context.Context, event Event) error {
	client := resty.New().SetTimeout(10 * time.Second)
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeaders(w.Headers).
		SetBody(event).
		Post(w.URL)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return &webhookError{name: w.Name, status: resp.Status()}
	}
	return nil
}

type webhookError struct {
	name   string
	status string
}

func (e *webhookError) Error() string {
	return "webhook " + e.name + " returned " + e.status
}

// FromConfig builds the notifier fan-out from the metadata's notifications
// section.
func FromConfig(cfg config.NotificationsConfig) Multi {
	var targets []Notifier
	for _, w := range cfg.Webhooks {
		targets = append(targets, Webhook{Name: w.Name, URL: w.URL, Headers: w.Headers})
	}
	return Multi{Targets: targets}
}
