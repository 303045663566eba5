// Package mattermost provides webhook client for sending notifications to Mattermost.
package mattermost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zetarewards/recognition-api/internal/config"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

const (
	botUsername    = "Recognition Bot"
	requestTimeout = 10 * time.Second
)

// Client handles Mattermost webhook notifications.
type Client struct {
	webhookURL string
	channel    string
	enabled    bool
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a new Mattermost client.
func NewClient(cfg *config.MattermostConfig, log *logger.Logger) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		enabled:    cfg.Enabled,
		httpClient: &http.Client{Timeout: requestTimeout},
		log:        log,
	}
}

// Message represents a Mattermost message payload.
type Message struct {
	Channel     string       `json:"channel,omitempty"`
	Username    string       `json:"username,omitempty"`
	Text        string       `json:"text,omitempty"`
	IconURL     string       `json:"icon_url,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment represents a message attachment.
type Attachment struct {
	Fallback string  `json:"fallback,omitempty"`
	Color    string  `json:"color,omitempty"`
	Pretext  string  `json:"pretext,omitempty"`
	Title    string  `json:"title,omitempty"`
	Text     string  `json:"text,omitempty"`
	Fields   []Field `json:"fields,omitempty"`
	ImageURL string  `json:"image_url,omitempty"`
	Footer   string  `json:"footer,omitempty"`
}

// Field represents a message field.
type Field struct {
	Short bool   `json:"short"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// Enabled reports whether messages are actually posted.
func (c *Client) Enabled() bool {
	return c.enabled
}

// SendMessage sends a message to Mattermost.
func (c *Client) SendMessage(ctx context.Context, msg *Message) error {
	if !c.enabled {
		c.log.Debug().Msg("Mattermost is disabled, skipping message")
		return nil
	}

	if msg.Channel == "" {
		msg.Channel = c.channel
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message to Mattermost: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mattermost returned status %d", resp.StatusCode)
	}

	c.log.Debug().
		Str("channel", msg.Channel).
		Msg("Sent message to Mattermost")

	return nil
}

// Recognition describes an issued reward for the team channel.
type Recognition struct {
	GiverName    string
	ReceiverName string
	Points       int64
	Reason       string
	Caption      string
	ImageURL     string
}

// AnnounceRecognition posts an issued reward to the team channel.
func (c *Client) AnnounceRecognition(ctx context.Context, r Recognition) error {
	if !c.enabled {
		return nil
	}

	attachment := Attachment{
		Fallback: fmt.Sprintf("%s recognized %s with %d points", r.GiverName, r.ReceiverName, r.Points),
		Color:    "#2eb886",
		Title:    fmt.Sprintf("🏆 %s recognized %s", r.GiverName, r.ReceiverName),
		Text:     r.Caption,
		ImageURL: r.ImageURL,
		Fields: []Field{
			{Short: true, Title: "Points", Value: fmt.Sprintf("%d", r.Points)},
			{Short: true, Title: "Reason", Value: r.Reason},
		},
	}

	return c.SendMessage(ctx, &Message{
		Username:    botUsername,
		Attachments: []Attachment{attachment},
	})
}

// PendingRedemption is an unresolved redemption listed in reminders.
type PendingRedemption struct {
	ID             uint
	EmployeeName   string
	RewardTitle    string
	RequiredPoints int64
	RequestedAt    time.Time
}

// SendPendingRedemptionReminder lists redemptions still waiting for an admin.
func (c *Client) SendPendingRedemptionReminder(ctx context.Context, pending []PendingRedemption, now time.Time) error {
	if len(pending) == 0 {
		c.log.Debug().Msg("No pending redemptions, skipping reminder")
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "### 🎁 Pending Redemptions\n\nThere are **%d** redemption requests waiting for a decision:\n\n", len(pending))

	for _, p := range pending {
		age := now.Sub(p.RequestedAt)
		ageStr := fmt.Sprintf("%.1f hours", age.Hours())
		if age.Hours() > 24 {
			ageStr = fmt.Sprintf("%.1f days", age.Hours()/24)
		}

		icon := "•"
		if age.Hours() > 72 {
			icon = "⚠️"
		}

		fmt.Fprintf(&b, "%s #%d **%s** for %s (%d points, %s old)\n",
			icon, p.ID, p.RewardTitle, p.EmployeeName, p.RequiredPoints, ageStr)
	}

	b.WriteString("\n_Please approve or decline these requests._")

	return c.SendMessage(ctx, &Message{
		Username: botUsername,
		Text:     b.String(),
	})
}
