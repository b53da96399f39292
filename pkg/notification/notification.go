// Package notification provides a multi-channel notification system.
//
// Define a Notification:
//
//	type OrderPlaced struct{ Order models.Order }
//	func (n *OrderPlaced) Via() []string { return []string{"mail", "webhook"} }
//	func (n *OrderPlaced) ToMail() notification.MailData { ... }
//	func (n *OrderPlaced) ToWebhook() notification.WebhookData { ... }
//
// Send:
//
//	notification.Send("user@example.com", &OrderPlaced{Order: order})
package notification

import (
	"fmt"
	"time"

	"github.com/mkamalov/bazar/pkg/http"
	"github.com/mkamalov/bazar/pkg/logger"
	"github.com/mkamalov/bazar/pkg/mail"
)

// MailData carries the data needed to send an email notification.
type MailData struct {
	To      string // overrides the notifiable address if set
	Subject string
	Body    string // HTML
	Text    string // plain-text fallback
}

// WebhookData carries an arbitrary JSON payload to POST to a URL.
type WebhookData struct {
	URL     string
	Payload interface{}
	Headers map[string]string
}

// Notification is the interface every notification must satisfy.
type Notification interface {
	// Via returns the list of channel names: "mail", "webhook".
	Via() []string
}

// Mailable can be implemented to support the mail channel.
type Mailable interface {
	ToMail() MailData
}

// Webhookable can be implemented to support the webhook channel.
type Webhookable interface {
	ToWebhook() WebhookData
}

var defaultWebhookURL string

// SetWebhookURL sets the fallback webhook endpoint used when a
// notification's WebhookData.URL is empty.
func SetWebhookURL(url string) { defaultWebhookURL = url }

// Send dispatches the notification through all channels returned by Via().
// address is typically an email address used for the mail channel.
func Send(address string, n Notification) []error {
	var errs []error
	for _, channel := range n.Via() {
		if err := dispatch(address, channel, n); err != nil {
			logger.Error("notification: channel failed",
				"channel", channel, "error", err)
			errs = append(errs, err)
		}
	}
	return errs
}

// SendAsync dispatches the notification in a background goroutine.
func SendAsync(address string, n Notification) {
	go func() {
		Send(address, n) // errors already logged by Send
	}()
}

func dispatch(address, channel string, n Notification) error {
	switch channel {
	case "mail":
		m, ok := n.(Mailable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Mailable", n)
		}
		return sendMail(address, m.ToMail())

	case "webhook":
		wh, ok := n.(Webhookable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Webhookable", n)
		}
		return sendWebhook(wh.ToWebhook())

	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}

func sendMail(address string, d MailData) error {
	to := d.To
	if to == "" {
		to = address
	}

	msg := mail.To(to).Subject(d.Subject)
	if d.Body != "" {
		msg.Body(d.Body)
	} else {
		msg.Text(d.Text)
	}
	return msg.Send()
}

func sendWebhook(d WebhookData) error {
	url := d.URL
	if url == "" {
		url = defaultWebhookURL
	}
	if url == "" {
		return fmt.Errorf("notification: webhook URL not configured")
	}

	req := http.Post(url).Body(d.Payload).Retry(3, 500*time.Millisecond)
	for k, v := range d.Headers {
		req.Header(k, v)
	}

	resp, err := req.Send()
	if err != nil {
		return err
	}
	return resp.Throw()
}
