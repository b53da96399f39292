// Package jobs defines the background jobs pushed to the queue. Each
// job is a small serializable struct; RegisterAll must run once at boot
// so workers can rebuild jobs from their wire names.
package jobs

import (
	"fmt"

	"github.com/mkamalov/bazar/pkg/mail"
	"github.com/mkamalov/bazar/pkg/queue"
)

// RegisterAll wires every job type into the queue registry.
func RegisterAll() {
	queue.Register("mail.otp", func() queue.Job { return &OTPEmail{} })
	queue.Register("mail.welcome", func() queue.Job { return &WelcomeEmail{} })
	queue.Register("mail.order_placed", func() queue.Job { return &OrderPlacedEmail{} })
	queue.Register("mail.order_status", func() queue.Job { return &OrderStatusEmail{} })
}

// OTPEmail delivers a one-time registration code.
type OTPEmail struct {
	To   string `json:"to"`
	Code string `json:"code"`
}

func (j *OTPEmail) Name() string { return "mail.otp" }

func (j *OTPEmail) Handle() error {
	return mail.To(j.To).
		Subject("Your Bazar verification code").
		Text(fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", j.Code)).
		Send()
}

// WelcomeEmail greets a freshly registered user.
type WelcomeEmail struct {
	To       string `json:"to"`
	Username string `json:"username"`
}

func (j *WelcomeEmail) Name() string { return "mail.welcome" }

func (j *WelcomeEmail) Handle() error {
	return mail.To(j.To).
		Subject("Welcome to Bazar").
		Text(fmt.Sprintf("Hi %s, your account is ready.", j.Username)).
		Send()
}

// OrderPlacedEmail confirms a new order to its buyer.
type OrderPlacedEmail struct {
	To          string `json:"to"`
	OrderNumber string `json:"order_number"`
	Total       string `json:"total"`
}

func (j *OrderPlacedEmail) Name() string { return "mail.order_placed" }

func (j *OrderPlacedEmail) Handle() error {
	return mail.To(j.To).
		Subject(fmt.Sprintf("Order %s received", j.OrderNumber)).
		Text(fmt.Sprintf("We received your order %s for a total of %s.", j.OrderNumber, j.Total)).
		Send()
}

// OrderStatusEmail notifies the buyer of a status change.
type OrderStatusEmail struct {
	To          string `json:"to"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
}

func (j *OrderStatusEmail) Name() string { return "mail.order_status" }

func (j *OrderStatusEmail) Handle() error {
	return mail.To(j.To).
		Subject(fmt.Sprintf("Order %s update", j.OrderNumber)).
		Text(fmt.Sprintf("Your order %s is now %s.", j.OrderNumber, j.Status)).
		Send()
}
