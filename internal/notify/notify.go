// Package notify delivers the list of contacts that ended up without a
// phone number.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmehdipour/contact-gateway/internal/model"
)

const (
	Subject    = "Contacts Missing Phone Numbers"
	SentText   = "Email sent successfully!"
	QueuedText = "Notification queued."
)

// ErrNothingToSend is returned when the event carries no names.
var ErrNothingToSend = errors.New("no contacts with missing phone numbers")

type Notifier interface {
	Notify(ctx context.Context, ev model.MissingContactsEvent) error
}

// Outcome renders a Notify result as the (ok, message) pair shown to users.
func Outcome(err error, okText string) (bool, string) {
	if err != nil {
		return false, fmt.Sprintf("Failed to send email: %v", err)
	}
	return true, okText
}
