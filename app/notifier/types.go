package notifier

import (
	"fmt"

	tele "gopkg.in/telebot.v4"
)

// DeliveryError is a transient transport failure. The post is not marked
// delivered and comes back as a candidate on the next cycle.
type DeliveryError struct {
	PostID string
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("failed to deliver post %s: %v", e.PostID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Sender matches (*tele.Bot).Send.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

var _ Sender = (*tele.Bot)(nil)
