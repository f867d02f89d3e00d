package notifier

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	"delphiwatch/app/feed"
)

// Notifier delivers matched posts to a Telegram chat. Sends are paced by a
// rate limiter so a burst cycle (backfill, first run with an empty store)
// stays under the per-chat message ceiling instead of dropping posts.
type Notifier struct {
	sender   Sender
	chatID   int64
	forumURL string
	limiter  *rate.Limiter
}

func New(sender Sender, chatID int64, forumURL string, deliveriesPerMin int) *Notifier {
	return &Notifier{
		sender:   sender,
		chatID:   chatID,
		forumURL: forumURL,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(deliveriesPerMin)), 1),
	}
}

// Deliver sends one post. Any transport error, timeouts with unknown
// server-side outcome included, is reported as a DeliveryError: a possible
// duplicate next cycle is preferred over a silently lost notification.
func (n *Notifier) Deliver(ctx context.Context, post feed.Post, matched string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return &DeliveryError{PostID: post.ID, Err: err}
	}

	message := Render(post, matched, n.forumURL)

	_, err := n.sender.Send(tele.ChatID(n.chatID), message, &tele.SendOptions{ParseMode: tele.ModeHTML})
	if err != nil {
		return &DeliveryError{PostID: post.ID, Err: err}
	}

	slog.Debug("Notification sent", "post", post.ID, "chat_id", n.chatID, "matched", matched)

	return nil
}
