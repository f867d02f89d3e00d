package tasks

import (
	"context"

	"delphiwatch/app/feed"
	"delphiwatch/app/notifier"
	"delphiwatch/app/rules"
)

// FetcherInterface returns the posts currently visible in the forum feed,
// in source order.
type FetcherInterface interface {
	Fetch(ctx context.Context) ([]feed.Post, error)
}

var _ FetcherInterface = (*feed.Fetcher)(nil)

// DispatcherInterface delivers one matched post to the notification transport.
type DispatcherInterface interface {
	Deliver(ctx context.Context, post feed.Post, matched string) error
}

var _ DispatcherInterface = (*notifier.Notifier)(nil)

// RuleProvider yields the current rule set snapshot.
type RuleProvider interface {
	Get() *rules.Set
}

var _ RuleProvider = (*rules.Cache)(nil)

// CycleRunner executes one full fetch-match-dedup-dispatch pass.
type CycleRunner interface {
	Execute(ctx context.Context) (CycleResult, error)
}

var _ CycleRunner = (*PollTask)(nil)
