package tasks

import (
	"context"
	"log/slog"
	"time"

	"delphiwatch/app/database"
	"delphiwatch/app/feed"
)

const markTimeout = 5 * time.Second

// CycleResult summarizes one poll cycle.
type CycleResult struct {
	Total      int   // posts returned by the fetcher
	Matched    int   // posts satisfying at least one rule
	Delivered  int   // notifications sent and durably marked
	Duplicates int   // matches already recorded as delivered
	Failed     int   // delivery failures, retried next cycle
	Cursor     int64 // highest numeric post id observed
}

// PollTask runs one cycle of the pipeline: fetch the feed window, then for
// every post in source order match, check the delivery record, dispatch, and
// commit the mark. All fetched posts go through the pipeline, not only ones
// past the cursor, so out-of-order feed pagination cannot skip a post.
type PollTask struct {
	Task
	fetcher    FetcherInterface
	matcher    *feed.Matcher
	ruleSource RuleProvider
	deliveries database.DeliveryRepository
	cursor     database.CursorRepository
	dispatcher DispatcherInterface
}

func NewPollTask(fetcher FetcherInterface, matcher *feed.Matcher, ruleSource RuleProvider,
	deliveries database.DeliveryRepository, cursor database.CursorRepository,
	dispatcher DispatcherInterface) *PollTask {
	return &PollTask{
		Task:       NewTask(TaskTypePoll),
		fetcher:    fetcher,
		matcher:    matcher,
		ruleSource: ruleSource,
		deliveries: deliveries,
		cursor:     cursor,
		dispatcher: dispatcher,
	}
}

func (t *PollTask) Execute(ctx context.Context) (CycleResult, error) {
	t.Start()

	var result CycleResult

	posts, err := t.fetcher.Fetch(ctx)
	if err != nil {
		return result, err
	}

	result.Total = len(posts)
	set := t.ruleSource.Get()

	for _, post := range posts {
		if ctx.Err() != nil {
			break
		}

		if post.NumericID > result.Cursor {
			result.Cursor = post.NumericID
		}

		matched, reason := t.matcher.Match(post, set)
		if !matched {
			continue
		}
		result.Matched++

		seen, err := t.deliveries.IsDelivered(ctx, post.ID)
		if err != nil {
			return result, err
		}
		if seen {
			result.Duplicates++
			continue
		}

		if err := t.dispatcher.Deliver(ctx, post, reason); err != nil {
			result.Failed++
			slog.Warn("Delivery failed, post will be retried next cycle", "post", post.ID, "error", err)
			continue
		}

		// The mark runs on its own deadline, not the cycle context: once the
		// send is confirmed, shutdown must not cancel the commit, or the post
		// would be delivered again after restart.
		markCtx, cancel := context.WithTimeout(context.Background(), markTimeout)
		_, err = t.deliveries.MarkDelivered(markCtx, post.ID, post.Title, reason, time.Now().UTC())
		cancel()
		if err != nil {
			return result, err
		}
		result.Delivered++
	}

	// The cursor advances to the newest post observed even when nothing
	// matched, so a stagnant feed does not grow the re-fetch window. It is a
	// bookmark only; a failed advance is not worth aborting the cycle over.
	if result.Cursor > 0 {
		advanceCtx, cancel := context.WithTimeout(context.Background(), markTimeout)
		err = t.cursor.Advance(advanceCtx, result.Cursor)
		cancel()
		if err != nil {
			slog.Warn("Cursor advance failed", "position", result.Cursor, "error", err)
		}
	}

	slog.Info("Cycle completed",
		"duration", t.GetDuration(),
		"total", result.Total,
		"matched", result.Matched,
		"delivered", result.Delivered,
		"duplicates", result.Duplicates,
		"failed", result.Failed,
		"cursor", result.Cursor)

	return result, nil
}
