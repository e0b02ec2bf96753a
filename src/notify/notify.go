package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/config"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/forumdata"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/jobs"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/logging"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/models"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/oops"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/utils"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jpillora/backoff"
	"github.com/rs/zerolog"
)

/*
 * Notification fan-out. Writes announce events onto an in-process queue and
 * move on; a background job turns events into notification rows. Nothing in
 * here may ever fail the write that triggered it.
 */

type Event struct {
	Kind models.NotificationKind

	// The recipient, for events that have exactly one (replies and votes).
	// Condition-match events find their recipients at delivery time instead.
	RecipientID int

	ActorID  int
	ThreadID int
	ReplyID  *int

	// Condition-match events only: the thread's normalized condition tags,
	// matched against researcher specialties and interests.
	ConditionTags []string

	Title   string
	Message string
	Url     string
}

type Dispatcher struct {
	conn        *pgxpool.Pool
	events      chan Event
	maxAttempts int

	// Swapped out in tests.
	deliver func(ctx context.Context, ev Event) error
}

func NewDispatcher(conn *pgxpool.Pool) *Dispatcher {
	d := &Dispatcher{
		conn:        conn,
		events:      make(chan Event, utils.OrDefault(config.Config.Notify.QueueSize, 256)),
		maxAttempts: utils.OrDefault(config.Config.Notify.MaxAttempts, 3),
	}
	d.deliver = d.deliverToStorage
	return d
}

/*
Queues an event for delivery. Never blocks: when the queue is full the event
is dropped with a log line, because stalling a user-facing write on fan-out
is worse than a missed notification.
*/
func (d *Dispatcher) Announce(ctx context.Context, ev Event) {
	select {
	case d.events <- ev:
	default:
		logging.ExtractLogger(ctx).Warn().
			Str("kind", string(ev.Kind)).
			Int("thread", ev.ThreadID).
			Msg("Notification queue is full. Dropping event.")
	}
}

func (d *Dispatcher) Run() *jobs.Job {
	job := jobs.New("notification dispatcher")
	go func() {
		defer job.Finish()

		for {
			select {
			case ev := <-d.events:
				d.process(job.Ctx, ev, &job.Logger)
			case <-job.Canceled():
				if n := len(d.events); n > 0 {
					job.Logger.Info().Int("dropped", n).Msg("Shutting down with notifications still queued")
				}
				return
			}
		}
	}()
	return job
}

/*
Delivers one event, retrying transient storage failures a bounded number of
times. Gives up for good once the attempts run out or the job is canceled.
*/
func (d *Dispatcher) process(ctx context.Context, ev Event, logger *zerolog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("recovered", r).Msg("Panicked while delivering a notification")
		}
	}()

	boff := backoff.Backoff{
		Min: 100 * time.Millisecond,
		Max: 5 * time.Second,
	}

	for attempt := 1; ; attempt += 1 {
		err := d.deliver(ctx, ev)
		if err == nil {
			return
		}

		if attempt >= d.maxAttempts {
			logger.Error().
				Err(err).
				Str("kind", string(ev.Kind)).
				Int("thread", ev.ThreadID).
				Msg("Giving up on notification delivery")
			return
		}

		dur := boff.Duration()
		logger.Warn().
			Err(err).
			Dur("retrying after", dur).
			Msg("Failed to deliver notification")
		if utils.SleepContext(ctx, dur) != nil {
			return
		}
	}
}

type conditionMatchMetadata struct {
	MatchedConditions []string `json:"matched_conditions"`
}

func (d *Dispatcher) deliverToStorage(ctx context.Context, ev Event) error {
	if ev.Kind == models.NotificationConditionMatch {
		return d.fanOutConditionMatch(ctx, ev)
	}

	// Single-recipient events. People don't need to hear about their own
	// actions.
	if ev.RecipientID == ev.ActorID {
		return nil
	}

	_, err := forumdata.CreateNotification(ctx, d.conn, forumdata.CreateNotificationInput{
		RecipientID: ev.RecipientID,
		Kind:        ev.Kind,
		ActorID:     &ev.ActorID,
		ThreadID:    &ev.ThreadID,
		ReplyID:     ev.ReplyID,
		Title:       ev.Title,
		Message:     ev.Message,
		Url:         ev.Url,
	})
	return err
}

func (d *Dispatcher) fanOutConditionMatch(ctx context.Context, ev Event) error {
	researchers, err := forumdata.FetchResearchersMatchingConditions(ctx, d.conn, ev.ConditionTags, ev.ActorID)
	if err != nil {
		return oops.New(err, "failed to find researchers for fan-out")
	}

	for _, researcher := range researchers {
		metadata, err := json.Marshal(conditionMatchMetadata{
			MatchedConditions: matchedConditions(researcher.Profile, ev.ConditionTags),
		})
		if err != nil {
			return oops.New(err, "failed to marshal notification metadata")
		}

		_, err = forumdata.CreateNotification(ctx, d.conn, forumdata.CreateNotificationInput{
			RecipientID: researcher.ID,
			Kind:        ev.Kind,
			ActorID:     &ev.ActorID,
			ThreadID:    &ev.ThreadID,
			Title:       ev.Title,
			Message:     ev.Message,
			Url:         ev.Url,
			Metadata:    metadata,
		})
		if err != nil {
			// Partial fan-out is fine; the retry re-runs the whole event, and
			// duplicate notifications are less bad than none. Keep going so
			// one broken row doesn't starve the rest.
			logging.ExtractLogger(ctx).Error().
				Err(err).
				Int("recipient", researcher.ID).
				Msg("Failed to create fan-out notification")
		}
	}

	return nil
}

// The subset of a thread's condition tags that actually overlap a
// researcher's profile, preserving the thread's tag order.
func matchedConditions(profile *models.ResearcherProfile, conditions []string) []string {
	if profile == nil {
		return nil
	}

	profileTags := make(map[string]bool, len(profile.Specialties)+len(profile.Interests))
	for _, t := range profile.Specialties {
		profileTags[t] = true
	}
	for _, t := range profile.Interests {
		profileTags[t] = true
	}

	var matched []string
	for _, c := range conditions {
		if profileTags[c] {
			matched = append(matched, c)
		}
	}
	return matched
}
