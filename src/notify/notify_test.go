package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherRetries(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	delivered := make(chan struct{})

	d := &Dispatcher{
		events:      make(chan Event, 4),
		maxAttempts: 3,
	}
	d.deliver = func(ctx context.Context, ev Event) error {
		mu.Lock()
		defer mu.Unlock()
		attempts += 1
		if attempts < 3 {
			return errors.New("storage unavailable")
		}
		close(delivered)
		return nil
	}

	job := d.Run()
	defer func() {
		job.Cancel()
		<-job.Finished()
	}()

	d.Announce(context.Background(), Event{
		Kind:        models.NotificationReply,
		RecipientID: 2,
		ActorID:     1,
		ThreadID:    10,
	})

	select {
	case <-delivered:
	case <-time.After(5 * time.Second):
		t.Fatal("notification was never delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts)
}

func TestDispatcherGivesUp(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	d := &Dispatcher{
		events:      make(chan Event, 4),
		maxAttempts: 2,
	}
	d.deliver = func(ctx context.Context, ev Event) error {
		mu.Lock()
		defer mu.Unlock()
		attempts += 1
		return errors.New("storage unavailable")
	}

	job := d.Run()
	defer func() {
		job.Cancel()
		<-job.Finished()
	}()

	d.Announce(context.Background(), Event{
		Kind:        models.NotificationUpvote,
		RecipientID: 2,
		ActorID:     1,
		ThreadID:    10,
	})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts == 2
	}, 5*time.Second, 10*time.Millisecond)

	// Give it a moment to prove it stopped retrying.
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, attempts)
}

func TestAnnounceDropsWhenFull(t *testing.T) {
	d := &Dispatcher{
		events: make(chan Event, 1),
	}

	d.Announce(context.Background(), Event{Kind: models.NotificationReply, ThreadID: 1})
	d.Announce(context.Background(), Event{Kind: models.NotificationReply, ThreadID: 2})

	assert.Equal(t, 1, len(d.events))
	ev := <-d.events
	assert.Equal(t, 1, ev.ThreadID)
}

func TestSelfNotificationsAreSkipped(t *testing.T) {
	// No pool attached; a delivery attempt would blow up. Talking to
	// yourself just gets dropped before storage is involved.
	d := &Dispatcher{}

	err := d.deliverToStorage(context.Background(), Event{
		Kind:        models.NotificationReply,
		RecipientID: 7,
		ActorID:     7,
		ThreadID:    10,
	})
	assert.NoError(t, err)
}

func TestMatchedConditions(t *testing.T) {
	profile := &models.ResearcherProfile{
		Specialties: []string{"diabetes", "nephrology"},
		Interests:   []string{"long-covid"},
	}

	assert.Equal(t,
		[]string{"diabetes", "long-covid"},
		matchedConditions(profile, []string{"diabetes", "asthma", "long-covid"}),
	)
	assert.Nil(t, matchedConditions(profile, []string{"asthma"}))
	assert.Nil(t, matchedConditions(nil, []string{"diabetes"}))
}
