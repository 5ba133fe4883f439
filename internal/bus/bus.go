package bus

import (
	"context"
	"encoding/json"
	"time"

	"project-collab-api/internal/logging"

	"github.com/redis/go-redis/v9"
)

// Channel is the pub/sub channel every write publishes change events to.
const Channel = "collab:changes"

// Collections named in change events.
const (
	CollectionTasks         = "tasks"
	CollectionComments      = "comments"
	CollectionNotifications = "notifications"
)

// Change describes a write to one collection. Live query sessions use it
// to decide which of their result sets to refetch; the event carries no
// row data, only scope.
type Change struct {
	Collection string `json:"collection"`
	TaskID     string `json:"taskId,omitempty"`
	UserEmail  string `json:"userEmail,omitempty"`
}

var client *redis.Client

// Init sets the redis client used by Publish and Listen. With no client
// set, both become no-ops (useful for handler tests that do not exercise
// the realtime path).
func Init(c *redis.Client) {
	client = c
}

// Publish emits a change event. Failures are logged, never surfaced: a
// missed event only delays the next snapshot, it does not corrupt state.
func Publish(ctx context.Context, ch Change) {
	if client == nil {
		return
	}
	payload, err := json.Marshal(ch)
	if err != nil {
		logging.Logger.Errorf("marshal change event: %v", err)
		return
	}
	if err := client.Publish(ctx, Channel, payload).Err(); err != nil {
		logging.Logger.Errorf("publish change event: %v", err)
	}
}

// Listen invokes handle for every change event until ctx is done,
// reconnecting if the pub/sub channel closes underneath it.
func Listen(ctx context.Context, handle func(Change)) {
	if client == nil {
		<-ctx.Done()
		return
	}
	for {
		sub := client.Subscribe(ctx, Channel)
		ch := sub.Channel()
	recv:
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break recv
				}
				var c Change
				if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
					logging.Logger.Errorf("unable to parse change event: %v", err)
					continue
				}
				handle(c)
			}
		}
		_ = sub.Close()
		if ctx.Err() != nil {
			return
		}
		logging.Logger.Warn("change feed closed, reconnecting")
		time.Sleep(time.Second)
	}
}
