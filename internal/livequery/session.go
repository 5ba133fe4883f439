package livequery

import (
	"context"
	"encoding/json"
	"sync"

	"project-collab-api/internal/bus"
	"project-collab-api/internal/logging"
	"project-collab-api/internal/models"

	"gorm.io/gorm"
)

// Snapshot is one delivery of a live query's full current result set.
// Result sets are always replaced wholesale on the client, never patched:
// every relevant change triggers a refetch of the entire set.
type Snapshot struct {
	Type       string `json:"type"`
	Collection string `json:"collection"`
	TaskID     string `json:"taskId,omitempty"`
	Data       any    `json:"data"`
}

// SendFunc delivers an encoded snapshot to the session's client. A false
// return means the client is gone; the session keeps going and lets the
// connection handler tear it down.
type SendFunc func(message []byte) bool

// Session holds one authenticated client's live queries: its
// notifications, its role-scoped task list, and one comment subscription
// per task currently visible to it. The comment fan-out is kept in an
// explicit registry and diffed on every task snapshot, so subscriptions
// for tasks that leave the visible set are released.
type Session struct {
	db    *gorm.DB
	email string
	role  models.Role
	send  SendFunc

	mu      sync.Mutex
	watched map[string]struct{}
}

// NewSession builds a session scoped to one authenticated user.
func NewSession(db *gorm.DB, email string, role models.Role, send SendFunc) *Session {
	return &Session{
		db:      db,
		email:   email,
		role:    role,
		send:    send,
		watched: make(map[string]struct{}),
	}
}

// Start pushes the initial snapshot of every live query: notifications,
// tasks, and one comment set per visible task.
func (s *Session) Start(ctx context.Context) {
	s.refreshNotifications(ctx)
	s.refreshTasks(ctx)
}

// Run applies change events from the feed until ctx is done.
func (s *Session) Run(ctx context.Context) {
	bus.Listen(ctx, func(ch bus.Change) {
		s.Apply(ctx, ch)
	})
}

// Apply reacts to one change event, refetching only the result sets the
// event can have affected.
func (s *Session) Apply(ctx context.Context, ch bus.Change) {
	switch ch.Collection {
	case bus.CollectionTasks:
		s.refreshTasks(ctx)
	case bus.CollectionComments:
		if s.watching(ch.TaskID) {
			s.refreshComments(ctx, ch.TaskID)
		}
	case bus.CollectionNotifications:
		if ch.UserEmail == "" || ch.UserEmail == s.email {
			s.refreshNotifications(ctx)
		}
	}
}

// Close releases every open subscription. Must run before the owning
// connection goes away so no snapshot is delivered to a signed-out view.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watched = make(map[string]struct{})
}

// Watched returns the task ids with an open comment subscription.
func (s *Session) Watched() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.watched))
	for id := range s.watched {
		ids = append(ids, id)
	}
	return ids
}

func (s *Session) watching(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.watched[taskID]
	return ok
}

func (s *Session) refreshTasks(ctx context.Context) {
	var tasks []models.Task
	q := s.db.WithContext(ctx).Model(&models.Task{}).Order("deadline asc")
	if s.role != models.RoleAdmin {
		q = q.Where("assigned_to = ?", s.email)
	}
	if err := q.Find(&tasks).Error; err != nil {
		logging.Logger.Errorf("live query tasks for %s: %v", s.email, err)
		return
	}

	s.push(Snapshot{Type: "snapshot", Collection: bus.CollectionTasks, Data: tasks})

	// Diff the visible task set against the fan-out registry: open a
	// comment subscription per new task, release the ones whose task is
	// no longer visible.
	current := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		current[t.ID] = struct{}{}
	}

	var added []string
	s.mu.Lock()
	for id := range current {
		if _, ok := s.watched[id]; !ok {
			added = append(added, id)
		}
	}
	s.watched = current
	s.mu.Unlock()

	for _, id := range added {
		s.refreshComments(ctx, id)
	}
}

func (s *Session) refreshComments(ctx context.Context, taskID string) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at asc").
		Find(&comments).Error
	if err != nil {
		logging.Logger.Errorf("live query comments for task %s: %v", taskID, err)
		return
	}
	s.push(Snapshot{Type: "snapshot", Collection: bus.CollectionComments, TaskID: taskID, Data: comments})
}

func (s *Session) refreshNotifications(ctx context.Context) {
	var notifs []models.Notification
	err := s.db.WithContext(ctx).
		Where("user_email = ?", s.email).
		Order("timestamp desc").
		Find(&notifs).Error
	if err != nil {
		logging.Logger.Errorf("live query notifications for %s: %v", s.email, err)
		return
	}
	s.push(Snapshot{Type: "snapshot", Collection: bus.CollectionNotifications, Data: EnrichNotifications(s.db, notifs)})
}

func (s *Session) push(snap Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		logging.Logger.Errorf("marshal snapshot: %v", err)
		return
	}
	s.send(payload)
}
