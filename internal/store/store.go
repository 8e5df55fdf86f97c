package store

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nissyi-gh/flowboard/internal/model"
)

// Clock supplies the current time for CreatedAt/UpdatedAt stamps.
type Clock interface {
	Now() time.Time
}

// RealClock reads the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// EditSession is the open create/edit form. A nil session means the form is closed.
type EditSession struct {
	Draft   model.Draft
	Editing bool
}

// Lists is the board view: tasks partitioned by status, each in insertion order.
type Lists struct {
	Pending   []model.Task
	Completed []model.Task
	Overdue   []model.Task
	Removed   []model.Task
}

// Get returns the partition for status.
func (l Lists) Get(status model.Status) []model.Task {
	switch status {
	case model.StatusPending:
		return l.Pending
	case model.StatusCompleted:
		return l.Completed
	case model.StatusOverdue:
		return l.Overdue
	case model.StatusRemoved:
		return l.Removed
	}
	return nil
}

// Len returns the total number of tasks across all partitions.
func (l Lists) Len() int {
	return len(l.Pending) + len(l.Completed) + len(l.Overdue) + len(l.Removed)
}

// TaskStore holds the authoritative task set and the edit session.
// Every method is atomic; unknown ids are ignored and reported as false.
type TaskStore struct {
	mu      sync.Mutex
	tasks   []model.Task
	index   map[string]int
	history []model.HistoryEntry

	session *EditSession
	blank   model.Draft

	clock  Clock
	newID  func() string
	policy Policy
	sweep  SweepPolicy
	logger *log.Logger
}

// Option configures a TaskStore.
type Option func(*TaskStore)

func WithClock(c Clock) Option { return func(s *TaskStore) { s.clock = c } }

func WithIDGenerator(fn func() string) Option { return func(s *TaskStore) { s.newID = fn } }

func WithPolicy(p Policy) Option { return func(s *TaskStore) { s.policy = p } }

func WithSweep(p SweepPolicy) Option { return func(s *TaskStore) { s.sweep = p } }

func WithLogger(l *log.Logger) Option { return func(s *TaskStore) { s.logger = l } }

// New returns an empty store.
func New(opts ...Option) *TaskStore {
	s := &TaskStore{
		index:  make(map[string]int),
		clock:  RealClock{},
		newID:  uuid.NewString,
		policy: Permissive,
		sweep:  SweepPending,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.blank = model.BlankDraft(s.newID())
	return s
}

// Create appends a new pending task, closes the form and resets the draft.
func (s *TaskStore) Create(in model.TaskInput) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	t := model.Task{
		ID:          s.uniqueID(),
		Title:       in.Title,
		Description: in.Description,
		Deadline:    copyDate(in.Deadline),
		Status:      model.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.index[t.ID] = len(s.tasks)
	s.tasks = append(s.tasks, t)
	s.record(t.ID, EventCreated, formatCreatedDetails(t), now)
	s.closeForm()

	s.logger.Printf("task %s created", t.ID)
	return t.Clone()
}

// Update replaces the title, description and deadline of an existing task,
// keeping its id and status. The form is closed either way.
func (s *TaskStore) Update(id string, in model.TaskInput) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeForm()
	i, ok := s.index[id]
	if !ok {
		return false
	}

	now := s.clock.Now()
	before := s.tasks[i].Clone()
	t := &s.tasks[i]
	t.Title = in.Title
	t.Description = in.Description
	t.Deadline = copyDate(in.Deadline)
	t.UpdatedAt = now
	s.record(id, EventUpdated, formatTaskDiff(before, *t), now)
	return true
}

// Remove soft-deletes a task by moving it to the removed list.
func (s *TaskStore) Remove(id string) bool {
	return s.SetStatus(id, model.StatusRemoved)
}

// MarkComplete moves a task to the completed list regardless of its prior status.
func (s *TaskStore) MarkComplete(id string) bool {
	return s.SetStatus(id, model.StatusCompleted)
}

// SetStatus moves a task to status. It returns false when the id is unknown,
// the status is invalid, or the transition policy refuses the move.
func (s *TaskStore) SetStatus(id string, status model.Status) bool {
	if !status.Valid() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return false
	}
	return s.transition(&s.tasks[i], status, s.clock.Now())
}

// RefreshOverdue flags every eligible task whose deadline is strictly before
// now and returns how many tasks changed. It never clears overdue.
func (s *TaskStore) RefreshOverdue(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for i := range s.tasks {
		t := &s.tasks[i]
		if t.Status == model.StatusOverdue || !t.IsPastDue(now) || !s.sweep(t.Status) {
			continue
		}
		if s.transition(t, model.StatusOverdue, now) {
			changed++
		}
	}
	if changed > 0 {
		s.logger.Printf("overdue sweep flagged %d task(s)", changed)
	}
	return changed
}

// BeginCreate opens the form with a blank draft.
func (s *TaskStore) BeginCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blank = model.BlankDraft(s.newID())
	s.session = &EditSession{Draft: s.blank}
}

// BeginEdit opens the form with a draft populated from the task.
func (s *TaskStore) BeginEdit(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.session = &EditSession{Draft: model.DraftOf(s.tasks[i]), Editing: true}
	return true
}

// CancelForm closes the form and resets the draft.
func (s *TaskStore) CancelForm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeForm()
}

// ByStatus returns copies of the tasks partitioned by status.
func (s *TaskStore) ByStatus() Lists {
	s.mu.Lock()
	defer s.mu.Unlock()

	var l Lists
	for _, t := range s.tasks {
		c := t.Clone()
		switch t.Status {
		case model.StatusPending:
			l.Pending = append(l.Pending, c)
		case model.StatusCompleted:
			l.Completed = append(l.Completed, c)
		case model.StatusOverdue:
			l.Overdue = append(l.Overdue, c)
		case model.StatusRemoved:
			l.Removed = append(l.Removed, c)
		}
	}
	return l
}

// Draft returns the form values: the session draft when the form is open,
// otherwise the blank template.
func (s *TaskStore) Draft() model.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		return s.session.Draft
	}
	return s.blank
}

// IsEditing reports whether the open form edits an existing task.
func (s *TaskStore) IsEditing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.session != nil && s.session.Editing
}

// FormVisible reports whether the create/edit form is open.
func (s *TaskStore) FormVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.session != nil
}

// Session returns a copy of the open edit session.
func (s *TaskStore) Session() (EditSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return EditSession{}, false
	}
	return *s.session, true
}

// Get returns a copy of a single task.
func (s *TaskStore) Get(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return model.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// List returns copies of all tasks in insertion order.
func (s *TaskStore) List() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	return out
}

// Len returns the number of tasks, removed ones included.
func (s *TaskStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.tasks)
}

// History returns the change log of a task, oldest first.
func (s *TaskStore) History(id string) []model.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.HistoryEntry
	for _, h := range s.history {
		if h.TaskID == id {
			out = append(out, h)
		}
	}
	return out
}

// transition applies a status change under the policy. Caller holds mu.
func (s *TaskStore) transition(t *model.Task, to model.Status, now time.Time) bool {
	from := t.Status
	if from == to {
		return true
	}
	if !s.policy.Allow(from, to) {
		s.logger.Printf("task %s: transition %s -> %s refused", t.ID, from, to)
		return false
	}
	t.Status = to
	t.UpdatedAt = now
	s.record(t.ID, EventStatus, formatStatusChange(from, to), now)
	return true
}

func (s *TaskStore) record(id, event, details string, at time.Time) {
	s.history = append(s.history, model.HistoryEntry{TaskID: id, Event: event, Details: details, At: at})
}

func (s *TaskStore) closeForm() {
	s.session = nil
	s.blank = model.BlankDraft(s.newID())
}

func (s *TaskStore) uniqueID() string {
	for {
		id := s.newID()
		if _, taken := s.index[id]; !taken && id != "" {
			return id
		}
	}
}

func copyDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
