package store

import (
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/docstream/internal/core/domain"
)

// Store is the single source of truth for upload task state. Tasks are keyed
// by id, never by position, so overlapping completions that arrive in any
// order always update their own record. Insertion order is kept separately so
// the queue view is deterministic regardless of completion order.
//
// Every mutation is a pure function of the record matching the given id and
// the update itself. Mutations for absent ids are silent no-ops: removal is a
// legitimate user action and a straggling callback must not resurrect a task.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]domain.UploadTask
	order []string
}

func New() *Store {
	return &Store{
		tasks: make(map[string]domain.UploadTask),
	}
}

// Create admits a file as a new pending task and returns its id.
func (s *Store) Create(file domain.FileMeta) string {
	id := newTaskID(file.Name)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[id] = domain.UploadTask{
		ID:        id,
		File:      file,
		Status:    domain.StatusPending,
		Progress:  0,
		CreatedAt: time.Now().UTC(),
	}
	s.order = append(s.order, id)
	return id
}

// SetProgress updates only the progress field of the task matching id.
// Absent ids and terminal tasks are left untouched.
func (s *Store) SetProgress(id string, percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok || task.Status.Terminal() {
		return
	}
	task.Progress = percent
	s.tasks[id] = task
}

// Transition moves the task matching id to a new status. Result is recorded
// only on completed, errMsg only on error. Terminal tasks are frozen; absent
// ids are ignored.
func (s *Store) Transition(id string, status domain.UploadStatus, result *domain.UploadResult, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok || task.Status.Terminal() {
		return
	}

	task.Status = status
	switch status {
	case domain.StatusProcessing:
		// Transport finished; remote computation ongoing.
		task.Progress = 100
	case domain.StatusCompleted:
		task.Progress = 100
		task.Result = result
		task.Error = ""
	case domain.StatusError:
		task.Result = nil
		task.Error = errMsg
	}
	s.tasks[id] = task
}

func (s *Store) Get(id string) (domain.UploadTask, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	return task, ok
}

// Snapshot returns a copy of all tasks in insertion order.
func (s *Store) Snapshot() []domain.UploadTask {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.UploadTask, 0, len(s.order))
	for _, id := range s.order {
		if task, ok := s.tasks[id]; ok {
			out = append(out, task)
		}
	}
	return out
}

func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

// ClearCompleted removes completed tasks only; errored tasks stay visible
// until cleared explicitly.
func (s *Store) ClearCompleted() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range append([]string(nil), s.order...) {
		if task, ok := s.tasks[id]; ok && task.Status == domain.StatusCompleted {
			s.removeLocked(id)
		}
	}
}

func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make(map[string]domain.UploadTask)
	s.order = nil
}

// Stats derives counts fresh from current contents; nothing is cached
// separately, so the numbers cannot drift from the queue.
func (s *Store) Stats() domain.UploadStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.UploadStats{Total: len(s.tasks)}
	for _, task := range s.tasks {
		switch task.Status {
		case domain.StatusCompleted:
			stats.Completed++
		case domain.StatusProcessing:
			stats.Processing++
		case domain.StatusError:
			stats.Errors++
		}
	}
	return stats
}

// IsUploading reports whether any task has not yet reached a terminal state.
func (s *Store) IsUploading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, task := range s.tasks {
		if !task.Status.Terminal() {
			return true
		}
	}
	return false
}

func (s *Store) removeLocked(id string) {
	if _, ok := s.tasks[id]; !ok {
		return
	}
	delete(s.tasks, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// newTaskID derives an id from the file name, admission time and a random
// suffix, so two files with the same name admitted in the same instant still
// get distinct ids.
func newTaskID(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, base)
	if base == "" {
		base = "upload"
	}
	stamp := strconv.FormatInt(time.Now().UnixNano(), 36)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return base + "-" + stamp + "-" + suffix
}
