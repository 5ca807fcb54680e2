package toast

import (
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Warning Kind = "warning"
	Info    Kind = "info"
)

// Limit is how many toasts are kept; older ones are dropped first.
const Limit = 3

// Toast is a message key plus interpolation args; rendering is up to the caller.
type Toast struct {
	ID   string
	Kind Kind
	Key  string
	Args map[string]string
}

type Queue struct {
	mu    sync.Mutex
	items []Toast
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Push(kind Kind, key string, args map[string]string) Toast {
	t := Toast{ID: newID(), Kind: kind, Key: key, Args: args}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, t)
	if len(q.items) > Limit {
		q.items = append([]Toast(nil), q.items[len(q.items)-Limit:]...)
	}
	return t
}

// Drain hands out pending toasts once; a toast survives a single page render.
func (q *Queue) Drain() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// Dismiss drops one toast by id, or all of them when id is empty.
func (q *Queue) Dismiss(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if id == "" {
		q.items = nil
		return
	}
	for i, t := range q.items {
		if t.ID == id {
			q.items = append(q.items[:i:i], q.items[i+1:]...)
			return
		}
	}
}

func newID() string {
	id, err := gonanoid.New(10)
	if err != nil {
		panic(err)
	}
	return id
}
