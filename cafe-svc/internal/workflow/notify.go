package workflow

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

type Notifier interface {
	Notify(message string, isError bool)
}

// Inbox keeps the most recent notifications until they are drained.
type Inbox struct {
	mu       sync.Mutex
	limit    int
	messages []Notification
}

type Notification struct {
	Message string `json:"message"`
	Error   bool   `json:"error"`
}

func NewInbox(limit int) *Inbox {
	if limit <= 0 {
		limit = 20
	}
	return &Inbox{limit: limit}
}

func (i *Inbox) Notify(message string, isError bool) {
	if isError {
		log.Warn(message)
	} else {
		log.Info(message)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.messages = append(i.messages, Notification{Message: message, Error: isError})
	if len(i.messages) > i.limit {
		i.messages = i.messages[len(i.messages)-i.limit:]
	}
}

// Drain returns the pending notifications oldest first and empties the inbox.
func (i *Inbox) Drain() []Notification {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := i.messages
	i.messages = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}
