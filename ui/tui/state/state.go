package state

import (
	"time"
)

// Entry is one executed query and its output.
type Entry struct {
	Query     string
	Server    string
	Lines     []string
	Truncated bool
	Err       error
	Elapsed   time.Duration
}

// AppState holds the REPL session
type AppState struct {
	Server     string
	Params     string
	Limit      int
	History    []Entry
	Notice     string
	Running    bool
	LastUpdate time.Time
}

// MaxHistory bounds the number of entries kept for display.
const MaxHistory = 50

// Append records e, dropping the oldest entry when the history is full.
func (s *AppState) Append(e Entry) {
	s.History = append(s.History, e)
	if len(s.History) > MaxHistory {
		s.History = s.History[1:]
	}
	s.LastUpdate = time.Now()
}

// Queries returns the executed query texts, oldest first.
func (s AppState) Queries() []string {
	qs := make([]string, len(s.History))
	for i, e := range s.History {
		qs[i] = e.Query
	}
	return qs
}
