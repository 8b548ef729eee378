package tui

import (
	"sync"
	"time"
)

// Note is one controller notification shown on the status line.
type Note struct {
	Text string
	Err  bool
	At   time.Time
}

// Notifier is a mutate.Notifier that hands notes to the running program
// through a buffered channel. When the buffer is full the oldest note is
// dropped so a mutation never blocks on the UI.
type Notifier struct {
	mu sync.Mutex
	ch chan Note
}

func NewNotifier(buf int) *Notifier {
	if buf < 1 {
		buf = 1
	}
	return &Notifier{ch: make(chan Note, buf)}
}

func (n *Notifier) Success(msg string) { n.push(Note{Text: msg, At: time.Now()}) }
func (n *Notifier) Error(msg string)   { n.push(Note{Text: msg, Err: true, At: time.Now()}) }

// Notes is the receiving side read by the program.
func (n *Notifier) Notes() <-chan Note { return n.ch }

func (n *Notifier) push(note Note) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for {
		select {
		case n.ch <- note:
			return
		default:
		}
		select {
		case <-n.ch:
		default:
		}
	}
}
