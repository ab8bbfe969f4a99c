package events

import (
	"sync"
	"time"
)

type NoticeKind string

const (
	NoticePrintFailed       NoticeKind = "print_failed"
	NoticeNothingToVoid     NoticeKind = "nothing_to_void"
	NoticeHoldBrowserClosed NoticeKind = "hold_browser_closed"
	NoticeCartVoided        NoticeKind = "cart_voided"
	NoticeSaleCompleted     NoticeKind = "sale_completed"
)

type NoticeLevel string

const (
	LevelInfo    NoticeLevel = "info"
	LevelWarning NoticeLevel = "warning"
)

// Notice is a message for the operator.
type Notice struct {
	Seq     uint64      `json:"seq"`
	Kind    NoticeKind  `json:"kind"`
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

// NoticeLog keeps the most recent notices in a fixed-size ring.
type NoticeLog struct {
	mu    sync.Mutex
	ring  []Notice
	start int
	size  int
	seq   uint64
	now   func() time.Time
}

func NewNoticeLog(limit int) *NoticeLog {
	if limit <= 0 {
		limit = 50
	}
	return &NoticeLog{
		ring: make([]Notice, limit),
		now:  time.Now,
	}
}

func (n *NoticeLog) Publish(kind NoticeKind, level NoticeLevel, message string) Notice {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.seq++
	notice := Notice{
		Seq:     n.seq,
		Kind:    kind,
		Level:   level,
		Message: message,
		At:      n.now().UTC(),
	}

	if n.size < len(n.ring) {
		n.ring[(n.start+n.size)%len(n.ring)] = notice
		n.size++
	} else {
		n.ring[n.start] = notice
		n.start = (n.start + 1) % len(n.ring)
	}
	return notice
}

// Since returns retained notices with Seq greater than after, oldest first.
func (n *NoticeLog) Since(after uint64) []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Notice, 0, n.size)
	for i := 0; i < n.size; i++ {
		notice := n.ring[(n.start+i)%len(n.ring)]
		if notice.Seq > after {
			out = append(out, notice)
		}
	}
	return out
}
