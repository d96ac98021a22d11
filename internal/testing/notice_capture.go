package testing

import (
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
)

// Notice is one NOTICE/WARNING message sent by the server during a run.
type Notice struct {
	Severity string
	Message  string
}

// NoticeCapture collects server notices such as "table ... does not exist, skipping".
// Thread-safe for concurrent use.
type NoticeCapture struct {
	notices []Notice
	mu      sync.Mutex
}

// NewNoticeCapture creates a new NoticeCapture instance.
func NewNoticeCapture() *NoticeCapture {
	return &NoticeCapture{notices: make([]Notice, 0)}
}

// Handler returns a function suitable for pgx's OnNotice callback.
func (nc *NoticeCapture) Handler() func(*pgconn.PgConn, *pgconn.Notice) {
	return func(_ *pgconn.PgConn, n *pgconn.Notice) {
		if n == nil {
			return
		}

		nc.mu.Lock()
		defer nc.mu.Unlock()

		nc.notices = append(nc.notices, Notice{Severity: n.Severity, Message: n.Message})
	}
}

// Notices returns a copy of all captured notices.
func (nc *NoticeCapture) Notices() []Notice {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	result := make([]Notice, len(nc.notices))
	copy(result, nc.notices)
	return result
}

// Messages returns just the message texts in order.
func (nc *NoticeCapture) Messages() []string {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	result := make([]string, len(nc.notices))
	for i, n := range nc.notices {
		result[i] = n.Message
	}
	return result
}

// CountContaining returns how many messages contain substr.
func (nc *NoticeCapture) CountContaining(substr string) int {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	count := 0
	for _, n := range nc.notices {
		if strings.Contains(n.Message, substr) {
			count++
		}
	}
	return count
}

// Reset clears all captured notices.
func (nc *NoticeCapture) Reset() {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	nc.notices = make([]Notice, 0)
}

// Count returns the number of captured notices.
func (nc *NoticeCapture) Count() int {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	return len(nc.notices)
}
