package audit

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Action names a grant lifecycle step.
type Action string

const (
	ActionCodeIssued     Action = "code_issued"
	ActionCodeRedeemed   Action = "code_redeemed"
	ActionCodeRejected   Action = "code_rejected"
	ActionUserInfoServed Action = "userinfo_served"
	ActionUserInfoDenied Action = "userinfo_denied"
)

// Event is one audit record. Codes and tokens never appear in it.
type Event struct {
	Action   Action
	ClientID string
	Subject  string
	Scope    string
	Reason   string
	Err      error
}

// Logger writes audit events as single JSON lines, separate from the
// application log.
type Logger struct {
	log zerolog.Logger
	now func() time.Time
}

// NewLogger writes to w. A nil writer yields a logger that drops everything.
func NewLogger(w io.Writer) *Logger {
	if w == nil {
		return Nop()
	}

	return &Logger{
		log: zerolog.New(w).With().Str("log", "audit").Logger(),
		now: time.Now,
	}
}

func Nop() *Logger {
	return &Logger{log: zerolog.Nop(), now: time.Now}
}

// Record writes e. Trace ids from ctx are attached when present.
func (l *Logger) Record(ctx context.Context, e Event) {
	if l == nil {
		return
	}

	success := e.Err == nil && e.Reason == ""

	entry := l.log.Log().Ctx(ctx).
		Time("timestamp", l.now().UTC()).
		Str("action", string(e.Action)).
		Bool("success", success)

	if e.ClientID != "" {
		entry = entry.Str("client_id", e.ClientID)
	}
	if e.Subject != "" {
		entry = entry.Str("sub", e.Subject)
	}
	if e.Scope != "" {
		entry = entry.Str("scope", e.Scope)
	}
	if e.Reason != "" {
		entry = entry.Str("reason", e.Reason)
	}
	if e.Err != nil {
		entry = entry.Str("error", e.Err.Error())
	}

	entry.Send()
}
