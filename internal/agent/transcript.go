package agent

import (
	"sync"

	"github.com/vooagent/voo/internal/models"
)

// history is the transcript of the current session. Within a session it only
// grows; reset starts a new session instead of editing the old one. Readers
// always get a deep copy so the inspector can read while a turn is running.
type history struct {
	mu      sync.RWMutex
	session string
	t       models.Transcript
}

func newHistory(session, system string) *history {
	return &history{
		session: session,
		t:       models.Transcript{System: system, Turns: []models.Turn{}},
	}
}

func (h *history) sessionID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session
}

func (h *history) snapshot() models.Transcript {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.t.Clone()
}

// append adds all turns at once; a round is never visible half-written.
func (h *history) append(turns ...models.Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.t.Turns = append(h.t.Turns, turns...)
}

// reset swaps in an empty transcript under a new session ID, keeping the
// system prompt.
func (h *history) reset(session string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = session
	h.t = models.Transcript{System: h.t.System, Turns: []models.Turn{}}
}
