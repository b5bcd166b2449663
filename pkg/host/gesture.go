package host

import (
	"context"

	"github.com/dredimura/surface/pkg/domain"
)

// maxHistory bounds the undo history.
const maxHistory = 100

func (h *Host) gesture(p domain.GesturePayload) {
	h.mu.Lock()
	defer h.mu.Unlock()

	param, ok := h.params[p.ID]
	if !ok {
		return
	}

	switch p.Phase {
	case domain.GestureBegin:
		if _, open := h.gestures[p.ID]; !open {
			h.gestures[p.ID] = param.normalized
		}
	case domain.GestureEnd:
		from, open := h.gestures[p.ID]
		if !open {
			return
		}
		delete(h.gestures, p.ID)
		if from == param.normalized {
			return
		}
		h.history = append(h.history, UndoEntry{ID: p.ID, From: from, To: param.normalized})
		if len(h.history) > maxHistory {
			h.history = h.history[len(h.history)-maxHistory:]
		}
		h.logger.Debug("Host: gesture recorded", "param", p.ID, "from", from, "to", param.normalized)
	default:
		h.logger.Warn("Host: unknown gesture phase", "param", p.ID, "phase", p.Phase)
	}
}

// Gesturing reports whether a gesture is open on id.
func (h *Host) Gesturing(id domain.ParameterID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, open := h.gestures[id]
	return open
}

// History returns the undo entries, oldest first.
func (h *Host) History() []UndoEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]UndoEntry, len(h.history))
	copy(out, h.history)
	return out
}

// Undo reverts the most recent gesture and notifies the UI.
func (h *Host) Undo(ctx context.Context) (UndoEntry, bool) {
	h.mu.Lock()
	if len(h.history) == 0 {
		h.mu.Unlock()
		return UndoEntry{}, false
	}
	entry := h.history[len(h.history)-1]
	h.history = h.history[:len(h.history)-1]
	h.mu.Unlock()

	if _, err := h.SetNormalized(ctx, entry.ID, entry.From, domain.OriginHost); err != nil {
		h.logger.Warn("Host: undo failed", "param", entry.ID, "err", err)
		return entry, false
	}
	return entry, true
}
