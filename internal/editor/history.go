package editor

import "sync"

type EditKind string

const (
	EditBuild  EditKind = "build"
	EditDelete EditKind = "delete"
)

// EditRecord is one change applied to a room's network.
type EditRecord struct {
	T       float64  `json:"t"`
	Editor  string   `json:"editor"`
	Kind    EditKind `json:"kind"`
	Section EntityID `json:"section"`
	Start   EntityID `json:"start"`
	End     EntityID `json:"end"`
}

// EditHistory is a fixed-size ring of the latest edits.
type EditHistory struct {
	buf   []EditRecord
	head  int
	size  int
	mu    sync.RWMutex
	limit int
}

func newEditHistory(limit int) *EditHistory {
	if limit <= 0 {
		limit = HistoryLimit
	}
	return &EditHistory{buf: make([]EditRecord, limit), limit: limit}
}

func (h *EditHistory) push(r EditRecord) {
	h.mu.Lock()
	h.buf[h.head] = r
	h.head = (h.head + 1) % h.limit
	if h.size < h.limit {
		h.size++
	}
	h.mu.Unlock()
}

func (h *EditHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// Recent returns up to n of the newest records, oldest first.
func (h *EditHistory) Recent(n int) []EditRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if n > h.size || n < 0 {
		n = h.size
	}
	out := make([]EditRecord, n)
	for i := 0; i < n; i++ {
		idx := (h.head - n + i + h.limit) % h.limit
		out[i] = h.buf[idx]
	}
	return out
}

// Since returns the records newer than t, oldest first.
func (h *EditHistory) Since(t float64) []EditRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []EditRecord
	for i := h.size - 1; i >= 0; i-- {
		r := h.buf[(h.head-1-i+h.limit)%h.limit]
		if r.T > t {
			out = append(out, r)
		}
	}
	return out
}
