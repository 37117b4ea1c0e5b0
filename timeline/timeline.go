package timeline

import (
	"encoding/json"
	"sort"

	"github.com/TumiLabsJN/rumiai-go/logging"
)

// Timeline is the single time-ordered sequence of typed events across all
// modalities. Entries are ordered by start with a stable secondary key on
// insertion order; callers must not mutate entries after Freeze.
type Timeline struct {
	duration float64
	entries  []Entry
	nextSeq  int
	frozen   bool

	// Recovery counters surfaced in the pipeline summary.
	Dropped int `json:"dropped"`
	Clamped int `json:"clamped"`
	Swapped int `json:"swapped"`
}

// New creates an empty timeline bounded by the video duration.
func New(duration float64) *Timeline {
	return &Timeline{duration: duration}
}

// Duration returns the bounding video duration in seconds.
func (t *Timeline) Duration() float64 {
	return t.duration
}

// Add validates and inserts an entry. Entries with negative start are
// dropped; starts beyond duration are clamped; inverted ranges are swapped.
// Returns whether the entry was kept.
func (t *Timeline) Add(e Entry) bool {
	if t.frozen {
		logging.Error(nil, "add to frozen timeline ignored",
			logging.Fields{"modality": e.Modality})
		return false
	}

	if e.Start < 0 {
		t.Dropped++
		logging.Warn("dropping timeline entry with negative start",
			logging.Fields{"modality": e.Modality, "start": e.Start.Seconds()})
		return false
	}

	if e.End != nil && *e.End < e.Start {
		start := e.Start
		end := *e.End
		e.Start = end
		e.End = &start
		t.Swapped++
		logging.Warn("swapped inverted timeline range",
			logging.Fields{"modality": e.Modality})
	}

	if clamped, did := ClampToDuration(e.Start, t.duration); did {
		e.Start = clamped
		t.Clamped++
		logging.Warn("clamped timeline entry start to duration",
			logging.Fields{"modality": e.Modality, "duration": t.duration})
	}
	if e.End != nil {
		if clamped, did := ClampToDuration(*e.End, t.duration); did {
			e.End = &clamped
			t.Clamped++
		}
	}

	e.seq = t.nextSeq
	t.nextSeq++
	t.entries = append(t.entries, e)
	return true
}

// Freeze sorts the timeline into its canonical order and marks it read-only.
func (t *Timeline) Freeze() {
	sort.SliceStable(t.entries, func(i, j int) bool {
		return t.entries[i].Start < t.entries[j].Start
	})
	t.frozen = true
}

// Len returns the number of entries.
func (t *Timeline) Len() int {
	return len(t.entries)
}

// Entries returns the ordered entries. The returned slice is shared; callers
// treat it as read-only.
func (t *Timeline) Entries() []Entry {
	return t.entries
}

// ByModality returns the ordered entries of one modality.
func (t *Timeline) ByModality(m Modality) []Entry {
	var out []Entry
	for _, e := range t.entries {
		if e.Modality == m {
			out = append(out, e)
		}
	}
	return out
}

// Range returns entries with start in [from, to).
func (t *Timeline) Range(from, to Timestamp) []Entry {
	var out []Entry
	for _, e := range t.entries {
		if e.Start >= from && e.Start < to {
			out = append(out, e)
		}
	}
	return out
}

// CountInSecond returns the number of entries with sec <= start < sec+1.
func (t *Timeline) CountInSecond(sec int) int {
	n := 0
	for _, e := range t.entries {
		s := e.Start.Seconds()
		if s >= float64(sec) && s < float64(sec+1) {
			n++
		}
	}
	return n
}

// timelineJSON is the serialized form of a timeline.
type timelineJSON struct {
	Duration float64 `json:"duration"`
	Entries  []Entry `json:"entries"`
	Dropped  int     `json:"dropped,omitempty"`
	Clamped  int     `json:"clamped,omitempty"`
	Swapped  int     `json:"swapped,omitempty"`
}

// MarshalJSON serializes the timeline in canonical order.
func (t *Timeline) MarshalJSON() ([]byte, error) {
	return json.Marshal(timelineJSON{
		Duration: t.duration,
		Entries:  t.entries,
		Dropped:  t.Dropped,
		Clamped:  t.Clamped,
		Swapped:  t.Swapped,
	})
}
