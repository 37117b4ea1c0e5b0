package pipeline

import "sync"

// Tally counts every recovered condition so no error is silent: each counter
// surfaces in the final summary.
type Tally struct {
	mu sync.Mutex

	TimestampParse    int `json:"timestamp_parse"`
	Clamped           int `json:"clamped"`
	InputShape        int `json:"input_shape"`
	MissingModality   int `json:"missing_modality"`
	PrecomputeFailure int `json:"precompute_failure"`
	LLMFailure        int `json:"llm_failure"`
	SchemaViolation   int `json:"schema_violation"`
	SizeOverflow      int `json:"size_overflow"`
	MarkerFallback    int `json:"marker_fallback"`
}

func (t *Tally) add(counter *int, n int) {
	t.mu.Lock()
	*counter += n
	t.mu.Unlock()
}

func (t *Tally) AddTimestampParse(n int)  { t.add(&t.TimestampParse, n) }
func (t *Tally) AddClamped(n int)         { t.add(&t.Clamped, n) }
func (t *Tally) AddInputShape(n int)      { t.add(&t.InputShape, n) }
func (t *Tally) AddMissingModality(n int) { t.add(&t.MissingModality, n) }
func (t *Tally) AddPrecomputeFail(n int)  { t.add(&t.PrecomputeFailure, n) }
func (t *Tally) AddLLMFailure(n int)      { t.add(&t.LLMFailure, n) }
func (t *Tally) AddSchemaViolation(n int) { t.add(&t.SchemaViolation, n) }
func (t *Tally) AddSizeOverflow(n int)    { t.add(&t.SizeOverflow, n) }
func (t *Tally) AddMarkerFallback(n int)  { t.add(&t.MarkerFallback, n) }

// Total sums every counter.
func (t *Tally) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.TimestampParse + t.Clamped + t.InputShape + t.MissingModality +
		t.PrecomputeFailure + t.LLMFailure + t.SchemaViolation +
		t.SizeOverflow + t.MarkerFallback
}
