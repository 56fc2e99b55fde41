// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/pdiddy/advisor-engine/pkg/types"
)

// Primary phase labels. Each appears exactly once per run, in OODA order.
const (
	phaseObserve = "OBSERVE"
	phaseOrient  = "ORIENT"
	phaseDecide  = "DECIDE"
	phaseAct     = "ACT"
)

// Secondary log labels. Distinct from the phase labels so the log stays
// parseable by phase.
const (
	labelEvidence = "EVIDENCE"
	labelPersona  = "PERSONA"
	labelComplete = "COMPLETE"
)

// Tool counter names.
const (
	toolSearch     = "search"
	toolCompletion = "completion"
)

// recorder accumulates the execution log and counters for one run. Safe
// for concurrent use during the parallel Decide fan-out.
type recorder struct {
	start time.Time

	mu        sync.Mutex
	tools     map[string]int
	errors    int
	tokensIn  int
	tokensOut int
	log       []string
}

func newRecorder(start time.Time) *recorder {
	return &recorder{start: start, tools: make(map[string]int)}
}

// logf appends one "[  1.23s] LABEL: message" entry.
func (r *recorder) logf(label, format string, args ...any) {
	elapsed := time.Since(r.start).Seconds()
	entry := fmt.Sprintf("[%6.2fs] %s: %s", elapsed, label, fmt.Sprintf(format, args...))

	r.mu.Lock()
	r.log = append(r.log, entry)
	r.mu.Unlock()
}

func (r *recorder) incrTool(name string) {
	r.mu.Lock()
	r.tools[name]++
	r.mu.Unlock()
}

func (r *recorder) incrErrors() {
	r.mu.Lock()
	r.errors++
	r.mu.Unlock()
}

func (r *recorder) addTokens(in, out int) {
	r.mu.Lock()
	r.tokensIn += in
	r.tokensOut += out
	r.mu.Unlock()
}

// snapshot freezes the counters into RunMetrics and copies out the log.
func (r *recorder) snapshot() (types.RunMetrics, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tools := make(map[string]int, len(r.tools))
	for name, count := range r.tools {
		tools[name] = count
	}
	log := make([]string, len(r.log))
	copy(log, r.log)

	return types.RunMetrics{
		Duration:  time.Since(r.start),
		ToolCalls: tools,
		Errors:    r.errors,
		TokensIn:  r.tokensIn,
		TokensOut: r.tokensOut,
	}, log
}
