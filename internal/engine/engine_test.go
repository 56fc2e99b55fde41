// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/pdiddy/advisor-engine/internal/completion"
	"github.com/pdiddy/advisor-engine/internal/persona"
	"github.com/pdiddy/advisor-engine/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const scenarioQuestion = "Compare Raft vs PBFT consensus for trading systems"

// fakeClient answers deterministically by persona, honoring cancellation
// the way a real backend would.
type fakeClient struct {
	mu    sync.Mutex
	calls int
	fn    func(prompt string) (string, error)
}

func (f *fakeClient) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("calling backend: %w: %w", completion.ErrUnavailable, err)
	}
	return f.fn(prompt)
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func scenarioClient() *fakeClient {
	return &fakeClient{fn: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "Prof. Algorithms"):
			return "Raft offers simpler leader-based consensus while PBFT tolerates byzantine replicas at quadratic message cost [1][2].", nil
		case strings.Contains(prompt, "Prof. Finance"):
			return "Trading platforms accept consensus overhead only when latency budgets leave room for coordination [1].", nil
		default:
			return "General analysis grounded in the retrieved evidence snippets [1].", nil
		}
	}}
}

func failingClient() *fakeClient {
	return &fakeClient{fn: func(string) (string, error) {
		return "", fmt.Errorf("calling ollama: %w: connection refused", completion.ErrUnavailable)
	}}
}

func newTestEngine(tb testing.TB, cfg types.EngineConfig, client completion.Client) *Engine {
	tb.Helper()
	return New(cfg, nil, nil, client)
}

var logEntryRe = regexp.MustCompile(`^\[\s*(\d+\.\d{2})s\] ([A-Z]+): .+$`)

// phaseSequence extracts the label of every log entry, failing on
// malformed lines.
func phaseSequence(tb testing.TB, log []string) []string {
	tb.Helper()
	labels := make([]string, 0, len(log))
	for _, entry := range log {
		m := logEntryRe.FindStringSubmatch(entry)
		if m == nil {
			tb.Fatalf("malformed log entry: %q", entry)
		}
		labels = append(labels, m[2])
	}
	return labels
}

func TestAnalyze_Scenario(t *testing.T) {
	eng := newTestEngine(t, types.EngineConfig{}, scenarioClient())

	res, err := eng.Analyze(context.Background(), scenarioQuestion)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if len(res.Insights) != 2 {
		t.Fatalf("got %d insights, want 2:\n%s", len(res.Insights), res.Rendered)
	}
	if res.Insights[0].PersonaID != "algorithms" || res.Insights[1].PersonaID != "finance" {
		t.Errorf("persona assignment = [%s %s], want [algorithms finance]",
			res.Insights[0].PersonaID, res.Insights[1].PersonaID)
	}

	wantRendered := "• Raft offers simpler leader-based consensus while PBFT tolerates byzantine replicas at quadratic message cost. [1][2]\n" +
		"• Trading platforms accept consensus overhead only when latency budgets leave room for coordination. [3]\n" +
		"DONE"
	if res.Rendered != wantRendered {
		t.Errorf("Rendered =\n%s\nwant\n%s", res.Rendered, wantRendered)
	}

	// The algorithms sub-question retrieves the raft entry first, so the
	// first citation must be the raft source.
	if got := res.Insights[0].Citations; len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("algorithms citations = %v, want [1 2]", got)
	}
	if got := res.Insights[1].Citations; len(got) != 1 || got[0] != 3 {
		t.Errorf("finance citations = %v, want [3]", got)
	}

	if res.Metrics.ToolCalls[toolSearch] != 2 || res.Metrics.ToolCalls[toolCompletion] != 2 {
		t.Errorf("ToolCalls = %v, want search:2 completion:2", res.Metrics.ToolCalls)
	}
	if res.Metrics.Errors != 0 {
		t.Errorf("Errors = %d, want 0", res.Metrics.Errors)
	}
	if res.Metrics.TokensIn == 0 || res.Metrics.TokensOut == 0 {
		t.Errorf("token estimates not recorded: in=%d out=%d", res.Metrics.TokensIn, res.Metrics.TokensOut)
	}

	// Weighted mean: (3*0.6 + 2*0.5) / 5.
	if want := 0.56; !almostEqual(res.Confidence, want) {
		t.Errorf("Confidence = %v, want %v", res.Confidence, want)
	}
}

func TestAnalyze_PhaseOrderAndTimestamps(t *testing.T) {
	eng := newTestEngine(t, types.EngineConfig{}, scenarioClient())

	res, err := eng.Analyze(context.Background(), scenarioQuestion)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	labels := phaseSequence(t, res.Log)

	var phases []string
	for _, l := range labels {
		switch l {
		case phaseObserve, phaseOrient, phaseDecide, phaseAct:
			phases = append(phases, l)
		}
	}
	want := []string{phaseObserve, phaseOrient, phaseDecide, phaseAct}
	if diff := cmp.Diff(want, phases); diff != "" {
		t.Errorf("phase sequence mismatch (-want +got):\n%s", diff)
	}

	var prev float64
	for _, entry := range res.Log {
		m := logEntryRe.FindStringSubmatch(entry)
		ts, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			t.Fatalf("parsing timestamp of %q: %v", entry, err)
		}
		if ts < prev {
			t.Errorf("timestamps went backwards at %q", entry)
		}
		prev = ts
	}
}

func TestAnalyze_EmptyQuestion(t *testing.T) {
	eng := newTestEngine(t, types.EngineConfig{}, scenarioClient())

	for _, q := range []string{"", "   ", "\t\n "} {
		res, err := eng.Analyze(context.Background(), q)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Analyze(%q) error = %v, want ErrInvalidInput", q, err)
		}
		if res != nil {
			t.Errorf("Analyze(%q) returned a result alongside the error", q)
		}
	}
}

func TestAnalyze_AllBackendCallsFail(t *testing.T) {
	client := failingClient()
	eng := newTestEngine(t, types.EngineConfig{}, client)

	res, err := eng.Analyze(context.Background(), scenarioQuestion)
	if err != nil {
		t.Fatalf("Analyze() error = %v, want degraded result", err)
	}

	if len(res.Insights) == 0 {
		t.Fatal("no insights in degraded result")
	}
	for i, in := range res.Insights {
		if !in.Degraded {
			t.Errorf("insight %d not marked degraded", i)
		}
		if in.Confidence > persona.FallbackConfidence+1e-9 {
			t.Errorf("insight %d confidence = %v, want <= %v", i, in.Confidence, persona.FallbackConfidence)
		}
		if in.Text == "" {
			t.Errorf("insight %d has empty text", i)
		}
	}

	// One absorbed error per sub-question, nothing more.
	if res.Metrics.Errors != client.callCount() {
		t.Errorf("Errors = %d, want %d (one per sub-question)", res.Metrics.Errors, client.callCount())
	}
	if res.Metrics.Errors != 2 {
		t.Errorf("Errors = %d, want 2", res.Metrics.Errors)
	}

	if !strings.HasSuffix(res.Rendered, "\nDONE") {
		t.Errorf("degraded rendering missing DONE terminator:\n%s", res.Rendered)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	run := func() *types.AnalysisResult {
		eng := newTestEngine(t, types.EngineConfig{}, scenarioClient())
		res, err := eng.Analyze(context.Background(), scenarioQuestion)
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		return res
	}

	a, b := run(), run()

	if diff := cmp.Diff(a.Insights, b.Insights); diff != "" {
		t.Errorf("insights differ between identical runs (-a +b):\n%s", diff)
	}
	if a.Rendered != b.Rendered {
		t.Errorf("rendered output differs between identical runs:\n%s\n---\n%s", a.Rendered, b.Rendered)
	}
	if !almostEqual(a.Confidence, b.Confidence) {
		t.Errorf("confidence differs between identical runs: %v vs %v", a.Confidence, b.Confidence)
	}
}

func TestAnalyze_ParallelMatchesSequential(t *testing.T) {
	seq := newTestEngine(t, types.EngineConfig{}, scenarioClient())
	par := newTestEngine(t, types.EngineConfig{Parallel: true}, scenarioClient())

	sres, err := seq.Analyze(context.Background(), scenarioQuestion)
	if err != nil {
		t.Fatalf("sequential Analyze() error = %v", err)
	}
	pres, err := par.Analyze(context.Background(), scenarioQuestion)
	if err != nil {
		t.Fatalf("parallel Analyze() error = %v", err)
	}

	if diff := cmp.Diff(sres.Insights, pres.Insights); diff != "" {
		t.Errorf("parallel insights differ from sequential (-seq +par):\n%s", diff)
	}
	if sres.Rendered != pres.Rendered {
		t.Errorf("parallel rendering differs from sequential:\n%s\n---\n%s", sres.Rendered, pres.Rendered)
	}
}

func TestAnalyze_GeneralistFallback(t *testing.T) {
	eng := newTestEngine(t, types.EngineConfig{}, scenarioClient())

	res, err := eng.Analyze(context.Background(), "How do plants convert sunlight into sugar?")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if len(res.Insights) != 1 {
		t.Fatalf("got %d insights, want 1", len(res.Insights))
	}
	if res.Insights[0].PersonaID != persona.GeneralistID {
		t.Errorf("PersonaID = %q, want %q", res.Insights[0].PersonaID, persona.GeneralistID)
	}
	// Nothing in the knowledge table matches, so no citations survive.
	if len(res.Insights[0].Citations) != 0 {
		t.Errorf("Citations = %v, want none", res.Insights[0].Citations)
	}
	if res.Metrics.ToolCalls[toolSearch] != 1 {
		t.Errorf("search calls = %d, want 1", res.Metrics.ToolCalls[toolSearch])
	}
}

func TestAnalyze_NoEvidenceAndFailingBackend(t *testing.T) {
	eng := newTestEngine(t, types.EngineConfig{}, failingClient())

	res, err := eng.Analyze(context.Background(), "How do plants convert sunlight into sugar?")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if len(res.Insights) != 1 {
		t.Fatalf("got %d insights, want 1", len(res.Insights))
	}
	in := res.Insights[0]
	if !in.Degraded || in.Confidence != 0 || len(in.Citations) != 0 {
		t.Errorf("fallback insight = %+v, want degraded, confidence 0, no citations", in)
	}
	if in.Text == "" {
		t.Error("fallback insight has empty text")
	}
	if res.Metrics.Errors != 1 {
		t.Errorf("Errors = %d, want 1", res.Metrics.Errors)
	}
	if res.Confidence != 0 {
		t.Errorf("aggregate confidence = %v, want 0", res.Confidence)
	}
}

func TestAnalyze_DuplicateInsightsCollapse(t *testing.T) {
	same := &fakeClient{fn: func(string) (string, error) {
		return "Consensus protocol selection hinges on the failure model and the latency budget [1].", nil
	}}
	eng := newTestEngine(t, types.EngineConfig{}, same)

	res, err := eng.Analyze(context.Background(), scenarioQuestion)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if len(res.Insights) != 1 {
		t.Fatalf("got %d insights, want 1 after dedup:\n%s", len(res.Insights), res.Rendered)
	}
	if res.Insights[0].PersonaID != "algorithms" {
		t.Errorf("surviving insight from %q, want first occurrence (algorithms)", res.Insights[0].PersonaID)
	}
	if got := strings.Count(res.Rendered, "• "); got != 1 {
		t.Errorf("rendered %d bullets, want 1:\n%s", got, res.Rendered)
	}
}

func TestAnalyze_CanceledContext(t *testing.T) {
	client := scenarioClient()
	eng := newTestEngine(t, types.EngineConfig{}, client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := eng.Analyze(ctx, scenarioQuestion)
	if err != nil {
		t.Fatalf("Analyze() error = %v, want degraded result", err)
	}

	for i, in := range res.Insights {
		if !in.Degraded {
			t.Errorf("insight %d not degraded under canceled context", i)
		}
	}
	// Lookups are skipped once the context is dead; backend attempts are
	// still accounted for.
	if res.Metrics.ToolCalls[toolSearch] != 0 {
		t.Errorf("search calls = %d, want 0", res.Metrics.ToolCalls[toolSearch])
	}
	if res.Metrics.ToolCalls[toolCompletion] != 2 {
		t.Errorf("completion calls = %d, want 2", res.Metrics.ToolCalls[toolCompletion])
	}
	if res.Metrics.Errors != 2 {
		t.Errorf("Errors = %d, want 2", res.Metrics.Errors)
	}
}

func TestAnalyze_CitationsContiguousFromOne(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		eng := newTestEngine(t, types.EngineConfig{Parallel: parallel}, scenarioClient())

		res, err := eng.Analyze(context.Background(), scenarioQuestion)
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}

		seen := make(map[int]bool)
		maxN := 0
		for _, in := range res.Insights {
			for _, n := range in.Citations {
				if n < 1 {
					t.Fatalf("citation index %d below 1", n)
				}
				seen[n] = true
				if n > maxN {
					maxN = n
				}
			}
		}
		for n := 1; n <= maxN; n++ {
			if !seen[n] {
				t.Errorf("parallel=%v: citation sequence has a gap at %d", parallel, n)
			}
		}
	}
}

func TestDecompose(t *testing.T) {
	eng := newTestEngine(t, types.EngineConfig{}, scenarioClient())

	t.Run("scenario question", func(t *testing.T) {
		subqs := eng.decompose(scenarioQuestion)
		if len(subqs) != 2 {
			t.Fatalf("got %d sub-questions, want 2", len(subqs))
		}
		if subqs[0].PersonaID != "algorithms" || subqs[1].PersonaID != "finance" {
			t.Errorf("personas = [%s %s], want [algorithms finance]", subqs[0].PersonaID, subqs[1].PersonaID)
		}
		if want := "Compare the algorithmic approaches relevant to: " + scenarioQuestion; subqs[0].Text != want {
			t.Errorf("sub-question 0 = %q, want %q", subqs[0].Text, want)
		}
		for i, sq := range subqs {
			if sq.Index != i {
				t.Errorf("sub-question %d has Index %d", i, sq.Index)
			}
		}
	})

	t.Run("cap respected", func(t *testing.T) {
		capped := New(types.EngineConfig{MaxSubQuestions: 1}, nil, nil, scenarioClient())
		subqs := capped.decompose(scenarioQuestion)
		if len(subqs) != 1 || subqs[0].PersonaID != "algorithms" {
			t.Errorf("got %+v, want the single best match", subqs)
		}
	})

	t.Run("generalist fallback", func(t *testing.T) {
		q := "How do plants convert sunlight into sugar?"
		subqs := eng.decompose(q)
		if len(subqs) != 1 {
			t.Fatalf("got %d sub-questions, want 1", len(subqs))
		}
		if subqs[0].PersonaID != persona.GeneralistID || subqs[0].Text != q {
			t.Errorf("got %+v, want the raw question for the generalist", subqs[0])
		}
	})
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 1},
		{"   ", 1},
		{"hello", 1},
		{"Hello, world!", 2},
		{"Raft elects a leader.", 4},
	}
	for _, tt := range tests {
		if got := estimateTokens(tt.in); got != tt.want {
			t.Errorf("estimateTokens(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func almostEqual(a, b float64) bool {
	const eps = 1e-9
	if a > b {
		return a-b < eps
	}
	return b-a < eps
}
