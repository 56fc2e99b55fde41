// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"
	"time"
)

func TestRunMetricsSummary(t *testing.T) {
	tests := []struct {
		name    string
		metrics RunMetrics
		want    string
	}{
		{
			name: "tools sorted alphabetically",
			metrics: RunMetrics{
				Duration:  1240 * time.Millisecond,
				ToolCalls: map[string]int{"search": 3, "completion": 2},
				Errors:    0,
			},
			want: "Duration: 1.24s | Tools: {completion: 2, search: 3} | Errors: 0",
		},
		{
			name: "no tools used",
			metrics: RunMetrics{
				Duration: 50 * time.Millisecond,
				Errors:   2,
			},
			want: "Duration: 0.05s | Tools: {} | Errors: 2",
		},
		{
			name: "single tool",
			metrics: RunMetrics{
				Duration:  2 * time.Second,
				ToolCalls: map[string]int{"search": 1},
			},
			want: "Duration: 2.00s | Tools: {search: 1} | Errors: 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.metrics.Summary(); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}
