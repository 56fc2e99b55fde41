// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"fmt"

	"github.com/pdiddy/advisor-engine/internal/textutil"
	"github.com/pdiddy/advisor-engine/pkg/types"
)

// BuiltinEntries returns the default knowledge table. Callers get a fresh
// copy; the table itself is fixed.
func BuiltinEntries() []Entry {
	return []Entry{
		{
			ID:   "raft_consensus",
			Text: "Raft is a consensus algorithm designed for understandability. It provides fault tolerance for distributed systems by electing a leader and replicating log entries. Raft assumes non-Byzantine faults and focuses on partition tolerance and consistency.",
			Tags: []string{"raft", "consensus", "distributed", "algorithm"},
		},
		{
			ID:   "pbft_consensus",
			Text: "Practical Byzantine Fault Tolerance (PBFT) is a consensus algorithm that can handle Byzantine faults, including malicious nodes. PBFT requires 3f+1 nodes to tolerate f Byzantine nodes, has O(n²) message complexity, but provides stronger security guarantees than Raft.",
			Tags: []string{"pbft", "consensus", "byzantine", "security"},
		},
		{
			ID:   "trading_systems",
			Text: "Financial trading systems require sub-millisecond latencies for high-frequency trading. They must handle Byzantine faults due to adversarial environments. Consensus protocols add overhead but are essential for maintaining consistency across distributed trading engines.",
			Tags: []string{"trading", "financial", "latency", "market"},
		},
		{
			ID:   "hft_latency",
			Text: "High-frequency trading platforms colocate matching engines with exchange gateways to shave microseconds. Kernel-bypass networking and lock-free queues dominate the latency budget; deterministic tail latency matters more than raw throughput.",
			Tags: []string{"latency", "performance", "throughput", "network", "trading"},
		},
		{
			ID:   "byzantine_generals",
			Text: "The Byzantine generals problem models agreement under adversarial failures, where malicious participants may send conflicting messages. Protocols preserve safety only while fewer than one third of participants are faulty, which motivates 3f+1 replication in security-critical deployments.",
			Tags: []string{"byzantine", "security", "fault", "tolerance", "adversarial"},
		},
	}
}

// stubWebSource identifies the canned web-research snippet.
const stubWebSource = "https://example.com/research"

// stubWebSnippet fabricates a web-research result for deployments that
// want a second evidence channel without network access.
func stubWebSnippet(query string) types.EvidenceSnippet {
	return types.EvidenceSnippet{
		Text:   fmt.Sprintf("WEB: Academic research discussing %s with performance benchmarks and implementation details.", textutil.Shorten(query, 80)),
		Source: stubWebSource,
	}
}
