package types

import "time"

// Provider identifies the text-generation backend.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderAnthropic Provider = "anthropic"
)

// CompletionConfig holds settings for the text-generation backend.
type CompletionConfig struct {
	// Provider selects the backend: ollama or anthropic.
	Provider Provider `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "llama3.2" or
	// "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// Endpoint is the backend URL. Empty selects the provider default.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// APIKey authenticates against hosted backends (anthropic).
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout bounds a single generate call (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Temperature is the sampling temperature (default 0.2).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens caps the generated reply length (default 200).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// EvidenceConfig holds settings for knowledge-base lookups.
type EvidenceConfig struct {
	// TopK is the maximum number of snippets returned per lookup (default 3).
	TopK int `json:"top_k" yaml:"top_k"`

	// EntriesFile optionally points at a YAML entries file that replaces
	// the built-in knowledge table.
	EntriesFile string `json:"entries_file,omitempty" yaml:"entries_file,omitempty"`

	// SQLitePath optionally points at a research knowledge base (SQLite)
	// whose items are loaded as entries.
	SQLitePath string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`

	// StubWeb appends one canned web-research snippet to every non-empty
	// lookup, within the TopK window.
	StubWeb bool `json:"stub_web,omitempty" yaml:"stub_web,omitempty"`
}

// EngineConfig groups all settings for analysis runs.
type EngineConfig struct {
	// MaxSubQuestions caps the Orient decomposition (default 4).
	MaxSubQuestions int `json:"max_subquestions" yaml:"max_subquestions"`

	// Parallel fans sub-questions out concurrently during Decide.
	// Insight order is unaffected.
	Parallel bool `json:"parallel" yaml:"parallel"`

	Completion CompletionConfig `json:"completion" yaml:"completion"`
	Evidence   EvidenceConfig   `json:"evidence" yaml:"evidence"`
}

// ServerConfig holds settings for the HTTP API server.
type ServerConfig struct {
	// Addr is the listen address (default ":5000").
	Addr string `json:"addr" yaml:"addr"`

	// ShutdownTimeout bounds the graceful drain on SIGINT/SIGTERM
	// (default 10s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}
