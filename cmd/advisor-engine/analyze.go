// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/advisor-engine/internal/completion"
	"github.com/pdiddy/advisor-engine/internal/engine"
	"github.com/pdiddy/advisor-engine/internal/evidence"
	"github.com/pdiddy/advisor-engine/pkg/types"
)

// exampleQuestions are offered in interactive mode; entering a number
// selects the corresponding question.
var exampleQuestions = []string{
	"Compare Raft vs PBFT consensus algorithms for financial trading systems",
	"How do multi-agent systems handle Byzantine fault tolerance?",
	"What are the performance implications of consensus algorithms in HFT?",
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [question]",
	Short: "Run one OODA analysis cycle over a question",
	Long: `Analyze runs the full Observe-Orient-Decide-Act cycle: the question is
decomposed along expert aspects, each aspect is answered by a matching persona
against retrieved evidence, and the insights are synthesized into a cited,
confidence-scored answer.

Backend failures never abort the cycle; affected insights degrade to
evidence-only answers and are counted in the metrics line.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolP("interactive", "i", false, "read questions from stdin in a loop")
	analyzeCmd.Flags().String("save", "", "write the full result to a YAML file")
	addEngineFlags(analyzeCmd)

	rootCmd.AddCommand(analyzeCmd)
}

// addEngineFlags registers the engine configuration flags shared by the
// analyze and serve commands.
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().Int("max-subquestions", 0, "cap on Orient decomposition (default 4)")
	cmd.Flags().Bool("parallel", false, "consult personas concurrently")
	cmd.Flags().Int("top-k", 0, "snippets per evidence lookup (default 3)")
	cmd.Flags().String("kb", "", "load evidence from a research knowledge base (SQLite)")
	cmd.Flags().String("entries", "", "load evidence from a YAML entries file")
	cmd.Flags().Bool("stub-web", false, "append a canned web-research snippet to lookups")

	cmd.Flags().String("provider", string(types.ProviderOllama), "completion backend: ollama or anthropic")
	cmd.Flags().String("model", "", "model identifier (default per provider)")
	cmd.Flags().String("endpoint", "", "backend URL (default per provider)")
	cmd.Flags().Duration("timeout", 0, "per-call backend timeout (default 60s)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := engineConfigFromFlags(cmd)
	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		return runInteractive(cmd.Context(), eng)
	}

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("provide a question or use --interactive")
	}

	res, err := analyzeOne(cmd.Context(), eng, question)
	if err != nil {
		return err
	}

	if savePath, _ := cmd.Flags().GetString("save"); savePath != "" {
		if err := engine.WriteResultFile(savePath, cfg, res); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Result written to %s\n", savePath)
	}
	return nil
}

// analyzeOne runs a single cycle with a progress spinner and prints the
// rendered result.
func analyzeOne(ctx context.Context, eng *engine.Engine, question string) (*types.AnalysisResult, error) {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " Running OODA cycle..."
	s.Start()

	res, err := eng.Analyze(ctx, question)
	s.Stop()
	if err != nil {
		return nil, err
	}

	printResult(res)
	return res, nil
}

func printResult(res *types.AnalysisResult) {
	header := color.New(color.FgCyan, color.Bold)

	fmt.Println()
	header.Println("Final Analysis")
	fmt.Println(res.Rendered)

	fmt.Println()
	header.Println("Performance Metrics")
	fmt.Println(res.Metrics.Summary())

	fmt.Println()
	header.Println("Execution Log")
	for _, entry := range res.Log {
		fmt.Println(entry)
	}
}

func runInteractive(ctx context.Context, eng *engine.Engine) error {
	fmt.Println("Interactive mode. Type 'quit', 'exit', or 'q' to leave.")
	fmt.Println()
	fmt.Println("Example questions:")
	for i, q := range exampleQuestions {
		fmt.Printf("  %d. %s\n", i+1, q)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> Enter your question: ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "quit", "exit", "q":
			return nil
		case "":
			fmt.Println("Please enter a question.")
			continue
		}

		// A bare number picks the corresponding example question.
		if n, err := strconv.Atoi(question); err == nil {
			if n < 1 || n > len(exampleQuestions) {
				fmt.Println("Invalid example number.")
				continue
			}
			question = exampleQuestions[n-1]
			fmt.Printf("Using example: %s\n", question)
		}

		if _, err := analyzeOne(ctx, eng, question); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
}

// engineConfigFromFlags assembles the engine configuration from command
// flags, the config file, and loaded secrets.
func engineConfigFromFlags(cmd *cobra.Command) types.EngineConfig {
	maxSub, _ := cmd.Flags().GetInt("max-subquestions")
	parallel, _ := cmd.Flags().GetBool("parallel")
	topK, _ := cmd.Flags().GetInt("top-k")
	kbPath, _ := cmd.Flags().GetString("kb")
	entriesFile, _ := cmd.Flags().GetString("entries")
	stubWeb, _ := cmd.Flags().GetBool("stub-web")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	return types.EngineConfig{
		MaxSubQuestions: maxSub,
		Parallel:        parallel,
		Completion: types.CompletionConfig{
			Provider: types.Provider(flagOrConfig(cmd, "provider", "completion.provider")),
			Model:    flagOrConfig(cmd, "model", "completion.model"),
			Endpoint: flagOrConfig(cmd, "endpoint", "completion.endpoint"),
			APIKey:   secretDefault("anthropic-api-key", viper.GetString("completion.api_key")),
			Timeout:  timeout,
		},
		Evidence: types.EvidenceConfig{
			TopK:        topK,
			EntriesFile: entriesFile,
			SQLitePath:  kbPath,
			StubWeb:     stubWeb,
		},
	}
}

// flagOrConfig resolves a string setting: an explicitly set flag wins,
// then the config file or environment, then the flag default.
func flagOrConfig(cmd *cobra.Command, flag, configKey string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	if viper.IsSet(configKey) {
		return viper.GetString(configKey)
	}
	v, _ := cmd.Flags().GetString(flag)
	return v
}

func buildEngine(cfg types.EngineConfig) (*engine.Engine, error) {
	client, err := completion.New(cfg.Completion)
	if err != nil {
		return nil, err
	}
	store, err := evidence.FromConfig(cfg.Evidence)
	if err != nil {
		return nil, err
	}
	return engine.New(cfg, store, nil, client), nil
}
