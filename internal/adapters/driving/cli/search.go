package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
)

const snippetLength = 160

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the policy documents",
	Long: `Runs the policy retriever directly and prints the ranked passages.

Retrieval combines keyword (BM25) and semantic (vector) candidates with
weighted reciprocal rank fusion, then reranks when a reranker is configured.
The strategy line shows which stages actually ran.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of passages (0 = configured top_n)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	retriever, err := retrieverPort(cmd)
	if err != nil {
		return err
	}

	result, err := retriever.Retrieve(commandContext(cmd), strings.Join(args, " "), searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, result)
	}
	outputSearchTable(cmd, result)
	return nil
}

type searchPassage struct {
	Source  string  `json:"source"`
	Page    int     `json:"page"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

type searchOutput struct {
	Query    string          `json:"query"`
	Strategy string          `json:"strategy"`
	Passages []searchPassage `json:"passages"`
}

func outputSearchJSON(cmd *cobra.Command, result *domain.RetrievalResult) error {
	out := searchOutput{
		Query:    result.Query,
		Strategy: result.Strategy.String(),
		Passages: make([]searchPassage, 0, len(result.Chunks)),
	}
	for _, sc := range result.Chunks {
		out.Passages = append(out.Passages, searchPassage{
			Source:  sc.Chunk.Source,
			Page:    sc.Chunk.Page,
			Score:   sc.Score,
			Content: sc.Chunk.Content,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, result *domain.RetrievalResult) {
	if result.IsEmpty() {
		cmd.Println("No results found.")
		return
	}

	cmd.Printf("Strategy: %s\n", result.Strategy)
	cmd.Println()
	for i, sc := range result.Chunks {
		cmd.Printf("  [%d] %s, page %d (%.3f)\n", i+1, filepath.Base(sc.Chunk.Source), sc.Chunk.Page, sc.Score)
		if snippet := snippet(sc.Chunk.Content); snippet != "" {
			cmd.Printf("      %s\n", snippet)
		}
		cmd.Println()
	}
}

// snippet flattens whitespace and truncates on a rune boundary.
func snippet(content string) string {
	s := strings.Join(strings.Fields(content), " ")
	runes := []rune(s)
	if len(runes) <= snippetLength {
		return s
	}
	return string(runes[:snippetLength]) + "..."
}
