package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/surya16122114/immigration-ai-assistant/internal/app"
	"github.com/surya16122114/immigration-ai-assistant/internal/config"
	"github.com/surya16122114/immigration-ai-assistant/internal/knowledge"
)

var (
	ingestDocumentID string
	ingestSource     string
	ingestURL        string
	ingestCategory   string
	ingestSummarize  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Index a document into the knowledge base",
	Long: `Ingest chunks a plain-text or markdown document, embeds each chunk,
and stores the result in the knowledge base. A file lock ensures only one
ingestion runs at a time.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(args[0])
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDocumentID, "id", "", "document ID (default: file name without extension)")
	ingestCmd.Flags().StringVar(&ingestSource, "source", "USCIS", "document source shown in citations")
	ingestCmd.Flags().StringVar(&ingestURL, "url", "", "source URL shown in citations")
	ingestCmd.Flags().StringVar(&ingestCategory, "category", "", "document category")
	ingestCmd.Flags().BoolVar(&ingestSummarize, "summarize", false, "print a model-generated summary after ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(path string) error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	lock := flock.New(cfg.IngestLockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring ingest lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another ingestion is already running (lock: %s)", cfg.IngestLockPath)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("releasing ingest lock", "error", err)
		}
	}()

	content, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}
	if strings.TrimSpace(string(content)) == "" {
		return fmt.Errorf("document %s is empty", path)
	}

	documentID := ingestDocumentID
	if documentID == "" {
		base := filepath.Base(path)
		documentID = strings.TrimSuffix(base, filepath.Ext(base))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	metadata := map[string]string{knowledge.MetaSource: ingestSource}
	if ingestURL != "" {
		metadata[knowledge.MetaURL] = ingestURL
	}
	if ingestCategory != "" {
		metadata[knowledge.MetaCategory] = ingestCategory
	}

	if err := a.Pipeline.Ingest(ctx, string(content), documentID, metadata); err != nil {
		return fmt.Errorf("ingesting %s: %w", path, err)
	}
	logger.Info("document ingested", "document_id", documentID, "file", path)

	if ingestSummarize {
		documentType := ingestCategory
		if documentType == "" {
			documentType = "immigration"
		}
		summary, err := a.Generator.SummarizeDocument(ctx, string(content), documentType)
		if err != nil {
			return fmt.Errorf("summarizing %s: %w", path, err)
		}
		fmt.Println(summary)
	}
	return nil
}
