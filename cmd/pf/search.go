package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planfile/planfile/internal/config"
	"github.com/planfile/planfile/internal/logging"
	"github.com/planfile/planfile/internal/search"
)

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Index tasks and notes for semantic search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fs, err := openFiles(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			embedder := newEmbedder(cfg)
			if err := embedder.Health(ctx); err != nil {
				return fmt.Errorf("ollama not available: %w\n\nmake sure it is running with the embedding model:\n  ollama pull %s\n  ollama serve", err, cfg.Ollama.Model)
			}
			vectors, err := search.NewVectorStore(vectorConfig(cfg))
			if err != nil {
				return fmt.Errorf("qdrant not available: %w\n\nstart it with:\n  docker run -d -p 6333:6333 -p 6334:6334 qdrant/qdrant", err)
			}
			defer vectors.Close()

			docs := search.BuildDocuments(fs)
			if err := search.NewService(embedder, vectors).Index(ctx, docs); err != nil {
				return err
			}
			fmt.Printf("indexed %d tasks and notes\n", len(docs))
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Search tasks and notes",
		Long: `Searches semantically via the vector index. When ollama or qdrant is
unreachable the search degrades to a substring scan over titles and
descriptions.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fs, err := openFiles(cfg)
			if err != nil {
				return err
			}

			embedder := newEmbedder(cfg)
			vectors, err := search.NewVectorStore(vectorConfig(cfg))
			if err != nil {
				logging.WithError(err).Warn("qdrant unavailable, falling back to substring search")
				vectors = nil
			} else {
				defer vectors.Close()
			}

			docs := search.BuildDocuments(fs)
			results, err := search.NewService(embedder, vectors).Search(cmd.Context(), docs, query, limit)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("no matches")
				return nil
			}
			for _, r := range results {
				fmt.Printf("%5.2f  %-4s  %s  (%s)\n", r.Score, r.Kind, r.Title, r.File)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of results")
	return cmd
}

func newEmbedder(cfg *config.Config) *search.Embedder {
	return search.NewEmbedder(search.EmbedConfig{
		BaseURL: cfg.Ollama.URL,
		Model:   cfg.Ollama.Model,
	})
}

func vectorConfig(cfg *config.Config) search.VectorConfig {
	return search.VectorConfig{
		Host: cfg.Qdrant.Host,
		Port: cfg.Qdrant.Port,
	}
}
