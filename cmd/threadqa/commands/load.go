package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"threadqa/internal/app"
	"threadqa/internal/storage"
)

// NewLoadCmd creates the load command.
func NewLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <corpus.json>",
		Short: "Replace the stored corpus with a corpus file",
		Long: `Replace every stored subthread with the records of a corpus JSON file.

The file is an array of records with id, topic_title, content (or text),
url (or source), created_at, like_count and an optional embedding. Markdown
bodies are stored as plain text. File order becomes the canonical order used
to break ranking ties.`,
		Example: `  threadqa load ./discourse.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			db, err := storage.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() {
				_ = db.Close()
			}()
			if err := storage.Migrate(db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			repo := storage.NewSubthreadRepo(db)
			if err := app.ImportCorpus(cmd.Context(), repo, args[0]); err != nil {
				return err
			}

			count, err := repo.Count(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to count subthreads: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d subthreads into %s\n", count, cfg.DBPath)
			return nil
		},
	}

	return cmd
}
