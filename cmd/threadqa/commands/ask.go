package commands

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"threadqa/internal/rag"
)

// NewAskCmd creates the ask command.
func NewAskCmd() *cobra.Command {
	var (
		imagePath string
		debug     bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single question",
		Long: `Answer a single question from the terminal.

The answer is followed by the links of the discussions used as context. With
--image, text is extracted from the screenshot with Tesseract and appended to
the question before retrieval.`,
		Example: `  threadqa ask "Is the GA4 deadline extended?"
  threadqa ask "What does this error mean?" --image ./screenshot.png
  threadqa ask "docker or podman?" --json --debug`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := rag.AskRequest{
				Question: strings.Join(args, " "),
				Debug:    debug,
			}
			if imagePath != "" {
				image, err := readImage(imagePath)
				if err != nil {
					return err
				}
				req.Image = image
			}

			a, err := loadApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					slog.Warn("Error during close", "error", err)
				}
			}()

			resp, err := a.Engine.Ask(cmd.Context(), req)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			printAnswer(cmd.OutOrStdout(), cmd.ErrOrStderr(), resp)
			return nil
		},
	}

	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "path to a screenshot to OCR and append to the question")
	cmd.Flags().BoolVar(&debug, "debug", false, "include retrieval details (with --json)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full response as JSON")

	return cmd
}

// readImage reads the file at path and returns it base64-encoded.
func readImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("image file %s is empty", path)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func printAnswer(out, errOut io.Writer, resp rag.AskResponse) {
	fmt.Fprintln(out, resp.Answer)
	if resp.Status == rag.StatusDegraded {
		fmt.Fprintf(errOut, "warning: %s\n", resp.Error)
		for _, link := range resp.Links {
			fmt.Fprintf(out, "- %s\n", link)
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
