package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kirillkom/earningscall-analyzer/internal/adapters/terminal"
	"github.com/kirillkom/earningscall-analyzer/internal/bootstrap"
	"github.com/kirillkom/earningscall-analyzer/internal/config"
	"github.com/kirillkom/earningscall-analyzer/internal/core/analysis"
	"github.com/kirillkom/earningscall-analyzer/internal/core/dashboard"
	"github.com/kirillkom/earningscall-analyzer/internal/core/domain"
	"github.com/kirillkom/earningscall-analyzer/internal/core/ports"
	"github.com/kirillkom/earningscall-analyzer/internal/core/usecase"
	"github.com/kirillkom/earningscall-analyzer/internal/observability/logging"
)

const cliServiceName = "earnings-cli"

// analyzerFactory builds the analysis pipeline once flags are parsed.
type analyzerFactory func(ctx context.Context, logOut io.Writer, verbose bool) (ports.TranscriptAnalyzer, error)

type renderOptions struct {
	raw   bool
	json  bool
	plain bool
	width int
}

func newRootCmd(newAnalyzer analyzerFactory) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "earnings",
		Short: "Forensic analysis of earnings call transcripts",
		Long: `Analyze an earnings call transcript with Gemini and print the
risk dashboard: risk meter, metric tiles, advisory and key findings.

The API key is read from GEMINI_API_KEY (or GOOGLE_API_KEY). Set
LLM_PROVIDER=ollama to analyze with a local Ollama model instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline events to stderr")

	root.AddCommand(
		newAnalyzeCmd(newAnalyzer, &verbose),
		newParseCmd(),
		newPromptCmd(),
	)
	return root
}

func newAnalyzeCmd(newAnalyzer analyzerFactory, verbose *bool) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "analyze <transcript.pdf|transcript.txt>",
		Short: "Analyze a transcript file and print the dashboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			analyzer, err := newAnalyzer(cmd.Context(), cmd.ErrOrStderr(), *verbose)
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return domain.WrapError(domain.ErrInvalidInput, "open transcript", err)
			}
			defer file.Close()

			info, err := file.Stat()
			if err != nil {
				return domain.WrapError(domain.ErrInvalidInput, "stat transcript", err)
			}

			report, err := analyzer.AnalyzeDocument(cmd.Context(), info.Name(), file, info.Size())
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), report, opts)
		},
	}
	addRenderFlags(cmd, &opts)
	return cmd
}

func newParseCmd() *cobra.Command {
	var (
		opts            renderOptions
		transcriptChars int
	)

	cmd := &cobra.Command{
		Use:   "parse <response.txt|->",
		Short: "Render a saved model response without calling the model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			interpreter := usecase.NewAnalyzeTranscriptUseCase(nil, nil, nil, 0)
			return writeReport(cmd.OutOrStdout(), interpreter.InterpretResponse(raw, transcriptChars), opts)
		},
	}
	addRenderFlags(cmd, &opts)
	cmd.Flags().IntVar(&transcriptChars, "transcript-chars", 0, "transcript size shown on the size tile")
	return cmd
}

func newPromptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Print the fixed analysis prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), analysis.FixedTemplate)
			return err
		},
	}
}

func addRenderFlags(cmd *cobra.Command, opts *renderOptions) {
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "also print the raw model response")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "disable colors")
	cmd.Flags().IntVar(&opts.width, "width", 100, "word wrap width")
}

func writeReport(w io.Writer, report *domain.Report, opts renderOptions) error {
	view := dashboard.Build(*report)
	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Report *domain.Report  `json:"report"`
			View   dashboard.View `json:"view"`
		}{Report: report, View: view})
	}

	renderer, err := terminal.New(opts.width, opts.plain)
	if err != nil {
		return err
	}
	return renderer.Render(w, view, opts.raw)
}

func readInput(stdin io.Reader, name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", domain.WrapError(domain.ErrInvalidInput, "read stdin", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "read response", err)
	}
	return string(data), nil
}

func defaultAnalyzerFactory(ctx context.Context, logOut io.Writer, verbose bool) (ports.TranscriptAnalyzer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateCredential(); err != nil {
		return nil, err
	}

	level := "warn"
	if verbose {
		level = cfg.LogLevel
	}
	slog.SetDefault(logging.NewLogger(logOut, cliServiceName, level, "text"))

	app, err := bootstrap.New(ctx, cfg, cliServiceName)
	if err != nil {
		return nil, err
	}
	return app.AnalyzeUC, nil
}

// exitCode maps error kinds to distinct process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return 130
	case domain.IsKind(err, domain.ErrInvalidInput), domain.IsKind(err, domain.ErrTooLarge):
		return 2
	case domain.IsKind(err, domain.ErrCredential):
		return 3
	case domain.IsKind(err, domain.ErrExtraction):
		return 4
	case domain.IsKind(err, domain.ErrService):
		return 5
	default:
		return 1
	}
}
