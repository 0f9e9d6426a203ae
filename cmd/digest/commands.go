package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"intel-digest/internal/app"
	"intel-digest/internal/config"
	"intel-digest/internal/observability/logging"
	pkgconfig "intel-digest/internal/pkg/config"
	"intel-digest/internal/usecase/curate"
	"intel-digest/internal/usecase/digest"
	"intel-digest/internal/usecase/orchestrator"
)

type cliOptions struct {
	offline bool
	asJSON  bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "digest",
		Short: "Build a four-item news digest from RSS feeds",
		Long: `digest collects recent articles from the configured feeds, asks two
generation backends to pick the four most relevant ones for the reader
profile, and formats them as a short digest.

Examples:
  # Produce today's digest
  digest run

  # Show the selected titles without formatting
  digest select --json

  # Check which generation backends answer
  digest status

  # Check that every configured feed is reachable and fresh
  digest feeds`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&opts.offline, "offline", false, "do not contact generation backends; produce the plain fallback digest")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print the run report as JSON")

	root.AddCommand(
		newRunCmd(opts, stdout, stderr),
		newSelectCmd(opts, stdout, stderr),
		newStatusCmd(opts, stdout, stderr),
		newFeedsCmd(opts, stdout, stderr),
	)
	return root
}

func newRunCmd(opts *cliOptions, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Produce the digest for today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPipeline(cmd.Context(), opts, stderr, func(ctx context.Context, a *app.App) error {
				report, err := a.Digest.Run(ctx)
				if err != nil {
					fmt.Fprintln(stdout, digest.FailureMessage)
					return err
				}
				if opts.asJSON {
					return writeJSON(stdout, reportView(report))
				}
				fmt.Fprintln(stdout, report.Digest)
				return nil
			})
		},
	}
}

func newSelectCmd(opts *cliOptions, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "select",
		Short: "Print the selected titles and their links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPipeline(cmd.Context(), opts, stderr, func(ctx context.Context, a *app.App) error {
				report, err := a.Digest.Select(ctx)
				if err != nil {
					return err
				}
				if opts.asJSON {
					return writeJSON(stdout, reportView(report))
				}
				writePicks(stdout, report)
				return nil
			})
		},
	}
}

func newStatusCmd(opts *cliOptions, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Probe each generation backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPipeline(cmd.Context(), opts, stderr, func(ctx context.Context, a *app.App) error {
				attempts := a.Orchestrator.Probe(ctx)
				if opts.asJSON {
					return writeJSON(stdout, probeView(a.Orchestrator.Preferred(), attempts))
				}
				writeProbe(stdout, a.Orchestrator.Preferred(), attempts)
				return nil
			})
		},
	}
}

func newFeedsCmd(opts *cliOptions, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "feeds",
		Short: "Fetch every configured feed and report its health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPipeline(cmd.Context(), opts, stderr, func(ctx context.Context, a *app.App) error {
				reports := a.Collector.Diagnose(ctx, time.Now().In(a.Config.Location))
				if opts.asJSON {
					return writeJSON(stdout, feedsView(reports))
				}
				writeFeeds(stdout, reports)
				return nil
			})
		},
	}
}

// withPipeline loads configuration, builds the pipeline and tears it down after fn.
func withPipeline(parent context.Context, opts *cliOptions, stderr io.Writer, fn func(context.Context, *app.App) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.NewTextLogger(stderr)
	slog.SetDefault(logger)

	// The CLI exits after one run, so its metrics go to a private registry.
	cfg, err := config.LoadDigestConfig(logger, pkgconfig.NewConfigMetrics("digest", prometheus.NewRegistry()))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a, err := app.Build(ctx, cfg, logger, app.Options{Offline: opts.offline})
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to close cache database", slog.Any("error", err))
		}
	}()

	return fn(ctx, a)
}

type pickView struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type reportJSON struct {
	RunID        string     `json:"run_id"`
	Status       string     `json:"status"`
	Digest       string     `json:"digest,omitempty"`
	Candidates   int        `json:"candidates"`
	Widened      bool       `json:"widened"`
	Selection    string     `json:"selection_outcome"`
	Memoized     bool       `json:"selection_memoized"`
	Picks        []pickView `json:"picks"`
	ApproxTokens int        `json:"approx_tokens"`
	DurationMS   int64      `json:"duration_ms"`
}

func reportView(r *digest.Report) reportJSON {
	out := reportJSON{
		RunID:        r.RunID,
		Status:       r.Status,
		Digest:       r.Digest,
		Candidates:   r.Candidates,
		Widened:      r.Widened,
		Selection:    string(r.Selection.Outcome),
		Memoized:     r.Selection.Memoized,
		Picks:        make([]pickView, 0, len(r.Picks)),
		ApproxTokens: r.ApproxTokens,
		DurationMS:   r.Duration.Milliseconds(),
	}
	for _, p := range r.Picks {
		out.Picks = append(out.Picks, pickView{Title: p.Title, URL: p.URL})
	}
	return out
}

func writePicks(w io.Writer, r *digest.Report) {
	if len(r.Picks) == 0 {
		fmt.Fprintln(w, digest.InsufficientMessage)
		return
	}
	for i, p := range r.Picks {
		fmt.Fprintf(w, "%d. %s\n   %s\n", i+1, p.Title, p.URL)
	}
	fmt.Fprintf(w, "\nstatus=%s candidates=%d outcome=%s\n", r.Status, r.Candidates, r.Selection.Outcome)
}

type backendView struct {
	Name      string `json:"name"`
	OK        bool   `json:"ok"`
	Reason    string `json:"reason,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

type probeJSON struct {
	Preferred string        `json:"preferred"`
	Backends  []backendView `json:"backends"`
}

func probeView(preferred string, attempts []orchestrator.Attempt) probeJSON {
	out := probeJSON{Preferred: preferred, Backends: make([]backendView, 0, len(attempts))}
	for _, a := range attempts {
		out.Backends = append(out.Backends, backendView{
			Name:      a.Provider,
			OK:        a.OK(),
			Reason:    a.Reason,
			LatencyMS: a.Latency.Milliseconds(),
		})
	}
	return out
}

func writeProbe(w io.Writer, preferred string, attempts []orchestrator.Attempt) {
	for _, a := range attempts {
		state := "ok"
		if !a.OK() {
			state = "FAIL " + a.Reason
		}
		marker := " "
		if strings.EqualFold(a.Provider, preferred) {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-8s %-6s %s\n", marker, a.Provider, a.Latency.Round(time.Millisecond), state)
	}
}

type feedView struct {
	URL       string `json:"url"`
	Category  string `json:"category"`
	Status    string `json:"status"`
	Items     int    `json:"items"`
	Dated     int    `json:"dated"`
	Latest    string `json:"latest,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

func feedsView(reports []curate.FeedReport) []feedView {
	out := make([]feedView, 0, len(reports))
	for _, r := range reports {
		v := feedView{
			URL:       r.URL,
			Category:  string(r.Category),
			Status:    r.Status,
			Items:     r.Items,
			Dated:     r.Dated,
			LatencyMS: r.Latency.Milliseconds(),
		}
		if r.Latest != nil {
			v.Latest = r.Latest.Format(time.RFC3339)
		}
		out = append(out, v)
	}
	return out
}

func writeFeeds(w io.Writer, reports []curate.FeedReport) {
	healthy := 0
	for _, r := range reports {
		latest := "-"
		if r.Latest != nil {
			latest = r.Latest.Format("2006-01-02 15:04")
		}
		if r.Status == curate.FeedOK {
			healthy++
		}
		fmt.Fprintf(w, "%-11s %-6s %3d items  latest %-16s %s\n", r.Status, r.Category, r.Items, latest, r.URL)
	}
	fmt.Fprintf(w, "\n%d/%d feeds healthy\n", healthy, len(reports))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
