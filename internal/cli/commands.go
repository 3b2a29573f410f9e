package cli

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"outreach/internal/models"
	"outreach/internal/pipeline"
	"outreach/internal/records"
	"outreach/internal/search"
	"outreach/internal/tracking"
	"outreach/internal/validation"
)

func newFiltersCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "filters",
		Short:       "List the community site filters",
		Annotations: map[string]string{"skipEnv": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Filter", "Domains"})
			for _, f := range search.Filters() {
				domains := strings.Join(search.Domains(f), ", ")
				if domains == "" {
					domains = "(no restriction)"
				}
				t.AppendRow(table.Row{f, domains})
			}
			t.Render()
			return nil
		},
	}
}

func newProcessCommand(env *environment) *cobra.Command {
	var req models.ProcessRequest

	cmd := &cobra.Command{
		Use:   "process URL...",
		Short: "Analyze pages and find related community discussions",
		Long: `Scrape each URL, analyze it with the configured LLM, search the selected
communities for related pages and print the results as JSON.

Examples:
  outreachctl process https://example.com/post -l en -f reddit -f quora
  outreachctl process https://example.com/a https://example.com/b -k "steel beam"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.cfg.ValidateProcessing(); err != nil {
				return err
			}
			req.URLs = args
			if err := pipeline.Validate(req); err != nil {
				return err
			}
			results := env.processor.Process(cmd.Context(), req)
			return printJSON(cmd.OutOrStdout(), models.ProcessResponse{Results: results})
		},
	}

	cmd.Flags().StringVarP(&req.Language, "language", "l", models.LanguageKorean, "comment language: ko, en or both")
	cmd.Flags().StringSliceVarP(&req.SearchFilter, "filter", "f", nil, "community filter, repeatable (see 'outreachctl filters')")
	cmd.Flags().StringSliceVarP(&req.UserKeywords, "keyword", "k", nil, "extra search keyword, repeatable")
	cmd.Flags().StringVarP(&req.TargetAudience, "audience", "a", "", "target audience for the analysis")
	return cmd
}

func newSearchCommand(env *environment) *cobra.Command {
	var (
		filters   []string
		language  string
		sourceURL string
		campaign  string
		user      []string
	)

	cmd := &cobra.Command{
		Use:   "search KEYWORD...",
		Short: "Search communities for keywords without scraping or analysis",
		Long: `Search the selected communities for pages matching the keywords. With
--source-url every page gets a tracking link to that URL, which is also saved
to the record log.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := search.ParseFilters(filters)
			if err != nil {
				return err
			}
			if sourceURL != "" {
				if valid, msg := validation.ValidateURL(sourceURL); !valid {
					return errors.New(msg)
				}
			}
			pages, err := env.processor.Related(cmd.Context(), sourceURL, search.Request{
				Keywords:     args,
				UserKeywords: user,
				Language:     search.Language(language),
				Filters:      parsed,
			}, campaign)
			if err != nil {
				return err
			}
			effective := env.processor.EffectiveFilters(parsed)
			names := make([]string, 0, len(effective))
			for _, f := range effective {
				names = append(names, string(f))
			}
			return printJSON(cmd.OutOrStdout(), models.SearchResponse{
				Keywords:     search.NormalizeKeywords(args, user),
				Filters:      names,
				RelatedPages: pages,
			})
		},
	}

	cmd.Flags().StringSliceVarP(&filters, "filter", "f", nil, "community filter, repeatable")
	cmd.Flags().StringVarP(&language, "language", "l", models.LanguageKorean, "search locale: ko, en or both")
	cmd.Flags().StringVar(&sourceURL, "source-url", "", "content URL to build tracking links for")
	cmd.Flags().StringVar(&campaign, "campaign", "", "utm_campaign for tracking links")
	cmd.Flags().StringSliceVarP(&user, "keyword", "k", nil, "priority keyword, repeatable")
	return cmd
}

func newTrackingCommand(env *environment) *cobra.Command {
	var (
		source   string
		campaign string
		title    string
		save     bool
	)

	cmd := &cobra.Command{
		Use:   "tracking-url URL",
		Short: "Build a UTM tracking link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validation.ValidateCampaign(campaign) {
				return fmt.Errorf("invalid campaign %q", campaign)
			}
			trackingURL, err := tracking.GenerateURL(args[0], source, campaign)
			if err != nil {
				return err
			}
			if save {
				if _, err := env.store.Save(cmd.Context(), records.NewRecord{
					OriginalURL: args[0],
					TrackingURL: trackingURL,
					Source:      source,
					Campaign:    campaign,
					Title:       title,
				}); err != nil {
					return fmt.Errorf("save tracking record: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), trackingURL)
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "utm_source, usually the community domain")
	cmd.Flags().StringVarP(&campaign, "campaign", "c", tracking.DefaultCampaign, "utm_campaign")
	cmd.Flags().StringVar(&title, "title", "", "title stored with the record")
	cmd.Flags().BoolVar(&save, "save", false, "save the link to the record log")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func newRecordsCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Manage the tracking-link record log",
		Long:  "Manage the tracking-link record log. Without DATABASE_URL the log lives in memory and is empty for every invocation.",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List tracking links, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := env.store.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), recs)
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"ID", "Created", "Source", "Campaign", "Tracking URL"})
			for _, r := range recs {
				t.AppendRow(table.Row{r.ID, r.CreatedAt.Format(time.RFC3339), r.Source, r.Campaign, r.TrackingURL})
			}
			t.AppendFooter(table.Row{"Total", len(recs)})
			t.Render()
			return nil
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	var statsJSON bool
	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show record log statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := env.store.Stats(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			if statsJSON {
				return printJSON(cmd.OutOrStdout(), s)
			}
			renderStats(cmd.OutOrStdout(), s)
			return nil
		},
	}
	stats.Flags().BoolVar(&statsJSON, "json", false, "print JSON")

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete one tracking link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := env.store.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("%w: %s", records.ErrNotFound, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every tracking link",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear the record log without --yes")
			}
			if err := env.store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "record log cleared")
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "confirm clearing")

	cmd.AddCommand(list, stats, del, clearCmd)
	return cmd
}

// newTable returns a table writer rendering to w.
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderStats(w io.Writer, s models.TrackingStats) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Metric", "Key", "Count"})
	t.AppendRow(table.Row{"total", "", s.Total})
	t.AppendRow(table.Row{"last 7 days", "", s.RecentCount})
	t.AppendSeparator()
	for _, source := range slices.Sorted(maps.Keys(s.BySource)) {
		t.AppendRow(table.Row{"source", source, s.BySource[source]})
	}
	t.AppendSeparator()
	for _, campaign := range slices.Sorted(maps.Keys(s.ByCampaign)) {
		t.AppendRow(table.Row{"campaign", campaign, s.ByCampaign[campaign]})
	}
	t.Render()
}
