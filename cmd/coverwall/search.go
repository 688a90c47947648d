package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"coverwall/internal/metadata"
	"coverwall/internal/picker"
	"coverwall/internal/pipeline"
	"coverwall/internal/ranking"
	"coverwall/internal/search"
	"coverwall/internal/shutdown"
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search for a song and resolve its album cover",
	Long: `Search for a song and resolve its album cover. When several candidates
remain, an interactive picker is shown on a terminal; otherwise the
recommended candidate is used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("download", "", "save the cover image into this directory")
	searchCmd.Flags().String("embed", "", "embed the cover into this audio file")
	searchCmd.Flags().Bool("no-interactive", false, "never show the picker; use the recommended candidate")
	searchCmd.Flags().Bool("json", false, "print the result as JSON")
	searchCmd.Flags().Int("artwork-size", 0, "edge length of the upgraded cover (default from config)")
}

type searchOptions struct {
	download      string
	embed         string
	noInteractive bool
	json          bool
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if size, _ := cmd.Flags().GetInt("artwork-size"); size > 0 {
		cfg.ArtworkSize = size
	}

	var opts searchOptions
	opts.download, _ = cmd.Flags().GetString("download")
	opts.embed, _ = cmd.Flags().GetString("embed")
	opts.noInteractive, _ = cmd.Flags().GetBool("no-interactive")
	opts.json, _ = cmd.Flags().GetBool("json")
	if opts.json || !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		opts.noInteractive = true
	}

	log := newLogger(cfg, configPath)
	defer log.Close()

	p, err := pipeline.Build(cfg, log, pipeline.Overrides{})
	if err != nil {
		return err
	}

	sh := shutdown.New(cmd.Context())
	sh.Listen()
	defer sh.Shutdown()

	return searchAndResolve(sh.Context(), p, strings.Join(args, " "), opts, os.Stdin, os.Stdout)
}

// searchAndResolve runs one session search and carries it through to a
// selected cover, then saves or embeds it as requested.
func searchAndResolve(ctx context.Context, p *pipeline.Pipeline, raw string, opts searchOptions, in io.Reader, out io.Writer) error {
	sess := p.NewSession()
	res, err := sess.Search(ctx, raw)
	if err != nil && !errors.Is(err, search.ErrNoMatch) {
		return err
	}

	report := searchOutput{Query: res.Query, Decision: res.Decision, Suggestions: res.Suggestions}
	if !opts.json {
		printStats(out, res)
	}

	var track metadata.Track
	switch res.Decision.Kind {
	case ranking.NoMatch:
		if opts.json {
			if err := printJSON(out, report); err != nil {
				return err
			}
		} else {
			printNoMatch(out, raw, res.Suggestions)
		}
		return search.ErrNoMatch

	case ranking.AutoSelect:
		track = res.Decision.Selected.Track

	case ranking.PresentChoices:
		choice, ok, err := pickChoice(raw, res.Decision.Choices, opts, in, out)
		if err != nil {
			return err
		}
		if !ok {
			sess.CancelSelection()
			if !opts.json {
				warnColor.Fprintln(out, "Selection cancelled")
			}
			return nil
		}
		if _, err := sess.SelectCandidate(choice.ID); err != nil {
			return err
		}
		track = choice.Track
	}

	snap := sess.Snapshot()
	if snap.Cover == nil {
		return fmt.Errorf("no cover selected")
	}
	report.Cover = snap.Cover

	if opts.download != "" {
		path, err := p.Fetcher.Save(ctx, *snap.Cover, opts.download)
		if err != nil {
			return err
		}
		report.SavedTo = path
	}
	if opts.embed != "" {
		if err := p.Fetcher.Embed(ctx, *snap.Cover, track, opts.embed); err != nil {
			return err
		}
	}

	if opts.json {
		return printJSON(out, report)
	}
	printCover(out, *snap.Cover)
	if report.SavedTo != "" {
		fmt.Fprintf(out, "  Saved: %s\n", report.SavedTo)
	}
	if opts.embed != "" {
		fmt.Fprintf(out, "  Embedded into: %s\n", opts.embed)
	}
	return nil
}

// pickChoice asks the user on a terminal, or takes the recommended
// candidate otherwise.
func pickChoice(raw string, choices []ranking.Choice, opts searchOptions, in io.Reader, out io.Writer) (ranking.Choice, bool, error) {
	if opts.noInteractive {
		if !opts.json {
			printChoices(out, choices)
		}
		return choices[0], true, nil
	}
	return picker.Run(raw, choices, in, out)
}
