package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"coverwall/internal/cover"
	"coverwall/internal/ranking"
	"coverwall/internal/search"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	dimColor     = color.New(color.Faint)
)

// searchOutput is the --json document.
type searchOutput struct {
	Query       *ranking.Query   `json:"query"`
	Decision    ranking.Decision `json:"decision"`
	Suggestions []string         `json:"suggestions,omitempty"`
	Cover       *cover.Cover     `json:"cover,omitempty"`
	SavedTo     string           `json:"saved_to,omitempty"`
}

func printJSON(w io.Writer, out searchOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printCover(w io.Writer, c cover.Cover) {
	successColor.Fprintf(w, "%s - %s\n", c.SongName, c.ArtistName)
	fmt.Fprintf(w, "  Album: %s\n", c.CollectionName)
	fmt.Fprintf(w, "  Cover: %s\n", c.AlbumCoverURL)
}

func printChoices(w io.Writer, choices []ranking.Choice) {
	headerColor.Fprintf(w, "%d candidates:\n", len(choices))
	for i, ch := range choices {
		fmt.Fprintf(w, "  %d. %s - %s", i+1, ch.Title, ch.Artist)
		if ch.Recommended {
			successColor.Fprint(w, " (recommended)")
		}
		fmt.Fprintln(w)
		dimColor.Fprintf(w, "     %s, score %d, id %s\n", ch.Album, ch.Score, ch.ID)
	}
}

func printNoMatch(w io.Writer, raw string, suggestions []string) {
	warnColor.Fprintf(w, "No cover found for %q\n", raw)
	if len(suggestions) > 0 {
		fmt.Fprintln(w, "Did you mean:")
		for _, s := range suggestions {
			fmt.Fprintf(w, "  %s\n", s)
		}
	}
}

func printStats(w io.Writer, res *search.Result) {
	if res.Cached {
		dimColor.Fprintln(w, "(cached)")
		return
	}
	if res.Failed > 0 {
		warnColor.Fprintf(w, "%d of %d searches failed\n", res.Failed, res.Requests)
	}
}
