package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/alphabot-ai/campusboard/internal/store"
)

func printPosts(w io.Writer, posts []store.Post) error {
	if len(posts) == 0 {
		_, err := fmt.Fprintln(w, "No posts")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tAMOUNT\tTITLE\tOWNER")
	for i := range posts {
		p := &posts[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Type, p.Status, formatAmount(p), p.Title, p.OwnerName)
	}
	return tw.Flush()
}

func formatAmount(p *store.Post) string {
	switch {
	case p.Type == store.TypeActivity:
		return "-"
	case p.Type == store.TypeFree:
		return "free"
	case p.Price == nil && p.Reward == nil:
		return "-"
	}
	return "$" + strconv.FormatFloat(p.Amount(), 'f', -1, 64)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
