package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alphabot-ai/campusboard/internal/feed"
	"github.com/alphabot-ai/campusboard/internal/store"
)

func newFeedCmd(a *app) *cobra.Command {
	var (
		channel, query, tags, status, sort string
		minAmount, maxAmount, lat, lng     string
		view                               string
	)

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "List posts with filters",
		Long: `List posts. --view selects a personal view instead of the public feed:
owned, claimed, watched, bounties (own bounties by status) or map
(geo-located posts matching --q).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts := a.posts.List(cmd.Context())
			out := cmd.OutOrStdout()

			email := ""
			if id := a.identity.Current(); id != nil {
				email = id.Email
			}

			switch view {
			case "":
			case "map":
				return printPosts(out, feed.Geolocated(posts, query))
			case "owned", "claimed", "watched", "bounties":
				if email == "" {
					return store.ErrUnauthenticated
				}
				return printView(cmd, posts, view, email)
			default:
				return fmt.Errorf("unknown view %q", view)
			}

			c := feed.Criteria{
				Channel: feed.ParseChannel(channel),
				Query:   query,
				Tags:    tags,
				Status:  status,
				Sort:    feed.ParseSort(sort),
			}
			var err error
			if c.Min, err = store.ParseAmount("min", minAmount); err != nil {
				return err
			}
			if c.Max, err = store.ParseAmount("max", maxAmount); err != nil {
				return err
			}
			if c.Origin, err = parseOrigin(lat, lng); err != nil {
				return err
			}

			return printPosts(out, feed.Apply(posts, c))
		},
	}

	f := cmd.Flags()
	f.StringVar(&channel, "channel", "all", "all, bounty, secondhand or activity")
	f.StringVarP(&query, "q", "q", "", "free-text search")
	f.StringVar(&tags, "tags", "", "comma-separated tags, all must match")
	f.StringVar(&status, "status", "", "only posts with this status")
	f.StringVar(&minAmount, "min", "", "minimum price or reward")
	f.StringVar(&maxAmount, "max", "", "maximum price or reward")
	f.StringVar(&sort, "sort", "newest", "newest, distance or relevance")
	f.StringVar(&lat, "lat", "", "origin latitude for distance sort")
	f.StringVar(&lng, "lng", "", "origin longitude for distance sort")
	f.StringVar(&view, "view", "", "owned, claimed, watched, bounties or map")
	return cmd
}

func printView(cmd *cobra.Command, posts []store.Post, view, email string) error {
	out := cmd.OutOrStdout()
	switch view {
	case "owned":
		return printPosts(out, feed.Owned(posts, email))
	case "claimed":
		return printPosts(out, feed.Claimed(posts, email))
	case "watched":
		return printPosts(out, feed.Watched(posts, email))
	}

	groups := feed.GroupByStatus(feed.Owned(posts, email), store.TypeBounty)
	for _, s := range store.Statuses {
		fmt.Fprintf(out, "== %s (%d)\n", s, len(groups[s]))
		if len(groups[s]) > 0 {
			if err := printPosts(out, groups[s]); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseOrigin(lat, lng string) (*feed.Coord, error) {
	lat, lng = strings.TrimSpace(lat), strings.TrimSpace(lng)
	if lat == "" && lng == "" {
		return nil, nil
	}
	la, errLat := strconv.ParseFloat(lat, 64)
	ln, errLng := strconv.ParseFloat(lng, 64)
	if errLat != nil || errLng != nil {
		return nil, &store.ValidationError{Field: "lat", Message: "must be a coordinate pair"}
	}
	return &feed.Coord{Lat: la, Lng: ln}, nil
}

// postFlags are the editable fields of a post as command-line text.
type postFlags struct {
	title, typ, description, location string
	price, reward, lat, lng           string
	tags, images                      string
	clear                             string
}

func (pf *postFlags) register(f *pflag.FlagSet) {
	f.StringVar(&pf.title, "title", "", "title")
	f.StringVar(&pf.typ, "type", "", "sale, free, bounty or activity")
	f.StringVar(&pf.description, "description", "", "description")
	f.StringVar(&pf.location, "location", "", "where on campus")
	f.StringVar(&pf.price, "price", "", "price for sale or free posts")
	f.StringVar(&pf.reward, "reward", "", "reward for bounties")
	f.StringVar(&pf.lat, "lat", "", "latitude")
	f.StringVar(&pf.lng, "lng", "", "longitude")
	f.StringVar(&pf.tags, "tags", "", "comma-separated tags")
	f.StringVar(&pf.images, "images", "", "comma-separated image URLs")
}

func (pf *postFlags) draft() (store.Draft, error) {
	d := store.Draft{
		Title:       pf.title,
		Type:        store.PostType(strings.ToLower(strings.TrimSpace(pf.typ))),
		Description: pf.description,
		Location:    pf.location,
		Tags:        store.SplitList(pf.tags),
		Images:      store.SplitList(pf.images),
	}

	var err error
	if d.Price, err = store.ParseAmount("price", pf.price); err != nil {
		return d, err
	}
	if d.Reward, err = store.ParseAmount("reward", pf.reward); err != nil {
		return d, err
	}
	if d.Lat, err = store.ParseAmount("lat", pf.lat); err != nil {
		return d, err
	}
	if d.Lng, err = store.ParseAmount("lng", pf.lng); err != nil {
		return d, err
	}
	return d, store.ValidateDraft(d)
}

// patch includes only the flags set on the command line.
func (pf *postFlags) patch(f *pflag.FlagSet) (store.Patch, error) {
	var (
		p   store.Patch
		err error
	)
	if f.Changed("title") {
		p.Title = &pf.title
	}
	if f.Changed("type") {
		t := store.PostType(strings.ToLower(strings.TrimSpace(pf.typ)))
		p.Type = &t
	}
	if f.Changed("description") {
		p.Description = &pf.description
	}
	if f.Changed("location") {
		p.Location = &pf.location
	}
	if f.Changed("price") {
		if p.Price, err = store.ParseAmount("price", pf.price); err != nil {
			return p, err
		}
	}
	if f.Changed("reward") {
		if p.Reward, err = store.ParseAmount("reward", pf.reward); err != nil {
			return p, err
		}
	}
	if f.Changed("lat") {
		if p.Lat, err = store.ParseAmount("lat", pf.lat); err != nil {
			return p, err
		}
	}
	if f.Changed("lng") {
		if p.Lng, err = store.ParseAmount("lng", pf.lng); err != nil {
			return p, err
		}
	}
	if f.Changed("tags") {
		tags := store.SplitList(pf.tags)
		p.Tags = &tags
	}
	if f.Changed("images") {
		images := store.SplitList(pf.images)
		p.Images = &images
	}
	if f.Changed("clear") {
		p.Clear = store.SplitList(strings.ToLower(pf.clear))
	}
	return p, nil
}

func newPostCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Create and manage posts",
	}
	cmd.AddCommand(
		newPostCreateCmd(a),
		newPostEditCmd(a),
		newPostStatusCmd(a),
		newPostDeleteCmd(a),
		newPostWatchCmd(a),
		newPostShowCmd(a),
	)
	return cmd
}

func newPostCreateCmd(a *app) *cobra.Command {
	var pf postFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post (anonymous when logged out)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := pf.draft()
			if err != nil {
				return err
			}
			id, err := a.posts.CreatePost(cmd.Context(), d, a.identity.Current())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	pf.register(cmd.Flags())
	return cmd
}

func newPostEditCmd(a *app) *cobra.Command {
	var pf postFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a post you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			patch, err := pf.patch(cmd.Flags())
			if err != nil {
				return err
			}
			if err := a.posts.UpdatePostFields(ctx, args[0], patch, a.identity.Current()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Post updated")
			return nil
		},
	}
	pf.register(cmd.Flags())
	cmd.Flags().StringVar(&pf.clear, "clear", "", "comma-separated fields to unset: price, reward, lat, lng")
	return cmd
}

func newPostStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <open|claimed|completed|closed>",
		Short: "Move a post to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			next := store.Status(strings.ToLower(args[1]))
			if err := a.posts.ChangeStatus(cmd.Context(), args[0], next, a.identity.Current()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked as %s\n", next)
			return nil
		},
	}
}

func newPostDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a post you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.posts.DeletePost(cmd.Context(), args[0], a.identity.Current()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Post deleted")
			return nil
		},
	}
}

func newPostWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <id>",
		Short: "Add or remove a post from your watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor := a.identity.Current()
			if actor == nil {
				return store.ErrUnauthenticated
			}
			watching, err := a.posts.ToggleWatch(cmd.Context(), args[0], actor)
			if err != nil {
				return err
			}
			if watching {
				fmt.Fprintln(cmd.OutOrStdout(), "Added to watchlist")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Removed from watchlist")
			}
			return nil
		},
	}
}

func newPostShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a post with its comments as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.posts.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
}
