package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCommentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Comment on posts",
	}

	add := &cobra.Command{
		Use:   "add <post-id> <text...>",
		Short: "Comment on a post (anonymous when logged out)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.posts.AddComment(cmd.Context(), args[0], strings.Join(args[1:], " "), a.identity.Current())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.ID)
			return nil
		},
	}

	edit := &cobra.Command{
		Use:   "edit <post-id> <comment-id> <text...>",
		Short: "Replace the text of your comment",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.posts.UpdateComment(cmd.Context(), args[0], args[1], strings.Join(args[2:], " "), a.identity.Current())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Comment updated")
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <post-id> <comment-id>",
		Short: "Delete your comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.posts.DeleteComment(cmd.Context(), args[0], args[1], a.identity.Current()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Comment deleted")
			return nil
		},
	}

	cmd.AddCommand(add, edit, del)
	return cmd
}
