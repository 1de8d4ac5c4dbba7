package main

import (
	"fmt"

	"portfolio/internal/visitor"

	"github.com/spf13/cobra"
)

func newLikeCmd(opts *rootOptions) *cobra.Command {
	var identity string
	cmd := &cobra.Command{
		Use:   "like <post-id>",
		Short: "Like or unlike a post as this machine's anonymous visitor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			path := identity
			if path == "" {
				if path, err = visitor.DefaultPath(); err != nil {
					return err
				}
			}
			visitorID, err := visitor.LoadOrCreate(path)
			if err != nil {
				return err
			}

			c, err := opts.client(ctx, false)
			if err != nil {
				return err
			}
			current, err := c.LikeStatus(ctx, ids[0], visitorID)
			if err != nil {
				return err
			}

			toggle := visitor.NewLikeToggle(c, ids[0], visitorID, *current)
			state, err := toggle.Toggle(ctx)
			if err != nil {
				return err
			}

			verb := "Unliked"
			if state.Liked {
				verb = "Liked"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s post %d (%d likes)\n", verb, ids[0], state.Likes)
			return nil
		},
	}
	cmd.Flags().StringVar(&identity, "identity", "", "Visitor token file (default: user config dir)")
	return cmd
}
