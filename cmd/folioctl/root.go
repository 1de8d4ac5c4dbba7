package main

import (
	"context"
	"fmt"
	"os"

	"portfolio/internal/apiclient"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	api      string
	token    string
	email    string
	password string
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "folioctl",
		Short:         "Publish, archive and inspect portfolio content",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.api, "api", envOr("FOLIO_API", "http://localhost:8375"), "API base URL")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("FOLIO_TOKEN"), "Admin bearer token")
	root.PersistentFlags().StringVar(&opts.email, "email", os.Getenv("FOLIO_EMAIL"), "Admin email, used when no token is given")
	root.PersistentFlags().StringVar(&opts.password, "password", os.Getenv("FOLIO_PASSWORD"), "Admin password, used when no token is given")

	root.AddCommand(
		newCollectionCmd(opts, "posts", "post", func(c *apiclient.Client) *apiclient.Resource { return c.Posts() }),
		newCollectionCmd(opts, "projects", "project", func(c *apiclient.Client) *apiclient.Resource { return c.Projects() }),
		newLikeCmd(opts),
	)
	return root
}

// client builds an API client. Admin commands log in when only credentials are set.
func (o *rootOptions) client(ctx context.Context, admin bool) (*apiclient.Client, error) {
	c, err := apiclient.New(o.api, apiclient.WithToken(o.token))
	if err != nil {
		return nil, err
	}
	if !admin || o.token != "" {
		return c, nil
	}
	if o.email == "" || o.password == "" {
		return nil, fmt.Errorf("set --token, or --email and --password")
	}
	if _, err := c.Login(ctx, o.email, o.password); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return c, nil
}
