package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"portfolio/internal/adminlist"
	"portfolio/internal/apiclient"
	"portfolio/internal/models"

	"github.com/spf13/cobra"
)

const listLimit = 100

type resourceFunc func(*apiclient.Client) *apiclient.Resource

func newCollectionCmd(opts *rootOptions, use, kind string, resource resourceFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Manage %s", use),
	}

	// mirror logs in, loads the admin table and returns a mirror over it.
	mirror := func(ctx context.Context) (*adminlist.Mirror, error) {
		c, err := opts.client(ctx, true)
		if err != nil {
			return nil, err
		}
		res := resource(c)
		rows, err := res.List(ctx, "", listLimit)
		if err != nil {
			return nil, err
		}
		m := adminlist.New(kind, res, res)
		m.Load(rows)
		return m, nil
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s of every status", use),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, err := opts.client(ctx, true)
			if err != nil {
				return err
			}
			rows, err := resource(c).List(ctx, models.Status(status), listLimit)
			if err != nil {
				return err
			}
			return printRows(cmd.OutOrStdout(), rows)
		},
	}
	list.Flags().StringVar(&status, "status", "", "Filter by draft, published or archived")

	publish := &cobra.Command{
		Use:   "publish <id>",
		Short: fmt.Sprintf("Publish one %s and refresh its pages", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			m, err := mirror(cmd.Context())
			if err != nil {
				return err
			}
			if err := m.Publish(cmd.Context(), ids[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published %s %d\n", kind, ids[0])
			return nil
		},
	}

	bulk := &cobra.Command{
		Use:   "bulk-publish <id>...",
		Short: fmt.Sprintf("Publish several %s at once", use),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			m, err := mirror(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				m.Toggle(id)
			}
			if err := m.BulkPublish(cmd.Context()); err != nil {
				// The whole batch is shown as unpublished even if some calls went through.
				_ = printRows(cmd.OutOrStdout(), m.Rows())
				return fmt.Errorf("bulk publish failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s published\n", len(ids), use)
			return nil
		},
	}

	var yes bool
	archive := &cobra.Command{
		Use:   "archive <id>",
		Short: fmt.Sprintf("Archive one %s", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			m, err := mirror(cmd.Context())
			if err != nil {
				return err
			}
			var confirm adminlist.Confirmer = promptConfirmer{in: cmd.InOrStdin(), out: cmd.OutOrStdout()}
			if yes {
				confirm = nil
			}
			err = m.Archive(cmd.Context(), ids[0], confirm)
			if errors.Is(err, adminlist.ErrNotConfirmed) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %s %d\n", kind, ids[0])
			return nil
		},
	}
	archive.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	cmd.AddCommand(list, publish, bulk, archive)
	return cmd
}

func parseIDs(args []string) ([]uint, error) {
	ids := make([]uint, 0, len(args))
	for _, a := range args {
		n, err := strconv.ParseUint(a, 10, 64)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("invalid id %q", a)
		}
		ids = append(ids, uint(n))
	}
	return ids, nil
}

func printRows(w io.Writer, rows []adminlist.Row) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSLUG\tTITLE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.Status, r.Slug, r.Title)
	}
	return tw.Flush()
}

// promptConfirmer asks on out and reads y/yes from in.
type promptConfirmer struct {
	in  io.Reader
	out io.Writer
}

func (p promptConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
