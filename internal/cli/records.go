package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-dashboard/internal/form"
	"github.com/noah-isme/sma-dashboard/internal/resource"
)

type listOptions struct {
	Page   int
	Limit  int
	Search string
}

func listCmd(root *rootOptions) *cobra.Command {
	var opts listOptions
	var cmd = &cobra.Command{
		Use:          "list <resource>",
		SilenceUsage: true,
		Short:        "show one page of a resource",
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.app
			res, err := lookup(args[0])
			if err != nil {
				return err
			}
			ctrl := app.Controller(res, opts.Limit, nil, nil)
			defer ctrl.Close()

			ctx := cmd.Context()
			if err := ctrl.SearchNow(ctx, opts.Search); err != nil {
				return err
			}
			if opts.Page > 1 {
				if err := ctrl.SetPage(ctx, opts.Page); err != nil {
					return err
				}
			}
			return renderView(app.Streams.Out, res, ctrl.Snapshot())
		},
	}
	fs := cmd.Flags()
	fs.IntVarP(&opts.Page, "page", "p", 1, "page number")
	fs.IntVarP(&opts.Limit, "limit", "l", 0, "rows per page, defaults to DEFAULT_PAGE_LIMIT")
	fs.StringVarP(&opts.Search, "search", "s", "", "search text")
	return cmd
}

func createCmd(root *rootOptions) *cobra.Command {
	var values []string
	var cmd = &cobra.Command{
		Use:          "create <resource>",
		SilenceUsage: true,
		Short:        "create a record",
		Example:      `  dashctl create batch --set name="2024 A" --set passingYear=2030 --set schoolOpenDate=2024-06-01`,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.app
			res, err := lookup(args[0])
			if err != nil {
				return err
			}
			assignments, err := parseAssignments(values)
			if err != nil {
				return err
			}
			f := form.New(res)
			apply(f, assignments)

			ctrl := app.Controller(res, 0, nil, nil)
			defer ctrl.Close()
			settlement, err := ctrl.Submit(cmd.Context(), f, "")
			if err != nil {
				return err
			}
			report(app, ctrl, settlement)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&values, "set", nil, "field value as key=value; dates as YYYY-MM-DD")
	return cmd
}

func updateCmd(root *rootOptions) *cobra.Command {
	var values []string
	var cmd = &cobra.Command{
		Use:          "update <resource> <id>",
		SilenceUsage: true,
		Short:        "change fields of a record",
		Args:         cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.app
			ctx := cmd.Context()
			res, err := lookup(args[0])
			if err != nil {
				return err
			}
			assignments, err := parseAssignments(values)
			if err != nil {
				return err
			}

			current, err := app.Endpoint(res).Get(ctx, args[1])
			if err != nil {
				return app.fail(ctx, err)
			}
			f, err := form.FromRecord(res, current)
			if err != nil {
				return err
			}
			apply(f, assignments)

			ctrl := app.Controller(res, 0, nil, nil)
			defer ctrl.Close()
			settlement, err := ctrl.Submit(ctx, f, args[1])
			if err != nil {
				return err
			}
			report(app, ctrl, settlement)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&values, "set", nil, "field value as key=value; dates as YYYY-MM-DD")
	return cmd
}

func deleteCmd(root *rootOptions) *cobra.Command {
	var yes bool
	var cmd = &cobra.Command{
		Use:          "delete <resource> <id>",
		SilenceUsage: true,
		Short:        "delete a record after confirmation",
		Args:         cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.app
			res, err := lookup(args[0])
			if err != nil {
				return err
			}
			app.Prompt.AssumeYes = yes

			ctrl := app.Controller(res, 0, app.Prompt, nil)
			defer ctrl.Close()
			settlement, err := ctrl.Delete(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			report(app, ctrl, settlement)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// apply sets fields in key order so "same as" flags settle deterministically.
func apply(f *form.Form, assignments map[string]string) {
	keys := make([]string, 0, len(assignments))
	for k := range assignments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if f.Locked(k) {
			continue
		}
		f.Set(k, assignments[k])
	}
}

func report(app *App, ctrl *resource.Controller[Record], s resource.Settlement[Record]) {
	out := app.Streams.Out
	if s.Declined {
		fmt.Fprintln(out, "delete cancelled")
		return
	}
	fmt.Fprintln(out, resource.SuccessMessage(ctrl.Resource().Title, s.Kind))
	if id, ok := s.Record["id"].(string); ok && id != "" && s.Kind != resource.IntentDelete {
		fmt.Fprintf(out, "id: %s\n", id)
	}
}
