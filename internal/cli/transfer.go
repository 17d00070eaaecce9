package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-dashboard/internal/importer"
	appErrors "github.com/noah-isme/sma-dashboard/pkg/errors"
	"github.com/noah-isme/sma-dashboard/pkg/export"
	"github.com/noah-isme/sma-dashboard/pkg/storage"
)

const (
	exportPageSize = 100
	exportParallel = 4
)

func importCmd(root *rootOptions) *cobra.Command {
	var cmd = &cobra.Command{
		Use:          "import <resource> <file.xlsx|file.csv>",
		SilenceUsage: true,
		Short:        "create records from a spreadsheet",
		Long: `import reads the first sheet of an .xlsx file, or a .csv file. The first row names
the fields, either by key (passingYear) or by label (Passing year). Dates may be
YYYY-MM-DD or DD/MM/YYYY.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.app
			ctx := cmd.Context()
			res, err := lookup(args[0])
			if err != nil {
				return err
			}
			table, err := importer.ReadFile(args[1])
			if err != nil {
				return err
			}

			rep, err := importer.Run[Record](ctx, app.Endpoint(res), res, table, importer.Options{
				Workers: app.Config.Import.Workers,
				Retries: app.Config.Import.Retries,
				Logger:  app.Logger,
			})
			if err != nil {
				return err
			}

			out := app.Streams.Out
			for _, row := range rep.Failures() {
				fmt.Fprintf(out, "row %d: %s\n", row.Row, errorText(row.Err))
				if appErrors.IsAuthFailure(row.Err) {
					app.Session().Expired(ctx, row.Err)
				}
			}
			fmt.Fprintf(out, "imported %d %s records, %d failed\n", rep.Created, res.Name, rep.Failed)
			if rep.Failed > 0 {
				return fmt.Errorf("%d of %d rows failed", rep.Failed, len(rep.Rows))
			}
			return nil
		},
	}
	return cmd
}

type exportOptions struct {
	Format string
	Search string
	Output string
}

func exportCmd(root *rootOptions) *cobra.Command {
	var opts exportOptions
	var cmd = &cobra.Command{
		Use:          "export <resource>",
		SilenceUsage: true,
		Short:        "write every matching record to a CSV or PDF file",
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.app
			ctx := cmd.Context()
			res, err := lookup(args[0])
			if err != nil {
				return err
			}
			format, err := export.ParseFormat(opts.Format)
			if err != nil {
				return err
			}

			records, err := export.FetchAll[Record](ctx, app.Endpoint(res), opts.Search, exportPageSize, exportParallel)
			if err != nil {
				return app.fail(ctx, err)
			}
			data, err := export.FromRecords(res, records)
			if err != nil {
				return err
			}
			body, err := export.Render(format, data)
			if err != nil {
				return err
			}

			st, err := storage.NewLocalStorage(app.Config.Export.Dir)
			if err != nil {
				return fmt.Errorf("open export dir: %w", err)
			}
			name := opts.Output
			if name == "" {
				name = fmt.Sprintf("%s-%s.%s", res.Name, time.Now().Format("20060102-150405"), format)
			}
			path, err := st.Save(name, body)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Streams.Out, "exported %d %s records to %s\n", len(records), res.Name, path)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&opts.Format, "format", "f", string(export.FormatCSV), "csv or pdf")
	fs.StringVarP(&opts.Search, "search", "s", "", "only export records matching this text")
	fs.StringVarP(&opts.Output, "output", "o", "", "file name inside EXPORT_DIR")
	return cmd
}
