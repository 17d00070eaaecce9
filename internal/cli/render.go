package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/noah-isme/sma-dashboard/internal/models"
	"github.com/noah-isme/sma-dashboard/internal/resource"
	"github.com/noah-isme/sma-dashboard/pkg/export"
)

// renderView prints one list screen as an aligned table with the range and
// page footer.
func renderView(out io.Writer, res models.Resource, view resource.View[Record]) error {
	if view.Feedback.Visible {
		fmt.Fprintf(out, "[%s] %s\n", view.Feedback.Kind, view.Feedback.Message)
	}
	if view.Params.Search != "" {
		fmt.Fprintf(out, "search: %q\n", view.Params.Search)
	}
	if view.Loading {
		fmt.Fprintln(out, "Loading...")
	}
	if view.Total == 0 && len(view.Items) == 0 {
		if !view.Loading && view.Err == nil {
			fmt.Fprintf(out, "No %s records found\n", strings.ToLower(res.Title))
		}
		return nil
	}

	data, err := export.FromRecords(res, view.Items)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(data.Labels, "\t")))
	for _, row := range data.Rows {
		cells := make([]string, len(data.Headers))
		for i, key := range data.Headers {
			cells[i] = row[key]
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s (page %d of %d)\n", view.Range, view.Params.Page, len(view.Pages))
	return nil
}

// parseAssignments splits key=value flags.
func parseAssignments(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, raw := range values {
		key, value, ok := strings.Cut(raw, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", raw)
		}
		out[key] = value
	}
	return out, nil
}
