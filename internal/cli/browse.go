package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-dashboard/internal/models"
	"github.com/noah-isme/sma-dashboard/internal/resource"
	appErrors "github.com/noah-isme/sma-dashboard/pkg/errors"
)

const browseHelp = `commands:
  n, p          next / previous page
  g <page>      go to page
  / <text>      search (empty clears)
  l <limit>     rows per page
  d <id>        delete a record
  r             reload
  q             quit`

func browseCmd(root *rootOptions) *cobra.Command {
	var limit int
	var cmd = &cobra.Command{
		Use:          "browse <resource>",
		SilenceUsage: true,
		Short:        "page and search a resource interactively",
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := lookup(args[0])
			if err != nil {
				return err
			}
			return runBrowse(cmd.Context(), root.app, res, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "rows per page, defaults to DEFAULT_PAGE_LIMIT")
	return cmd
}

// screen serializes redraws coming from the input loop and from debounced
// searches finishing in the background.
type screen struct {
	mu  sync.Mutex
	out io.Writer
	res models.Resource
}

func (s *screen) draw(view resource.View[Record]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out)
	if err := renderView(s.out, s.res, view); err != nil {
		fmt.Fprintln(s.out, "render:", err)
	}
	fmt.Fprint(s.out, "> ")
}

func runBrowse(ctx context.Context, app *App, res models.Resource, limit int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scr := &screen{out: app.Streams.Out, res: res}
	changed := make(chan struct{}, 1)
	ctrl := app.Controller(res, limit, app.Prompt, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer ctrl.Close()

	if err := ctrl.Mount(ctx); err != nil && appErrors.IsAuthFailure(err) {
		return err
	}
	// Drain the signals raised by the initial load; it is drawn below.
	select {
	case <-changed:
	default:
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
				if view := ctrl.Snapshot(); !view.Loading {
					scr.draw(view)
				}
			}
		}
	}()
	defer wg.Wait()
	defer cancel()

	scr.draw(ctrl.Snapshot())
	for {
		line, err := app.Prompt.ReadLine("", false)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		quit, err := browseStep(ctx, app, ctrl, line)
		if appErrors.IsAuthFailure(err) {
			return err
		}
		if quit {
			return nil
		}
		if err != nil {
			app.Logger.Debug("browse command failed", zap.String("input", line), zap.Error(err))
		}
		drainAndDraw(changed, scr, ctrl)
	}
}

func drainAndDraw(changed chan struct{}, scr *screen, ctrl *resource.Controller[Record]) {
	select {
	case <-changed:
	default:
	}
	scr.draw(ctrl.Snapshot())
}

// browseStep runs one input line and reports whether the user quit.
func browseStep(ctx context.Context, app *App, ctrl *resource.Controller[Record], line string) (bool, error) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	page := ctrl.Snapshot().Params.Page

	switch cmd {
	case "":
		return false, nil
	case "q", "quit", "exit":
		return true, nil
	case "n":
		return false, ctrl.SetPage(ctx, page+1)
	case "p":
		return false, ctrl.SetPage(ctx, page-1)
	case "g":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return false, showError(ctrl, "page must be a number")
		}
		return false, ctrl.SetPage(ctx, n)
	case "l":
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			return false, showError(ctrl, "limit must be a positive number")
		}
		return false, ctrl.SetLimit(ctx, n)
	case "/":
		ctrl.Search(arg)
		return false, nil
	case "d":
		if arg == "" {
			return false, showError(ctrl, "usage: d <id>")
		}
		_, err := ctrl.Delete(ctx, arg)
		return false, err
	case "r":
		return false, ctrl.Refresh(ctx)
	case "?", "h", "help":
		fmt.Fprintln(app.Streams.Out, browseHelp)
		return false, nil
	}
	if strings.HasPrefix(cmd, "/") {
		ctrl.Search(strings.TrimSpace(strings.TrimPrefix(line, "/")))
		return false, nil
	}
	return false, showError(ctrl, fmt.Sprintf("unknown command %q, ? for help", cmd))
}

func showError(ctrl *resource.Controller[Record], msg string) error {
	ctrl.Feedback().Error(msg)
	return errors.New(msg)
}
