package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-dashboard/internal/models"
	appErrors "github.com/noah-isme/sma-dashboard/pkg/errors"
)

type loginOptions struct {
	Token    string
	NoVerify bool
}

func loginCmd(root *rootOptions) *cobra.Command {
	var opts loginOptions
	var cmd = &cobra.Command{
		Use:          "login",
		SilenceUsage: true,
		Short:        "store the API bearer token",
		Long:         `login saves the bearer token used for every API call. Without --token it is read from the terminal with echo disabled.`,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, root.app, opts)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&opts.Token, "token", "t", "", "bearer token")
	fs.BoolVar(&opts.NoVerify, "no-verify", false, "store the token without checking it against the API")
	return cmd
}

func runLogin(cmd *cobra.Command, app *App, opts loginOptions) error {
	ctx := cmd.Context()
	token := opts.Token
	if token == "" {
		line, err := app.Prompt.ReadLine("token: ", true)
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		token = line
	}
	if token == "" {
		return errors.New("token required")
	}
	if err := app.Tokens.SetToken(ctx, token); err != nil {
		return err
	}

	if !opts.NoVerify {
		_, err := app.Endpoint(models.SchoolResource).FetchPage(ctx, models.QueryParams{Page: 1, Limit: 1})
		switch {
		case appErrors.IsAuthFailure(err):
			_ = app.Tokens.ClearToken(ctx)
			return errors.New("token rejected by the API")
		case err != nil:
			app.Logger.Warn("could not verify token", zap.Error(err))
		}
	}

	fmt.Fprintln(app.Streams.Out, "logged in")
	return nil
}

func logoutCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "logout",
		SilenceUsage: true,
		Short:        "remove the stored token",
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := root.app.Tokens.ClearToken(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(root.app.Streams.Out, "logged out")
			return nil
		},
	}
}
