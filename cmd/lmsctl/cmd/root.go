// Package cmd provides the CLI commands for lmsctl.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/edulearn/lms/internal/pkg/config"
	"github.com/edulearn/lms/internal/portal/gateway"
	"github.com/edulearn/lms/internal/portal/session"
	"github.com/edulearn/lms/internal/portal/tokenstore"
	"github.com/edulearn/lms/pkg/logger"
)

type rootOptions struct {
	apiURL     string
	tokenStore string
	tokenPath  string
}

// NewRootCmd builds the lmsctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "lmsctl",
		Short: "lmsctl - LMS portal client",
		Long: `lmsctl signs in to an LMS server and keeps the session between runs.

Every command first restores the stored session, the same way the portal
does on page load. Navigation the portal would perform is printed.

Configuration:
  LMS_API_URL          API base URL (default http://localhost:5000/api)
  LMS_TOKEN_STORE      file, redis or memory (default file)
  LMS_TOKEN_PATH       credential file for the file store
  LMS_REDIS_ADDR       Redis address for the redis store
  LMS_REQUEST_TIMEOUT  per-request timeout (default 15s)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "API base URL (overrides LMS_API_URL)")
	root.PersistentFlags().StringVar(&opts.tokenStore, "token-store", "", "credential backend: file, redis or memory")
	root.PersistentFlags().StringVar(&opts.tokenPath, "token-path", "", "credential file for the file backend")

	root.AddCommand(
		newLoginCmd(opts),
		newRegisterCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newForgotPasswordCmd(opts),
		newResetPasswordCmd(opts),
		newUpdatePasswordCmd(opts),
		newOpenCmd(opts),
		newCoursesCmd(opts),
		newNotificationsCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// portal is one restored session and the client behind it.
type portal struct {
	client  *gateway.Client
	session *session.Controller
	store   tokenstore.Store
}

func (p *portal) close() {
	if c, ok := p.store.(io.Closer); ok {
		_ = c.Close()
	}
}

func (o *rootOptions) config(ctx context.Context) (*config.PortalConfig, error) {
	cfg, err := config.LoadPortal(ctx)
	if err != nil {
		return nil, err
	}
	if o.apiURL != "" {
		cfg.APIURL = o.apiURL
	}
	if o.tokenStore != "" {
		cfg.TokenStore = o.tokenStore
	}
	if o.tokenPath != "" {
		cfg.TokenPath = o.tokenPath
	}
	return cfg, nil
}

// withPortal restores the session before running fn.
func withPortal(opts *rootOptions, fn func(cmd *cobra.Command, args []string, p *portal) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := opts.config(ctx)
		if err != nil {
			return err
		}

		logger.Init(logger.Options{
			Level:   cfg.LogLevel,
			Pretty:  true,
			Output:  cmd.ErrOrStderr(),
			Service: "lmsctl",
		})

		store, err := tokenstore.New(cfg)
		if err != nil {
			return err
		}

		client := gateway.New(cfg.APIURL, store,
			gateway.WithTimeout(cfg.RequestTimeout),
			gateway.WithLogger(logger.Component("gateway")),
		)

		out := cmd.OutOrStdout()
		ctrl := session.New(client, store,
			session.NavigatorFunc(func(dest session.Destination) {
				fmt.Fprintf(out, "navigate: %s\n", dest)
			}),
			session.WithLogger(logger.Component("session")),
			session.WithActionTimeout(cfg.RequestTimeout),
		)

		p := &portal{client: client, session: ctrl, store: store}
		defer p.close()

		ctrl.Init(ctx)
		return fn(cmd, args, p)
	}
}

// report prints a successful result's message or turns a failure into an error.
func report(cmd *cobra.Command, res session.Result) error {
	if !res.OK {
		return errors.New(res.Message)
	}
	if res.Message != "" {
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	}
	return nil
}
