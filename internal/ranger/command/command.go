package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alwanly/heroku-ranger/internal/ranger/usecase"
	"github.com/Alwanly/heroku-ranger/pkg/logger"
	"github.com/Alwanly/heroku-ranger/pkg/poll"
)

// UsageError is returned for malformed sub-commands and rejected arguments.
// Err holds the argument validation failure, if any.
type UsageError struct {
	Usage string
	Err   error
}

func (e *UsageError) Error() string {
	if e.Err != nil {
		return e.Err.Error() + "\nusage: " + e.Usage
	}
	return "usage: " + e.Usage
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// asUsage reports argument validation failures together with the usage line.
func asUsage(err error, usage string) error {
	var verr *usecase.ValidationError
	if errors.As(err, &verr) {
		return &UsageError{Usage: usage, Err: err}
	}
	return err
}

const (
	domainsUsage  = "heroku ranger:domains <add | remove | clear>"
	watchersUsage = "heroku ranger:watchers <add | remove | clear>"
)

// SetupFunc resolves credentials for app and returns the operations bound to it.
type SetupFunc func(ctx context.Context, app string) (usecase.IUseCase, error)

type Options struct {
	Version    string
	DefaultApp string
	Setup      SetupFunc
	Logger     *logger.CanonicalLogger
}

type router struct {
	opts  Options
	app   string
	watch time.Duration
}

// NewRootCommand builds the command tree:
//
//	ranger
//	ranger:domains [add <url> | remove <url> | clear]
//	ranger:watchers [add <email> | remove <email> | clear]
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	r := &router{opts: opts}

	root := &cobra.Command{
		Use:           "heroku-ranger",
		Short:         "Monitor app uptime with Ranger",
		Version:       opts.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&r.app, "app", "a", opts.DefaultApp, "app to run command against")

	status := &cobra.Command{
		Use:   "ranger",
		Short: "show current app status",
		Args:  cobra.NoArgs,
		RunE:  r.runStatus,
	}
	status.Flags().DurationVar(&r.watch, "watch", 0, "refresh the status on this interval until interrupted")

	domains := &cobra.Command{
		Use:   "ranger:domains [add <url> | remove <url> | clear]",
		Short: "list domains being monitored",
		Example: `  heroku ranger:domains                  list domains being monitored
  heroku ranger:domains add <url>        start monitoring a domain
  heroku ranger:domains remove <url>     stop monitoring a domain
  heroku ranger:domains clear            stop monitoring all domains`,
		RunE: r.runDomains,
	}

	watchers := &cobra.Command{
		Use:   "ranger:watchers [add <email> | remove <email> | clear]",
		Short: "list current app watchers",
		Example: `  heroku ranger:watchers                 list current app watchers
  heroku ranger:watchers add <email>     add an app watcher
  heroku ranger:watchers remove <email>  remove an app watcher
  heroku ranger:watchers clear           remove all app watchers`,
		RunE: r.runWatchers,
	}

	root.AddCommand(status, domains, watchers)
	return root
}

func (r *router) setup(cmd *cobra.Command) (usecase.IUseCase, error) {
	return r.opts.Setup(cmd.Context(), r.app)
}

func (r *router) runStatus(cmd *cobra.Command, _ []string) error {
	uc, err := r.setup(cmd)
	if err != nil {
		return err
	}

	if r.watch <= 0 {
		return r.printStatus(cmd.Context(), cmd.OutOrStdout(), uc)
	}
	return r.watchStatus(cmd.Context(), cmd.OutOrStdout(), uc)
}

func (r *router) printStatus(ctx context.Context, out io.Writer, uc usecase.IUseCase) error {
	report, err := uc.Status(ctx)
	if err != nil {
		return err
	}
	renderStatus(out, report)
	return nil
}

func (r *router) watchStatus(ctx context.Context, out io.Writer, uc usecase.IUseCase) error {
	p := poll.NewPoller(r.opts.Logger)
	err := p.RegisterFetchFunc("status", func(ctx context.Context) error {
		return r.printStatus(ctx, out, uc)
	}, poll.PollerConfig{Interval: r.watch, RunImmediately: true})
	if err != nil {
		return err
	}

	if err := p.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return p.Stop()
}

func (r *router) runDomains(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	action, arg, err := parseAction(args, domainsUsage)
	if err != nil {
		return err
	}

	uc, err := r.setup(cmd)
	if err != nil {
		return err
	}

	switch action {
	case "":
		deps, found, err := uc.ListDomains(ctx)
		if err != nil {
			return err
		}
		if !found {
			renderNoDomains(out)
			return nil
		}
		renderDomains(out, deps)
	case "add":
		if _, err := uc.AddDomain(ctx, arg); err != nil {
			return asUsage(err, domainsUsage)
		}
		fmt.Fprintf(out, "Added %s to the monitoring list\n", arg)
	case "remove":
		n, err := uc.RemoveDomain(ctx, arg)
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Fprintln(out, "No domain with that URL found in the monitoring list")
			return nil
		}
		fmt.Fprintf(out, "Removed %s from the monitoring list\n", arg)
	case "clear":
		if _, err := uc.ClearDomains(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "All domains removed from the monitoring list")
	}
	return nil
}

func (r *router) runWatchers(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	action, arg, err := parseAction(args, watchersUsage)
	if err != nil {
		return err
	}

	uc, err := r.setup(cmd)
	if err != nil {
		return err
	}

	switch action {
	case "":
		watchers, err := uc.ListWatchers(ctx)
		if err != nil {
			return err
		}
		renderWatchers(out, watchers)
	case "add":
		if _, err := uc.AddWatcher(ctx, arg); err != nil {
			return asUsage(err, watchersUsage)
		}
		fmt.Fprintf(out, "Added %s as a watcher\n", arg)
	case "remove":
		n, err := uc.RemoveWatcher(ctx, arg)
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Fprintln(out, "No watchers with that email found in the watcher list")
			return nil
		}
		fmt.Fprintf(out, "Removed %s as a watcher\n", arg)
	case "clear":
		if _, err := uc.ClearWatchers(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "All watchers removed")
	}
	return nil
}

// parseAction validates the sub-action before any credentials are resolved.
func parseAction(args []string, usage string) (action, arg string, err error) {
	if len(args) == 0 {
		return "", "", nil
	}

	action = args[0]
	switch action {
	case "add", "remove":
		if len(args) != 2 || args[1] == "" {
			return "", "", &UsageError{Usage: usage}
		}
		return action, args[1], nil
	case "clear":
		if len(args) != 1 {
			return "", "", &UsageError{Usage: usage}
		}
		return action, "", nil
	default:
		return "", "", &UsageError{Usage: usage}
	}
}
