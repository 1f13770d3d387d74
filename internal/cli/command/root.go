package command

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/stewardhq/steward-go/internal/cli/client"
	"github.com/stewardhq/steward-go/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	info := buildinfo.Get()
	app := &cli.App{
		Name:    "steward-cli",
		Usage:   "Steward command-line client",
		Version: fmt.Sprintf("%s (commit: %s)", info.Version, info.Commit),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			RegisterCommand(),
			SessionCommand(),
			AskCommand(),
			TokenCommand(),
			StatusCommand(),
		},
	}
	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Steward server address (e.g., localhost:5270)",
			EnvVars: []string{"STEWARD_SERVER"},
			Value:   "localhost:5270",
		},
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "Account username",
			EnvVars: []string{"STEWARD_USERNAME"},
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Account password",
			EnvVars: []string{"STEWARD_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "ca-cert",
			Usage:   "Additional CA certificate file for HTTPS",
			EnvVars: []string{"STEWARD_CA_CERT"},
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Request timeout",
			Value: client.DefaultTimeout,
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print raw JSON instead of plain text",
		},
	}
}

// newClient builds an API client from the global flags.
func newClient(c *cli.Context) *client.Client {
	opts := []client.Option{
		client.WithCredentials(c.String("username"), c.String("password")),
		client.WithTimeout(c.Duration("timeout")),
	}
	if caCert := c.String("ca-cert"); caCert != "" {
		opts = append(opts, client.WithCACert(caCert))
	}
	return client.New(c.String("server"), opts...)
}

// requestContext returns a context bounded by the --timeout flag.
func requestContext(c *cli.Context) (context.Context, context.CancelFunc) {
	timeout := c.Duration("timeout")
	if timeout <= 0 {
		timeout = client.DefaultTimeout
	}
	return context.WithTimeout(c.Context, timeout)
}

// printResult writes the result as JSON when --json is set, otherwise
// via the plain formatter.
func printResult(c *cli.Context, v any, plain func() string) error {
	if c.Bool("json") {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, string(data))
		return nil
	}
	fmt.Fprintln(c.App.Writer, plain())
	return nil
}

// requireCredentials fails with a usage error when the username or
// password flag is missing.
func requireCredentials(c *cli.Context) error {
	if c.String("username") == "" || c.String("password") == "" {
		return cli.Exit("username and password are required (use --username/--password or STEWARD_USERNAME/STEWARD_PASSWORD)", 2)
	}
	return nil
}

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show server health and version",
		Action: func(c *cli.Context) error {
			ctx, cancel := requestContext(c)
			defer cancel()

			health, err := newClient(c).Health(ctx)
			if err != nil {
				return err
			}
			return printResult(c, health, func() string {
				return fmt.Sprintf("status: %s\nversion: %s (%s)\ngo: %s",
					health.Status, health.Version, health.Commit, health.GoVersion)
			})
		},
	}
}

// pollUpdates polls a session's update queue until at least one update
// arrives or the deadline passes.
func pollUpdates(ctx context.Context, api *client.Client, sessionID string, interval time.Duration) ([]string, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		resp, err := api.Updates(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if len(resp.Updates) > 0 {
			out := make([]string, 0, len(resp.Updates))
			for _, u := range resp.Updates {
				out = append(out, u.Response)
			}
			return out, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
