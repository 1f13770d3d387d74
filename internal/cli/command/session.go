package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
)

// SessionCommand returns the session subcommand group.
func SessionCommand() *cli.Command {
	return &cli.Command{
		Name:    "session",
		Aliases: []string{"sess"},
		Usage:   "Manage sessions",
		Subcommands: []*cli.Command{
			{
				Name:   "start",
				Usage:  "Open a new session",
				Action: sessionStart,
			},
			{
				Name:      "end",
				Usage:     "Close a session",
				ArgsUsage: "SESSION_ID",
				Action:    sessionEnd,
			},
			{
				Name:   "list",
				Usage:  "List your open sessions",
				Action: sessionList,
			},
		},
	}
}

func sessionStart(c *cli.Context) error {
	if err := requireCredentials(c); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := newClient(c).StartSession(ctx, c.String("username"), c.String("password"))
	if err != nil {
		return err
	}

	return printResult(c, resp, func() string {
		return resp.SessionID
	})
}

func sessionEnd(c *cli.Context) error {
	sessionID := c.Args().First()
	if sessionID == "" {
		return cli.Exit("session id is required", 2)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := newClient(c).EndSession(ctx, sessionID); err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, "session ended")
	return nil
}

func sessionList(c *cli.Context) error {
	if err := requireCredentials(c); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := newClient(c).ListSessions(ctx)
	if err != nil {
		return err
	}

	return printResult(c, resp, func() string {
		if len(resp.Sessions) == 0 {
			return "no open sessions"
		}
		return strings.Join(resp.Sessions, "\n")
	})
}

// AskCommand returns the ask command: submit a command on a session
// and wait for the worker's update.
func AskCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Send a command and wait for the response",
		ArgsUsage: "TEXT...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "session",
				Usage: "Existing session id (a temporary session is opened otherwise)",
			},
			&cli.DurationFlag{
				Name:  "poll-interval",
				Value: 500 * time.Millisecond,
				Usage: "Update polling interval",
			},
			&cli.BoolFlag{
				Name:  "no-wait",
				Usage: "Print the immediate reply without polling for updates",
			},
		},
		Action: ask,
	}
}

func ask(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")
	if text == "" {
		return cli.Exit("command text is required", 2)
	}

	api := newClient(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	sessionID := c.String("session")
	if sessionID == "" {
		if err := requireCredentials(c); err != nil {
			return err
		}
		started, err := api.StartSession(ctx, c.String("username"), c.String("password"))
		if err != nil {
			return err
		}
		sessionID = started.SessionID
		defer api.EndSession(ctx, sessionID)
	}

	submitted, err := api.Submit(ctx, sessionID, text)
	if err != nil {
		return err
	}

	if c.Bool("no-wait") {
		fmt.Fprintln(c.App.Writer, submitted.Response)
		return nil
	}

	responses, err := pollUpdates(ctx, api, sessionID, c.Duration("poll-interval"))
	if err != nil {
		return err
	}
	for _, response := range responses {
		fmt.Fprintln(c.App.Writer, response)
	}
	return nil
}
