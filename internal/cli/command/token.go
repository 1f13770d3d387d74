package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/stewardhq/steward-go/internal/server/httpserver/handler"
)

// TokenCommand returns the token subcommand group.
func TokenCommand() *cli.Command {
	clientFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "client-id",
			Usage:    "Origin client id",
			EnvVars:  []string{"STEWARD_CLIENT_ID"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    "client-secret",
			Usage:   "Origin client secret (signed form)",
			EnvVars: []string{"STEWARD_CLIENT_SECRET"},
		},
		&cli.StringFlag{
			Name:    "relay-client-id",
			Usage:   "Relay client id, when relaying for another client",
			EnvVars: []string{"STEWARD_RELAY_CLIENT_ID"},
		},
		&cli.StringFlag{
			Name:    "relay-client-secret",
			Usage:   "Relay client secret (signed form)",
			EnvVars: []string{"STEWARD_RELAY_CLIENT_SECRET"},
		},
	}

	return &cli.Command{
		Name:  "token",
		Usage: "Run the authorization flows",
		Subcommands: []*cli.Command{
			{
				Name:  "issue",
				Usage: "Issue a short-lived user token",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "scope",
						Usage:    "Requested scope",
						Required: true,
					},
				}, clientFlags...),
				Action: tokenIssue,
			},
			{
				Name:      "exchange",
				Usage:     "Exchange a user token for an access token",
				ArgsUsage: "USER_TOKEN",
				Flags:     clientFlags,
				Action:    tokenExchange,
			},
			{
				Name:  "revoke",
				Usage: "Revoke a relationship with a client",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Value: "uses",
						Usage: "Relationship kind (authorized, uses)",
					},
				}, clientFlags...),
				Action: tokenRevoke,
			},
		},
	}
}

// credentialsFromFlags builds the credential body shared by the token
// subcommands.
func credentialsFromFlags(c *cli.Context) handler.CredentialsBody {
	return handler.CredentialsBody{
		ClientID:          c.String("client-id"),
		ClientSecret:      c.String("client-secret"),
		RelayClientID:     c.String("relay-client-id"),
		RelayClientSecret: c.String("relay-client-secret"),
		Username:          c.String("username"),
		Password:          c.String("password"),
	}
}

func tokenIssue(c *cli.Context) error {
	if err := requireCredentials(c); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := newClient(c).IssueUserToken(ctx, &handler.IssueUserTokenRequest{
		CredentialsBody: credentialsFromFlags(c),
		Scope:           c.String("scope"),
	})
	if err != nil {
		return err
	}

	return printResult(c, resp, func() string {
		return resp.Token
	})
}

func tokenExchange(c *cli.Context) error {
	if err := requireCredentials(c); err != nil {
		return err
	}
	userToken := c.Args().First()
	if userToken == "" {
		return cli.Exit("user token is required", 2)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := newClient(c).ExchangeAccessToken(ctx, &handler.ExchangeAccessTokenRequest{
		CredentialsBody: credentialsFromFlags(c),
		UserToken:       userToken,
	})
	if err != nil {
		return err
	}

	return printResult(c, resp, func() string {
		return resp.Token
	})
}

func tokenRevoke(c *cli.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	err := newClient(c).Revoke(ctx, &handler.RevokeRequest{
		CredentialsBody: credentialsFromFlags(c),
		Kind:            c.String("kind"),
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, "revoked")
	return nil
}
