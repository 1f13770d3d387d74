package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/stewardhq/steward-go/internal/server/httpserver/handler"
)

// RegisterCommand returns the register command.
func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "first-name",
				Usage: "First name",
			},
			&cli.StringFlag{
				Name:  "last-name",
				Usage: "Last name",
			},
			&cli.StringFlag{
				Name:  "email",
				Usage: "Email address",
			},
			&cli.StringFlag{
				Name:  "default-plugin",
				Usage: "Plugin that handles unmatched commands",
			},
			&cli.StringSliceFlag{
				Name:  "setting",
				Usage: "Initial settings as KEY=VALUE pairs",
			},
		},
		Action: register,
	}
}

func register(c *cli.Context) error {
	if err := requireCredentials(c); err != nil {
		return err
	}

	settings, err := parseKeyValues(c.StringSlice("setting"))
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := newClient(c).Register(ctx, &handler.RegisterRequest{
		Username:      c.String("username"),
		Password:      c.String("password"),
		FirstName:     c.String("first-name"),
		LastName:      c.String("last-name"),
		Email:         c.String("email"),
		DefaultPlugin: c.String("default-plugin"),
		Settings:      settings,
	})
	if err != nil {
		return err
	}

	return printResult(c, resp, func() string {
		return "registered " + resp.Username
	})
}

// parseKeyValues splits KEY=VALUE pairs into a map.
func parseKeyValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := splitPair(pair)
		if !ok {
			return nil, fmt.Errorf("invalid KEY=VALUE pair: %q", pair)
		}
		out[key] = value
	}
	return out, nil
}

func splitPair(pair string) (key, value string, ok bool) {
	for i := 0; i < len(pair); i++ {
		if pair[i] == '=' {
			if i == 0 {
				return "", "", false
			}
			return pair[:i], pair[i+1:], true
		}
	}
	return "", "", false
}
