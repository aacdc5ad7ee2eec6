package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/tokenauth/jwt"
)

func (c *cli) newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue or verify bearer tokens locally",
	}
	cmd.AddCommand(c.newTokenIssueCmd(), c.newTokenVerifyCmd())
	return cmd
}

func (c *cli) newTokenIssueCmd() *cobra.Command {
	var identifier, secret string

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a token for a configured identity",
		Long: `Issue a token for a configured identity. With --secret the credential
check and login throttle run exactly as for POST /api/token; without it the
identity is looked up and a token is minted directly.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if identifier == "" {
				return errors.New("--identifier is required")
			}
			cfg, err := c.load()
			if err != nil {
				return err
			}
			rt, err := buildRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			var token string
			if secret != "" {
				token, err = rt.engine.Login(cmd.Context(), identifier, secret)
			} else {
				id, ferr := rt.store.FindByIdentifier(cmd.Context(), identifier)
				if ferr != nil {
					return fmt.Errorf("identity %q: %w", identifier, ferr)
				}
				token, err = rt.engine.Issue(cmd.Context(), id)
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVarP(&identifier, "identifier", "i", "", "identifier of a configured identity")
	cmd.Flags().StringVar(&secret, "secret", "", "verify this secret before issuing")
	return cmd
}

func (c *cli) newTokenVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [token]",
		Short: "Verify a token and print its claims",
		Long:  "Verify a token and print its claims as JSON. Reads the token from stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := tokenArg(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			cfg, err := c.load()
			if err != nil {
				return err
			}
			rt, err := buildRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			claims, err := rt.engine.Validate(cmd.Context(), token)
			if err != nil {
				if kind, ok := jwt.KindOf(err); ok {
					return fmt.Errorf("token rejected (%s): %w", kind, err)
				}
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(claims)
		},
	}
}

func tokenArg(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return strings.TrimSpace(args[0]), nil
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading token: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("no token given")
	}
	return line, nil
}
