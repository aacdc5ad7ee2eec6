package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/tokenauth"
)

func (c *cli) newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash [secret]",
		Short: "Print an argon2id hash for identities[].secret_hash",
		Long:  "Print an argon2id PHC hash of a secret. Reads the secret from stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := tokenArg(cmd.InOrStdin(), args)
			if err != nil {
				return errors.New("no secret given")
			}

			hasher, err := tokenauth.NewPasswordHasher(tokenauth.DefaultConfig().Password)
			if err != nil {
				return err
			}
			hash, err := hasher.Hash(secret)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}
