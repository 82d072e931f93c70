package cmd

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	soidc "go.pilab.hu/shadow-oidc"
	"go.pilab.hu/shadow-oidc/parameter"
	"golang.org/x/crypto/bcrypt"
)

var random = soidc.NewRandomGenerator(nil)

func newGenSecretCmd() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "gen-secret",
		Short: "Generate a random HS256 signing secret",
		Long:  "Prints a random signing secret as padded standard base64, the format expected by the secret setting.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if size < 32 {
				return fmt.Errorf("--bytes must be at least 32, got %d", size)
			}

			buf, err := random.Bytes(size)
			if err != nil {
				return err
			}

			logger.Debug().Int("bytes", size).Msg("generated signing secret")
			fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(buf))

			return nil
		},
	}

	cmd.Flags().IntVar(&size, "bytes", 32, "number of random bytes")

	return cmd
}

func newHashSecretCmd() *cobra.Command {
	var (
		cost     int
		generate bool
	)

	cmd := &cobra.Command{
		Use:   "hash-secret [secret]",
		Short: "Hash a confidential client secret with bcrypt",
		Long: `Hashes a client secret for the client_secret_hash setting. The secret is read
from the argument or, when absent, from the first line of stdin. With
--generate a new random secret is created and printed before its hash.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw string
			switch {
			case generate:
				s, err := random.Bytes(32)
				if err != nil {
					return err
				}
				raw = base64.RawURLEncoding.EncodeToString(s)
				fmt.Fprintln(cmd.OutOrStdout(), raw)
			case len(args) == 1:
				raw = args[0]
			default:
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read secret from stdin: %w", err)
				}
				raw = strings.TrimRight(line, "\r\n")
			}

			secret, err := parameter.ParseClientSecret(raw)
			if err != nil {
				return fmt.Errorf("invalid client secret: %w", err)
			}

			hash, err := soidc.HashClientSecret(secret, cost)
			if err != nil {
				return err
			}

			logger.Debug().Int("cost", cost).Msg("hashed client secret")
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))

			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	cmd.Flags().BoolVar(&generate, "generate", false, "generate a new random secret")

	return cmd
}
