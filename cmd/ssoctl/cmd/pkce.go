package cmd

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.pilab.hu/shadow-oidc/parameter"
)

type pkcePair struct {
	CodeVerifier        string `json:"code_verifier"`
	CodeChallenge       string `json:"code_challenge"`
	CodeChallengeMethod string `json:"code_challenge_method"`
}

func newPKCECmd() *cobra.Command {
	var (
		size     int
		verifier string
	)

	cmd := &cobra.Command{
		Use:   "pkce",
		Short: "Produce a PKCE code verifier and its S256 challenge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if verifier == "" {
				buf, err := random.Bytes(size)
				if err != nil {
					return err
				}
				verifier = base64.RawURLEncoding.EncodeToString(buf)
			}

			v, err := parameter.ParseCodeVerifier(verifier)
			if err != nil {
				return fmt.Errorf("invalid code verifier: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(pkcePair{
				CodeVerifier:        v.String(),
				CodeChallenge:       parameter.S256Challenge(v.String()),
				CodeChallengeMethod: string(parameter.CodeChallengeMethodS256),
			})
		},
	}

	cmd.Flags().IntVar(&size, "bytes", 32, "random bytes behind a generated verifier (32 to 96)")
	cmd.Flags().StringVar(&verifier, "verifier", "", "derive the challenge for an existing verifier")

	return cmd
}
