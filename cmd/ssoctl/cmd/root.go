package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.pilab.hu/shadow-oidc/log"
)

const AppName = "ssoctl"

var (
	logger  zerolog.Logger
	verbose bool
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   AppName,
		Short: "ssoctl is a helper CLI for shadow-oidc operators and client developers",
		Long: `A command-line tool for generating signing secrets, hashing confidential
client secrets and producing PKCE verifier/challenge pairs for shadow-oidc.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			logger = log.New(level, true, cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newGenSecretCmd(),
		newHashSecretCmd(),
		newPKCECmd(),
	)

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
