package main

import (
	"os"

	"github.com/spf13/cobra"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "navbatctl",
		Short: "Operator tooling for the navbat admin control plane",
		Long: `navbatctl mints and revokes admin bearer tokens for local development
and incident response. Signing key, issuer, audience and Redis location are
read from the same environment as the server.

  navbatctl token mint --subject op-1 --role ADMIN --ttl 1h
  navbatctl token revoke --token <jwt>`,
		SilenceUsage: true,
	}
	cmd.AddCommand(newTokenCommand())
	return cmd
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
