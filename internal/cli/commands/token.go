package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/pgdao/internal/cli/config"
	"github.com/conduit-lang/pgdao/internal/web/auth"
)

func newTokenCommand(global *globalOptions) *cobra.Command {
	var resources []string

	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Sign an API token with server.jwt_secret",
		Long: `Sign a bearer token for the API served by 'pgdao serve'.

The token expires after server.token_ttl. --resource limits it to the
named resources; without it every resource is granted.

  pgdao token reporting --resource articles --resource authors`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(global.configPath)
			if err != nil {
				return &configError{err: err}
			}
			if cfg.Server.JWTSecret == "" {
				return &configError{err: fmt.Errorf("server.jwt_secret is not set")}
			}

			for _, resource := range resources {
				if _, ok := cfg.Resources[resource]; !ok {
					return &unknownResourceError{name: resource, known: cfg.ResourceNames()}
				}
			}

			token, err := auth.NewTokenService(cfg.Server.JWTSecret, cfg.Server.TokenTTL).GenerateToken(args[0], resources)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&resources, "resource", nil, "limit the token to a resource (repeatable)")

	return cmd
}
