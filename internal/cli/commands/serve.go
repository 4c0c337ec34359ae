package commands

import (
	"context"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/pgdao/internal/web/auth"
	"github.com/conduit-lang/pgdao/internal/web/middleware"
	"github.com/conduit-lang/pgdao/internal/web/router"
	"github.com/conduit-lang/pgdao/internal/web/server"
)

func newServeCommand(global *globalOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured resources as a JSON API",
		Long: `Serve every configured resource under server.api_prefix:

  GET    /{resource}?filter[field]=v&sort=-a,b&page[size]=20&page[index]=1
  GET    /{resource}/count
  GET    /{resource}/{id}
  POST   /{resource}
  PUT    /{resource}/{id}
  DELETE /{resource}/{id}

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), global)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}

			gs, err := a.newServer()
			if err != nil {
				a.Close()
				return err
			}
			return gs.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 3000, "override server.port")

	return cmd
}

// newServer wires the resources into a router behind the middleware chain.
// Bearer token auth is enabled by server.jwt_secret. Closing the app is
// registered as a shutdown hook.
func (a *app) newServer() (*server.GracefulShutdown, error) {
	logger := a.logger.Named("http")

	chain := middleware.NewChain(
		middleware.RequestID(),
		middleware.Logging(logger),
		middleware.Recovery(logger),
	)
	if a.cfg.Server.JWTSecret != "" {
		tokens := auth.NewTokenService(a.cfg.Server.JWTSecret, a.cfg.Server.TokenTTL)
		chain.Use(middleware.Auth(tokens, a.cfg.Server.APIPrefix))
	}
	chain.Use(middleware.Timeout(a.cfg.Server.RequestTimeout))

	names := make([]string, 0, len(a.daos))
	for name := range a.daos {
		names = append(names, name)
	}
	sort.Strings(names)

	resources := make([]router.Resource, 0, len(names))
	for _, name := range names {
		resources = append(resources, router.Resource{Name: name, DAO: a.daos[name]})
	}

	r := router.NewRouter(logger, chain)
	r.Mount(a.cfg.Server.APIPrefix, resources...)
	for _, route := range r.Routes() {
		logger.Debug("route", zap.String("method", route.Method), zap.String("pattern", route.Pattern))
	}

	srv, err := server.New(server.ConfigFrom(a.cfg.Server, r), logger)
	if err != nil {
		return nil, err
	}

	gs := server.NewGracefulShutdown(srv, &server.ShutdownConfig{
		Timeout: a.cfg.Server.ShutdownTimeout,
		Logger:  logger,
	})
	gs.RegisterHook(func(ctx context.Context) error {
		return a.Close()
	})
	return gs, nil
}
