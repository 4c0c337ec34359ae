// Package router exposes DAOs as JSON resources over HTTP.
package router

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/conduit-lang/pgdao/internal/orm/crud"
	"github.com/conduit-lang/pgdao/internal/web/middleware"
)

// Resource is a DAO published under Name
type Resource struct {
	Name string
	DAO  *crud.DAO
}

// RouteInfo describes a registered route
type RouteInfo struct {
	Method  string
	Pattern string
}

// Router manages HTTP routing using chi framework
type Router struct {
	mux    chi.Router
	logger *zap.Logger
}

// NewRouter creates a Router. The chain wraps every route, including the
// not found and method not allowed handlers.
func NewRouter(logger *zap.Logger, chain *middleware.Chain) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := chi.NewRouter()
	if chain != nil {
		mux.Use(chain.Handlers()...)
	}
	mux.NotFound(notFoundHandler)
	mux.MethodNotAllowed(methodNotAllowedHandler)

	return &Router{
		mux:    mux,
		logger: logger,
	}
}

// ServeHTTP implements http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Mount registers the routes of every resource under prefix:
//
//	GET    {prefix}/{name}           list, with filter, sort and page parameters
//	GET    {prefix}/{name}/count     count, with filter parameters
//	POST   {prefix}/{name}           create
//	GET    {prefix}/{name}/{id}      show
//	PUT    {prefix}/{name}/{id}      update
//	DELETE {prefix}/{name}/{id}      delete
func (r *Router) Mount(prefix string, resources ...Resource) {
	prefix = strings.TrimSuffix(prefix, "/")

	for _, resource := range resources {
		h := &handlers{dao: resource.DAO, logger: r.logger.With(zap.String("resource", resource.Name))}
		base := prefix + "/" + resource.Name

		r.mux.Route(base, func(sub chi.Router) {
			sub.Get("/", h.list)
			sub.Post("/", h.create)
			sub.Get("/count", h.count)
			sub.Get("/{id}", h.show)
			sub.Put("/{id}", h.update)
			sub.Delete("/{id}", h.delete)
		})
	}
}

// Routes lists the registered routes sorted by pattern and method
func (r *Router) Routes() []RouteInfo {
	var routes []RouteInfo
	chi.Walk(r.mux, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, RouteInfo{Method: method, Pattern: strings.TrimSuffix(route, "/")})
		return nil
	})

	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Pattern != routes[j].Pattern {
			return routes[i].Pattern < routes[j].Pattern
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}
