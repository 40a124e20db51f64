// Package app builds the client's context object: both identity sessions,
// the route guard, the interaction cache and the auth flows, sharing one
// KVStore and one backend client. It is created once per process and passed
// by reference to the gateway and the CLI.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noteapp/client/internal/core/domain"
	"github.com/noteapp/client/internal/core/ports"
	"github.com/noteapp/client/internal/core/service"
)

// Options tunes the services built by New.
type Options struct {
	CheckExpiry bool
	Routes      *domain.RouteTable
}

type App struct {
	Store   ports.KVStore
	Backend ports.Backend
	Member  *service.SessionStore
	Admin   *service.SessionStore
	Guard   *service.RouteGuard
	Cache   *service.InteractionCache
	Auth    *service.AuthService

	log      zerolog.Logger
	once     sync.Once
	hydrated chan struct{}
}

func New(store ports.KVStore, backend ports.Backend, log zerolog.Logger, opts Options) *App {
	routes := domain.DefaultRoutes()
	if opts.Routes != nil {
		routes = *opts.Routes
	}

	member := service.NewSessionStore(domain.DomainMember, store, log, service.WithExpiryCheck(opts.CheckExpiry))
	admin := service.NewSessionStore(domain.DomainAdmin, store, log, service.WithExpiryCheck(opts.CheckExpiry))

	return &App{
		Store:    store,
		Backend:  backend,
		Member:   member,
		Admin:    admin,
		Guard:    service.NewRouteGuard(routes, member, admin),
		Cache:    service.NewInteractionCache(store, backend, member, log),
		Auth:     service.NewAuthService(backend, member, admin, store, log),
		log:      log,
		hydrated: make(chan struct{}),
	}
}

// Hydrate reads both sessions and the interaction mirror from storage.
// Only the first call does any work.
func (a *App) Hydrate(ctx context.Context) {
	a.once.Do(func() {
		member := a.Member.Hydrate(ctx)
		admin := a.Admin.Hydrate(ctx)
		a.Cache.Load(ctx)

		a.log.Info().
			Str("member", member.String()).
			Str("admin", admin.String()).
			Msg("sessions hydrated")
		close(a.hydrated)
	})
}

// HydrateAsync starts Hydrate in the background. Requests served meanwhile
// observe presence unknown. The returned channel closes when done.
func (a *App) HydrateAsync(ctx context.Context) <-chan struct{} {
	go a.Hydrate(ctx)
	return a.hydrated
}

// Hydrated closes once both sessions have left the unknown state.
func (a *App) Hydrated() <-chan struct{} {
	return a.hydrated
}

// Session returns the store of d.
func (a *App) Session(d domain.IdentityDomain) ports.SessionStore {
	if d == domain.DomainAdmin {
		return a.Admin
	}
	return a.Member
}

func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
