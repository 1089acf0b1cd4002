package router

import (
	"context"
	"errors"

	"github.com/pokebase/pokebase-api/internal/application"
	"github.com/pokebase/pokebase-api/internal/container"
	pginfra "github.com/pokebase/pokebase-api/internal/infrastructure/postgres"
	handlers "github.com/pokebase/pokebase-api/internal/interface/http"
	"github.com/pokebase/pokebase-api/internal/router/modules"
	"github.com/pokebase/pokebase-api/pkg/helpers"
)

// Services groups the application services built from the container. The
// sync command reuses it without mounting any routes.
type Services struct {
	Sessions   *application.SessionStore
	Auth       *application.AuthService
	Users      *application.UserService
	Catalog    *application.CatalogService
	Collection *application.CollectionService
	Sync       *application.SyncService
}

// BuildServices wires repositories and optional backends into services.
// Optional backends are passed as nil interfaces when not configured.
func BuildServices() *Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()
	rdb := container.GetRedis()

	users := pginfra.NewUserRepository(pool)
	accounts := pginfra.NewAccountRepository(pool)
	tokens := pginfra.NewVerificationRepository(pool)
	sets := pginfra.NewSetRepository(pool)
	cards := pginfra.NewCardRepository(pool)
	userCards := pginfra.NewUserCardRepository(pool)

	var store application.ObjectStore
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		store = helpers.NewGCSStore(gcs, cfg.GCSBucket)
	}
	var index application.CardIndex
	if ix := container.GetCardIndex(); ix != nil {
		index = ix
	}
	var source application.CardSource
	if tcg := container.GetTCG(); tcg != nil {
		source = tcg
	}
	var mail application.Mailer
	if d := container.GetDispatcher(); d != nil {
		mail = d
	}

	sessions := application.NewSessionStore(rdb, cfg.RefreshTTL)
	catalog := application.NewCatalogService(sets, cards, index, source, rdb, cfg.SearchCacheTTL, logger)
	return &Services{
		Sessions:   sessions,
		Auth:       application.NewAuthService(users, accounts, tokens, container.GetJWT(), sessions, mail, cfg, logger),
		Users:      application.NewUserService(users, userCards, sessions, store, logger),
		Catalog:    catalog,
		Collection: application.NewCollectionService(cards, userCards, logger),
		Sync:       application.NewSyncService(source, sets, cards, index, catalog, cfg.SyncConcurrency, logger),
	}
}

// InitModules builds every feature module and registers it with the registry.
// It should be called once during startup, after the container is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	jwt := container.GetJWT()
	svc := BuildServices()
	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)

	var google handlers.OAuthProvider
	if g := container.GetGoogle(); g != nil {
		google = g
	}

	r.Add(modules.NewAuthModule(
		handlers.NewAuthHandler(svc.Auth, google, cookies, cfg.OAuthSuccessRedirect, logger),
		svc.Sessions, jwt,
	))
	r.Add(modules.NewProfileModule(handlers.NewUserHandler(svc.Users, cookies, cfg.MaxUploadBytes, logger), svc.Sessions, jwt))
	r.Add(modules.NewCatalogModule(handlers.NewCatalogHandler(svc.Catalog, logger)))
	r.Add(modules.NewCollectionModule(handlers.NewCollectionHandler(svc.Collection, logger), svc.Sessions, jwt))
	r.Add(modules.NewSyncModule(handlers.NewSyncHandler(svc.Sync, logger), cfg.AdminAPIKey))
	r.Add(modules.NewCenteringModule(handlers.NewCenteringHandler(cfg.MaxUploadBytes, logger)))
	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(healthChecks())))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(cfg.AdminAPIKey))
	}
	// An open ad-hoc mail endpoint would be a relay; it needs the admin key.
	if cfg.AdminAPIKey != "" && svc.Auth.Mail != nil {
		r.Add(modules.NewEmailModule(handlers.NewEmailHandler(svc.Auth.Mail, cfg.MailSendEnabled, logger), cfg.AdminAPIKey))
	}
}

func healthChecks() map[string]handlers.Check {
	checks := map[string]handlers.Check{
		"postgres": func(ctx context.Context) error { return container.GetPGPool().Ping(ctx) },
	}
	if rdb := container.GetRedis(); rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	if es := container.GetES(); es != nil {
		checks["elasticsearch"] = func(ctx context.Context) error {
			res, err := es.Ping(es.Ping.WithContext(ctx))
			if err != nil {
				return err
			}
			defer func() { _ = res.Body.Close() }()
			if res.IsError() {
				return errors.New(res.Status())
			}
			return nil
		}
	}
	return checks
}
