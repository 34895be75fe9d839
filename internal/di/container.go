// Package di assembles the application object graph.
package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/blendaura/api/internal/events"
	"github.com/blendaura/api/internal/handlers"
	"github.com/blendaura/api/internal/invoice"
	"github.com/blendaura/api/internal/platform/auth"
	"github.com/blendaura/api/internal/platform/config"
	pfirestore "github.com/blendaura/api/internal/platform/firestore"
	"github.com/blendaura/api/internal/platform/observability"
	"github.com/blendaura/api/internal/platform/storage"
	repofirestore "github.com/blendaura/api/internal/repositories/firestore"
	"github.com/blendaura/api/internal/services"
)

// Container holds the wired application components.
type Container struct {
	Config   config.Config
	Logger   *zap.Logger
	Router   chi.Router
	registry *repofirestore.Registry
	images   *storage.ImageStore
	events   events.Publisher
}

// NewContainer builds the full object graph from configuration.
func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		return nil, errors.New("di: logger is required")
	}

	provider := pfirestore.NewProvider(cfg.Firestore)
	registry, err := repofirestore.NewRegistry(provider)
	if err != nil {
		return nil, fmt.Errorf("di: build repositories: %w", err)
	}

	var images *storage.ImageStore
	if cfg.Storage.ProductImagesBucket != "" {
		images, err = storage.NewImageStore(ctx, cfg.Storage.ProductImagesBucket, nil)
		if err != nil {
			return nil, fmt.Errorf("di: build image store: %w", err)
		}
	} else {
		logger.Warn("product image bucket not configured, image uploads disabled")
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.PubSub.OrdersTopic != "" {
		pub, err := events.NewPubSubPublisher(ctx, cfg.PubSub.ProjectID, cfg.PubSub.OrdersTopic, logger)
		if err != nil {
			return nil, fmt.Errorf("di: build event publisher: %w", err)
		}
		publisher = pub
	} else {
		logger.Warn("orders topic not configured, order events disabled")
	}

	issuer, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, auth.WithTokenTTL(cfg.Auth.TokenTTL))
	if err != nil {
		return nil, fmt.Errorf("di: build token issuer: %w", err)
	}
	authn := auth.NewAuthenticator(issuer)

	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:   registry.Orders(),
		Users:    registry.Users(),
		Counters: registry.Counters(),
		Events:   publisher,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("di: build order service: %w", err)
	}

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{
		Products: registry.Products(),
		Images:   images,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("di: build catalog service: %w", err)
	}

	userService, err := services.NewUserService(services.UserServiceDeps{
		Users:  registry.Users(),
		Tokens: issuer,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("di: build user service: %w", err)
	}

	contactService, err := services.NewContactService(services.ContactServiceDeps{
		Contacts: registry.Contacts(),
	})
	if err != nil {
		return nil, fmt.Errorf("di: build contact service: %w", err)
	}

	systemService, err := services.NewSystemService(registry.Health())
	if err != nil {
		return nil, fmt.Errorf("di: build system service: %w", err)
	}

	renderer := invoice.NewRenderer()

	authHandlers := handlers.NewAuthHandlers(userService)
	productHandlers := handlers.NewProductHandlers(catalogService)
	orderHandlers := handlers.NewOrderHandlers(authn, orderService, renderer)
	contactHandlers := handlers.NewContactHandlers(contactService)
	adminHandlers := handlers.NewAdminHandlers(authn, catalogService, orderService, contactService)
	healthHandlers := handlers.NewHealthHandlers(systemService)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger),
			observability.TraceMiddleware(),
			observability.RequestLoggerMiddleware(),
			observability.RecoveryMiddleware(logger),
		),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithAuthRoutes(func(r chi.Router) { authHandlers.Routes(r) }),
		handlers.WithProductRoutes(func(r chi.Router) { productHandlers.Routes(r) }),
		handlers.WithOrderRoutes(func(r chi.Router) { orderHandlers.Routes(r) }),
		handlers.WithContactRoutes(func(r chi.Router) { contactHandlers.Routes(r) }),
		handlers.WithAdminRoutes(func(r chi.Router) { adminHandlers.Routes(r) }),
	)

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Router:   router,
		registry: registry,
		images:   images,
		events:   publisher,
	}, nil
}

// Handler exposes the assembled HTTP handler.
func (c *Container) Handler() http.Handler {
	return c.Router
}

// Close releases resources held by the container.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.events != nil {
		if err := c.events.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.images != nil {
		if err := c.images.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.registry != nil {
		if err := c.registry.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
