// Package di provides dependency injection configuration for the Baraza server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/baraza/baraza-server/internal/auth"
	"github.com/baraza/baraza-server/internal/config"
	"github.com/baraza/baraza-server/internal/di/providers"
	"github.com/baraza/baraza-server/internal/logger"
	"github.com/baraza/baraza-server/internal/mail"
	"github.com/baraza/baraza-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideIndexSync)

	// Mail and events
	do.Provide(injector, providers.ProvideMailSender)
	do.Provide(injector, providers.ProvideMailer)
	do.Provide(injector, providers.ProvideDispatcher)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideArticleService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideCategoryService)
	do.Provide(injector, providers.ProvideNewsletterService)
	do.Provide(injector, providers.ProvideSubscriberService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*service.IndexSync](injector)
	_ = do.MustInvoke[*mail.Mailer](injector)
	_ = do.MustInvoke[*providers.DispatcherHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.UserService](injector)
	_ = do.MustInvoke[*service.ArticleService](injector)
	_ = do.MustInvoke[*service.TagService](injector)
	_ = do.MustInvoke[*service.CategoryService](injector)
	_ = do.MustInvoke[*service.NewsletterService](injector)
	_ = do.MustInvoke[*service.SubscriberService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Trigger search reindex if needed
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
