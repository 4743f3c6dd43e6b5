package providers

import (
	"github.com/samber/do/v2"

	"github.com/baraza/baraza-server/internal/auth"
	"github.com/baraza/baraza-server/internal/logger"
	"github.com/baraza/baraza-server/internal/mail"
	"github.com/baraza/baraza-server/internal/service"
	"github.com/baraza/baraza-server/internal/validation"
)

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, v, log.Logger), nil
}

// ProvideUserService provides the user administration service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	dispatcher := do.MustInvoke[*DispatcherHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, dispatcher.Dispatcher, v, log.Logger), nil
}

// ProvideArticleService provides the article service.
func ProvideArticleService(i do.Injector) (*service.ArticleService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	indexSync := do.MustInvoke[*service.IndexSync](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewArticleService(storeHandle.Store, indexSync, indexHandle.SearchIndex, v, log.Logger), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return service.NewTagService(storeHandle.Store), nil
}

// ProvideCategoryService provides the category service.
func ProvideCategoryService(i do.Injector) (*service.CategoryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCategoryService(storeHandle.Store, v, log.Logger), nil
}

// ProvideNewsletterService provides the newsletter workflow service.
func ProvideNewsletterService(i do.Injector) (*service.NewsletterService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	mailer := do.MustInvoke[*mail.Mailer](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewNewsletterService(storeHandle.Store, mailer, v, log.Logger), nil
}

// ProvideSubscriberService provides the subscriber service.
func ProvideSubscriberService(i do.Injector) (*service.SubscriberService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSubscriberService(storeHandle.Store, v, log.Logger), nil
}
