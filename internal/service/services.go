package service

import (
	"github.com/dom/jbf-storefront/internal/config"
	"github.com/dom/jbf-storefront/internal/denylist"
	"github.com/dom/jbf-storefront/internal/limiter"
	"github.com/dom/jbf-storefront/internal/repository"
	"go.uber.org/zap"
)

// Dependencies are the collaborators that live outside the database.
type Dependencies struct {
	Denylist  denylist.Store
	Limiter   limiter.Limiter
	Notifier  Notifier
	Publisher EventPublisher
	Logger    *zap.Logger
}

type Services struct {
	Auth     *AuthService
	Tokens   *TokenService
	Category *CategoryService
	Product  *ProductService
	Contact  *ContactService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, deps Dependencies) *Services {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tokens := NewTokenService(cfg.JWTSecret, cfg.TokenTTL(), deps.Denylist, logger.Named("tokens"))
	return &Services{
		Auth:     NewAuthService(repos.Admin, tokens, deps.Limiter, logger.Named("auth")),
		Tokens:   tokens,
		Category: NewCategoryService(repos.Category, logger.Named("categories")),
		Product:  NewProductService(repos.Product, repos.Category, logger.Named("products")),
		Contact:  NewContactService(repos.Contact, deps.Notifier, deps.Publisher, cfg.MailTimeout, logger.Named("contacts")),
	}
}
