package admin

import (
	"fmt"
	"time"

	"github.com/akeren/multiverse-waitlist/config/router"
	"github.com/akeren/multiverse-waitlist/domain/waitlist"
	"github.com/akeren/multiverse-waitlist/internal/log"
	"github.com/akeren/multiverse-waitlist/pkg/auth"
)

// Config is the admin login configuration as loaded from the environment.
type Config struct {
	Password       string
	PasswordHash   string
	TokenSecret    string
	TokenTTL       time.Duration
	LoginRateLimit int
}

type AdminServiceFactory interface {
	CreateService() AdminService
	CreateAuthController() *router.RESTController
	CreateAdminController(entries waitlist.WaitlistService) *router.RESTController
}

type DefaultAdminServiceFactory struct {
	config  Config
	service AdminService
}

// NewAdminServiceFactory builds the token issuer eagerly so a bad TTL fails at startup.
func NewAdminServiceFactory(logger *log.Logger, config Config, denylist auth.Denylist) (AdminServiceFactory, error) {
	issuer, err := auth.NewTokenIssuer(config.TokenSecret, config.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("admin: %w", err)
	}
	if denylist == nil {
		denylist = auth.NewMemoryDenylist()
	}

	verifier := auth.NewSharedSecretVerifier(config.Password, config.PasswordHash)

	return &DefaultAdminServiceFactory{
		config:  config,
		service: NewAdminService(logger, verifier, issuer, denylist),
	}, nil
}

func (f *DefaultAdminServiceFactory) CreateService() AdminService {
	return f.service
}

func (f *DefaultAdminServiceFactory) CreateAuthController() *router.RESTController {
	return NewAuthController(f.service, f.config.LoginRateLimit)
}

func (f *DefaultAdminServiceFactory) CreateAdminController(entries waitlist.WaitlistService) *router.RESTController {
	return NewAdminController(f.service, entries)
}
