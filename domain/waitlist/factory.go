package waitlist

import (
	"sync"

	"github.com/akeren/multiverse-waitlist/config/router"
	"github.com/akeren/multiverse-waitlist/internal/log"
	"gorm.io/gorm"
)

type WaitlistServiceFactory interface {
	CreateService() WaitlistService
	CreateController() *router.RESTController
}

// DefaultWaitlistServiceFactory hands out one shared service so the public
// and admin controllers use the same repository and circuit breaker.
type DefaultWaitlistServiceFactory struct {
	db     *gorm.DB
	logger *log.Logger
	config Config

	once    sync.Once
	service WaitlistService
}

func NewWaitlistServiceFactory(db *gorm.DB, logger *log.Logger, config Config) WaitlistServiceFactory {
	return &DefaultWaitlistServiceFactory{
		db:     db,
		logger: logger,
		config: config,
	}
}

func (f *DefaultWaitlistServiceFactory) CreateService() WaitlistService {
	f.once.Do(func() {
		f.service = NewWaitlistService(f.logger, NewWaitlistRepository(f.db))
	})
	return f.service
}

func (f *DefaultWaitlistServiceFactory) CreateController() *router.RESTController {
	return NewWaitlistController(f.CreateService(), f.config)
}
