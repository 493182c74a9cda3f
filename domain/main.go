package domain

import (
	"github.com/akeren/multiverse-waitlist/config"
	"github.com/akeren/multiverse-waitlist/domain/admin"
	"github.com/akeren/multiverse-waitlist/domain/monitoring"
	"github.com/akeren/multiverse-waitlist/domain/waitlist"
	"github.com/akeren/multiverse-waitlist/pkg/auth"
)

func SetupCoreDomain(appConfig *config.ApplicationConfig) error {
	rs := appConfig.RouterService

	rs.MountController(monitoring.NewMonitoringControllerFactory(appConfig.DB, appConfig.Logger, appConfig.Cache).CreateController())

	waitlistFactory := waitlist.NewWaitlistServiceFactory(appConfig.DB, appConfig.Logger, waitlist.Config{
		SubmitRateLimit:  appConfig.Waitlist.SubmitRateLimit,
		GeoCountryHeader: appConfig.Waitlist.GeoCountryHeader,
		GeoCityHeader:    appConfig.Waitlist.GeoCityHeader,
	})
	rs.MountController(waitlistFactory.CreateController())

	adminFactory, err := admin.NewAdminServiceFactory(appConfig.Logger, admin.Config{
		Password:       appConfig.Admin.Password,
		PasswordHash:   appConfig.Admin.PasswordHash,
		TokenSecret:    appConfig.Admin.TokenSecret,
		TokenTTL:       appConfig.Admin.TokenTTL,
		LoginRateLimit: appConfig.Admin.LoginRateLimit,
	}, newDenylist(appConfig))
	if err != nil {
		return err
	}
	rs.MountController(adminFactory.CreateAuthController())
	rs.MountController(adminFactory.CreateAdminController(waitlistFactory.CreateService()))

	return nil
}

// newDenylist keeps revocations in Redis when it is configured so they hold across instances.
func newDenylist(appConfig *config.ApplicationConfig) auth.Denylist {
	if appConfig.Cache != nil {
		appConfig.Logger.Info("Admin token revocations stored in cache")
		return auth.NewCacheDenylist(appConfig.Cache)
	}
	appConfig.Logger.Info("Admin token revocations stored in memory")
	return auth.NewMemoryDenylist()
}
