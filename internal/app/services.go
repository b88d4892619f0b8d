package app

import (
	"go.uber.org/fx"

	"github.com/journihealth/journi_backend/config"
	"github.com/journihealth/journi_backend/internal/mailer"
	"github.com/journihealth/journi_backend/internal/repository"
	"github.com/journihealth/journi_backend/internal/service/auth"
	"github.com/journihealth/journi_backend/internal/service/owner"
	"github.com/journihealth/journi_backend/internal/service/patient"
	"github.com/journihealth/journi_backend/internal/service/practice"
	"github.com/journihealth/journi_backend/internal/service/session"
	"github.com/journihealth/journi_backend/internal/service/staff"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideAuthService,
		ProvideOwnerService,
		ProvidePracticeService,
		ProvideStaffService,
		ProvidePatientService,
		ProvideSessionService,
	),
)

func ProvideAuthService(repos *repository.Repositories, mail mailer.Queue, cfg *config.Config) auth.Service {
	return auth.New(repos, mail, cfg)
}

func ProvideOwnerService(repos *repository.Repositories, cfg *config.Config) owner.Service {
	return owner.New(repos, cfg)
}

func ProvidePracticeService(repos *repository.Repositories) practice.Service {
	return practice.New(repos)
}

func ProvideStaffService(repos *repository.Repositories, mail mailer.Queue, cfg *config.Config) staff.Service {
	return staff.New(repos, mail, cfg)
}

func ProvidePatientService(repos *repository.Repositories) patient.Service {
	return patient.New(repos)
}

func ProvideSessionService(repos *repository.Repositories) session.Service {
	return session.New(repos)
}
