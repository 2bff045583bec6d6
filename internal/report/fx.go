package report

import (
	"github.com/nakmuayhub/platform/internal/report/repository"
	"github.com/nakmuayhub/platform/internal/report/service"
	"go.uber.org/fx"
)

var Module = fx.Module("report",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
