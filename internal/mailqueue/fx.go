package mailqueue

import (
	"github.com/nakmuayhub/platform/internal/mailqueue/repository"
	"github.com/nakmuayhub/platform/internal/mailqueue/service"
	"go.uber.org/fx"
)

var Module = fx.Module("mailqueue",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
