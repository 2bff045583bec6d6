package article

import (
	"github.com/nakmuayhub/platform/internal/article/repository"
	"github.com/nakmuayhub/platform/internal/article/service"
	"go.uber.org/fx"
)

var Module = fx.Module("article",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
