package affiliate

import (
	"github.com/nakmuayhub/platform/internal/affiliate/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("affiliate",
	fx.Provide(repository.Provide),
)
