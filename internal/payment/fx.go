package payment

import (
	"github.com/nakmuayhub/platform/internal/payment/repository"
	"github.com/nakmuayhub/platform/internal/payment/webhook"
	"go.uber.org/fx"
)

var Module = fx.Module("payment",
	fx.Provide(repository.Provide),
	fx.Provide(webhook.New),
)
