package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/nakmuayhub/platform/internal/affiliate"
	"github.com/nakmuayhub/platform/internal/article"
	"github.com/nakmuayhub/platform/internal/booking"
	"github.com/nakmuayhub/platform/internal/clock"
	"github.com/nakmuayhub/platform/internal/config"
	"github.com/nakmuayhub/platform/internal/dispatcher"
	"github.com/nakmuayhub/platform/internal/logger"
	"github.com/nakmuayhub/platform/internal/mailqueue"
	"github.com/nakmuayhub/platform/internal/migration"
	"github.com/nakmuayhub/platform/internal/notification"
	"github.com/nakmuayhub/platform/internal/order"
	"github.com/nakmuayhub/platform/internal/payment"
	"github.com/nakmuayhub/platform/internal/providers/email"
	"github.com/nakmuayhub/platform/internal/providers/pdf"
	"github.com/nakmuayhub/platform/internal/report"
	"github.com/nakmuayhub/platform/internal/server"
	"github.com/nakmuayhub/platform/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		email.Module,
		pdf.Module,

		// functional domains
		payment.Module,
		booking.Module,
		order.Module,
		affiliate.Module,
		notification.Module,
		mailqueue.Module,
		article.Module,
		report.Module,
		dispatcher.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
