//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"github.com/Duffman2k/duffvouchbot/internal"
	"github.com/Duffman2k/duffvouchbot/internal/bot"
	"github.com/Duffman2k/duffvouchbot/internal/controllers"
	"github.com/Duffman2k/duffvouchbot/internal/models"
	"github.com/Duffman2k/duffvouchbot/internal/providers"
	"github.com/Duffman2k/duffvouchbot/internal/scheduler"
	"github.com/Duffman2k/duffvouchbot/internal/services"
	"github.com/Duffman2k/duffvouchbot/internal/storage"
	"github.com/Duffman2k/duffvouchbot/internal/structures"
	"github.com/Duffman2k/duffvouchbot/internal/watermark"
	"github.com/bwmarrin/discordgo"
)

var discordSet = wire.NewSet(
	bot.NewSession,
	wire.Bind(new(bot.Session), new(*discordgo.Session)),
	bot.NewBroadcaster,
	wire.Bind(new(services.Broadcaster), new(*bot.Broadcaster)),
	bot.NewRoleGranter,
	wire.Bind(new(services.MembershipGranter), new(*bot.RoleGranter)),
	bot.NewModerationNotifier,
	wire.Bind(new(services.PendingNotifier), new(*bot.ModerationNotifier)),
	bot.NewBot,
)

var watermarkSet = wire.NewSet(
	watermark.NewFetcher,
	wire.Bind(new(watermark.AssetFetcher), new(*watermark.Fetcher)),
	watermark.NewCompositor,
	watermark.NewService,
	wire.Bind(new(services.Watermarker), new(*watermark.Service)),
)

var serviceSet = wire.NewSet(
	models.NewPendingQueue,
	services.NewPromotionEvaluator,
	wire.Bind(new(services.PromotionEvaluatorInterface), new(*services.PromotionEvaluator)),
	services.NewLedgerService,
	wire.Bind(new(services.LedgerServiceInterface), new(*services.LedgerService)),
	services.NewApprovalService,
	wire.Bind(new(services.ApprovalServiceInterface), new(*services.ApprovalService)),
	services.NewSubmissionService,
	wire.Bind(new(services.SubmissionServiceInterface), new(*services.SubmissionService)),
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewAssetCacheProvider,

		storage.NewRecordStore,
		storage.NewZstdCompressor,
		storage.NewSnapshotter,

		serviceSet,
		watermarkSet,
		discordSet,

		scheduler.NewScheduler,
		controllers.NewHealthController,
		controllers.NewModerationController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
