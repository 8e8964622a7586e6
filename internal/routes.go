package internal

import (
	"net/http"

	"github.com/Duffman2k/duffvouchbot/internal/controllers"
	"github.com/Duffman2k/duffvouchbot/internal/providers"
)

func InitRoutes(moderationController *controllers.ModerationController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/pending", http.HandlerFunc(moderationController.Pending))
	routers.Get("/activity", http.HandlerFunc(moderationController.Activity))
	return routers
}
