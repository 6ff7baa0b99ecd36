package handlers

import (
	"github.com/fenilmodi00/meabot-backend/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// SetupRoutes registers every HTTP route on app
func SetupRoutes(app *fiber.App, webhook *WebhookHandler, admin *AdminHandler, metrics *shared.Metrics) {
	app.Get("/health", webhook.Health)
	app.Get("/keep_alive", webhook.KeepAlive)
	app.Post("/webhook/:token", webhook.Webhook)
	app.Get("/trigger_check_answers", webhook.TriggerCheckAnswers)

	if metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	}

	api := app.Group("/api/v1")

	adminGroup := api.Group("/admin", admin.RequireToken)
	adminGroup.Post("/cache/warmup", admin.WarmupCache)
	adminGroup.Post("/cache/:dataset/refresh", admin.RefreshDataset)
	adminGroup.Get("/cache/stats", admin.GetCacheStats)
	adminGroup.Post("/answers/check", admin.TriggerAnswerCheck)
}
