package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"time"

	"github.com/fenilmodi00/meabot-backend/jobs"
	"github.com/fenilmodi00/meabot-backend/services"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// UpdateHandler processes one Telegram update
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// WebhookHandler serves the public endpoints: Telegram webhook, the
// answer-check trigger and liveness checks
type WebhookHandler struct {
	Bot           UpdateHandler
	AnswerJob     *jobs.AnswerDeliveryJob
	BotToken      string
	TriggerSecret string
	UpdateTimeout time.Duration
}

func NewWebhookHandler(bot UpdateHandler, answerJob *jobs.AnswerDeliveryJob, botToken, triggerSecret string) *WebhookHandler {
	return &WebhookHandler{
		Bot:           bot,
		AnswerJob:     answerJob,
		BotToken:      botToken,
		TriggerSecret: triggerSecret,
		UpdateTimeout: 30 * time.Second,
	}
}

// Webhook accepts an update when the path token matches the bot token.
// It always answers 200 so Telegram does not redeliver.
func (h *WebhookHandler) Webhook(c *fiber.Ctx) error {
	if !secretMatches(c.Params("token"), h.BotToken) {
		logrus.WithField("ip", c.IP()).Warn("Webhook called with invalid token")
		return c.SendString("OK")
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(c.Body(), &update); err != nil {
		logrus.WithError(err).Warn("Failed to decode Telegram update")
		return c.SendString("OK")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.UpdateTimeout)
	defer cancel()
	h.Bot.HandleUpdate(ctx, update)

	return c.SendString("OK")
}

// TriggerCheckAnswers runs one reconciliation pass when the secret matches
func (h *WebhookHandler) TriggerCheckAnswers(c *fiber.Ctx) error {
	if !secretMatches(c.Query("secret"), h.TriggerSecret) {
		return c.Status(fiber.StatusForbidden).SendString("Forbidden")
	}

	logrus.Info("Answer check triggered via trigger endpoint")
	return runAnswerCheck(c, h.AnswerJob)
}

// KeepAlive is polled by the hosting platform to keep the process warm
func (h *WebhookHandler) KeepAlive(c *fiber.Ctx) error {
	return c.SendString("I am alive!")
}

func (h *WebhookHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

func runAnswerCheck(c *fiber.Ctx, job *jobs.AnswerDeliveryJob) error {
	startTime := time.Now()
	result, err := job.RunOnce(c.UserContext())
	if errors.Is(err, services.ErrReconciliationInProgress) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Check executed successfully.",
		"result":    result,
		"duration":  time.Since(startTime).String(),
		"timestamp": time.Now(),
	})
}

// secretMatches compares in constant time; an unset expected value never
// matches
func secretMatches(got, expected string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}
