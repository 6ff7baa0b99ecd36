package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/fenilmodi00/meabot-backend/jobs"
	"github.com/fenilmodi00/meabot-backend/models"
	"github.com/fenilmodi00/meabot-backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AdminHandler struct {
	Cache         *services.DatasetCache
	Conversations *services.ConversationState
	AnswerJob     *jobs.AnswerDeliveryJob
	Token         string
}

func NewAdminHandler(cache *services.DatasetCache, conversations *services.ConversationState,
	answerJob *jobs.AnswerDeliveryJob, token string) *AdminHandler {
	return &AdminHandler{
		Cache:         cache,
		Conversations: conversations,
		AnswerJob:     answerJob,
		Token:         token,
	}
}

// RequireToken rejects requests without a matching bearer token
func (h *AdminHandler) RequireToken(c *fiber.Ctx) error {
	token := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if !secretMatches(token, h.Token) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized",
		})
	}
	return c.Next()
}

// WarmupCache force-fetches every dataset
func (h *AdminHandler) WarmupCache(c *fiber.Ctx) error {
	logrus.Info("Cache warmup triggered via admin endpoint")
	startTime := time.Now()

	if err := h.Cache.Warmup(c.UserContext()); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
			"stats":   h.Cache.Stats(),
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Cache warmed up",
		"duration": time.Since(startTime).String(),
		"stats":    h.Cache.Stats(),
	})
}

// RefreshDataset force-fetches a single dataset
func (h *AdminHandler) RefreshDataset(c *fiber.Ctx) error {
	dataset, err := models.ParseDataset(c.Params("dataset"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	records, err := h.Cache.Refresh(c.UserContext(), dataset)
	if err != nil {
		status := fiber.StatusBadGateway
		if errors.Is(err, services.ErrUnknownDataset) {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"dataset": dataset,
		"records": len(records),
	})
}

func (h *AdminHandler) GetCacheStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":               true,
		"cache":                 h.Cache.Stats(),
		"pending_conversations": h.Conversations.Pending(),
	})
}

// TriggerAnswerCheck manually runs the answer delivery job
func (h *AdminHandler) TriggerAnswerCheck(c *fiber.Ctx) error {
	logrus.Info("Manual answer check triggered via admin endpoint")
	return runAnswerCheck(c, h.AnswerJob)
}
