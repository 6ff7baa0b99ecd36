package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/fenilmodi00/meabot-backend/models"
	"github.com/fenilmodi00/meabot-backend/services"
	"github.com/fenilmodi00/meabot-backend/shared"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// BotHandler dispatches Telegram updates. All listed data is read through
// the dataset cache.
type BotHandler struct {
	API           services.TelegramAPI
	Cache         *services.DatasetCache
	Recorder      *services.QuestionRecorder
	Conversations *services.ConversationState
	Metrics       *shared.Metrics
	logger        *logrus.Entry
}

func NewBotHandler(api services.TelegramAPI, cache *services.DatasetCache, recorder *services.QuestionRecorder,
	conversations *services.ConversationState, metrics *shared.Metrics) *BotHandler {
	return &BotHandler{
		API:           api,
		Cache:         cache,
		Recorder:      recorder,
		Conversations: conversations,
		Metrics:       metrics,
		logger:        logrus.WithField("component", "BotHandler"),
	}
}

// HandleUpdate processes a single update
func (h *BotHandler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		h.observe("callback")
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		h.observe("command")
		h.handleCommand(ctx, update.Message)
	case update.Message != nil && update.Message.Text != "":
		h.observe("message")
		h.handleText(ctx, update.Message)
	default:
		h.observe("ignored")
	}
}

func (h *BotHandler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	// Any command other than /ask abandons a pending question prompt.
	if msg.From != nil && msg.Command() != "ask" {
		h.Conversations.Cancel(msg.From.ID)
	}

	switch msg.Command() {
	case "start":
		h.reply(msg.Chat.ID, plainView(welcomeText), true)
	case "help":
		h.reply(msg.Chat.ID, plainView(helpText), true)
	case "list":
		h.reply(msg.Chat.ID, categoriesView(), true)
	case "discounts":
		h.reply(msg.Chat.ID, h.discounts(ctx), true)
	case "ask":
		if msg.From != nil {
			h.Conversations.ExpectQuestion(msg.From.ID)
		}
		h.reply(msg.Chat.ID, plainView(askPromptText), true)
	default:
		h.reply(msg.Chat.ID, plainView(fallbackText), false)
	}
}

func (h *BotHandler) handleText(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || !h.Conversations.TakeQuestion(msg.From.ID) {
		h.reply(msg.Chat.ID, plainView(fallbackText), false)
		return
	}

	if err := h.Recorder.Record(ctx, msg.From.ID, msg.From.UserName, msg.Text); err != nil {
		h.reply(msg.Chat.ID, plainView(questionFailedText), false)
		return
	}
	h.reply(msg.Chat.ID, plainView(questionRecordedText), true)
}

func (h *BotHandler) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := h.API.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		h.logger.WithError(err).Debug("Failed to answer callback query")
	}
	if query.Message == nil {
		return
	}

	h.edit(query.Message.Chat.ID, query.Message.MessageID, h.route(ctx, query.Data))
}

// route maps callback data to the screen it selects
func (h *BotHandler) route(ctx context.Context, data string) view {
	switch {
	case data == cbListExchanges, data == cbBackToExchangeList:
		return h.exchanges(ctx)
	case data == cbListInternships, data == cbBackToInternshipList:
		return h.internships(ctx)
	case data == cbListSummerSchools:
		return summerSchoolsView()
	case data == cbBackToList:
		return categoriesView()
	case data == cbBackToDiscounts:
		return h.discounts(ctx)
	case strings.HasPrefix(data, cbExchangePrefix):
		return h.exchangeDetail(ctx, data)
	case strings.HasPrefix(data, cbInternshipPrefix):
		return h.internshipDetail(ctx, data)
	case strings.HasPrefix(data, cbDiscountCategoryPrefix):
		return h.discountCategory(ctx, data)
	case strings.HasPrefix(data, cbDiscountPrefix):
		return h.discountDetail(ctx, data)
	default:
		return plainView(unknownActionText)
	}
}

func (h *BotHandler) exchanges(ctx context.Context) view {
	exchanges, err := h.Cache.Exchanges(ctx)
	if err != nil {
		return h.unavailable(err, models.DatasetExchanges)
	}
	return exchangesView(exchanges)
}

func (h *BotHandler) exchangeDetail(ctx context.Context, data string) view {
	exchanges, err := h.Cache.Exchanges(ctx)
	if err != nil {
		return h.unavailable(err, models.DatasetExchanges)
	}
	idx, err := services.ParseSelection(data, cbExchangePrefix, len(exchanges))
	if err != nil {
		return h.invalid(err)
	}
	return exchangeDetailView(exchanges[idx])
}

func (h *BotHandler) internships(ctx context.Context) view {
	internships, err := h.Cache.Internships(ctx)
	if err != nil {
		return h.unavailable(err, models.DatasetInternships)
	}
	return internshipsView(internships)
}

func (h *BotHandler) internshipDetail(ctx context.Context, data string) view {
	internships, err := h.Cache.Internships(ctx)
	if err != nil {
		return h.unavailable(err, models.DatasetInternships)
	}
	idx, err := services.ParseSelection(data, cbInternshipPrefix, len(internships))
	if err != nil {
		return h.invalid(err)
	}
	return internshipDetailView(internships[idx])
}

func (h *BotHandler) discounts(ctx context.Context) view {
	_, index, err := h.Cache.DiscountCatalog(ctx)
	if err != nil {
		return h.unavailable(err, models.DatasetDiscounts)
	}
	return discountsView(index.Sorted())
}

func (h *BotHandler) discountCategory(ctx context.Context, data string) view {
	discounts, index, err := h.Cache.DiscountCatalog(ctx)
	if err != nil {
		return h.unavailable(err, models.DatasetDiscounts)
	}
	groups := index.Sorted()
	idx, err := services.ParseSelection(data, cbDiscountCategoryPrefix, len(groups))
	if err != nil {
		return h.invalid(err)
	}
	return discountCategoryView(groups[idx], discounts)
}

func (h *BotHandler) discountDetail(ctx context.Context, data string) view {
	discounts, _, err := h.Cache.DiscountCatalog(ctx)
	if err != nil {
		return h.unavailable(err, models.DatasetDiscounts)
	}
	idx, err := services.ParseSelection(data, cbDiscountPrefix, len(discounts))
	if err != nil {
		return h.invalid(err)
	}
	return discountDetailView(discounts[idx])
}

func (h *BotHandler) unavailable(err error, dataset models.Dataset) view {
	h.logger.WithError(err).WithField("dataset", dataset).Warn("Dataset unavailable for bot view")
	return view{
		text:   unavailableText,
		markup: keyboard(buttonRow(cbBackToList, "« Back to Categories")),
	}
}

func (h *BotHandler) invalid(err error) view {
	if errors.Is(err, services.ErrInvalidSelection) {
		h.logger.WithError(err).Debug("Rejected menu selection")
	}
	return plainView(invalidSelection)
}

func (h *BotHandler) reply(chatID int64, v view, markdown bool) {
	msg := tgbotapi.NewMessage(chatID, v.text)
	if markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	msg.DisableWebPagePreview = v.noLinkPreview
	if v.markup != nil {
		msg.ReplyMarkup = *v.markup
	}
	if _, err := h.API.Send(msg); err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to send reply")
	}
}

func (h *BotHandler) edit(chatID int64, messageID int, v view) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, v.text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.DisableWebPagePreview = v.noLinkPreview
	edit.ReplyMarkup = v.markup
	if _, err := h.API.Send(edit); err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to edit message")
	}
}

func (h *BotHandler) observe(kind string) {
	if h.Metrics != nil {
		h.Metrics.BotUpdatesTotal.WithLabelValues(kind).Inc()
	}
}
