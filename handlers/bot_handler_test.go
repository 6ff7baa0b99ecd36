package handlers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fenilmodi00/meabot-backend/models"
	"github.com/fenilmodi00/meabot-backend/services"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeTelegramAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeTelegramAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegramAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeTelegramAPI) lastText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("nothing was sent")
	}
	switch c := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		return c.Text
	case tgbotapi.EditMessageTextConfig:
		return c.Text
	default:
		t.Fatalf("unexpected chattable %T", c)
		return ""
	}
}

func (f *fakeTelegramAPI) lastButtons(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	var markup *tgbotapi.InlineKeyboardMarkup
	switch c := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		if m, ok := c.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); ok {
			markup = &m
		}
	case tgbotapi.EditMessageTextConfig:
		markup = c.ReplyMarkup
	}
	if markup == nil {
		return nil
	}

	var data []string
	for _, row := range markup.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData != nil {
				data = append(data, *b.CallbackData)
			}
		}
	}
	return data
}

type memoryStore struct {
	mu       sync.Mutex
	appended [][]interface{}
	fail     bool
}

func (s *memoryStore) Get(ctx context.Context, rangeName string) ([][]string, error) {
	return nil, nil
}

func (s *memoryStore) Append(ctx context.Context, rangeName string, row []interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sheets: 503 unavailable")
	}
	s.appended = append(s.appended, row)
	return nil
}

func (s *memoryStore) Update(ctx context.Context, cell string, value interface{}) error {
	return nil
}

func staticSource(dataset models.Dataset, schema models.Schema, rows [][]string, err error) services.DatasetSource {
	return services.DatasetSource{
		Dataset: dataset,
		TTL:     time.Minute,
		Fetch: func(ctx context.Context) ([]models.Record, error) {
			if err != nil {
				return nil, err
			}
			return services.MapRows(schema, rows), nil
		},
	}
}

func newTestBot(t *testing.T, exchangesErr error) (*BotHandler, *fakeTelegramAPI, *memoryStore) {
	t.Helper()

	cache := services.NewDatasetCache(nil, nil,
		staticSource(models.DatasetExchanges, models.ExchangeSchema, [][]string{
			{"Erasmus+", "TU Munich", "Year 2+", "1 Feb", "1 Mar", "1 semester", "https://example.org/erasmus"},
			{"Global E3", "KAIST", "All", "10 Jan", "20 Feb", "1 year", "https://example.org/e3"},
		}, exchangesErr),
		staticSource(models.DatasetInternships, models.InternshipSchema, nil, nil),
		staticSource(models.DatasetDiscounts, models.DiscountSchema, [][]string{
			{"Jasyl coffee", "Coffee & Tea", "10%", "Dostyk 13", "Only for drinks", "@jasylcoffee"},
			{"Arti Laser", "Beauty", "25%", "Bokeikhan 38", "", "@arti_laser"},
			{"Teadot", "coffee and tea", "10%", "Konaev 14/2\nTauelsizdik 34/2", "", "@teadot"},
			{"Dodo Pizza", "", "10% - 15%", "All branches", "", "@dodo"},
		}, nil),
	)

	api := &fakeTelegramAPI{}
	store := &memoryStore{}
	recorder := services.NewQuestionRecorder(store, "Questions!A2:F", nil, nil)
	conversations := services.NewConversationState(time.Minute, nil)
	return NewBotHandler(api, cache, recorder, conversations, nil), api, store
}

func commandUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, UserName: "student"},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(strings.Fields(text)[0])},
		},
	}}
}

func textUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, UserName: "student"},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}}
}

func callbackUpdate(userID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{MessageID: 10, Chat: &tgbotapi.Chat{ID: userID}},
		Data:    data,
	}}
}

func TestStartAndHelpCommands(t *testing.T) {
	bot, api, _ := newTestBot(t, nil)
	ctx := context.Background()

	bot.HandleUpdate(ctx, commandUpdate(1, "/start"))
	if !strings.Contains(api.lastText(t), "Welcome to the MEA bot") {
		t.Error("expected welcome text")
	}

	bot.HandleUpdate(ctx, commandUpdate(1, "/help"))
	if !strings.Contains(api.lastText(t), "Bot Guide") {
		t.Error("expected help text")
	}
}

func TestListCommandShowsCategories(t *testing.T) {
	bot, api, _ := newTestBot(t, nil)

	bot.HandleUpdate(context.Background(), commandUpdate(1, "/list"))
	buttons := api.lastButtons(t)
	want := []string{cbListExchanges, cbListInternships, cbListSummerSchools, cbBackToDiscounts}
	if strings.Join(buttons, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, buttons)
	}
}

func TestExchangeCallbacks(t *testing.T) {
	bot, api, _ := newTestBot(t, nil)
	ctx := context.Background()

	bot.HandleUpdate(ctx, callbackUpdate(1, cbListExchanges))
	if len(api.requests) != 1 {
		t.Errorf("expected callback to be answered, got %d requests", len(api.requests))
	}
	buttons := api.lastButtons(t)
	if len(buttons) != 3 || buttons[0] != "exchange_0" || buttons[1] != "exchange_1" {
		t.Errorf("unexpected exchange buttons %v", buttons)
	}

	bot.HandleUpdate(ctx, callbackUpdate(1, "exchange_1"))
	text := api.lastText(t)
	if !strings.Contains(text, "Global E3") || !strings.Contains(text, "KAIST") {
		t.Errorf("unexpected detail text %q", text)
	}

	bot.HandleUpdate(ctx, callbackUpdate(1, "exchange_9"))
	if api.lastText(t) != invalidSelection {
		t.Errorf("expected invalid selection, got %q", api.lastText(t))
	}

	bot.HandleUpdate(ctx, callbackUpdate(1, "exchange_x"))
	if api.lastText(t) != invalidSelection {
		t.Errorf("expected invalid selection, got %q", api.lastText(t))
	}
}

func TestExchangesUnavailable(t *testing.T) {
	bot, api, _ := newTestBot(t, errors.New("sheets: 500"))

	bot.HandleUpdate(context.Background(), callbackUpdate(1, cbListExchanges))
	if api.lastText(t) != unavailableText {
		t.Errorf("expected unavailable text, got %q", api.lastText(t))
	}
}

func TestInternshipsEmpty(t *testing.T) {
	bot, api, _ := newTestBot(t, nil)

	bot.HandleUpdate(context.Background(), callbackUpdate(1, cbListInternships))
	if api.lastText(t) != noInternshipsText {
		t.Errorf("expected empty internships text, got %q", api.lastText(t))
	}
}

func TestDiscountNavigation(t *testing.T) {
	bot, api, _ := newTestBot(t, nil)
	ctx := context.Background()

	bot.HandleUpdate(ctx, commandUpdate(1, "/discounts"))
	buttons := api.lastButtons(t)
	// Beauty, Coffee & Tea, Uncategorized, main menu
	if len(buttons) != 4 || buttons[3] != cbBackToList {
		t.Fatalf("unexpected discount category buttons %v", buttons)
	}

	bot.HandleUpdate(ctx, callbackUpdate(1, "discount_category_1"))
	text := api.lastText(t)
	if !strings.Contains(text, "Coffee & Tea") {
		t.Errorf("expected coffee category, got %q", text)
	}
	buttons = api.lastButtons(t)
	if strings.Join(buttons, ",") != "discount_0,discount_2,"+cbBackToDiscounts {
		t.Errorf("unexpected organization buttons %v", buttons)
	}

	bot.HandleUpdate(ctx, callbackUpdate(1, "discount_2"))
	text = api.lastText(t)
	if !strings.Contains(text, "Teadot") || !strings.Contains(text, "➖ Tauelsizdik 34/2") {
		t.Errorf("unexpected discount detail %q", text)
	}

	bot.HandleUpdate(ctx, callbackUpdate(1, "discount_category_7"))
	if api.lastText(t) != invalidSelection {
		t.Errorf("expected invalid selection, got %q", api.lastText(t))
	}
}

func TestUnknownCallback(t *testing.T) {
	bot, api, _ := newTestBot(t, nil)

	bot.HandleUpdate(context.Background(), callbackUpdate(1, "something_else"))
	if api.lastText(t) != unknownActionText {
		t.Errorf("expected unknown action, got %q", api.lastText(t))
	}
}

func TestAskFlowRecordsNextMessage(t *testing.T) {
	bot, api, store := newTestBot(t, nil)
	ctx := context.Background()

	bot.HandleUpdate(ctx, textUpdate(5, "hello"))
	if api.lastText(t) != fallbackText || len(store.appended) != 0 {
		t.Fatal("text without /ask must not be recorded")
	}

	bot.HandleUpdate(ctx, commandUpdate(5, "/ask"))
	bot.HandleUpdate(ctx, textUpdate(5, "When do applications open?"))

	if len(store.appended) != 1 {
		t.Fatalf("expected one recorded question, got %d", len(store.appended))
	}
	row := store.appended[0]
	if row[1] != int64(5) || row[2] != "student" || row[3] != "When do applications open?" {
		t.Errorf("unexpected recorded row %v", row)
	}
	if api.lastText(t) != questionRecordedText {
		t.Errorf("expected confirmation, got %q", api.lastText(t))
	}

	bot.HandleUpdate(ctx, textUpdate(5, "follow up"))
	if len(store.appended) != 1 {
		t.Error("only the first message after /ask is recorded")
	}
}

func TestAskFlowReportsRecordFailure(t *testing.T) {
	bot, api, store := newTestBot(t, nil)
	store.fail = true
	ctx := context.Background()

	bot.HandleUpdate(ctx, commandUpdate(5, "/ask"))
	bot.HandleUpdate(ctx, textUpdate(5, "Question"))
	if api.lastText(t) != questionFailedText {
		t.Errorf("expected failure text, got %q", api.lastText(t))
	}
}

func TestOtherCommandAbandonsAskPrompt(t *testing.T) {
	bot, api, store := newTestBot(t, nil)
	ctx := context.Background()

	bot.HandleUpdate(ctx, commandUpdate(5, "/ask"))
	bot.HandleUpdate(ctx, commandUpdate(5, "/list"))
	bot.HandleUpdate(ctx, textUpdate(5, "hi there"))

	if len(store.appended) != 0 {
		t.Fatalf("text after /list must not be recorded, got %v", store.appended)
	}
	if api.lastText(t) != fallbackText {
		t.Errorf("expected fallback reply, got %q", api.lastText(t))
	}

	bot.HandleUpdate(ctx, commandUpdate(5, "/ask"))
	bot.HandleUpdate(ctx, textUpdate(5, "real question"))
	if len(store.appended) != 1 || store.appended[0][3] != "real question" {
		t.Errorf("expected question after a fresh /ask, got %v", store.appended)
	}
}
