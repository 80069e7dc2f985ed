// Package bot is the chat front-end: a thin dispatch layer translating
// commands and callback queries into store operations. All protocol work
// stays inside the Telegram SDK; failures become chat messages, never
// crashes.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/premstore/storebot/internal/carts"
	"github.com/premstore/storebot/internal/catalog"
	"github.com/premstore/storebot/internal/deposits"
	"github.com/premstore/storebot/internal/models"
	"github.com/premstore/storebot/internal/orders"
	"github.com/premstore/storebot/internal/settings"
	"github.com/premstore/storebot/internal/users"
)

// sender is the slice of the Telegram client the handlers need. Tests swap
// in a recording fake.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Deps struct {
	Catalog  *catalog.Service
	Orders   *orders.Service
	Users    *users.Service
	Carts    *carts.Service
	Deposits *deposits.Service
	Settings *settings.Service
	AdminIDs []int64
	Logger   *slog.Logger
}

type Bot struct {
	api      *tgbotapi.BotAPI
	send     sender
	log      *slog.Logger
	catalog  *catalog.Service
	orders   *orders.Service
	users    *users.Service
	carts    *carts.Service
	deposits *deposits.Service
	settings *settings.Service
	adminIDs []int64
}

func New(token string, d *Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	b := newBot(d)
	b.api = api
	b.send = api
	return b, nil
}

func newBot(d *Deps) *Bot {
	l := d.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Bot{
		log:      l,
		catalog:  d.Catalog,
		orders:   d.Orders,
		users:    d.Users,
		carts:    d.Carts,
		deposits: d.Deposits,
		settings: d.Settings,
		adminIDs: d.AdminIDs,
	}
}

// Username reports the bot account name, empty when offline.
func (b *Bot) Username() string {
	if b.api == nil {
		return ""
	}
	return b.api.Self.UserName
}

// Run consumes the long-polling update stream until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.log.Info("bot started", "username", b.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, upd)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("update handler panic", "panic", fmt.Sprint(r))
		}
	}()

	switch {
	case upd.Message != nil && upd.Message.IsCommand():
		b.handleCommand(ctx, upd.Message)
	case upd.CallbackQuery != nil:
		b.handleCallback(ctx, upd.CallbackQuery)
	}
}

// NotifyOrderStatus implements the admin API's status notifier: the customer
// learns about the change in chat.
func (b *Bot) NotifyOrderStatus(ctx context.Context, o *models.Order) {
	b.reply(o.UserID, renderOrderStatusUpdate(o))
}

func (b *Bot) isAdmin(chatID int64) bool {
	for _, id := range b.adminIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.send.Send(msg); err != nil {
		b.log.Error("send failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) replyKB(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = kb
	if _, err := b.send.Send(msg); err != nil {
		b.log.Error("send failed", "chat_id", chatID, "error", err)
	}
}

// edit rewrites the message the callback came from, falling back to a fresh
// message for inline-mode queries without one.
func (b *Bot) edit(cq *tgbotapi.CallbackQuery, text string, kb tgbotapi.InlineKeyboardMarkup) {
	if cq.Message == nil {
		b.replyKB(cq.From.ID, text, kb)
		return
	}
	msg := tgbotapi.NewEditMessageTextAndMarkup(cq.Message.Chat.ID, cq.Message.MessageID, text, kb)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.send.Send(msg); err != nil {
		b.log.Error("edit failed", "chat_id", cq.Message.Chat.ID, "error", err)
	}
}

func (b *Bot) answer(cq *tgbotapi.CallbackQuery, text string) {
	if _, err := b.send.Request(tgbotapi.NewCallback(cq.ID, text)); err != nil {
		b.log.Error("answer callback failed", "error", err)
	}
}

func (b *Bot) alert(cq *tgbotapi.CallbackQuery, text string) {
	if _, err := b.send.Request(tgbotapi.NewCallbackWithAlert(cq.ID, text)); err != nil {
		b.log.Error("answer callback failed", "error", err)
	}
}
