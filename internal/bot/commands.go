package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"github.com/premstore/storebot/internal/orders"
)

func (b *Bot) handleCommand(ctx context.Context, m *tgbotapi.Message) {
	if m.From == nil {
		return
	}
	chatID := m.Chat.ID
	l := b.log.With("command", m.Command(), "chat_id", chatID)

	u, err := b.users.GetOrCreate(ctx, m.From.ID, m.From.FirstName, m.From.UserName)
	if err != nil {
		l.Error("user lookup failed", "error", err)
		b.reply(chatID, msgStoreClosed)
		return
	}

	switch m.Command() {
	case "start":
		cfg, err := b.settings.Get(ctx)
		if err != nil {
			l.Error("settings load failed", "error", err)
			b.reply(chatID, msgStoreClosed)
			return
		}
		b.replyKB(chatID, renderWelcome(cfg, u), mainMenuKeyboard())

	case "help":
		b.reply(chatID, renderHelp())

	case "balance":
		b.replyKB(chatID, renderBalance(u), balanceKeyboard())

	case "deposit":
		b.commandDeposit(ctx, m, chatID)

	case "products", "catalog":
		b.showCatalog(ctx, chatID, nil)

	case "stock":
		list, err := b.catalog.List(ctx)
		if err != nil {
			l.Error("catalog load failed", "error", err)
			b.reply(chatID, msgStoreClosed)
			return
		}
		b.reply(chatID, renderStock(list))

	case "orders":
		b.showOrders(ctx, chatID, m.From.ID)

	case "leaderboard":
		top, err := b.users.TopSpenders(ctx, 10)
		if err != nil {
			l.Error("leaderboard load failed", "error", err)
			b.reply(chatID, msgStoreClosed)
			return
		}
		b.reply(chatID, renderLeaderboard(top))

	default:
		b.reply(chatID, "Unknown command. Try /help.")
	}
}

func (b *Bot) commandDeposit(ctx context.Context, m *tgbotapi.Message, chatID int64) {
	args := strings.TrimSpace(m.CommandArguments())
	if args == "" {
		b.replyKB(chatID, msgDepositPrompt, depositAmountsKeyboard())
		return
	}

	amount, err := decimal.NewFromString(args)
	if err != nil {
		b.reply(chatID, "That doesn't look like an amount. Example: /deposit 50")
		return
	}
	b.startDeposit(ctx, chatID, m.From.ID, amount)
}

// startDeposit opens a pending deposit and sends payment instructions. Shared
// between the /deposit command and the amount buttons.
func (b *Bot) startDeposit(ctx context.Context, chatID, userID int64, amount decimal.Decimal) {
	cfg, err := b.settings.Get(ctx)
	if err != nil {
		b.log.Error("settings load failed", "error", err)
		b.reply(chatID, msgStoreClosed)
		return
	}

	d, err := b.deposits.Create(ctx, userID, amount, "manual")
	if err != nil {
		b.reply(chatID, friendlyError(err))
		return
	}
	b.replyKB(chatID, renderDepositInstructions(d, cfg), proofKeyboard(d.ID))
}

func (b *Bot) showCatalog(ctx context.Context, chatID int64, cq *tgbotapi.CallbackQuery) {
	cats, err := b.catalog.Categories(ctx)
	if err != nil {
		b.log.Error("catalog load failed", "error", err)
		b.reply(chatID, msgStoreClosed)
		return
	}
	if len(cats) == 0 {
		b.reply(chatID, "The catalog is empty right now. Check back soon!")
		return
	}

	text := "🛍 *Catalog*\n\nPick a category:"
	kb := categoriesKeyboard(cats)
	if cq != nil {
		b.edit(cq, text, kb)
	} else {
		b.replyKB(chatID, text, kb)
	}
}

func (b *Bot) showOrders(ctx context.Context, chatID, userID int64) {
	list, err := b.orders.List(ctx, orders.Filter{UserID: userID})
	if err != nil {
		b.log.Error("orders load failed", "error", err)
		b.reply(chatID, msgStoreClosed)
		return
	}
	b.reply(chatID, renderOrders(list))
}
