package bot

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"github.com/premstore/storebot/internal/models"
	"github.com/premstore/storebot/internal/storage"
	"github.com/premstore/storebot/internal/store"
)

const (
	msgStoreClosed   = "😔 The store is temporarily unavailable. Please try again in a minute."
	msgDepositPrompt = "💳 *Top up your balance*\n\nPick an amount or type one, e.g. `/deposit 75`:"
)

var statusEmojis = map[string]string{
	models.OrderStatusPending:   "⏳",
	models.OrderStatusConfirmed: "✅",
	models.OrderStatusShipped:   "🚚",
	models.OrderStatusDelivered: "📦",
	models.OrderStatusCancelled: "❌",
}

func statusEmoji(status string) string {
	if e, ok := statusEmojis[status]; ok {
		return e
	}
	return "❔"
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// friendlyError turns a service error into something a customer can read.
func friendlyError(err error) string {
	switch {
	case errors.Is(err, store.ErrValidation):
		return "⚠️ " + detail(err, store.ErrValidation)
	case errors.Is(err, store.ErrConflict):
		return "⚠️ " + detail(err, store.ErrConflict)
	case errors.Is(err, store.ErrNotFound):
		return "This item is no longer available."
	case errors.Is(err, store.ErrInsufficientFunds):
		return "💸 Not enough balance: " + detail(err, store.ErrInsufficientFunds) + ". Top up with /deposit."
	case errors.Is(err, storage.ErrUnavailable):
		return msgStoreClosed
	default:
		return "Something went wrong. Please try again."
	}
}

// detail strips the error-kind prefix so chat messages read naturally.
func detail(err, kind error) string {
	if rest, ok := strings.CutPrefix(err.Error(), kind.Error()+": "); ok {
		return rest
	}
	return err.Error()
}

func renderWelcome(cfg *models.Settings, u *models.User) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👋 Welcome to *%s*, %s!\n\n", cfg.StoreName, u.FirstName)
	sb.WriteString(cfg.WelcomeMessage)
	fmt.Fprintf(&sb, "\n\n💰 Balance: %s\n", money(u.Balance))
	if cfg.SupportContact != "" {
		fmt.Fprintf(&sb, "🆘 Support: %s\n", cfg.SupportContact)
	}
	sb.WriteString("\nUse the buttons below or /help for commands.")
	return sb.String()
}

func renderHelp() string {
	return strings.Join([]string{
		"*Commands*",
		"",
		"/start — main menu",
		"/products — browse the catalog",
		"/balance — your balance and stats",
		"/deposit [amount] — top up your balance",
		"/orders — your order history",
		"/stock — current stock levels",
		"/leaderboard — top customers",
		"/help — this message",
	}, "\n")
}

func renderBalance(u *models.User) string {
	var sb strings.Builder
	sb.WriteString("💰 *Your balance*\n\n")
	fmt.Fprintf(&sb, "Available: %s\n", money(u.Balance))
	fmt.Fprintf(&sb, "Total deposited: %s\n", money(u.TotalDeposited))
	fmt.Fprintf(&sb, "Total spent: %s\n", money(u.TotalSpent))
	fmt.Fprintf(&sb, "Orders placed: %d", u.OrderCount)
	return sb.String()
}

func renderStock(list []models.Product) string {
	if len(list) == 0 {
		return "The catalog is empty right now."
	}
	var sb strings.Builder
	sb.WriteString("📊 *Stock levels*\n")
	for _, p := range list {
		fmt.Fprintf(&sb, "\n• %s: %d", p.Name, p.Stock)
		for _, v := range p.Variants {
			fmt.Fprintf(&sb, "\n    %s: %d", v.Name, v.Stock)
		}
	}
	return sb.String()
}

func renderOrders(list []models.Order) string {
	if len(list) == 0 {
		return "You haven't ordered anything yet. Browse /products to get started!"
	}
	var sb strings.Builder
	sb.WriteString("🧾 *Your orders*\n")
	for _, o := range list {
		fmt.Fprintf(&sb, "\n%s *%s* — %s\n", statusEmoji(o.Status), o.OrderNumber, money(o.Total))
		parts := make([]string, 0, len(o.Items))
		for _, it := range o.Items {
			name := it.ProductName
			if it.Variant != "" {
				name += " (" + it.Variant + ")"
			}
			parts = append(parts, fmt.Sprintf("%d× %s", it.Quantity, name))
		}
		fmt.Fprintf(&sb, "   %s\n", strings.Join(parts, ", "))
		fmt.Fprintf(&sb, "   %s, %s\n", o.Status, o.CreatedAt.Format("2 Jan 2006"))
	}
	return sb.String()
}

func renderLeaderboard(top []models.User) string {
	if len(top) == 0 {
		return "No purchases yet. Be the first on the board!"
	}
	medals := []string{"🥇", "🥈", "🥉"}
	var sb strings.Builder
	sb.WriteString("🏆 *Top customers*\n\n")
	for i, u := range top {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		name := u.FirstName
		if u.Username != "" {
			name = "@" + u.Username
		}
		fmt.Fprintf(&sb, "%s %s — %s (%d orders)\n", rank, name, money(u.TotalSpent), u.OrderCount)
	}
	return sb.String()
}

func renderProductCard(p *models.Product) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s*\n\n", p.Name)
	if p.Description != "" {
		sb.WriteString(p.Description + "\n\n")
	}
	if len(p.Variants) > 0 {
		sb.WriteString("Choose an option:")
		return sb.String()
	}
	fmt.Fprintf(&sb, "💵 Price: %s\n", money(p.Price))
	if p.Stock > 0 {
		fmt.Fprintf(&sb, "📦 In stock: %d", p.Stock)
	} else {
		sb.WriteString("📦 Out of stock")
	}
	return sb.String()
}

func renderVariantCard(p *models.Product, v *models.Variant) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s — %s*\n\n", p.Name, v.Name)
	fmt.Fprintf(&sb, "💵 Price: %s\n", money(v.Price))
	if v.Stock > 0 {
		fmt.Fprintf(&sb, "📦 In stock: %d", v.Stock)
	} else {
		sb.WriteString("📦 Out of stock")
	}
	return sb.String()
}

func renderCart(lines []cartLine, total decimal.Decimal) string {
	var sb strings.Builder
	sb.WriteString("🛒 *Your cart*\n\n")
	for i, ln := range lines {
		if ln.Unavailable {
			fmt.Fprintf(&sb, "%d. %s ×%d — unavailable\n", i+1, ln.Name, ln.Quantity)
			continue
		}
		fmt.Fprintf(&sb, "%d. %s ×%d — %s\n", i+1, ln.Name, ln.Quantity, money(ln.LineTotal))
	}
	fmt.Fprintf(&sb, "\nTotal: *%s*", money(total))
	return sb.String()
}

func renderCheckout(lines []cartLine, total decimal.Decimal) string {
	var sb strings.Builder
	sb.WriteString("🧾 *Order summary*\n\n")
	for _, ln := range lines {
		fmt.Fprintf(&sb, "%s ×%d — %s\n", ln.Name, ln.Quantity, money(ln.LineTotal))
	}
	fmt.Fprintf(&sb, "\nTotal: *%s*\n\nConfirm to pay from your balance.", money(total))
	return sb.String()
}

func renderOrderConfirmation(o *models.Order) string {
	var sb strings.Builder
	sb.WriteString("🎉 *Order placed!*\n\n")
	fmt.Fprintf(&sb, "Order *%s*\n", o.OrderNumber)
	fmt.Fprintf(&sb, "Total: %s\n", money(o.Total))
	fmt.Fprintf(&sb, "Status: %s %s\n", statusEmoji(o.Status), o.Status)
	sb.WriteString("\nWe'll keep you posted right here.")
	return sb.String()
}

func renderInsufficientFunds(err error, total decimal.Decimal) string {
	return "💸 *Not enough balance*\n\nOrder total: " + money(total) +
		"\nYour balance doesn't cover it: " + detail(err, store.ErrInsufficientFunds) +
		".\n\nTop up to finish checkout."
}

func renderDepositInstructions(d *models.Deposit, cfg *models.Settings) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏦 *Deposit %s*\n\n", d.Reference)
	fmt.Fprintf(&sb, "Amount: %s\n", money(d.Amount))
	fmt.Fprintf(&sb, "Reference: `%s`\n\n", d.Reference)
	contact := cfg.SupportContact
	if contact == "" {
		contact = "support"
	}
	fmt.Fprintf(&sb, "Send the payment to %s with the reference in the note, then tap the button below.", contact)
	return sb.String()
}

func renderDepositReview(d *models.Deposit, from *tgbotapi.User) string {
	var sb strings.Builder
	sb.WriteString("🔔 *Deposit review*\n\n")
	fmt.Fprintf(&sb, "%s — %s\n", d.Reference, money(d.Amount))
	who := from.FirstName
	if from.UserName != "" {
		who += " (@" + from.UserName + ")"
	}
	fmt.Fprintf(&sb, "From: %s, id %d\n", who, from.ID)
	fmt.Fprintf(&sb, "Method: %s", d.Method)
	return sb.String()
}

func renderDepositSettled(d *models.Deposit) string {
	mark := "✅"
	if d.Status == models.DepositStatusRejected {
		mark = "❌"
	}
	return fmt.Sprintf("%s %s — %s — %s", mark, d.Reference, money(d.Amount), d.Status)
}

func renderOrderStatusUpdate(o *models.Order) string {
	return fmt.Sprintf("%s Order *%s* is now *%s*.", statusEmoji(o.Status), o.OrderNumber, o.Status)
}
