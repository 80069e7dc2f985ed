package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"github.com/premstore/storebot/internal/models"
	"github.com/premstore/storebot/internal/orders"
	"github.com/premstore/storebot/internal/store"
)

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.From == nil {
		return
	}
	data := cq.Data
	userID := cq.From.ID
	chatID := userID
	if cq.Message != nil {
		chatID = cq.Message.Chat.ID
	}
	l := b.log.With("callback", data, "chat_id", chatID)

	if _, err := b.users.GetOrCreate(ctx, userID, cq.From.FirstName, cq.From.UserName); err != nil {
		l.Error("user lookup failed", "error", err)
		b.answer(cq, msgStoreClosed)
		return
	}

	switch {
	case data == "catalog":
		b.answer(cq, "")
		b.showCatalog(ctx, chatID, cq)

	case strings.HasPrefix(data, "category_"):
		b.answer(cq, "")
		b.showCategory(ctx, cq, strings.TrimPrefix(data, "category_"))

	case strings.HasPrefix(data, "product_"):
		b.answer(cq, "")
		b.showProduct(ctx, cq, strings.TrimPrefix(data, "product_"))

	case strings.HasPrefix(data, "variant_"):
		b.answer(cq, "")
		b.showVariant(ctx, cq, strings.TrimPrefix(data, "variant_"))

	case strings.HasPrefix(data, "add_"):
		b.addToCart(ctx, cq, strings.TrimPrefix(data, "add_"))

	case strings.HasPrefix(data, "rm_"):
		b.removeFromCart(ctx, cq, strings.TrimPrefix(data, "rm_"))

	case data == "cart":
		b.answer(cq, "")
		b.showCart(ctx, cq, userID)

	case data == "clear_cart":
		b.carts.Clear(userID)
		b.answer(cq, "Cart cleared")
		b.showCart(ctx, cq, userID)

	case data == "checkout":
		b.checkout(ctx, cq, userID)

	case data == "confirm":
		b.confirmOrder(ctx, cq, userID)

	case data == "orders":
		b.answer(cq, "")
		b.showOrders(ctx, chatID, userID)

	case data == "balance":
		b.answer(cq, "")
		u, err := b.users.Get(ctx, userID)
		if err != nil {
			l.Error("user lookup failed", "error", err)
			b.reply(chatID, msgStoreClosed)
			return
		}
		b.replyKB(chatID, renderBalance(u), balanceKeyboard())

	case data == "deposit":
		b.answer(cq, "")
		b.replyKB(chatID, msgDepositPrompt, depositAmountsKeyboard())

	case strings.HasPrefix(data, "deposit_"):
		b.answer(cq, "")
		amount, err := decimal.NewFromString(strings.TrimPrefix(data, "deposit_"))
		if err != nil {
			return
		}
		b.startDeposit(ctx, chatID, userID, amount)

	case strings.HasPrefix(data, "dep_proof_"):
		b.submitProof(ctx, cq, strings.TrimPrefix(data, "dep_proof_"))

	case strings.HasPrefix(data, "dep_ok_"):
		b.settleDeposit(ctx, cq, strings.TrimPrefix(data, "dep_ok_"), true)

	case strings.HasPrefix(data, "dep_no_"):
		b.settleDeposit(ctx, cq, strings.TrimPrefix(data, "dep_no_"), false)

	default:
		b.answer(cq, "")
	}
}

func (b *Bot) showCategory(ctx context.Context, cq *tgbotapi.CallbackQuery, name string) {
	list, err := b.catalog.List(ctx)
	if err != nil {
		b.log.Error("catalog load failed", "error", err)
		b.answer(cq, msgStoreClosed)
		return
	}
	var in []models.Product
	for _, p := range list {
		if p.Category == name {
			in = append(in, p)
		}
	}
	if len(in) == 0 {
		b.alert(cq, "Nothing in this category right now.")
		return
	}
	b.edit(cq, "📦 *"+name+"*\n\nPick a product:", productsKeyboard(in))
}

func (b *Bot) showProduct(ctx context.Context, cq *tgbotapi.CallbackQuery, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return
	}
	p, err := b.catalog.Get(ctx, id)
	if err != nil {
		b.alert(cq, friendlyError(err))
		return
	}
	b.edit(cq, renderProductCard(p), productKeyboard(p))
}

func (b *Bot) showVariant(ctx context.Context, cq *tgbotapi.CallbackQuery, raw string) {
	pid, vid, ok := parsePair(raw)
	if !ok {
		return
	}
	p, err := b.catalog.Get(ctx, pid)
	if err != nil {
		b.alert(cq, friendlyError(err))
		return
	}
	v := findVariant(p, vid)
	if v == nil {
		b.alert(cq, "This option is no longer available.")
		return
	}
	b.edit(cq, renderVariantCard(p, v), variantKeyboard(p, v))
}

func (b *Bot) addToCart(ctx context.Context, cq *tgbotapi.CallbackQuery, raw string) {
	pid, vid, ok := parseItemRef(raw)
	if !ok {
		return
	}
	p, err := b.catalog.Get(ctx, pid)
	if err != nil {
		b.alert(cq, friendlyError(err))
		return
	}
	stock := p.Stock
	if vid != 0 {
		v := findVariant(p, vid)
		if v == nil {
			b.alert(cq, "This option is no longer available.")
			return
		}
		stock = v.Stock
	}
	if stock <= 0 {
		b.alert(cq, "Out of stock, sorry!")
		return
	}
	b.carts.Add(cq.From.ID, pid, vid, 1)
	b.answer(cq, "Added to cart ✅")
}

func (b *Bot) removeFromCart(ctx context.Context, cq *tgbotapi.CallbackQuery, raw string) {
	pid, vid, ok := parseItemRef(raw)
	if !ok {
		return
	}
	b.carts.Remove(cq.From.ID, pid, vid)
	b.answer(cq, "Removed")
	b.showCart(ctx, cq, cq.From.ID)
}

func (b *Bot) showCart(ctx context.Context, cq *tgbotapi.CallbackQuery, userID int64) {
	lines, total, err := b.resolveCart(ctx, userID)
	if err != nil {
		b.log.Error("cart resolve failed", "error", err)
		b.answer(cq, msgStoreClosed)
		return
	}
	if len(lines) == 0 {
		b.edit(cq, "🛒 Your cart is empty.", emptyCartKeyboard())
		return
	}
	b.edit(cq, renderCart(lines, total), cartKeyboard(lines))
}

func (b *Bot) checkout(ctx context.Context, cq *tgbotapi.CallbackQuery, userID int64) {
	lines, total, err := b.resolveCart(ctx, userID)
	if err != nil {
		b.log.Error("cart resolve failed", "error", err)
		b.answer(cq, msgStoreClosed)
		return
	}
	if len(lines) == 0 {
		b.alert(cq, "Your cart is empty.")
		return
	}
	for _, ln := range lines {
		if ln.Unavailable {
			b.alert(cq, "Some items are no longer available. Remove them first.")
			return
		}
	}
	b.answer(cq, "")
	b.edit(cq, renderCheckout(lines, total), checkoutKeyboard())
}

// confirmOrder is the purchase transaction: charge the balance, create the
// order, decrement stock, clear the cart. The charge happens first so a
// failed order create refunds rather than over-sells.
func (b *Bot) confirmOrder(ctx context.Context, cq *tgbotapi.CallbackQuery, userID int64) {
	lines, total, err := b.resolveCart(ctx, userID)
	if err != nil {
		b.log.Error("cart resolve failed", "error", err)
		b.answer(cq, msgStoreClosed)
		return
	}
	if len(lines) == 0 {
		b.alert(cq, "Your cart is empty.")
		return
	}

	items := make([]orders.ItemRequest, 0, len(lines))
	for _, ln := range lines {
		if ln.Unavailable {
			b.alert(cq, "Some items are no longer available. Remove them first.")
			return
		}
		items = append(items, orders.ItemRequest{
			ProductID: ln.ProductID,
			VariantID: ln.VariantID,
			Quantity:  ln.Quantity,
		})
	}

	if _, err := b.users.Spend(ctx, userID, total); err != nil {
		if errors.Is(err, store.ErrInsufficientFunds) {
			b.answer(cq, "")
			b.replyKB(chatOf(cq), renderInsufficientFunds(err, total), balanceKeyboard())
			return
		}
		b.log.Error("spend failed", "error", err)
		b.answer(cq, msgStoreClosed)
		return
	}

	userName := cq.From.FirstName
	if cq.From.UserName != "" {
		userName = "@" + cq.From.UserName
	}
	o, err := b.orders.Create(ctx, userID, userName, items)
	if err != nil {
		// Refund is best effort: the charge already landed.
		if _, rerr := b.users.AdjustBalance(ctx, userID, total); rerr != nil {
			b.log.Error("refund after failed order", "user_id", userID, "error", rerr)
		}
		b.log.Error("order create failed", "error", err)
		b.answer(cq, "")
		b.reply(chatOf(cq), friendlyError(err))
		return
	}

	if err := b.catalog.DecrementStock(ctx, o.Items); err != nil {
		b.log.Error("stock decrement failed", "order", o.OrderNumber, "error", err)
	}
	b.carts.Clear(userID)

	b.answer(cq, "Order placed 🎉")
	b.edit(cq, renderOrderConfirmation(o), orderPlacedKeyboard())
}

func (b *Bot) submitProof(ctx context.Context, cq *tgbotapi.CallbackQuery, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return
	}
	d, err := b.deposits.Get(ctx, id)
	if err != nil {
		b.alert(cq, friendlyError(err))
		return
	}
	if d.UserID != cq.From.ID {
		b.alert(cq, "That deposit isn't yours.")
		return
	}
	d, err = b.deposits.SubmitProof(ctx, id)
	if err != nil {
		b.alert(cq, friendlyError(err))
		return
	}

	b.answer(cq, "Thanks! An admin will review it shortly.")
	b.reply(chatOf(cq), "🧾 Payment for *"+d.Reference+"* is under review. You'll hear from us soon.")
	for _, adminID := range b.adminIDs {
		b.replyKB(adminID, renderDepositReview(d, cq.From), adminDepositKeyboard(d.ID))
	}
}

func (b *Bot) settleDeposit(ctx context.Context, cq *tgbotapi.CallbackQuery, rawID string, approve bool) {
	if !b.isAdmin(cq.From.ID) {
		b.alert(cq, "Admins only.")
		return
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return
	}

	var d *models.Deposit
	if approve {
		d, err = b.deposits.Approve(ctx, id)
	} else {
		d, err = b.deposits.Reject(ctx, id, "rejected by "+cq.From.FirstName)
	}
	if err != nil {
		b.alert(cq, friendlyError(err))
		return
	}

	if approve {
		b.answer(cq, "Approved ✅")
		b.reply(d.UserID, "✅ Deposit *"+d.Reference+"* approved. "+money(d.Amount)+" credited to your balance.")
	} else {
		b.answer(cq, "Rejected")
		b.reply(d.UserID, "❌ Deposit *"+d.Reference+"* was rejected. Contact support if you think this is a mistake.")
	}
	if cq.Message != nil {
		b.edit(cq, renderDepositSettled(d), tgbotapi.NewInlineKeyboardMarkup())
	}
}

// cartLine is a cart item resolved against the live catalog.
type cartLine struct {
	ProductID   int64
	VariantID   int
	Name        string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	Unavailable bool
}

func (b *Bot) resolveCart(ctx context.Context, userID int64) ([]cartLine, decimal.Decimal, error) {
	items := b.carts.Get(userID)
	lines := make([]cartLine, 0, len(items))
	total := decimal.Zero
	for _, it := range items {
		ln := cartLine{ProductID: it.ProductID, VariantID: it.VariantID, Quantity: it.Quantity}
		p, err := b.catalog.Get(ctx, it.ProductID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			ln.Name = "(removed product)"
			ln.Unavailable = true
		case err != nil:
			return nil, decimal.Zero, err
		default:
			ln.Name = p.Name
			ln.UnitPrice = p.Price
			if it.VariantID != 0 {
				if v := findVariant(p, it.VariantID); v != nil {
					ln.Name = p.Name + " (" + v.Name + ")"
					ln.UnitPrice = v.Price
				} else {
					ln.Unavailable = true
				}
			}
		}
		if !ln.Unavailable {
			ln.LineTotal = ln.UnitPrice.Mul(decimal.NewFromInt(int64(ln.Quantity)))
			total = total.Add(ln.LineTotal)
		}
		lines = append(lines, ln)
	}
	return lines, total, nil
}

func findVariant(p *models.Product, vid int) *models.Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == vid {
			return &p.Variants[i]
		}
	}
	return nil
}

func chatOf(cq *tgbotapi.CallbackQuery) int64 {
	if cq.Message != nil {
		return cq.Message.Chat.ID
	}
	return cq.From.ID
}

// parseItemRef reads "<productID>" or "<productID>_<variantID>".
func parseItemRef(raw string) (pid int64, vid int, ok bool) {
	parts := strings.SplitN(raw, "_", 2)
	pid, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	if len(parts) == 2 {
		vid, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, false
		}
	}
	return pid, vid, true
}

func parsePair(raw string) (pid int64, vid int, ok bool) {
	pid, vid, ok = parseItemRef(raw)
	if !ok || vid == 0 {
		return 0, 0, false
	}
	return pid, vid, true
}
