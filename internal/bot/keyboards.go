package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/premstore/storebot/internal/models"
)

// depositAmounts are the quick-pick top-up buttons.
var depositAmounts = []int{20, 50, 100, 200, 500, 1000}

func btn(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}

func itemRef(productID int64, variantID int) string {
	if variantID == 0 {
		return fmt.Sprintf("%d", productID)
	}
	return fmt.Sprintf("%d_%d", productID, variantID)
}

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(btn("🛍 Catalog", "catalog")),
		tgbotapi.NewInlineKeyboardRow(btn("🛒 Cart", "cart"), btn("🧾 Orders", "orders")),
		tgbotapi.NewInlineKeyboardRow(btn("💰 Balance", "balance"), btn("💳 Deposit", "deposit")),
	)
}

func balanceKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(btn("💳 Deposit", "deposit")),
		tgbotapi.NewInlineKeyboardRow(btn("🛍 Catalog", "catalog")),
	)
}

func depositAmountsKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	row := make([]tgbotapi.InlineKeyboardButton, 0, 3)
	for _, a := range depositAmounts {
		row = append(row, btn(fmt.Sprintf("$%d", a), fmt.Sprintf("deposit_%d", a)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = make([]tgbotapi.InlineKeyboardButton, 0, 3)
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func categoriesKeyboard(cats []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range cats {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("📦 "+c, "category_"+c)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("🛒 Cart", "cart")))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func productsKeyboard(in []models.Product) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range in {
		label := fmt.Sprintf("%s — %s", p.Name, money(p.Price))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn(label, fmt.Sprintf("product_%d", p.ID))))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("⬅️ Categories", "catalog")))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func productKeyboard(p *models.Product) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if len(p.Variants) > 0 {
		for _, v := range p.Variants {
			label := fmt.Sprintf("%s — %s", v.Name, money(v.Price))
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				btn(label, fmt.Sprintf("variant_%d_%d", p.ID, v.ID)),
			))
		}
	} else {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			btn("➕ Add to cart", "add_"+itemRef(p.ID, 0)),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(btn("🛒 Cart", "cart")),
		tgbotapi.NewInlineKeyboardRow(btn("⬅️ Back", "category_"+p.Category)),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func variantKeyboard(p *models.Product, v *models.Variant) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(btn("➕ Add to cart", "add_"+itemRef(p.ID, v.ID))),
		tgbotapi.NewInlineKeyboardRow(btn("⬅️ Back", fmt.Sprintf("product_%d", p.ID))),
	)
}

func emptyCartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(btn("🛍 Browse catalog", "catalog")),
	)
}

func cartKeyboard(lines []cartLine) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, ln := range lines {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			btn("➖ "+ln.Name, "rm_"+itemRef(ln.ProductID, ln.VariantID)),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(btn("✅ Checkout", "checkout"), btn("🗑 Clear", "clear_cart")),
		tgbotapi.NewInlineKeyboardRow(btn("🛍 Keep shopping", "catalog")),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func checkoutKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(btn("✅ Confirm", "confirm")),
		tgbotapi.NewInlineKeyboardRow(btn("⬅️ Back to cart", "cart")),
	)
}

func orderPlacedKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(btn("🧾 My orders", "orders")),
		tgbotapi.NewInlineKeyboardRow(btn("🛍 Catalog", "catalog")),
	)
}

func proofKeyboard(depositID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(btn("✅ I have paid", fmt.Sprintf("dep_proof_%d", depositID))),
	)
}

func adminDepositKeyboard(depositID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			btn("✅ Approve", fmt.Sprintf("dep_ok_%d", depositID)),
			btn("❌ Reject", fmt.Sprintf("dep_no_%d", depositID)),
		),
	)
}
