package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"burovik/internal/quotes"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const (
	quotesPerPage     = 5
	historyPagePrefix = "hist:"
	historyFetchLimit = 100
)

// sendQuotesPage renders one page of the user's quote history with
// navigation buttons. messageID of zero sends a new message, otherwise
// the existing page is edited in place.
func (b *Bot) sendQuotesPage(ctx context.Context, chatID, userID int64, messageID, page int) {
	list, err := b.history.ListByUser(ctx, userID, historyFetchLimit)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("Failed to list quotes")
		b.reply(ctx, chatID, "Не удалось получить историю расчетов.")
		return
	}
	if len(list) == 0 {
		b.reply(ctx, chatID, "У вас пока нет сохраненных расчетов. Начните с команды /start.")
		return
	}

	totalPages := (len(list) + quotesPerPage - 1) / quotesPerPage
	if page < 0 {
		page = 0
	}
	if page >= totalPages {
		page = totalPages - 1
	}
	start := page * quotesPerPage
	end := start + quotesPerPage
	if end > len(list) {
		end = len(list)
	}

	var message strings.Builder
	message.WriteString("Ваши расчеты\n")
	message.WriteString(fmt.Sprintf("Страница %d из %d\n\n", page+1, totalPages))
	for _, q := range list[start:end] {
		message.WriteString(formatQuoteLine(&q))
	}

	var keyboard [][]tgbotapi.InlineKeyboardButton
	var navButtons []tgbotapi.InlineKeyboardButton
	if page > 0 {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", fmt.Sprintf("%s%d", historyPagePrefix, page-1)))
	}
	if end < len(list) {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData("Вперед ➡️", fmt.Sprintf("%s%d", historyPagePrefix, page+1)))
	}
	if len(navButtons) > 0 {
		keyboard = append(keyboard, navButtons)
	}

	if messageID != 0 {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, message.String())
		if len(keyboard) > 0 {
			markup := tgbotapi.NewInlineKeyboardMarkup(keyboard...)
			edit.ReplyMarkup = &markup
		}
		b.send(ctx, edit)
		return
	}

	msg := tgbotapi.NewMessage(chatID, message.String())
	if len(keyboard) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	}
	b.send(ctx, msg)
}

func formatQuoteLine(q *quotes.Quote) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("#%d от %s\n", q.ID, q.CreatedAt.Format("02.01.2006")))
	sb.WriteString(fmt.Sprintf("%s, %d м", q.District, q.Depth))
	if q.EquipmentSet != "" {
		sb.WriteString(fmt.Sprintf(", комплект «%s»", q.EquipmentSet))
	}
	sb.WriteString(fmt.Sprintf("\nИтого: %d руб.\n\n", q.TotalCost))
	return sb.String()
}

// parseHistoryPage extracts the page number from a history navigation
// callback; ok is false for other callbacks.
func parseHistoryPage(data string) (int, bool) {
	if !strings.HasPrefix(data, historyPagePrefix) {
		return 0, false
	}
	page, err := strconv.Atoi(strings.TrimPrefix(data, historyPagePrefix))
	if err != nil || page < 0 {
		return 0, false
	}
	return page, true
}
