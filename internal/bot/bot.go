// Package bot adapts Telegram updates into dialog events and renders the
// resulting screens back to the chat.
package bot

import (
	"context"
	"fmt"
	"strings"

	"burovik/internal/dialog"
	"burovik/internal/events"
	"burovik/internal/metrics"
	"burovik/internal/pricing"
	"burovik/internal/quotes"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type telegramClient interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	SelfUser() tgbotapi.User
}

type realTelegramClient struct {
	api *tgbotapi.BotAPI
}

func (c *realTelegramClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.api.Send(msg)
}

func (c *realTelegramClient) Request(msg tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return c.api.Request(msg)
}

func (c *realTelegramClient) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return c.api.GetUpdatesChan(cfg)
}

func (c *realTelegramClient) SelfUser() tgbotapi.User {
	return c.api.Self
}

// Bot wires the dialog machine to Telegram.
type Bot struct {
	tg      telegramClient
	machine *dialog.Machine
	store   dialog.Store
	history *quotes.Store
	bus     *events.Bus
	limiter *rate.Limiter
	logger  *zerolog.Logger
}

// Options carries the optional collaborators.
type Options struct {
	History *quotes.Store
	Bus     *events.Bus
	Limiter *rate.Limiter
}

func New(token string, debug bool, machine *dialog.Machine, store dialog.Store, opts Options, logger *zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = debug
	return newBot(&realTelegramClient{api: api}, machine, store, opts, logger)
}

// NewWithTelegramClient allows injecting a mocked Telegram client for tests.
func NewWithTelegramClient(tg telegramClient, machine *dialog.Machine, store dialog.Store, opts Options, logger *zerolog.Logger) (*Bot, error) {
	return newBot(tg, machine, store, opts, logger)
}

func newBot(tg telegramClient, machine *dialog.Machine, store dialog.Store, opts Options, logger *zerolog.Logger) (*Bot, error) {
	if tg == nil {
		return nil, fmt.Errorf("telegram client is nil")
	}
	if machine == nil || store == nil {
		return nil, fmt.Errorf("dialog machine and store are required")
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(25), 5)
	}
	return &Bot{
		tg:      tg,
		machine: machine,
		store:   store,
		history: opts.History,
		bus:     opts.Bus,
		limiter: limiter,
		logger:  logger,
	}, nil
}

// Start begins long polling and handles updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)
	b.logger.Info().Str("username", b.tg.SelfUser().UserName).Msg("Drilling calculator bot authorized")

	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updates:
			requestID := uuid.New().String()
			l := b.logger.With().Str("request_id", requestID).Logger()
			updateCtx := l.WithContext(ctx)
			b.HandleUpdate(updateCtx, &update)
		}
	}
}

// HandleUpdate dispatches a single update. The webhook handler calls it
// directly, the polling loop calls it per channel item.
func (b *Bot) HandleUpdate(ctx context.Context, update *tgbotapi.Update) {
	l := zerolog.Ctx(ctx)
	if update.CallbackQuery != nil {
		metrics.IncUpdateReceived("callback")
		l.Debug().
			Int64("user_id", update.CallbackQuery.From.ID).
			Str("data", update.CallbackQuery.Data).
			Msg("Handling callback query")
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message != nil {
		metrics.IncUpdateReceived("message")
		l.Debug().
			Int64("user_id", update.Message.From.ID).
			Str("text", update.Message.Text).
			Msg("Handling message")
		b.handleMessage(ctx, update.Message)
		return
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg == nil || msg.From == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)

	switch {
	case strings.HasPrefix(text, "/start"):
		b.applyEvent(ctx, msg.From.ID, msg.Chat.ID, 0, dialog.Event{Kind: dialog.EventStart})
	case strings.HasPrefix(text, "/reset"):
		b.applyEvent(ctx, msg.From.ID, msg.Chat.ID, 0, dialog.Event{Kind: dialog.EventNewCalculation})
	case strings.HasPrefix(text, "/history"):
		b.handleHistory(ctx, msg)
	case strings.HasPrefix(text, "/export"):
		b.handleExport(ctx, msg)
	default:
		b.sendRender(ctx, msg.Chat.ID, 0, dialog.HelpRender())
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq == nil || cq.Message == nil {
		return
	}
	_ = b.answerCallback(cq.ID)

	if page, ok := parseHistoryPage(cq.Data); ok {
		if b.history != nil {
			b.sendQuotesPage(ctx, cq.Message.Chat.ID, cq.From.ID, cq.Message.MessageID, page)
		}
		return
	}

	ev, err := dialog.ParseCallback(cq.Data, b.machine.Catalog())
	if err != nil {
		// Stale keyboards from an older catalog revision land here.
		zerolog.Ctx(ctx).Debug().Err(err).Str("data", cq.Data).Msg("Ignoring callback")
		return
	}
	if ev.Kind == dialog.EventNoop {
		return
	}
	b.applyEvent(ctx, cq.From.ID, cq.Message.Chat.ID, cq.Message.MessageID, ev)
}

// applyEvent runs one event through the machine under the user's state
// lock, then sends or edits the resulting screen. messageID selects edit
// mode; zero sends a new message.
func (b *Bot) applyEvent(ctx context.Context, userID, chatID int64, messageID int, ev dialog.Event) {
	l := zerolog.Ctx(ctx)
	metrics.IncDialogEvent(string(ev.Kind))

	var render *dialog.Render
	var completed *quotes.Quote

	err := b.store.Update(ctx, userID, func(st *dialog.State) error {
		before := st.Stage
		r, err := b.machine.Apply(st, ev)
		if err != nil {
			return err
		}
		render = r
		if st.Stage == dialog.StageFinal && before != dialog.StageFinal {
			completed = b.buildQuote(st)
		}
		return nil
	})
	if err != nil {
		l.Error().Err(err).Int64("user_id", userID).Str("event", string(ev.Kind)).Msg("Failed to apply dialog event")
		b.sendRender(ctx, chatID, 0, dialog.HelpRender())
		return
	}

	if completed != nil {
		b.recordQuote(ctx, completed)
	}
	if render != nil {
		b.sendRender(ctx, chatID, messageID, render)
	}
}

func (b *Bot) buildQuote(st *dialog.State) *quotes.Quote {
	eng := pricing.NewEngine(b.machine.Catalog())
	sel := st.Selection()
	return &quotes.Quote{
		UserID:        st.UserID,
		District:      st.District,
		Depth:         st.Depth,
		EquipmentSet:  st.EquipmentSet,
		Equipment:     append([]string(nil), st.SelectedEquipment...),
		Services:      append([]string(nil), st.SelectedServices...),
		DrillingCost:  eng.DrillingCost(st.Depth),
		EquipmentCost: eng.EquipmentCost(sel),
		ServicesCost:  eng.ServicesCost(sel),
		TotalCost:     eng.TotalCost(sel),
	}
}

func (b *Bot) recordQuote(ctx context.Context, q *quotes.Quote) {
	l := zerolog.Ctx(ctx)
	metrics.IncQuoteCompleted()
	if b.history != nil {
		if err := b.history.Save(ctx, q); err != nil {
			l.Error().Err(err).Int64("user_id", q.UserID).Msg("Failed to save quote")
		}
	}
	if b.bus != nil {
		b.bus.Publish(ctx, events.QuoteCompleted{Quote: q})
	}
}

func (b *Bot) handleHistory(ctx context.Context, msg *tgbotapi.Message) {
	if b.history == nil {
		b.reply(ctx, msg.Chat.ID, "История расчетов недоступна.")
		return
	}
	b.sendQuotesPage(ctx, msg.Chat.ID, msg.From.ID, 0, 0)
}

func (b *Bot) handleExport(ctx context.Context, msg *tgbotapi.Message) {
	l := zerolog.Ctx(ctx)
	if b.history == nil {
		b.reply(ctx, msg.Chat.ID, "Экспорт расчетов недоступен.")
		return
	}
	list, err := b.history.ListByUser(ctx, msg.From.ID, 100)
	if err != nil {
		l.Error().Err(err).Int64("user_id", msg.From.ID).Msg("Failed to list quotes for export")
		b.reply(ctx, msg.Chat.ID, "Не удалось получить расчеты.")
		return
	}
	if len(list) == 0 {
		b.reply(ctx, msg.Chat.ID, "Нет расчетов для экспорта.")
		return
	}

	data, err := quotes.ExportExcel(list)
	if err != nil {
		l.Error().Err(err).Msg("Failed to build export")
		b.reply(ctx, msg.Chat.ID, "Не удалось сформировать файл.")
		return
	}

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{
		Name:  "raschety.xlsx",
		Bytes: data,
	})
	b.send(ctx, doc)
}

func (b *Bot) sendRender(ctx context.Context, chatID int64, messageID int, r *dialog.Render) {
	markup := keyboardMarkup(r.Keyboard)

	if messageID != 0 {
		var edit tgbotapi.Chattable
		if markup != nil {
			e := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, r.Text, *markup)
			if r.Markdown {
				e.ParseMode = tgbotapi.ModeMarkdown
			}
			edit = e
		} else {
			e := tgbotapi.NewEditMessageText(chatID, messageID, r.Text)
			if r.Markdown {
				e.ParseMode = tgbotapi.ModeMarkdown
			}
			edit = e
		}
		if b.send(ctx, edit) {
			return
		}
		// The message may be too old to edit; fall through to a new one.
	}

	msg := tgbotapi.NewMessage(chatID, r.Text)
	if r.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	b.send(ctx, msg)
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	b.send(ctx, tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(ctx context.Context, msg tgbotapi.Chattable) bool {
	if err := b.limiter.Wait(ctx); err != nil {
		return false
	}
	if _, err := b.tg.Send(msg); err != nil {
		metrics.IncSendError()
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Telegram send failed")
		return false
	}
	return true
}

func keyboardMarkup(rows [][]dialog.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	kb := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		r := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			r = append(r, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
		}
		kb = append(kb, r)
	}
	m := tgbotapi.NewInlineKeyboardMarkup(kb...)
	return &m
}

func (b *Bot) answerCallback(id string) error {
	_, err := b.tg.Request(tgbotapi.NewCallback(id, ""))
	return err
}
