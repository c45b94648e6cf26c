package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// StartWebhook registers the webhook with Telegram and serves updates on
// listenAddr until ctx is done. Telegram retries failed deliveries, so
// the handler acknowledges before the dialog work completes.
func (b *Bot) StartWebhook(ctx context.Context, webhookURL, listenAddr string) error {
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return fmt.Errorf("webhook config: %w", err)
	}
	if _, err := b.tg.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	b.logger.Info().Str("url", webhookURL).Str("addr", listenAddr).Msg("Webhook registered")

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           b.WebhookHandler(ctx),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("webhook server: %w", err)
	}
	return nil
}

// WebhookHandler decodes Telegram update payloads and feeds them to the
// dialog, one goroutine per update.
func (b *Bot) WebhookHandler(ctx context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			b.logger.Warn().Err(err).Msg("Malformed webhook payload")
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)

		go func() {
			requestID := uuid.New().String()
			l := b.logger.With().Str("request_id", requestID).Logger()
			b.HandleUpdate(l.WithContext(ctx), &update)
		}()
	})
}
