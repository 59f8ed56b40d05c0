package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-forward-bot/internal/application"
	"telegram-forward-bot/internal/config"
	"telegram-forward-bot/internal/infra/logging"
	"telegram-forward-bot/internal/infra/metrics"
)

// dialogCommands are never routed into an open dialog as answers.
var dialogCommands = map[string]struct{}{
	"start": {}, "help": {}, "forward": {}, "cancel": {},
}

// RealTelegramBotAdapter uses tgbotapi to poll updates and delegates to BotFacade.
type RealTelegramBotAdapter struct {
	bot    *tgbotapi.BotAPI
	cfg    *config.BotConfig
	facade *application.BotFacade
	log    *zerolog.Logger

	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, facade *application.BotFacade, log *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		log:           log,
		updateWorkers: workers,
	}, nil
}

// StartPolling begins polling Telegram for updates concurrently.
// It runs until ctx is canceled.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Int("worker", id).Err(err).Msg("update error")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			r.bot.StopReceivingUpdates()
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

// StopPolling stops the polling loop gracefully.
func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// SendMessage implements the adapter port.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, tgID int64, text string) error {
	msg := tgbotapi.NewMessage(tgID, text)
	_, err := r.bot.Send(msg)
	return err
}

// SendStatus sends the run's status message and returns its id for
// later edits.
func (r *RealTelegramBotAdapter) SendStatus(ctx context.Context, tgID int64, text string) (int, error) {
	sent, err := r.bot.Send(tgbotapi.NewMessage(tgID, text))
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// EditStatus rewrites a previously sent status message.
func (r *RealTelegramBotAdapter) EditStatus(ctx context.Context, tgID int64, messageID int, text string) error {
	_, err := r.bot.Send(tgbotapi.NewEditMessageText(tgID, messageID, text))
	return err
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.Message == nil || update.Message.From == nil {
		return nil
	}
	msg := update.Message
	tgID := msg.From.ID
	ctx = logging.WithTgID(ctx, tgID)

	if msg.IsCommand() {
		return r.handleCommand(ctx, tgID, msg)
	}

	// Plain text: feed the dialog if one is open, otherwise ignore so
	// other handlers in the process can take it.
	if msg.Text == "" || !msg.Chat.IsPrivate() {
		return nil
	}
	reply, handled, err := r.facade.HandleText(ctx, tgID, msg.Text)
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Msg("dialog input failed")
		return r.SendMessage(ctx, tgID, "Something went wrong. Send /cancel and try again.")
	}
	if !handled || reply == "" {
		return nil
	}
	return r.SendMessage(ctx, tgID, reply)
}

func (r *RealTelegramBotAdapter) handleCommand(ctx context.Context, tgID int64, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	cmd := strings.ToLower(msg.Command())
	if _, known := dialogCommands[cmd]; !known {
		return r.SendMessage(ctx, chatID, "Unknown command. Send /help for the list of commands.")
	}

	switch cmd {
	case "start":
		text, err := r.facade.HandleStart(ctx, msg.From.UserName)
		if err != nil {
			return err
		}
		return r.SendMessage(ctx, chatID, text)

	case "help":
		text, err := r.facade.HandleHelp(ctx)
		if err != nil {
			return err
		}
		return r.SendMessage(ctx, chatID, text)

	case "forward":
		if !msg.Chat.IsPrivate() {
			return r.SendMessage(ctx, chatID, "Use /forward in a private chat with me.")
		}
		text, err := r.facade.HandleForward(ctx, tgID)
		if err != nil {
			logging.With(ctx, r.log).Error().Err(err).Msg("forward start failed")
			return r.SendMessage(ctx, tgID, "Failed to start the forward dialog. Try again later.")
		}
		metrics.IncDialog("started")
		return r.SendMessage(ctx, tgID, text)

	case "cancel":
		text, err := r.facade.HandleCancel(ctx, tgID)
		if err != nil {
			return err
		}
		metrics.IncDialog("cancelled")
		return r.SendMessage(ctx, tgID, text)
	}
	return nil
}
