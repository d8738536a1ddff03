package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"storebot/internal/catalog"
	"storebot/internal/config"
	"storebot/internal/navigation"
	"storebot/internal/shop"
)

// Bot wraps the telebot instance and handlers.
type Bot struct {
	tb         *tele.Bot
	webhook    *tele.Webhook
	useWebhook bool
	cfg        *config.Config
	logger     *zap.Logger
	engine     *catalog.Engine
	shop       *shop.Service
	nav        *navigation.Manager
}

// Deps bundles the services bot handlers work with.
type Deps struct {
	Engine *catalog.Engine
	Shop   *shop.Service
	Nav    *navigation.Manager
}

// New creates and configures a new Bot instance.
func New(cfg *config.Config, deps *Deps, logger *zap.Logger) (*Bot, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Bot.UpdateMode))
	if mode == "" {
		mode = "auto"
	}

	useWebhook := true
	switch mode {
	case "polling":
		useWebhook = false
	case "webhook":
		useWebhook = true
	default: // auto
		useWebhook = strings.TrimSpace(cfg.Bot.WebhookURL) != ""
	}

	var poller tele.Poller
	var webhook *tele.Webhook
	if useWebhook {
		if strings.TrimSpace(cfg.Bot.WebhookURL) == "" {
			return nil, fmt.Errorf("BOT_WEBHOOK_URL is required when BOT_UPDATE_MODE=webhook")
		}
		webhook = &tele.Webhook{
			Listen:   "", // Empty: we mount on Echo instead of telebot's own server
			Endpoint: &tele.WebhookEndpoint{PublicURL: cfg.Bot.WebhookURL},
		}
		poller = webhook
	} else {
		poller = &tele.LongPoller{Timeout: 10 * time.Second}
	}

	pref := tele.Settings{
		Token:     cfg.Bot.Token,
		Poller:    poller,
		ParseMode: tele.ModeHTML,
		OnError: func(err error, c tele.Context) {
			fields := []zap.Field{zap.Error(err)}
			if c != nil && c.Chat() != nil {
				fields = append(fields, zap.Int64("chat_id", c.Chat().ID))
			}
			logger.Error("telebot error", fields...)
		},
	}

	tb, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telebot: %w", err)
	}

	b := &Bot{
		tb:         tb,
		webhook:    webhook,
		useWebhook: useWebhook,
		cfg:        cfg,
		logger:     logger,
		engine:     deps.Engine,
		shop:       deps.Shop,
		nav:        deps.Nav,
	}

	b.registerHandlers()

	return b, nil
}

// WebhookHandler returns the webhook handler for mounting on Echo.
// Returns nil when running in long-polling mode.
func (b *Bot) WebhookHandler() http.Handler {
	if b.webhook == nil {
		return nil
	}
	return b.webhook
}

// Start begins polling/webhook processing.
func (b *Bot) Start() {
	if b.useWebhook {
		b.logger.Info("Starting Telegram bot", zap.String("mode", "webhook"), zap.String("webhook_url", b.cfg.Bot.WebhookURL))
	} else {
		// Long polling requires webhook to be removed first.
		if err := b.tb.RemoveWebhook(true); err != nil {
			b.logger.Warn("Failed to remove webhook before long polling", zap.Error(err))
		}
		b.logger.Info("Starting Telegram bot", zap.String("mode", "polling"))
	}
	b.tb.Start()
}

// Stop gracefully shuts down the bot.
func (b *Bot) Stop() {
	b.tb.Stop()
}

func (b *Bot) registerHandlers() {
	b.tb.Handle("/start", b.session(b.onStart))
	b.tb.Handle(tele.OnText, b.session(b.onStart))

	callbacks := map[string]sessionHandler{
		uHome:     b.onHome,
		uBack:     b.onBack,
		uCats:     b.onCategories,
		uCat:      b.onCategory,
		uOpt:      b.onOption,
		uPage:     b.onPage,
		uProd:     b.onProduct,
		uQty:      b.onQuantity,
		uAdd:      b.onAdd,
		uCart:     b.onCart,
		uCartItem: b.onCartItem,
		uClear:    b.onClear,
		uCheckout: b.onCheckout,
		uConfirm:  b.onConfirm,
		uOrders:   b.onOrders,
		uOrder:    b.onOrder,
		uInfo:     b.onInfo,
	}
	for unique, h := range callbacks {
		b.tb.Handle(&tele.Btn{Unique: unique}, b.session(h))
	}
	b.tb.Handle(&tele.Btn{Unique: uStatus}, b.onStatus)
	b.tb.Handle(&tele.Btn{Unique: uNoop}, func(c tele.Context) error { return c.Respond() })
	// Anything else is a button from an older build or a wiped session.
	b.tb.Handle(tele.OnCallback, b.session(b.onStale))
}

type sessionHandler func(c tele.Context, s *navigation.Session) error

// errStale marks callbacks whose arguments no longer make sense.
var errStale = errors.New("stale callback")

const respondedKey = "responded"

// session serialises updates per chat, loads the navigation session around
// h and answers the callback query if h did not.
func (b *Bot) session(h sessionHandler) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Chat() == nil {
			return nil
		}
		chatID := c.Chat().ID
		unlock := b.nav.Lock(chatID)
		defer unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s, err := b.nav.Load(ctx, chatID)
		if err != nil {
			b.logger.Warn("Failed to load navigation session", zap.Int64("chat_id", chatID), zap.Error(err))
		}

		err = h(c, s)
		if errors.Is(err, errStale) {
			err = b.onStale(c, s)
		}
		if err != nil {
			b.logger.Error("Handler failed", zap.Int64("chat_id", chatID), zap.Error(err))
			b.alert(c, "Произошла ошибка, попробуйте еще раз")
		}

		if saveErr := b.nav.Save(ctx, chatID, s); saveErr != nil {
			b.logger.Warn("Failed to save navigation session", zap.Int64("chat_id", chatID), zap.Error(saveErr))
		}
		if c.Callback() != nil && c.Get(respondedKey) == nil {
			_ = c.Respond()
		}
		return nil
	}
}

// alert answers the callback with a popup, or sends a message for commands.
func (b *Bot) alert(c tele.Context, text string) {
	if c.Callback() == nil {
		_ = c.Send(text)
		return
	}
	if c.Get(respondedKey) != nil {
		return
	}
	c.Set(respondedKey, true)
	_ = c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
}

func (b *Bot) onStale(c tele.Context, s *navigation.Session) error {
	b.alert(c, "Кнопка устарела, открываю главное меню")
	s.Reset()
	return b.render(c, s)
}

func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
