package bot

import (
	"context"
	"sync"
	"time"

	logger "github.com/ElrondNetwork/elrond-go-logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pkg/errors"
	"github.com/silence48/new-soroban-fiddle/data"
	"github.com/silence48/new-soroban-fiddle/db"
	"github.com/silence48/new-soroban-fiddle/invoke"
	"github.com/silence48/new-soroban-fiddle/spec"
	"github.com/silence48/new-soroban-fiddle/wallet"
)

var log = logger.GetOrCreate("bot")

// SpecLoader - fetches and normalizes contract specs
type SpecLoader interface {
	Load(ctx context.Context, contractID string) ([]data.FunctionDescriptor, error)
}

// Caller - reads, simulates and invokes contract functions
type Caller interface {
	CanInvoke() bool
	Read(ctx context.Context, contractID string, fn *data.FunctionDescriptor, keys wallet.KeySource) (*data.CallResult, error)
	Simulate(ctx context.Context, contractID string, fn *data.FunctionDescriptor, values map[string]string, keys wallet.KeySource) (*data.CallResult, error)
	Invoke(ctx context.Context, contractID string, fn *data.FunctionDescriptor, values map[string]string) (*data.InvokeResult, error)
}

// session - the contract a user last loaded
type session struct {
	seq        spec.Sequencer
	contractID string
	functions  []data.FunctionDescriptor
}

// Bot - holds the required fields of the bot application
type Bot struct {
	tgBot          *tgbotapi.BotAPI
	owner          int64
	database       *db.Database
	specs          SpecLoader
	caller         Caller
	requestTimeout time.Duration

	sessions    map[int64]*session
	sessionsMut sync.Mutex
}

// NewBot - creates a new Bot object
func NewBot(cfg *data.AppConfig, database *db.Database, specs SpecLoader, caller Caller) (*Bot, error) {
	requestTimeout, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil {
		return nil, errors.Wrap(err, "request timeout")
	}

	tgBot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Error("can not create telegram bot", "error", err)
		return nil, err
	}

	telegramBot := newBot(specs, caller, requestTimeout)
	telegramBot.tgBot = tgBot
	telegramBot.owner = cfg.BotOwner
	telegramBot.database = database

	return telegramBot, nil
}

func newBot(specs SpecLoader, caller Caller, requestTimeout time.Duration) *Bot {
	return &Bot{
		specs:          specs,
		caller:         caller,
		requestTimeout: requestTimeout,
		sessions:       make(map[int64]*session),
	}
}

// StartTasks - starts bot's tasks
func (b *Bot) StartTasks() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates, err := b.tgBot.GetUpdatesChan(u)
	if err != nil {
		log.Error("can not get Telegram bot updates", "error", err)
		return err
	}

	go func() {
		for update := range updates {
			if update.Message != nil && update.Message.Chat.IsPrivate() {
				if update.Message.IsCommand() {
					b.privateCommandReceived(update.Message)
					continue
				}
				if update.Message.ReplyToMessage != nil {
					b.privateReplyReceived(update.Message)
					continue
				}
				if update.Message.Document != nil {
					b.documentReceived(update.Message)
					continue
				}
			}
			if update.CallbackQuery != nil {
				b.callbackQueryReceived(update.CallbackQuery)
			}
		}
	}()

	return nil
}

// Stop - stops polling for updates
func (b *Bot) Stop() {
	b.tgBot.StopReceivingUpdates()
}

func (b *Bot) sendMessage(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, _ = b.tgBot.Send(msg)
}

// sendText - sends text that may hold markdown control characters, like errors and contract docs
func (b *Bot) sendText(userID int64, text string) {
	_, _ = b.tgBot.Send(tgbotapi.NewMessage(userID, text))
}

func (b *Bot) forceReply(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ReplyMarkup = tgbotapi.ForceReply{
		ForceReply: true,
		Selective:  false,
	}
	_, _ = b.tgBot.Send(msg)
}

func (b *Bot) canInvoke(user *data.User) bool {
	return user.TgID == b.owner && b.caller.CanInvoke()
}

func (b *Bot) session(tgID int64) *session {
	b.sessionsMut.Lock()
	defer b.sessionsMut.Unlock()

	s, ok := b.sessions[tgID]
	if !ok {
		s = &session{}
		b.sessions[tgID] = s
	}

	return s
}

// loadLatest - loads the spec of a contract for a user. latest is false when the user
// started another load in the meantime, in which case the result must be dropped
func (b *Bot) loadLatest(ctx context.Context, tgID int64, contractID string) (functions []data.FunctionDescriptor, latest bool, err error) {
	s := b.session(tgID)
	seq := s.seq.Next()

	functions, err = b.specs.Load(ctx, contractID)
	if !s.seq.IsLatest(seq) {
		log.Debug("dropping stale contract load", "user", tgID, "contract", contractID, "seq", seq)
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}

	b.sessionsMut.Lock()
	s.contractID = contractID
	s.functions = functions
	b.sessionsMut.Unlock()

	return functions, true, nil
}

// function - returns a function of the contract, loading its spec if the user's session
// does not hold it
func (b *Bot) function(ctx context.Context, tgID int64, contractID string, name string) (*data.FunctionDescriptor, error) {
	s := b.session(tgID)

	b.sessionsMut.Lock()
	var functions []data.FunctionDescriptor
	if s.contractID == contractID {
		functions = s.functions
	}
	b.sessionsMut.Unlock()

	if functions == nil {
		loaded, err := b.specs.Load(ctx, contractID)
		if err != nil {
			return nil, err
		}
		functions = loaded
	}

	return invoke.Find(functions, name)
}

func (b *Bot) loadContract(user *data.User, contractID string) {
	tgID := user.TgID
	canInvoke := b.canInvoke(user)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), b.requestTimeout)
		defer cancel()

		functions, latest, err := b.loadLatest(ctx, tgID, contractID)
		if !latest {
			return
		}
		if err != nil {
			b.sendText(tgID, "⭕️ "+err.Error())
			return
		}

		b.sendFunctions(tgID, contractID, functions, canInvoke)
	}()
}

func (b *Bot) sendFunctions(tgID int64, contractID string, functions []data.FunctionDescriptor, canInvoke bool) {
	b.sendText(tgID, "📜 "+contractID)
	if len(functions) == 0 {
		b.sendMessage(tgID, "⭕️ The contract declares no functions")
		return
	}

	for i := range functions {
		msg := tgbotapi.NewMessage(tgID, functionText(&functions[i]))
		msg.ReplyMarkup = functionKeyboard(&functions[i], canInvoke)
		_, _ = b.tgBot.Send(msg)
	}
}

func (b *Bot) keySource(user *data.User) wallet.KeySource {
	if user.PublicKey == "" {
		return nil
	}

	key, err := wallet.NewStaticKey(user.PublicKey)
	if err != nil {
		log.Warn("stored public key is invalid", "user", user.TgID)
		return nil
	}

	return key
}

// callFunction - runs a read, a simulation or an invocation in the background and
// reports the outcome to the user
func (b *Bot) callFunction(user *data.User, action string, name string, values map[string]string) {
	tgID := user.TgID
	contractID := user.ContractID
	keys := b.keySource(user)
	if action == actionInvoke && !b.canInvoke(user) {
		b.sendMessage(tgID, "⭕️ Only the bot owner can invoke functions")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), b.requestTimeout)
		defer cancel()

		fn, err := b.function(ctx, tgID, contractID, name)
		if err != nil {
			b.sendText(tgID, "⭕️ "+err.Error())
			return
		}

		switch action {
		case actionRead:
			res, err := b.caller.Read(ctx, contractID, fn, keys)
			b.reportCall(tgID, res, err)
		case actionSimulate:
			res, err := b.caller.Simulate(ctx, contractID, fn, values, keys)
			b.reportCall(tgID, res, err)
		case actionInvoke:
			res, err := b.caller.Invoke(ctx, contractID, fn, values)
			if err != nil {
				b.sendText(tgID, "⭕️ "+err.Error())
				return
			}
			b.sendText(tgID, formatInvokeResult(res))
		}
	}()
}

func (b *Bot) reportCall(tgID int64, res *data.CallResult, err error) {
	if err != nil {
		b.sendText(tgID, "⭕️ "+err.Error())
		return
	}

	b.sendText(tgID, formatCallResult(res))
}
