package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/silence48/new-soroban-fiddle/utils"
)

func (b *Bot) callbackQueryReceived(cb *tgbotapi.CallbackQuery) {
	_, _ = b.tgBot.AnswerCallbackQuery(tgbotapi.NewCallback(cb.ID, "Ok"))

	user := b.database.GetUserByTgID(int64(cb.From.ID))
	name := utils.FormatTgUser(cb.From)

	if user == nil {
		log.Warn("callback received from unknown user", "callback", cb.Data, "user", name)
		return
	}

	switch cb.Data {
	case "About":
		b.sendMessage(user.TgID, utils.AboutMessage)
		return
	case "MainHelp":
		b.sendMessage(user.TgID, utils.MainHelp)
		return
	case "LoadContract":
		b.forceReply(user.TgID, utils.LoadContractMessage)
		return
	case "SetPublicKey":
		b.forceReply(user.TgID, utils.SetPublicKeyMessage)
		return
	case "Functions":
		if user.ContractID == "" {
			b.sendMessage(user.TgID, "⭕️ No contract loaded")
			return
		}
		b.loadContract(user, user.ContractID)
		return
	}

	action, function, ok := parseCallback(cb.Data)
	if !ok {
		log.Debug("unknown callback", "callback", cb.Data, "user", name)
		return
	}
	if user.ContractID == "" {
		b.sendMessage(user.TgID, "⭕️ No contract loaded")
		return
	}

	if action == actionRead {
		b.callFunction(user, action, function, nil)
		return
	}

	ctx, cancel := b.requestContext()
	defer cancel()
	fn, err := b.function(ctx, user.TgID, user.ContractID, function)
	if err != nil {
		b.sendText(user.TgID, "⭕️ "+err.Error())
		return
	}
	if !fn.HasInputs() {
		b.callFunction(user, action, function, nil)
		return
	}

	b.forceReply(user.TgID, argsPrompt(action, fn))
}
