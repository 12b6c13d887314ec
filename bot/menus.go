package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/silence48/new-soroban-fiddle/data"
)

func (b *Bot) mainMenu(user *data.User) {
	if user.LastMenuID > 0 {
		_, _ = b.tgBot.DeleteMessage(tgbotapi.DeleteMessageConfig{
			ChatID:    user.TgID,
			MessageID: user.LastMenuID,
		})
	}

	text := "`Main Menu`"
	if user.ContractID != "" {
		text += "\n\r`Contract:` " + user.ContractID
	}
	if user.PublicKey != "" {
		text += "\n\r`Public key:` " + user.PublicKey
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📥 Load contract", "LoadContract"),
			tgbotapi.NewInlineKeyboardButtonData("🔑 Set public key", "SetPublicKey"),
		),
	)
	if user.ContractID != "" {
		keyboard.InlineKeyboard = append(keyboard.InlineKeyboard,
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📜 Functions", "Functions"),
			),
		)
	}
	keyboard.InlineKeyboard = append(keyboard.InlineKeyboard,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❔ Help", "MainHelp"),
			tgbotapi.NewInlineKeyboardButtonData("❕ About", "About"),
		),
	)

	msg := tgbotapi.NewMessage(user.TgID, text)
	msg.ReplyMarkup = keyboard
	msg.ParseMode = tgbotapi.ModeMarkdown
	resp, _ := b.tgBot.Send(msg)
	user.LastMenuID = resp.MessageID
}
