package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/silence48/new-soroban-fiddle/data"
	"github.com/silence48/new-soroban-fiddle/invoke"
	"github.com/silence48/new-soroban-fiddle/network"
	"github.com/silence48/new-soroban-fiddle/utils"
	"github.com/silence48/new-soroban-fiddle/wallet"
)

func (b *Bot) privateReplyReceived(message *tgbotapi.Message) {
	user := b.database.GetUserByTgID(int64(message.From.ID))
	name := utils.FormatTgUser(message.From)
	log.Info("reply received", "reply to message", firstLine(message.ReplyToMessage.Text), "user", name)

	if user == nil {
		log.Warn("reply received from unknown user", "user", name)
		return
	}

	text := strings.TrimSpace(message.Text)

	switch message.ReplyToMessage.Text {
	case utils.LoadContractMessage:
		b.setContract(user, text)
		return
	case utils.SetPublicKeyMessage:
		b.setPublicKey(user, text)
		return
	}

	action, function, ok := parsePrompt(message.ReplyToMessage.Text)
	if !ok {
		return
	}
	if user.ContractID == "" {
		b.sendMessage(user.TgID, "⭕️ No contract loaded")
		return
	}

	b.callFunction(user, action, function, invoke.ParseArgLines(message.Text))
}

func (b *Bot) setContract(user *data.User, contractID string) {
	_, err := network.ContractAddress(contractID)
	if err != nil {
		b.sendMessage(user.TgID, "⭕️ Invalid contract id")
		return
	}

	err = b.database.SetUserContract(user, contractID)
	if err != nil {
		b.sendMessage(user.TgID, "⭕️ Error saving contract in database")
		return
	}

	b.loadContract(user, contractID)
}

func (b *Bot) setPublicKey(user *data.User, publicKey string) {
	_, err := wallet.NewStaticKey(publicKey)
	if err != nil {
		b.sendMessage(user.TgID, "⭕️ Invalid public key, expected an account address (G...)")
		return
	}

	err = b.database.SetUserPublicKey(user, publicKey)
	if err != nil {
		b.sendMessage(user.TgID, "⭕️ Error saving public key in database")
		return
	}

	b.sendMessage(user.TgID, "✅ Public key saved")
}

func firstLine(text string) string {
	return strings.SplitN(text, "\n", 2)[0]
}
