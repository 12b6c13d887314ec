package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/silence48/new-soroban-fiddle/data"
	"github.com/silence48/new-soroban-fiddle/utils"
)

// registeredUser - returns the user who sent a message, registering them on first contact
func (b *Bot) registeredUser(from *tgbotapi.User) *data.User {
	name := utils.FormatTgUser(from)
	user := b.database.GetUserByTgUser(from)
	if user != nil {
		return user
	}

	user, err := b.database.AddUser(from)
	if err != nil {
		log.Error("can not add user in database", "user", name, "error", err)
		b.reportError(fmt.Sprintf("Can not add user '%s' in database. %s", name, err))
		return nil
	}
	log.Info("new user registered", "user", name)

	return user
}

func (b *Bot) privateCommandReceived(message *tgbotapi.Message) {
	cmd := message.Command()
	args := strings.TrimSpace(message.CommandArguments())
	log.Info("command received", "command", cmd, "args", args, "user", utils.FormatTgUser(message.From))

	user := b.registeredUser(message.From)
	if user == nil {
		return
	}

	switch cmd {
	case "start":
		b.mainMenu(user)
	case "help":
		b.sendMessage(user.TgID, utils.MainHelp)
	case "load":
		if args == "" {
			b.forceReply(user.TgID, utils.LoadContractMessage)
			return
		}
		b.setContract(user, args)
	}
}

func (b *Bot) reportError(text string) {
	if b.owner == 0 {
		return
	}
	_, _ = b.tgBot.Send(tgbotapi.NewMessage(b.owner, "⛔️ "+text))
}
