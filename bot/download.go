package bot

import (
	"context"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pkg/errors"
	"github.com/silence48/new-soroban-fiddle/data"
	"github.com/silence48/new-soroban-fiddle/spec"
	"github.com/silence48/new-soroban-fiddle/utils"
)

func (b *Bot) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), b.requestTimeout)
}

func (b *Bot) downloadFile(ctx context.Context, message *tgbotapi.Message) ([]byte, error) {
	doc := message.Document
	if doc == nil {
		return nil, errors.New("nil document object")
	}
	if doc.FileSize > utils.MaxWasmSize {
		return nil, errors.Errorf("file larger than %d bytes", utils.MaxWasmSize)
	}

	file, err := b.tgBot.GetFile(tgbotapi.FileConfig{FileID: doc.FileID})
	if err != nil {
		return nil, err
	}

	return utils.GetHTTP(ctx, file.Link(b.tgBot.Token), utils.MaxWasmSize)
}

// documentReceived - lists the functions declared by an uploaded contract image
func (b *Bot) documentReceived(message *tgbotapi.Message) {
	user := b.registeredUser(message.From)
	if user == nil {
		return
	}
	if !strings.EqualFold(filepath.Ext(message.Document.FileName), ".wasm") {
		b.sendMessage(user.TgID, "⭕️ Send a compiled contract (.wasm)")
		return
	}

	tgID := user.TgID
	go func() {
		ctx, cancel := b.requestContext()
		defer cancel()

		functions, err := b.inspectUpload(ctx, message)
		if err != nil {
			log.Debug("can not inspect uploaded contract", "file", message.Document.FileName, "error", err)
			b.sendText(tgID, "⭕️ "+err.Error())
			return
		}

		b.sendText(tgID, "📜 "+message.Document.FileName)
		for i := range functions {
			b.sendText(tgID, functionText(&functions[i]))
		}
	}()
}

func (b *Bot) inspectUpload(ctx context.Context, message *tgbotapi.Message) ([]data.FunctionDescriptor, error) {
	wasm, err := b.downloadFile(ctx, message)
	if err != nil {
		return nil, errors.Wrap(err, "downloading file")
	}

	raw, err := spec.FromWasm(ctx, wasm)
	if err != nil {
		return nil, err
	}

	return spec.Normalize(raw)
}
