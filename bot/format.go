package bot

import (
	"encoding/json"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/silence48/new-soroban-fiddle/data"
	"github.com/silence48/new-soroban-fiddle/utils"
)

const (
	actionRead     = "Read"
	actionSimulate = "Simulate"
	actionInvoke   = "Invoke"
)

func formatParams(params []data.Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.Name+": "+p.Type)
	}

	return strings.Join(parts, ", ")
}

// functionText - the signature of a function followed by its documentation
func functionText(fn *data.FunctionDescriptor) string {
	text := fmt.Sprintf("%s(%s)", fn.Name, formatParams(fn.Inputs))
	if len(fn.Outputs) > 0 {
		types := make([]string, 0, len(fn.Outputs))
		for _, out := range fn.Outputs {
			types = append(types, out.Type)
		}
		text += " -> " + strings.Join(types, ", ")
	}
	if fn.Doc != "" {
		text += "\n" + fn.Doc
	}

	return text
}

func callbackData(action string, function string) string {
	return ":" + action + "_" + function
}

// parseCallback - splits ":Action_function". Function names may hold underscores
func parseCallback(cbData string) (string, string, bool) {
	if !strings.HasPrefix(cbData, ":") {
		return "", "", false
	}

	params := strings.SplitN(strings.TrimPrefix(cbData, ":"), "_", 2)
	if len(params) != 2 || params[1] == "" {
		return "", "", false
	}
	switch params[0] {
	case actionRead, actionSimulate, actionInvoke:
		return params[0], params[1], true
	}

	return "", "", false
}

func functionKeyboard(fn *data.FunctionDescriptor, canInvoke bool) tgbotapi.InlineKeyboardMarkup {
	row := tgbotapi.NewInlineKeyboardRow()
	if fn.HasInputs() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🧪 Simulate", callbackData(actionSimulate, fn.Name)))
	} else {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("👓 Read", callbackData(actionRead, fn.Name)))
	}
	if canInvoke {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🚀 Invoke", callbackData(actionInvoke, fn.Name)))
	}

	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// argsPrompt - asks for the arguments of a function. The first line identifies the call
// when the user replies
func argsPrompt(action string, fn *data.FunctionDescriptor) string {
	lines := []string{action + " " + fn.Name + utils.ArgsPromptSuffix}
	for _, in := range fn.Inputs {
		lines = append(lines, fmt.Sprintf("%s (%s)", in.Name, in.Type))
	}

	return strings.Join(lines, "\n")
}

func parsePrompt(text string) (string, string, bool) {
	first := strings.SplitN(text, "\n", 2)[0]
	if !strings.HasSuffix(first, utils.ArgsPromptSuffix) {
		return "", "", false
	}

	fields := strings.Fields(strings.TrimSuffix(first, utils.ArgsPromptSuffix))
	if len(fields) != 2 {
		return "", "", false
	}
	switch fields[0] {
	case actionSimulate, actionInvoke:
		return fields[0], fields[1], true
	}

	return "", "", false
}

func formatCallResult(res *data.CallResult) string {
	value, err := json.MarshalIndent(res.Value, "", "  ")
	if err != nil {
		value = []byte(res.Raw)
	}

	return fmt.Sprintf("✅ %s\n%s", res.Function, value)
}

func formatInvokeResult(res *data.InvokeResult) string {
	text := fmt.Sprintf("✅ %s\nstatus: %s\nhash: %s", res.Function, res.Status, res.Hash)
	if res.Ledger > 0 {
		text += fmt.Sprintf("\nledger: %d", res.Ledger)
	}

	return text
}
