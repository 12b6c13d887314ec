package api

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"github.com/silence48/new-soroban-fiddle/data"
)

const argFieldPrefix = "arg_"

type pageData struct {
	ContractID string
	PublicKey  string
	CanInvoke  bool
	Functions  []data.FunctionDescriptor
	Error      string
	Result     *pageResult
}

type pageResult struct {
	Function string
	Action   string
	Output   string
	Failed   bool
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"argField": func(name string) string { return argFieldPrefix + name },
	"join": func(params []data.Param) string {
		parts := make([]string, 0, len(params))
		for _, p := range params {
			parts = append(parts, p.Name+": "+p.Type)
		}
		return strings.Join(parts, ", ")
	},
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Soroban Fiddle</title></head>
<body>
<h1>Soroban Fiddle</h1>
<form method="get" action="/">
  <input type="text" name="contractId" placeholder="Contract ID (C...)" size="60" value="{{.ContractID}}">
  <button type="submit">Load</button>
</form>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{with .Result}}
<div class="result">
  <h3>{{.Action}} {{.Function}}</h3>
  <pre{{if .Failed}} class="error"{{end}}>{{.Output}}</pre>
</div>
{{end}}
{{$page := .}}
{{range .Functions}}
<div class="function">
  <h2>{{.Name}}({{join .Inputs}}){{if .Outputs}} -> {{join .Outputs}}{{end}}</h2>
  {{if .Doc}}<p>{{.Doc}}</p>{{end}}
  <form method="post" action="/call">
    <input type="hidden" name="contractId" value="{{$page.ContractID}}">
    <input type="hidden" name="function" value="{{.Name}}">
    <input type="text" name="publicKey" placeholder="Public key (G...)" size="60" value="{{$page.PublicKey}}">
    {{range .Inputs}}
    <label>{{.Name}} <input type="text" name="{{argField .Name}}" placeholder="{{.Type}}"></label>
    {{end}}
    {{if .Inputs}}
    <button type="submit" name="action" value="simulate">Simulate</button>
    {{else}}
    <button type="submit" name="action" value="read">Read</button>
    {{end}}
    {{if $page.CanInvoke}}<button type="submit" name="action" value="invoke">Invoke</button>{{end}}
  </form>
</div>
{{end}}
</body>
</html>
`))

func (h *Handlers) page(w http.ResponseWriter, r *http.Request) {
	pd := &pageData{
		ContractID: strings.TrimSpace(r.URL.Query().Get("contractId")),
		PublicKey:  strings.TrimSpace(r.URL.Query().Get("publicKey")),
		CanInvoke:  h.caller.CanInvoke(),
	}
	h.loadFunctions(r.Context(), pd)

	h.render(w, pd)
}

func (h *Handlers) pageCall(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	req := callRequest{
		ContractID: strings.TrimSpace(r.PostForm.Get("contractId")),
		Function:   r.PostForm.Get("function"),
		PublicKey:  strings.TrimSpace(r.PostForm.Get("publicKey")),
		Args:       make(map[string]string),
	}
	for key, values := range r.PostForm {
		if strings.HasPrefix(key, argFieldPrefix) && len(values) > 0 {
			req.Args[strings.TrimPrefix(key, argFieldPrefix)] = values[0]
		}
	}

	action := r.PostForm.Get("action")
	switch action {
	case actionRead, actionSimulate, actionInvoke:
	default:
		action = actionSimulate
	}

	pd := &pageData{
		ContractID: req.ContractID,
		PublicKey:  req.PublicKey,
		CanInvoke:  h.caller.CanInvoke(),
	}
	h.loadFunctions(r.Context(), pd)

	pr := &pageResult{Function: req.Function, Action: action}
	result, err := h.execute(r.Context(), action, req)
	if err != nil {
		pr.Output = err.Error()
		pr.Failed = true
	} else {
		pr.Output = formatResult(result)
	}
	pd.Result = pr

	h.render(w, pd)
}

func (h *Handlers) loadFunctions(ctx context.Context, pd *pageData) {
	if pd.ContractID == "" {
		return
	}

	functions, err := h.specs.Load(ctx, pd.ContractID)
	if err != nil {
		pd.Error = err.Error()
		return
	}
	pd.Functions = functions
}

func (h *Handlers) render(w http.ResponseWriter, pd *pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTemplate.Execute(w, pd)
	if err != nil {
		log.Error("can not render page", "error", err)
	}
}

func formatResult(result interface{}) string {
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err.Error()
	}

	return string(b)
}
