package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/silence48/new-soroban-fiddle/data"
	"github.com/silence48/new-soroban-fiddle/invoke"
	"github.com/silence48/new-soroban-fiddle/wallet"
)

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

type getSpecRequest struct {
	ContractID string  `json:"contractId"`
	RequestSeq *uint64 `json:"requestSeq,omitempty"`
}

type getSpecResponse struct {
	Spec       []data.FunctionDescriptor `json:"spec"`
	RequestSeq *uint64                   `json:"requestSeq,omitempty"`
}

type callRequest struct {
	ContractID string            `json:"contractId"`
	Function   string            `json:"function"`
	Args       map[string]string `json:"args"`
	PublicKey  string            `json:"publicKey"`
	RequestSeq *uint64           `json:"requestSeq,omitempty"`
}

type callResponse struct {
	Result     interface{} `json:"result"`
	RequestSeq *uint64     `json:"requestSeq,omitempty"`
}

type errorResponse struct {
	Error      string  `json:"error"`
	RequestSeq *uint64 `json:"requestSeq,omitempty"`
}

// badRequestError - the request names something that does not exist or is malformed
type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string {
	return e.err.Error()
}

// Handlers - the HTTP handlers of the API and the page
type Handlers struct {
	specs  SpecLoader
	caller Caller
}

// NewHandlers - creates a new Handlers object
func NewHandlers(specs SpecLoader, caller Caller) (*Handlers, error) {
	if specs == nil {
		return nil, errors.New("nil spec loader")
	}
	if caller == nil {
		return nil, errors.New("nil caller")
	}

	return &Handlers{specs: specs, caller: caller}, nil
}

// Router - returns the routes of the service
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/getSpec", h.getSpec).Methods(http.MethodPost)
	r.HandleFunc("/api/read", h.call(actionRead)).Methods(http.MethodPost)
	r.HandleFunc("/api/simulate", h.call(actionSimulate)).Methods(http.MethodPost)
	r.HandleFunc("/api/invoke", h.call(actionInvoke)).Methods(http.MethodPost)
	r.HandleFunc("/", h.page).Methods(http.MethodGet)
	r.HandleFunc("/call", h.pageCall).Methods(http.MethodPost)

	return r
}

func (h *Handlers) getSpec(w http.ResponseWriter, r *http.Request) {
	var req getSpecRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	functions, err := h.specs.Load(r.Context(), req.ContractID)
	if err != nil {
		log.Debug("can not load contract spec", "contract", req.ContractID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), RequestSeq: req.RequestSeq})
		return
	}

	writeJSON(w, http.StatusOK, getSpecResponse{Spec: functions, RequestSeq: req.RequestSeq})
}

const (
	actionRead     = "read"
	actionSimulate = "simulate"
	actionInvoke   = "invoke"
)

func (h *Handlers) call(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req callRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		result, err := h.execute(r.Context(), action, req)
		if err != nil {
			status := http.StatusInternalServerError
			var badReq *badRequestError
			if errors.As(err, &badReq) {
				status = http.StatusBadRequest
			}
			writeJSON(w, status, errorResponse{Error: err.Error(), RequestSeq: req.RequestSeq})
			return
		}

		writeJSON(w, http.StatusOK, callResponse{Result: result, RequestSeq: req.RequestSeq})
	}
}

func (h *Handlers) execute(ctx context.Context, action string, req callRequest) (interface{}, error) {
	var keys wallet.KeySource
	if req.PublicKey != "" {
		key, err := wallet.NewStaticKey(strings.TrimSpace(req.PublicKey))
		if err != nil {
			return nil, &badRequestError{err: err}
		}
		keys = key
	}

	functions, err := h.specs.Load(ctx, req.ContractID)
	if err != nil {
		return nil, err
	}
	fn, err := invoke.Find(functions, req.Function)
	if err != nil {
		return nil, &badRequestError{err: err}
	}

	switch action {
	case actionRead:
		if fn.HasInputs() {
			return nil, &badRequestError{err: errors.Errorf("function %s takes arguments, simulate it instead", fn.Name)}
		}
		return h.caller.Read(ctx, req.ContractID, fn, keys)
	case actionSimulate:
		return h.caller.Simulate(ctx, req.ContractID, fn, req.Args, keys)
	default:
		return h.caller.Invoke(ctx, req.ContractID, fn, req.Args)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		log.Warn("can not write response", "error", err)
	}
}
