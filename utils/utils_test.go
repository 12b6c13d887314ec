package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTgUser(t *testing.T) {
	assert.Equal(t, "@alice (Alice Smith [1])", FormatTgUser(&tgbotapi.User{ID: 1, UserName: "alice", FirstName: "Alice", LastName: "Smith"}))
	assert.Equal(t, "Bob [2]", FormatTgUser(&tgbotapi.User{ID: 2, FirstName: "Bob"}))
}

func TestGetHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/small":
			_, _ = w.Write([]byte("wasm"))
		case "/large":
			_, _ = w.Write([]byte(strings.Repeat("x", 100)))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()
	ctx := context.Background()

	body, err := GetHTTP(ctx, server.URL+"/small", 10)
	require.NoError(t, err)
	assert.Equal(t, "wasm", string(body))

	_, err = GetHTTP(ctx, server.URL+"/large", 10)
	assert.Regexp(t, "larger than 10 bytes", err)

	_, err = GetHTTP(ctx, server.URL+"/missing", 10)
	assert.Regexp(t, "unexpected status", err)
}
