package handlers

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tramitesplus/cuadre-api/internal/services"
)

func TestStream_DeliversEvents(t *testing.T) {
	hub := services.NewBroadcaster(4, zerolog.Nop())
	h := NewBroadcastHandler(hub)
	app := fiber.New()
	app.Get("/broadcast", h.Stream)

	go func() {
		deadline := time.Now().Add(2 * time.Second)
		for hub.Count() == 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		hub.Publish(services.EventTransactionUpdated, map[string]string{"id": rowA})
		hub.Close()
	}()

	req := httptest.NewRequest("GET", "/broadcast", nil)
	resp, err := app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.HasPrefix(text, "retry: 3000\n"))
	assert.Contains(t, text, `data: {"type":"transaction.updated","data":{"id":"`+rowA+`"}}`)
	assert.Equal(t, 0, hub.Count())
}

func TestPublish(t *testing.T) {
	hub := services.NewBroadcaster(4, zerolog.Nop())
	sub := hub.Subscribe()
	defer sub.Close()

	app := fiber.New()
	app.Post("/broadcast", NewBroadcastHandler(hub).Publish)

	resp, result := doJSON(t, app, "POST", "/broadcast", map[string]interface{}{
		"type": "refresh",
		"data": map[string]string{"scope": "cuadre"},
	})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), result["data"].(map[string]interface{})["delivered"])

	var event services.Event
	require.NoError(t, json.Unmarshal(<-sub.C, &event))
	assert.Equal(t, "refresh", event.Type)
}

func TestPublish_RequiresType(t *testing.T) {
	app := fiber.New()
	app.Post("/broadcast", NewBroadcastHandler(services.NewBroadcaster(1, zerolog.Nop())).Publish)

	resp, _ := doJSON(t, app, "POST", "/broadcast", map[string]interface{}{"data": 1})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

type brokenConn struct{}

func (brokenConn) Write(p []byte) (int, error) {
	return 0, errors.New("connection closed")
}

func TestWriteEvent(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, writeEvent(w, []byte(`{"type":"cuadre.updated"}`)))
	require.NoError(t, w.Flush())
	assert.Equal(t, "data: {\"type\":\"cuadre.updated\"}\n\n", buf.String())

	// payloads larger than the buffer reach the connection during the write
	small := bufio.NewWriterSize(brokenConn{}, 16)
	err := writeEvent(small, []byte(strings.Repeat("x", 64)))
	assert.EqualError(t, err, "connection closed")
}
