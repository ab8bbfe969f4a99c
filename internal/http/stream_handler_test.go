package http

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/terminal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCartEvent(t *testing.T, r *bufio.Reader) map[string]interface{} {
	t.Helper()
	for {
		text, err := r.ReadString('\n')
		require.NoError(t, err)
		if data, ok := strings.CutPrefix(strings.TrimSpace(text), "data: "); ok {
			var snap map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(data), &snap))
			return snap
		}
	}
}

func TestStreamCart(t *testing.T) {
	s := setupServer(t)
	srv := httptest.NewServer(s.handler)
	defer srv.Close()
	defer s.api.CloseStreams()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/cart/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := bufio.NewReader(resp.Body)
	first := readCartEvent(t, events)
	assert.Equal(t, float64(0), first["item_count"])

	_, err = s.term.AddItem(ctx, terminal.AddItem{ProductID: "soap", Quantity: 3})
	require.NoError(t, err)

	next := readCartEvent(t, events)
	assert.Equal(t, float64(3), next["item_count"])
}

func TestStreamCart_EndsOnClose(t *testing.T) {
	s := setupServer(t)
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/cart/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	events := bufio.NewReader(resp.Body)
	readCartEvent(t, events)

	s.api.CloseStreams()
	s.api.CloseStreams()

	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, events)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream still open after CloseStreams")
	}
}
