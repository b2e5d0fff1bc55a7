package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedBacklogAndLiveSubmissions(t *testing.T) {
	server, _ := newTestServer(t, true)
	ts := httptest.NewServer(server)
	defer ts.Close()

	post := func(body string) {
		resp, err := http.Post(ts.URL+submitPath, "application/json", bytes.NewReader([]byte(body)))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	post(`{"q":"before"}`)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+feedPath, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg FeedMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "backlog", msg.Type)
	assert.JSONEq(t, `{"q":"before"}`, string(msg.Submission))

	require.Eventually(t, func() bool {
		return server.feed.Clients() == 1
	}, 5*time.Second, 10*time.Millisecond)

	post(`{"q":"after"}`)
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "submission", msg.Type)
	assert.JSONEq(t, `{"q":"after"}`, string(msg.Submission))
}

func TestFeedDropsClosedClients(t *testing.T) {
	server, _ := newTestServer(t, true)
	ts := httptest.NewServer(server)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+feedPath, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return server.feed.Clients() == 1
	}, 5*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool {
		return server.feed.Clients() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestFeedDeliversEachSubmissionOnce(t *testing.T) {
	server, store := newTestServer(t, true)
	ts := httptest.NewServer(server)
	defer ts.Close()

	const total = 20
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			body := fmt.Sprintf(`{"n":%d}`, i)
			resp, err := http.Post(ts.URL+submitPath, "application/json", strings.NewReader(body))
			if err == nil {
				resp.Body.Close()
			}
		}
	}()

	// Connect while submissions are still arriving.
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+feedPath, nil)
	require.NoError(t, err)
	defer conn.Close()
	wg.Wait()

	seen := make(map[int]int)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for i := 0; i < total; i++ {
		var msg FeedMessage
		require.NoError(t, conn.ReadJSON(&msg))
		var sub struct{ N int }
		require.NoError(t, json.Unmarshal(msg.Submission, &sub))
		seen[sub.N]++
	}
	assert.Len(t, seen, total)
	for n, count := range seen {
		assert.Equal(t, 1, count, n)
	}

	// Nothing beyond the stored submissions arrives.
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var extra FeedMessage
	assert.Error(t, conn.ReadJSON(&extra))

	all, err := store.All()
	require.NoError(t, err)
	assert.Len(t, all, total)
}
