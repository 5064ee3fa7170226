package integration

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kasuganosora/friendsvc/events"
	mw "github.com/kasuganosora/friendsvc/middleware"
	"github.com/kasuganosora/friendsvc/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func friendIDs(t *testing.T, ts *TestServer, id int64) []int64 {
	t.Helper()
	resp := ts.Get(t, fmt.Sprintf("/friends/%d", id))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users []map[string]interface{}
	ReadJSON(t, resp, &users)
	out := make([]int64, len(users))
	for i, u := range users {
		out[i] = int64(u["id"].(float64))
	}
	return out
}

func TestHealth(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	resp := ts.Get(t, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(mw.TraceIDHeader))
	resp.Body.Close()
}

func TestPopulateThenFriendGraph(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	resp := ts.Do(t, http.MethodPut, "/populate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var users []map[string]interface{}
	ReadJSON(t, ts.Get(t, "/users/"), &users)
	require.Len(t, users, 2)
	u1 := int64(users[0]["id"].(float64))
	u2 := int64(users[1]["id"].(float64))

	u3 := ts.CreateUser(t, "third@x.io")
	resp = ts.PostJSON(t, fmt.Sprintf("/friends/new/?id_1=%d&id_2=%d", u3, u1), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, []int64{u2, u3}, friendIDs(t, ts, u1))
	assert.Equal(t, []int64{u1}, friendIDs(t, ts, u3))

	// Deleting the hub user dissolves both friendships.
	resp = ts.Do(t, http.MethodDelete, fmt.Sprintf("/user/delete/%d", u1), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	assert.Empty(t, friendIDs(t, ts, u2))
	assert.Empty(t, friendIDs(t, ts, u3))

	var pairs []map[string]interface{}
	ReadJSON(t, ts.Get(t, "/friends/"), &pairs)
	assert.Empty(t, pairs)

	// The seeded item was never owned and survives.
	var items []map[string]interface{}
	ReadJSON(t, ts.Get(t, "/items/"), &items)
	require.Len(t, items, 1)
	assert.Equal(t, "THE key", items[0]["title"])
}

func TestAuditTrail(t *testing.T) {
	ts := NewTestServer(t)

	resp := ts.PostJSON(t, "/users/", map[string]string{"email": "audited@x.io", "password": "pw"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	traceID := resp.Header.Get(mw.TraceIDHeader)
	resp.Body.Close()

	resp = ts.PostJSON(t, "/users/", map[string]string{"email": "audited@x.io", "password": "pw"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = ts.Get(t, "/users/")
	resp.Body.Close()

	ts.Close()

	var logs []model.AuditLog
	require.NoError(t, ts.DB.Order("id").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, "POST /users/", logs[0].Action)
	assert.Equal(t, traceID, logs[0].TraceID)
	assert.Equal(t, http.StatusOK, logs[0].Status)
	assert.Empty(t, logs[0].Error)
	assert.Equal(t, http.StatusBadRequest, logs[1].Status)
	assert.NotEmpty(t, logs[1].Error)
}

func TestEventsOverWebSocket(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	conn, resp, err := websocket.DefaultDialer.Dial(ts.WSURL, nil)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()
	time.Sleep(50 * time.Millisecond)

	id := ts.CreateUser(t, "ws@x.io")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev events.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, events.UserCreated, ev.Type)
	assert.Contains(t, string(ev.Data), fmt.Sprintf(`"id":%d`, id))
}

func TestEventsOverSSE(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: connected", lines.Text())

	ts.CreateUser(t, "sse@x.io")

	var got []string
	for lines.Scan() {
		line := lines.Text()
		if strings.HasPrefix(line, "event:") && line != "event: connected" {
			got = append(got, strings.TrimPrefix(line, "event:"))
			break
		}
	}
	assert.Equal(t, []string{events.UserCreated}, got)
}
