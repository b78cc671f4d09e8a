package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAnvil(t *testing.T, h http.Handler) Anvil {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	return Anvil{
		sessId: "sess1",
		urls:   URLs{Proto: "http", Host: u.Hostname(), Port: u.Port()},
	}
}

type request struct {
	method string
	path   string
	body   string
	sess   string
}

// recorder answers every request with rsp and remembers the last request.
func recorder(rsp string, last *request) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		*last = request{method: r.Method, path: r.URL.Path, body: string(b), sess: r.Header.Get("Anvil-Sess")}
		w.Write([]byte(rsp))
	}
}

func TestWindowRequests(t *testing.T) {
	win := Window{Id: 3}

	tests := []struct {
		name     string
		rsp      string
		call     func(a Anvil) (interface{}, error)
		expected interface{}
		req      request
	}{
		{
			name:     "window info",
			rsp:      `{"Id":3,"GlobalPath":"/home/jw/a.do","Path":"/home/jw/a.do"}`,
			call:     func(a Anvil) (interface{}, error) { return a.Window(3) },
			expected: Window{Id: 3, GlobalPath: "/home/jw/a.do", Path: "/home/jw/a.do"},
			req:      request{method: "GET", path: "/wins/3/info"},
		},
		{
			name:     "body",
			rsp:      "sysuse auto\n",
			call:     func(a Anvil) (interface{}, error) { return a.WindowBodyString(win) },
			expected: "sysuse auto\n",
			req:      request{method: "GET", path: "/wins/3/body"},
		},
		{
			name: "body reader",
			rsp:  "di 1\n",
			call: func(a Anvil) (interface{}, error) {
				r, err := a.WindowBody(win)
				if err != nil {
					return nil, err
				}
				defer r.Close()
				b, err := io.ReadAll(r)
				return string(b), err
			},
			expected: "di 1\n",
			req:      request{method: "GET", path: "/wins/3/body"},
		},
		{
			name:     "body info",
			rsp:      `{"Len":12}`,
			call:     func(a Anvil) (interface{}, error) { return a.WindowBodyInfo(win) },
			expected: WindowBody{Len: 12},
			req:      request{method: "GET", path: "/wins/3/body/info"},
		},
		{
			name:     "set body",
			call:     func(a Anvil) (interface{}, error) { return nil, a.SetWindowBodyString(win, "sysuse auto\n") },
			expected: nil,
			req:      request{method: "PUT", path: "/wins/3/body", body: "sysuse auto\n"},
		},
		{
			name:     "selections",
			rsp:      `[{"Start":1,"End":4,"Len":3}]`,
			call:     func(a Anvil) (interface{}, error) { return a.WindowBodySelections(win) },
			expected: []Selection{{Start: 1, End: 4, Len: 3}},
			req:      request{method: "GET", path: "/wins/3/selections"},
		},
		{
			name:     "cursors",
			rsp:      `[0,12]`,
			call:     func(a Anvil) (interface{}, error) { return a.WindowBodyCursors(win) },
			expected: []int{0, 12},
			req:      request{method: "GET", path: "/wins/3/body/cursors"},
		},
		{
			name:     "tag",
			rsp:      "/home/jw/a.do Del Put",
			call:     func(a Anvil) (interface{}, error) { return a.WindowTag(win) },
			expected: "/home/jw/a.do Del Put",
			req:      request{method: "GET", path: "/wins/3/tag"},
		},
		{
			name:     "windows",
			rsp:      `[{"Id":1,"GlobalPath":"/a/+Stata","Path":"/a/+Stata"}]`,
			call:     func(a Anvil) (interface{}, error) { return a.Windows() },
			expected: []Window{{Id: 1, GlobalPath: "/a/+Stata", Path: "/a/+Stata"}},
			req:      request{method: "GET", path: "/wins"},
		},
		{
			name:     "new window",
			rsp:      `{"Id":9}`,
			call:     func(a Anvil) (interface{}, error) { return a.NewWindow() },
			expected: Window{Id: 9},
			req:      request{method: "POST", path: "/wins"},
		},
		{
			name:     "set cursors",
			call:     func(a Anvil) (interface{}, error) { return nil, a.SetWindowBodyCursors(win, []int{7}) },
			expected: nil,
			req:      request{method: "PUT", path: "/wins/3/body/cursors", body: "[7]"},
		},
		{
			name:     "append",
			call:     func(a Anvil) (interface{}, error) { return nil, a.AppendWindowBodyString(win, "hi\n") },
			expected: nil,
			req:      request{method: "POST", path: "/wins/3/body", body: "hi\n"},
		},
		{
			name:     "set tag",
			call:     func(a Anvil) (interface{}, error) { return nil, a.SetWindowTag(win, "/a/+Stata Del! ") },
			expected: nil,
			req:      request{method: "PUT", path: "/wins/3/tag", body: "/a/+Stata Del! "},
		},
		{
			name:     "register commands",
			call:     func(a Anvil) (interface{}, error) { return nil, a.RegisterCommands("Stata", "Stata2") },
			expected: nil,
			req:      request{method: "POST", path: "/cmds", body: `["Stata","Stata2"]`},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var last request
			a := testAnvil(t, recorder(tc.rsp, &last))

			v, err := tc.call(a)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, v)

			tc.req.sess = "sess1"
			assert.Equal(t, tc.req, last)
		})
	}
}

func TestExecuteInWin(t *testing.T) {
	var last request
	a := testAnvil(t, recorder("", &last))

	require.NoError(t, a.ExecuteInWin(Window{Id: 4}, "Put", nil))
	assert.Equal(t, "/execute", last.path)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(last.body), &body))
	assert.Equal(t, "Put", body["cmd"])
	assert.Equal(t, float64(4), body["winid"])

	require.NoError(t, a.Execute("Look", []string{"sysuse"}))
	assert.Equal(t, "/execute", last.path)
	require.NoError(t, json.Unmarshal([]byte(last.body), &body))
	assert.Equal(t, "Look", body["cmd"])
	assert.Equal(t, []interface{}{"sysuse"}, body["args"])
	assert.Equal(t, float64(-1), body["winid"], "not run in a window")
}

func TestHttpErrors(t *testing.T) {
	a := testAnvil(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such window", http.StatusNotFound)
	}))

	_, err := a.Window(99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(404)")
	assert.Contains(t, err.Error(), "no such window")
	assert.Contains(t, err.Error(), "/wins/99/info")

	err = a.SetWindowBodyCursors(Window{Id: 99}, []int{0})
	assert.Error(t, err)
}

func TestBadJSON(t *testing.T) {
	var last request
	a := testAnvil(t, recorder("not json", &last))
	_, err := a.WindowBodySelections(Window{Id: 1})
	assert.Error(t, err)
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("ANVIL_API_SESS", "")
	t.Setenv("ANVIL_API_PORT", "")
	_, err := NewFromEnv()
	assert.Error(t, err)

	t.Setenv("ANVIL_API_SESS", "abc")
	_, err = NewFromEnv()
	assert.Error(t, err)

	t.Setenv("ANVIL_API_PORT", "4000")
	a, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4000/wins", a.urls.Build("/wins"))
}

func TestWebsock(t *testing.T) {
	upgrader := websocket.Upgrader{}
	a := testAnvil(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws" || r.Header.Get("Anvil-Sess") != "sess1" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c.WriteMessage(websocket.TextMessage, []byte(`{"WinId":2,"Op":2,"Cmd":["Stata","para"]}`))
		c.WriteMessage(websocket.BinaryMessage, []byte{1, 2})
		c.WriteMessage(websocket.TextMessage, []byte(`{`))
		c.Close()
	}))

	type result struct {
		n   Notification
		err error
	}
	got := make(chan result, 10)

	ws, err := a.Websock(WebsockHandlers{
		Notification: func(n *Notification, err error) {
			got <- result{*n, err}
		},
	})
	require.NoError(t, err)

	done := make(chan error)
	go func() { done <- ws.Run() }()

	select {
	case r := <-got:
		require.NoError(t, r.err)
		assert.Equal(t, Notification{WinId: 2, Op: NotificationOpExec, Cmd: []string{"Stata", "para"}}, r.n)
	case <-time.After(5 * time.Second):
		t.Fatal("no notification")
	}

	select {
	case r := <-got:
		assert.Error(t, r.err, "malformed notifications are passed on with an error")
	case <-time.After(5 * time.Second):
		t.Fatal("no second notification")
	}

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return when the connection closed")
	}
}

func TestWebsockNotConnected(t *testing.T) {
	var ws Websock
	assert.Error(t, ws.Run())
	assert.NoError(t, ws.Close())
	assert.Equal(t, "Exec", NotificationOpExec.String())
}
