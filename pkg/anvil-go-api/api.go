// Package api is a client for the Anvil editor's local HTTP and websocket API.
//
// Create an Anvil using New or NewFromEnv, then use the high-level methods such as Window,
// WindowBodyString and WindowBodySelections, or the low-level Get, GetInto, Post and Put.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/websocket"
)

func checkHttpError(rsp *http.Response, msg string) error {
	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		body, _ := io.ReadAll(rsp.Body)
		rsp.Body.Close()
		return fmt.Errorf("%s: response contained a non-success status code (%d) %s", msg, rsp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func prefixError(err error, msg string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", msg, err)
}

type URLs struct {
	Host  string
	Proto string
	Port  string
}

func NewURLs(port string) URLs {
	return URLs{
		Proto: "http",
		Host:  "localhost",
		Port:  port,
	}
}

func (u URLs) Build(path string) string {
	return fmt.Sprintf("%s://%s:%s%s", u.Proto, u.Host, u.Port, path)
}

type Anvil struct {
	sessId string
	urls   URLs
	client http.Client
}

func New(sessId, port string) Anvil {
	return Anvil{
		sessId: sessId,
		urls:   NewURLs(port),
	}
}

func NewFromEnv() (anvil Anvil, err error) {
	sessId := os.Getenv("ANVIL_API_SESS")
	port := os.Getenv("ANVIL_API_PORT")

	if sessId == "" {
		err = fmt.Errorf("environment variable ANVIL_API_SESS is not set")
		return
	}
	if port == "" {
		err = fmt.Errorf("environment variable ANVIL_API_PORT is not set")
		return
	}

	anvil = Anvil{
		sessId: sessId,
		urls:   NewURLs(port),
	}
	return
}

// Get is a low-level API that performs an HTTP GET request to
// Anvil and returns the response.
func (a Anvil) Get(path string) (rsp *http.Response, err error) {
	req, url, err := a.buildReq(http.MethodGet, path, nil)
	if err != nil {
		return
	}

	rsp, err = a.client.Do(req)
	err = prefixError(err, fmt.Sprintf("GET to %s failed", url))
	if err != nil {
		return
	}
	err = checkHttpError(rsp, fmt.Sprintf("GET to %s failed", url))
	return
}

// GetInto is a low-level API that performs an HTTP GET request to
// Anvil and decodes the response into resp. It is decoded using
// the encoding/json package.
func (a Anvil) GetInto(path string, resp interface{}) (err error) {
	raw, err := a.GetBytes(path)
	if err != nil {
		return
	}
	err = json.Unmarshal(raw, resp)
	err = prefixError(err, fmt.Sprintf("Error decoding JSON GET response body, body is '%s'", raw))
	return
}

// GetBytes is a low-level API that performs an HTTP GET request to
// Anvil and returns the whole response body.
func (a Anvil) GetBytes(path string) (body []byte, err error) {
	rsp, err := a.Get(path)
	if err != nil {
		return
	}
	defer rsp.Body.Close()

	body, err = io.ReadAll(rsp.Body)
	err = prefixError(err, fmt.Sprintf("Error reading body of GET response from %s", path))
	return
}

// Post is a low-level API that performs an HTTP POST request to
// Anvil with the body in `body` and returns the response. Body should
// usually be a reader that reads a JSON encoded value.
func (a Anvil) Post(path string, body io.Reader) (rsp *http.Response, err error) {
	req, url, err := a.buildReq(http.MethodPost, path, body)
	if err != nil {
		return
	}

	rsp, err = a.client.Do(req)
	err = prefixError(err, fmt.Sprintf("POST to %s failed", url))
	if err != nil {
		return
	}
	err = checkHttpError(rsp, fmt.Sprintf("POST to %s failed", url))
	return

}

// Put is a low-level API that performs an HTTP PUT request to
// Anvil with the body in `body` and returns the response. Body should
// usually be a reader that reads a JSON encoded value.
func (a Anvil) Put(path string, body io.Reader) (rsp *http.Response, err error) {
	req, url, err := a.buildReq(http.MethodPut, path, body)
	if err != nil {
		return
	}

	rsp, err = a.client.Do(req)
	err = prefixError(err, fmt.Sprintf("PUT to %s failed", url))
	if err != nil {
		return
	}
	err = checkHttpError(rsp, fmt.Sprintf("PUT to %s failed", url))
	return
}

func (a Anvil) buildReq(method, path string, body io.Reader) (req *http.Request, url string, err error) {
	url = a.urls.Build(path)
	req, err = http.NewRequest(method, url, body)
	err = prefixError(err, fmt.Sprintf("Error building %s request for %s", method, url))
	if err != nil {
		return
	}

	a.setHeaderFields(&req.Header)
	return
}

func (a Anvil) setHeaderFields(hdr *http.Header) {
	hdr.Add("Anvil-Sess", a.sessId)
	hdr.Add("Content-Type", "application/json")
	hdr.Add("Accept", "application/json")
}

// Websock creates a websocket connection with Anvil to receive notifications. The handlers
// in `handlers` are called when notifications arrive from Anvil.
func (a Anvil) Websock(handlers WebsockHandlers) (ws Websock, err error) {
	dialer := websocket.Dialer{}
	hdr := make(http.Header)
	a.setHeaderFields(&hdr)

	urls := a.urls
	urls.Proto = "ws"
	url := urls.Build("/ws")

	var conn *websocket.Conn
	conn, _, err = dialer.Dial(url, hdr)

	err = prefixError(err, fmt.Sprintf("GET to %s failed", url))
	if err != nil {
		return
	}

	ws = Websock{
		conn:     conn,
		handlers: handlers,
	}
	return
}

// Execute is a high-level API to post to /execute in Anvil, which executes
// a command. It is run as if it was run from the editor tag.
func (a Anvil) Execute(command string, args []string) (err error) {
	return a.execute(-1, command, args)
}

// ExecuteInWin is a high-level API to post to /execute in Anvil, which executes
// a command. It is run as if executed in the specified window.
func (a Anvil) ExecuteInWin(win Window, command string, args []string) (err error) {
	return a.execute(win.Id, command, args)
}

func (a Anvil) execute(winId int, command string, args []string) (err error) {
	val := map[string]interface{}{
		"cmd":   command,
		"args":  args,
		"winid": winId,
	}
	b, err := json.Marshal(val)
	if err != nil {
		err = fmt.Errorf("marshalling command to JSON failed: %w", err)
		return
	}

	rsp, err := a.Post("/execute", bytes.NewReader(b))
	closeBody(rsp)
	return
}

func closeBody(rsp *http.Response) {
	if rsp != nil && rsp.Body != nil {
		rsp.Body.Close()
	}
}

// Windows is a high-level API to get from /wins in Anvil, which returns
// the windows
func (a Anvil) Windows() (wins []Window, err error) {
	err = a.GetInto("/wins", &wins)
	if err != nil {
		return
	}

	return
}

var noBody io.Reader

// NewWindow is a high-level API to post to /wins in Anvil, which creates
// a new window and returns it
func (a Anvil) NewWindow() (win Window, err error) {
	rsp, err := a.Post("/wins", noBody)
	if err != nil {
		err = fmt.Errorf("creating new window failed: %w", err)
		return
	}
	defer rsp.Body.Close()

	raw, err := io.ReadAll(rsp.Body)
	if err != nil {
		err = fmt.Errorf("reading response from creating window failed: %w", err)
		return
	}

	err = json.Unmarshal(raw, &win)
	if err != nil {
		err = fmt.Errorf("decoding JSON response after creating window failed: %w", err)
		return
	}
	return
}

// Window is a high-level API to get from /wins/%d/info/ in Anvil, which returns
// the information about the window with the given id
func (a Anvil) Window(id int) (win Window, err error) {
	err = a.GetInto(fmt.Sprintf("/wins/%d/info", id), &win)
	return
}

// WindowTag is a high-level API to get from /wins/%d/tag in Anvil, which
// returns the window tag
func (a Anvil) WindowTag(win Window) (tag string, err error) {
	b, err := a.GetBytes(fmt.Sprintf("/wins/%d/tag", win.Id))
	tag = string(b)
	return
}

// SetWindowTag is a high-level API to put to /wins/%d/tag, which sets
// the window tag
func (a Anvil) SetWindowTag(win Window, tag string) (err error) {
	rsp, err := a.Put(fmt.Sprintf("/wins/%d/tag", win.Id), strings.NewReader(tag))
	closeBody(rsp)
	return
}

func (a Anvil) SetWindowBody(win Window, body io.Reader) (err error) {
	rsp, err := a.Put(fmt.Sprintf("/wins/%d/body", win.Id), body)
	closeBody(rsp)
	return
}

func (a Anvil) SetWindowBodyString(win Window, body string) (err error) {
	return a.SetWindowBody(win, strings.NewReader(body))
}

// AppendWindowBodyString adds s to the end of the window body.
func (a Anvil) AppendWindowBodyString(win Window, s string) (err error) {
	rsp, err := a.Post(fmt.Sprintf("/wins/%d/body", win.Id), strings.NewReader(s))
	closeBody(rsp)
	return
}

// WindowBody returns a reader for the body of the window. The caller must close it.
func (a Anvil) WindowBody(win Window) (body io.ReadCloser, err error) {
	rsp, err := a.Get(fmt.Sprintf("/wins/%d/body", win.Id))
	if err != nil {
		return
	}
	body = rsp.Body
	return
}

func (a Anvil) WindowBodyString(win Window) (body string, err error) {
	b, err := a.GetBytes(fmt.Sprintf("/wins/%d/body", win.Id))
	body = string(b)
	return
}

func (a Anvil) WindowBodyInfo(win Window) (body WindowBody, err error) {
	err = a.GetInto(fmt.Sprintf("/wins/%d/body/info", win.Id), &body)
	return
}

// WindowBodySelections returns the selections in the window body. Offsets are in runes.
func (a Anvil) WindowBodySelections(win Window) (sels []Selection, err error) {
	err = a.GetInto(fmt.Sprintf("/wins/%d/selections", win.Id), &sels)
	return
}

// WindowBodyCursors returns the rune offsets of the cursors in the window body.
func (a Anvil) WindowBodyCursors(win Window) (cursors []int, err error) {
	err = a.GetInto(fmt.Sprintf("/wins/%d/body/cursors", win.Id), &cursors)
	return
}

// SetWindowBodyCursors moves the cursors in the window body to the given rune offsets.
func (a Anvil) SetWindowBodyCursors(win Window, cursors []int) (err error) {
	b, err := json.Marshal(cursors)
	if err != nil {
		return
	}
	rsp, err := a.Put(fmt.Sprintf("/wins/%d/body/cursors", win.Id), bytes.NewReader(b))
	closeBody(rsp)
	return
}

// RegisterCommands tells Anvil to send an Exec notification to this client when one of
// the named commands is executed.
func (a Anvil) RegisterCommands(names ...string) (err error) {
	b, err := json.Marshal(names)
	if err != nil {
		return
	}
	rsp, err := a.Post("/cmds", bytes.NewReader(b))
	closeBody(rsp)
	return
}
