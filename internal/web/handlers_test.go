package web

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/thisarray/xoxo/internal/app"
	"github.com/thisarray/xoxo/internal/domain"
)

func newTestServer(t *testing.T) (*app.Service, http.Handler) {
	t.Helper()
	s := app.NewService()
	h := NewServer(s, WithHeartbeat(time.Second))
	return s, h
}

func newGame(t *testing.T, svc *app.Service) *app.GameState {
	t.Helper()
	gs, err := svc.CreateGame(context.Background(), app.DefaultSettings())
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	return gs
}

func postForm(h http.Handler, path string, form url.Values, player string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if player != "" {
		req.AddCookie(&http.Cookie{Name: "player_id", Value: player})
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestIndexPage(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "<form") || !strings.Contains(body, "action=\"/game\"") {
		t.Fatalf("index should contain create form; got body: %q", body)
	}
	for _, field := range []string{`name="width"`, `name="height"`, `name="length"`, `name="marker"`, `name="first"`} {
		if !strings.Contains(body, field) {
			t.Fatalf("index form missing %s", field)
		}
	}
}

func TestHealthz(t *testing.T) {
	_, h := newTestServer(t)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/healthz", nil))
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "ok" {
		t.Fatalf("unexpected health response %d %q", rr.Code, rr.Body.String())
	}
}

func TestCreateRedirectsToGame(t *testing.T) {
	svc, h := newTestServer(t)
	form := url.Values{"width": {"4"}, "height": {"2"}, "length": {"3"}, "marker": {"O"}, "first": {"1"}}
	rr := postForm(h, "/game", form, "")
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	loc := rr.Result().Header.Get("Location")
	if !strings.HasPrefix(loc, "/game/") {
		t.Fatalf("expected redirect to /game/{id}, got %q", loc)
	}
	gs, ok := svc.Get(context.Background(), strings.TrimPrefix(loc, "/game/"))
	if !ok {
		t.Fatalf("game %q not registered", loc)
	}
	b := gs.Board
	if b.Width() != 4 || b.Height() != 2 || b.WinLength() != 3 || b.PlayerMarker() != domain.O {
		t.Fatalf("settings not applied: %s", b)
	}
	if b.Moves() != 1 {
		t.Fatalf("computer should have opened, moves=%d", b.Moves())
	}
}

func TestCreateRejectsBadSettings(t *testing.T) {
	_, h := newTestServer(t)
	cases := []url.Values{
		{"width": {"four"}},
		{"marker": {"Z"}},
		{"length": {"1"}},
		{"width": {"4"}, "height": {"4"}},
		{"width": {"4294967296"}, "height": {"4294967296"}},
		{"width": {"4294967297"}, "height": {"4294967295"}},
	}
	for _, form := range cases {
		if rr := postForm(h, "/game", form, ""); rr.Code != http.StatusBadRequest {
			t.Fatalf("%v: expected 400, got %d", form, rr.Code)
		}
	}
}

func TestGamePageSetsCookieAndAutoClaims(t *testing.T) {
	svc, h := newTestServer(t)
	gs := newGame(t, svc)

	req := httptest.NewRequest("GET", "/game/"+url.PathEscape(gs.ID), nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var playerID string
	for _, c := range rr.Result().Cookies() {
		if c.Name == "player_id" {
			playerID = c.Value
			break
		}
	}
	if playerID == "" {
		t.Fatalf("expected player_id cookie to be set")
	}
	latest, ok := svc.Get(context.Background(), gs.ID)
	if !ok || latest.Player != playerID {
		t.Fatalf("expected auto-claim; have player=%q pid=%q", latest.Player, playerID)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "hx-ext=\"sse\"") || !strings.Contains(body, "/game/"+gs.ID+"/events") {
		t.Fatalf("expected SSE wiring in page; got body: %q", body)
	}
	if n := strings.Count(body, `name="x"`); n != 9 {
		t.Fatalf("expected 9 cells, got %d", n)
	}
}

func TestGamePageUnknownID(t *testing.T) {
	_, h := newTestServer(t)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/game/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestJoinEndpointReturnsBoardFragment(t *testing.T) {
	svc, h := newTestServer(t)
	gs := newGame(t, svc)
	if ok, _, _ := svc.Join(context.Background(), gs.ID, "p1"); !ok {
		t.Fatalf("p1 should be seated")
	}
	rr := postForm(h, "/game/"+gs.ID+"/join", url.Values{}, "p2")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "id=\"board\"") {
		t.Fatalf("expected board fragment, got %q", body)
	}
	if !strings.Contains(body, "You are a spectator") {
		t.Fatalf("p2 should be told they spectate, got %q", body)
	}
}

func TestPlayEndpointUpdatesStateAndReturnsFragment(t *testing.T) {
	svc, h := newTestServer(t)
	gs := newGame(t, svc)
	svc.Join(context.Background(), gs.ID, "p1")

	rr := postForm(h, "/game/"+gs.ID+"/play", url.Values{"x": {"0"}, "y": {"0"}}, "p1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "id=\"board\"") {
		t.Fatalf("expected board fragment, got %q", rr.Body.String())
	}
	latest, _ := svc.Get(context.Background(), gs.ID)
	if latest.Board.Moves() != 2 {
		t.Fatalf("expected human move and reply, moves=%d", latest.Board.Moves())
	}
	if latest.Board.Marker(1, 1) != domain.O {
		t.Fatalf("computer should take the center after a corner opening: %s", latest.Board)
	}
}

func TestPlayEndpointErrors(t *testing.T) {
	svc, h := newTestServer(t)
	gs := newGame(t, svc)
	svc.Join(context.Background(), gs.ID, "p1")

	cases := []struct {
		form   url.Values
		player string
		want   string
	}{
		{url.Values{"x": {"0"}, "y": {"0"}}, "p2", "You are a spectator"},
		{url.Values{"x": {"9"}, "y": {"0"}}, "p1", "Invalid move"},
		{url.Values{"x": {"a"}, "y": {"b"}}, "p1", "Invalid move"},
	}
	for _, c := range cases {
		rr := postForm(h, "/game/"+gs.ID+"/play", c.form, c.player)
		if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), c.want) {
			t.Fatalf("%v as %s: expected %q, got %d %q", c.form, c.player, c.want, rr.Code, rr.Body.String())
		}
	}
	if rr := postForm(h, "/game/missing/play", url.Values{"x": {"0"}, "y": {"0"}}, "p1"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown game, got %d", rr.Code)
	}
}

func TestHintEndpoint(t *testing.T) {
	svc, h := newTestServer(t)
	gs := newGame(t, svc)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/game/"+gs.ID+"/hint", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var hint app.Hint
	if err := json.Unmarshal(rr.Body.Bytes(), &hint); err != nil {
		t.Fatalf("decode hint: %v", err)
	}
	if hint.Move != (domain.Point{X: 1, Y: 1}) {
		t.Fatalf("expected center hint, got %v", hint.Move)
	}
	if len(hint.Candidates) != 9 || len(hint.Scores) != 3 {
		t.Fatalf("unexpected hint shape %+v", hint)
	}
}

func TestBoardTextEndpoint(t *testing.T) {
	svc, h := newTestServer(t)
	gs := newGame(t, svc)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/game/"+gs.ID+"/board.txt", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	b, err := domain.Parse(rr.Body.String())
	if err != nil {
		t.Fatalf("board.txt should parse: %v", err)
	}
	if !b.Equal(gs.Board) {
		t.Fatalf("round trip mismatch: %s vs %s", b, gs.Board)
	}
}

func TestEventsEndpointSSEHeaders(t *testing.T) {
	svc, h := newTestServer(t)
	gs := newGame(t, svc)
	req := httptest.NewRequest("GET", "/game/"+gs.ID+"/events", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Result().Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("expected text/event-stream, got %q", ct)
	}
}

// readEvent returns the data lines of the next SSE event with the given name.
func readEvent(t *testing.T, sc *bufio.Scanner, name string) string {
	t.Helper()
	var data []string
	inEvent := false
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "event: "+name:
			inEvent = true
		case inEvent && strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		case inEvent && line == "":
			return strings.Join(data, "\n")
		}
	}
	t.Fatalf("stream ended before %q event: %v", name, sc.Err())
	return ""
}

func TestEventsStreamBoards(t *testing.T) {
	svc, h := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()
	gs := newGame(t, svc)
	svc.Join(context.Background(), gs.ID, "p1")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", srv.URL+"/game/"+gs.ID+"/events", nil)
	req.Header.Set("Accept", "text/event-stream")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()
	sc := bufio.NewScanner(resp.Body)

	first := readEvent(t, sc, "board")
	if !strings.Contains(first, `id="board"`) {
		t.Fatalf("expected initial board, got %q", first)
	}
	if _, err := svc.Play(context.Background(), gs.ID, "p1", 0, 0); err != nil {
		t.Fatalf("Play: %v", err)
	}
	next := readEvent(t, sc, "board")
	if strings.Count(next, "disabled") != 2 {
		t.Fatalf("expected two filled cells after the move, got %q", next)
	}
}

func TestWebsocketPushesSnapshots(t *testing.T) {
	svc, h := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()
	gs := newGame(t, svc)
	svc.Join(context.Background(), gs.ID, "p1")

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/game/"+gs.ID+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	read := func() snapshot {
		t.Helper()
		for {
			var msg wsMessage
			if err := conn.ReadJSON(&msg); err != nil {
				t.Fatalf("read: %v", err)
			}
			if msg.Type != "state" {
				continue
			}
			var snap snapshot
			if err := json.Unmarshal(msg.Payload, &snap); err != nil {
				t.Fatalf("decode snapshot: %v", err)
			}
			return snap
		}
	}

	first := read()
	if first.ID != gs.ID || first.Cells != strings.Repeat(" ", 9) || first.Status != "playing" {
		t.Fatalf("unexpected first snapshot %+v", first)
	}
	if _, err := svc.Play(context.Background(), gs.ID, "p1", 1, 1); err != nil {
		t.Fatalf("Play: %v", err)
	}
	next := read()
	if next.Cells != "O   X    " || next.LastMove != (domain.Point{X: 0, Y: 0}) {
		t.Fatalf("unexpected snapshot after move %+v", next)
	}
}

func TestWebsocketUnknownGame(t *testing.T) {
	_, h := newTestServer(t)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/game/missing/ws", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
