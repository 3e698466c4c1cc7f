package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/thisarray/xoxo/internal/app"
	"github.com/thisarray/xoxo/internal/domain"
)

type templates struct {
	game  *template.Template
	board *template.Template
	index *template.Template
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>xoxo</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
<style>
.row{display:flex}.row form{margin:0}
.row button{width:3em;height:3em;font-size:1.4em}
.last{font-weight:bold;color:#c33}
</style>
</head><body>{{template "content" .}}</body></html>`))
	template.Must(base.New("board").Parse(boardTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(indexTemplate))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<h1>xoxo</h1>
<p>{{.Width}}x{{.Height}}, {{.Length}} in a row. <a href="/">New game</a> · <a href="/game/{{.ID}}/hint">Hint</a></p>
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events">
  <div sse-swap="board" hx-target="#board" hx-swap="outerHTML">{{template "board" .}}</div>
</div>`))
	board := template.Must(template.New("board_only").Parse(boardTemplate))
	return &templates{game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, data any) []byte {
	var buf bytes.Buffer
	_ = t.Execute(&buf, data)
	return buf.Bytes()
}

const indexTemplate = `<h1>xoxo</h1>
<form action="/game" method="post">
  <label>Width <input type="number" name="width" min="1" value="{{.Width}}"></label>
  <label>Height <input type="number" name="height" min="1" value="{{.Height}}"></label>
  <label>In a row <input type="number" name="length" min="2" value="{{.WinLength}}"></label>
  <label>Play as <select name="marker">
    <option value="X"{{if eq .Human.String "X"}} selected{{end}}>X</option>
    <option value="O"{{if eq .Human.String "O"}} selected{{end}}>O</option>
  </select></label>
  <label><input type="checkbox" name="first" value="1"{{if .ComputerFirst}} checked{{end}}> Computer moves first</label>
  <button>Create</button>
</form>
<p>Boards are limited to {{.MaxCells}} cells.</p>`

const boardTemplate = `
<div id="board">
  {{if .Error}}<div class="alert">{{.Error}}</div>{{end}}
  <div class="status">{{.Status}}</div>
  {{range .Rows}}
  <div class="row">
    {{range .}}
      <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
        <input type="hidden" name="x" value="{{.X}}">
        <input type="hidden" name="y" value="{{.Y}}">
        <button type="submit"{{if not .Open}} disabled{{end}}{{if .Last}} class="last"{{end}}>{{.Symbol}}</button>
      </form>
    {{end}}
  </div>
  {{end}}
</div>
`

type cellView struct {
	X, Y   int
	Symbol string
	Open   bool
	Last   bool
}

type boardView struct {
	ID     string
	Width  int
	Height int
	Length int
	Rows   [][]cellView
	Status string
	Error  string
}

type indexView struct {
	app.Settings
	MaxCells int
}

func newBoardView(gs app.GameState, errMsg string) boardView {
	b := gs.Board
	v := boardView{
		ID:     gs.ID,
		Width:  b.Width(),
		Height: b.Height(),
		Length: b.WinLength(),
		Rows:   make([][]cellView, b.Height()),
		Status: statusText(gs),
		Error:  errMsg,
	}
	for y := range v.Rows {
		v.Rows[y] = make([]cellView, b.Width())
		for x := range v.Rows[y] {
			m := b.Marker(x, y)
			v.Rows[y][x] = cellView{
				X:      x,
				Y:      y,
				Symbol: m.String(),
				Open:   m == domain.Blank && !b.Done(),
				Last:   gs.LastMove == domain.Point{X: x, Y: y},
			}
		}
	}
	return v
}

func statusText(gs app.GameState) string {
	switch gs.Status() {
	case "human":
		return "You win!"
	case "computer":
		return "The computer wins."
	case "draw":
		return "Draw."
	}
	return "Your move, you are " + gs.Board.PlayerMarker().String() + "."
}

// ensurePlayerCookie returns the caller's player id, issuing one if needed.
func ensurePlayerCookie(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie("player_id"); err == nil && c.Value != "" {
		return c.Value
	}
	v := app.NewPlayerID()
	http.SetCookie(w, &http.Cookie{Name: "player_id", Value: v, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	return v
}
