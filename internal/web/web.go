package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"mistral-chat/internal/chatview"
)

//go:embed templates/index.html
var templates embed.FS

var indexTmpl = template.Must(template.ParseFS(templates, "templates/index.html"))

// PageHandler serves the chat page rendered once for a locale.
type PageHandler struct {
	page []byte
}

func NewPageHandler(locale chatview.Locale) (*PageHandler, error) {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, locale); err != nil {
		return nil, err
	}
	return &PageHandler{page: buf.Bytes()}, nil
}

func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(h.page)
}
