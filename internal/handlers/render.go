package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/weatherbook/webapp/types"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// pageData is the plain data handed to the view layer: the current
// username, drained flash messages, and whatever the page lists.
type pageData struct {
	Username string
	Flashes  []string
	Cities   []types.City
	Token    string
}

func render(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}
