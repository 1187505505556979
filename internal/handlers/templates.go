package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

//go:embed all:templates
var templateFS embed.FS

var pageNames = []string{
	"index", "register", "login", "account", "create_post",
	"user_posts", "chat", "messages", "error",
}

var (
	pages            = parsePages()
	chatFragmentTmpl = template.Must(template.ParseFS(templateFS, "templates/_chat_messages.html"))
)

func parsePages() map[string]*template.Template {
	m := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		m[name] = template.Must(template.ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		))
	}
	return m
}

func renderPage(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages[name].ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("Failed to render page")
	}
}

func renderChatFragment(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chatFragmentTmpl.ExecuteTemplate(w, "_chat_messages.html", data); err != nil {
		log.Error().Err(err).Msg("Failed to render chat fragment")
	}
}
