package handlers

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"
)

//go:embed assets/index.html
var assets embed.FS

type index struct {
	page []byte
}

// newIndex renders the page once with the node it should talk to.
func newIndex(nodeHost string) (index, error) {
	tmpl, err := template.ParseFS(assets, "assets/index.html")
	if err != nil {
		return index{}, err
	}

	var b bytes.Buffer
	if err := tmpl.Execute(&b, struct{ NodeHost string }{nodeHost}); err != nil {
		return index{}, err
	}

	return index{page: b.Bytes()}, nil
}

func (ig index) handler(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(ig.page)
	return err
}
