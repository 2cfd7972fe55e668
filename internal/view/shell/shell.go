// Package shell renders the static page around the user list.
package shell

import (
	"bytes"
	"html/template"
	"io"
)

type Renderer interface {
	Render(w io.Writer) error
}

var pageTemplate = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<header><h1>{{.Title}}</h1></header>
<main>{{.Content}}</main>
</body>
</html>
`))

type Shell struct {
	title string
	list  Renderer
}

func New(title string, list Renderer) *Shell {
	return &Shell{title: title, list: list}
}

func (s *Shell) Render(w io.Writer) error {
	var content bytes.Buffer
	if err := s.list.Render(&content); err != nil {
		return err
	}
	return pageTemplate.Execute(w, struct {
		Title   string
		Content template.HTML
	}{
		Title:   s.title,
		Content: template.HTML(content.String()),
	})
}
