package echo

import (
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

const formPostTemplate = "form_post"

type formPostData struct {
	RedirectURI string
	Code        string
	State       string
	Nonce       string
}

var templates = template.Must(template.New(formPostTemplate).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Redirecting</title>
</head>
<body>
<form method="post" action="{{.RedirectURI}}">
<input type="hidden" name="code" value="{{.Code}}">
<input type="hidden" name="state" value="{{.State}}">
<noscript><button type="submit">Continue</button></noscript>
</form>
<script nonce="{{.Nonce}}">document.forms[0].submit();</script>
</body>
</html>
`))

// TemplateRenderer implements echo.Renderer with html/template.
type TemplateRenderer struct {
	templates *template.Template
}

func NewTemplateRenderer() *TemplateRenderer {
	return &TemplateRenderer{templates: templates}
}

func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}
