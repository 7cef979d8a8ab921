package view

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/mbrock/hostenv/internal/environment"
)

const pageStyle = `body{font-family:-apple-system,system-ui,sans-serif;margin:0}
.stack{display:flex;flex-direction:column;align-items:center;gap:12px;padding:16px}
.title{font-size:1.75rem;font-weight:600;margin:0}
.subheadline{font-size:0.95rem;color:#6b6b70;margin:0}`

// Page renders a vertically stacked title and environment label.
func Page(title string, env environment.Environment) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`+
			templ.EscapeString(title)+`</title><style>`+pageStyle+`</style></head><body>`)
		if err != nil {
			return err
		}
		if err := stack(title, env).Render(ctx, w); err != nil {
			return err
		}
		_, err = io.WriteString(w, `</body></html>`)
		return err
	})
}

// stack is the body fragment, usable on its own for partial updates.
func stack(title string, env environment.Environment) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<main class="stack" data-environment="`+
			templ.EscapeString(env.String())+`"><h1 class="title">`+
			templ.EscapeString(title)+`</h1><p class="subheadline">`+
			templ.EscapeString(Label(env))+`</p></main>`)
		return err
	})
}
