package foyer

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
)

// TemplateEngine is the rendering contract: given a view identifier and the
// data a handler produced, return the final output bytes. Render is value
// producing on purpose — nothing is written to the client until the entry
// point flushes the response, which keeps the dispatch chain free of side
// effects and lets the server report a failed render as a structured error
// instead of a half-written body.
type TemplateEngine interface {
	// Render executes the named view with data. The context carries the
	// request deadline so an engine backed by remote template storage can
	// honor cancellation; the built-in engine ignores it.
	Render(ctx context.Context, viewName string, data any) ([]byte, error)
}

// GoTemplateEngine renders through the standard library's html/template.
// The template set is parsed up front (LoadFromGlob, LoadFromFiles or
// LoadFromFS) and is safe for concurrent execution afterwards.
type GoTemplateEngine struct {
	T *template.Template
}

func (g *GoTemplateEngine) Render(ctx context.Context, viewName string, data any) ([]byte, error) {
	bs := &bytes.Buffer{}
	err := g.T.ExecuteTemplate(bs, viewName, data)
	return bs.Bytes(), err
}

// LoadFromGlob parses every template matching pattern into the engine's
// template set, replacing whatever was loaded before.
func (g *GoTemplateEngine) LoadFromGlob(pattern string) error {
	var err error
	g.T, err = template.ParseGlob(pattern)
	return err
}

// LoadFromFiles parses the named template files into the engine's template
// set, replacing whatever was loaded before.
func (g *GoTemplateEngine) LoadFromFiles(filenames ...string) error {
	var err error
	g.T, err = template.ParseFiles(filenames...)
	return err
}

// LoadFromFS parses templates matching the patterns out of fsys, which lets
// callers embed views into the binary with embed.FS.
func (g *GoTemplateEngine) LoadFromFS(fsys fs.FS, patterns ...string) error {
	var err error
	g.T, err = template.ParseFS(fsys, patterns...)
	return err
}
