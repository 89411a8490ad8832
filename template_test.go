package foyer

import (
	"context"
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTestTemplates(g *GoTemplateEngine) error {
	tpl, err := template.New("userView").Parse("Hello {{.Name}}")
	if err != nil {
		return err
	}
	if _, err = tpl.New("defaultView").Parse("Nothing here"); err != nil {
		return err
	}
	g.T = tpl
	return nil
}

func TestGoTemplateEngine_Render(t *testing.T) {
	engine := &GoTemplateEngine{}
	require.NoError(t, parseTestTemplates(engine))

	out, err := engine.Render(context.Background(), "userView", map[string]string{"Name": "ada"})
	require.NoError(t, err)
	assert.Equal(t, "Hello ada", string(out))

	out, err = engine.Render(context.Background(), "defaultView", nil)
	require.NoError(t, err)
	assert.Equal(t, "Nothing here", string(out))
}

func TestGoTemplateEngine_RenderUnknownView(t *testing.T) {
	engine := &GoTemplateEngine{}
	require.NoError(t, parseTestTemplates(engine))

	_, err := engine.Render(context.Background(), "missingView", nil)
	assert.Error(t, err)
}

func TestGoTemplateEngine_EscapesData(t *testing.T) {
	engine := &GoTemplateEngine{}
	require.NoError(t, parseTestTemplates(engine))

	out, err := engine.Render(context.Background(), "userView",
		map[string]string{"Name": "<script>"})
	require.NoError(t, err)
	assert.Equal(t, "Hello &lt;script&gt;", string(out))
}
