package text

// Renderer resolves a named report template against its data.
type Renderer interface {
	RenderTemplate(name string, data map[string]any) (string, error)
}
