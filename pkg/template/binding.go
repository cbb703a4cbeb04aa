package template

// Binding maps placeholder names to the literal text substituted for them.
// A Binding is built per render call; the renderer never mutates it.
type Binding map[string]string

// Clone returns a shallow copy of b.
func (b Binding) Clone() Binding {
	out := make(Binding, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Merge returns a copy of b overlaid with the entries of other.
func (b Binding) Merge(other Binding) Binding {
	out := b.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// WithDefaults returns a copy of b where every variable of tpl that carries a
// default and has no entry in b is filled in. Existing entries win.
func (b Binding) WithDefaults(tpl Template) Binding {
	out := b.Clone()
	for _, v := range tpl.variables {
		if v.Default == nil {
			continue
		}
		if _, ok := out[v.Name]; ok {
			continue
		}
		out[v.Name] = *v.Default
	}
	return out
}

// Missing returns the placeholders of tpl that b does not bind, sorted.
func (b Binding) Missing(tpl Template) []string {
	var out []string
	for _, v := range tpl.variables {
		if _, ok := b[v.Name]; !ok {
			out = append(out, v.Name)
		}
	}
	return out
}
