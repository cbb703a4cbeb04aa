// Package template holds the code templates (model definition, training loop,
// inference script) and the placeholder renderer that fills them.
//
// Placeholders use the {{NAME}} form where NAME is upper case letters, digits
// and underscores, starting with a letter or underscore. Everything else in a
// template is copied to the output verbatim, which keeps Python indentation
// and f-string braces intact.
//
//	store := template.Default()
//	out, err := store.Render("train", template.Binding{"MODEL_NAME": "AIModel"})
//	if errors.Is(err, template.ErrMissingBinding) {
//	    // supply defaults and retry
//	}
package template
