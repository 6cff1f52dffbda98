package intake

// Prompt is either static text or a template over the session snapshot.
// The zero value renders as an empty prompt.
type Prompt struct {
	text     string
	template func(Snapshot) string
}

// Static is a fixed prompt.
func Static(text string) Prompt {
	return Prompt{text: text}
}

// Templated is a prompt computed from the snapshot, e.g. to address the visitor by name.
func Templated(fn func(Snapshot) string) Prompt {
	return Prompt{template: fn}
}

// IsTemplated reports which variant p is.
func (p Prompt) IsTemplated() bool {
	return p.template != nil
}

// Render resolves the prompt text.
func (p Prompt) Render(s Snapshot) string {
	if p.template != nil {
		return p.template(s)
	}
	return p.text
}
