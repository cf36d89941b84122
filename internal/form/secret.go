package form

import "sync"

// SecretToggle is the view state behind a "show password" control.
type SecretToggle struct {
	mu   sync.Mutex
	show bool
}

// Toggle flips visibility and returns the new value.
func (t *SecretToggle) Toggle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.show = !t.show
	return t.show
}

func (t *SecretToggle) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.show
}

// InputType is the input type a renderer should use for the secret field.
func (t *SecretToggle) InputType() string {
	if t.Visible() {
		return "text"
	}
	return "password"
}

// Mask returns value as it should be shown: verbatim when visible, otherwise
// one '*' per rune.
func (t *SecretToggle) Mask(value string) string {
	if t.Visible() {
		return value
	}
	masked := make([]rune, 0, len(value))
	for range value {
		masked = append(masked, '*')
	}
	return string(masked)
}
