package tui

// Option configures the renderer.
type Option func(*Renderer)

// WithPromptDriver replaces the survey driver. A nil driver is ignored.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithMessagePrefixes sets what info and error lines start with. The
// defaults are "" and "! ".
func WithMessagePrefixes(info, problem string) Option {
	return func(r *Renderer) {
		r.infoPrefix = info
		r.errorPrefix = problem
	}
}

// WithConfirm toggles the "Submit asset?" question at the end of Fill.
func WithConfirm(enabled bool) Option {
	return func(r *Renderer) {
		r.confirm = enabled
	}
}
