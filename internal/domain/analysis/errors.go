package analysis

import "errors"

// ErrBusy pool analisis penuh; retryable, bukan kegagalan per-tool.
var ErrBusy = errors.New("analysis capacity exhausted, retry later")

// ErrUnreadableInput file upload tidak bisa dibaca untuk sniffing kind.
var ErrUnreadableInput = errors.New("uploaded file is unreadable")

// OrchestrationError kegagalan level infrastruktur orchestrator.
// Berbeda dari "tidak ada tool yang applicable" (itu report kosong valid).
type OrchestrationError struct {
	Op        string
	Err       error
	Retryable bool
}

func (e *OrchestrationError) Error() string {
	return "orchestration " + e.Op + ": " + e.Err.Error()
}

func (e *OrchestrationError) Unwrap() error { return e.Err }
