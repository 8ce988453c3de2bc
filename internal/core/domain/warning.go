package domain

import "sync"

// WarningCode classifies a non-fatal diagnostic.
type WarningCode string

const (
	// WarnMissingModule reports an import that could not be resolved.
	WarnMissingModule WarningCode = "missing-module"
	// WarnMissingMetadata reports package metadata that could not be found.
	WarnMissingMetadata WarningCode = "missing-metadata"
	// WarnMissingData reports a collect-data package that could not be found.
	WarnMissingData WarningCode = "missing-data"
	// WarnExcludedDeclared reports a module that is both declared and excluded.
	WarnExcludedDeclared WarningCode = "excluded-declared"
	// WarnScanFailed reports a module whose imports could not be read.
	WarnScanFailed WarningCode = "scan-failed"
	// WarnMissingDoc reports a documentation file that does not exist.
	WarnMissingDoc WarningCode = "missing-doc"
)

// Warning is a diagnostic that does not fail the build but must reach the operator.
type Warning struct {
	Stage   Stage       `json:"stage"`
	Code    WarningCode `json:"code"`
	Subject string      `json:"subject"`
	Message string      `json:"message"`
}

// String renders the warning for log output.
func (w Warning) String() string {
	return w.Message + " (" + string(w.Code) + ": " + w.Subject + ")"
}

// Outcome is a value together with the warnings produced while computing it.
type Outcome[T any] struct {
	Value    T
	Warnings []Warning
}

// Warn appends a warning to the outcome.
func (o *Outcome[T]) Warn(w Warning) {
	o.Warnings = append(o.Warnings, w)
}

// Warnings accumulates warnings across stages. It is safe for concurrent use.
type Warnings struct {
	mu   sync.Mutex
	list []Warning
}

// Add appends warnings.
func (w *Warnings) Add(ws ...Warning) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.list = append(w.list, ws...)
}

// List returns a copy of the accumulated warnings.
func (w *Warnings) List() []Warning {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Warning, len(w.list))
	copy(out, w.list)
	return out
}

// Len returns the number of warnings.
func (w *Warnings) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.list)
}
