package langpack

import (
	"sort"
	"sync"
	"time"

	"github.com/matzehuels/langpack/pkg/provider"
)

// Diagnostic is the last failure seen for a repository.
type Diagnostic struct {
	Slug       string            `json:"slug"`
	Provider   provider.Provider `json:"provider"`
	StatusCode int               `json:"status_code,omitempty"`
	Wait       time.Duration     `json:"wait,omitempty"`
	RecordedAt time.Time         `json:"recorded_at"`
	Message    string            `json:"message"`
}

// Diagnostics is an in-memory record of recent failures, kept for the
// lifetime of the process. It is advisory only; the resolver never reads
// it to decide whether to fetch.
type Diagnostics struct {
	mu      sync.Mutex
	entries map[string]Diagnostic
}

// NewDiagnostics creates an empty record.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{entries: make(map[string]Diagnostic)}
}

// Record stores d, replacing any earlier diagnostic for the same slug.
func (d *Diagnostics) Record(diag Diagnostic) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[diag.Slug] = diag
}

// Clear removes the diagnostic for slug.
func (d *Diagnostics) Clear(slug string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.entries, slug)
}

// Reset removes every diagnostic.
func (d *Diagnostics) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = make(map[string]Diagnostic)
}

// Snapshot returns the diagnostics sorted by slug.
func (d *Diagnostics) Snapshot() []Diagnostic {
	d.mu.Lock()
	out := make([]Diagnostic, 0, len(d.entries))
	for _, diag := range d.entries {
		out = append(out, diag)
	}
	d.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}
