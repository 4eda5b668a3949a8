package diagnostics

import (
	"fmt"

	"github.com/rs/zerolog"
)

type Kind string

const (
	KindSourceRead         Kind = "source-read"
	KindUnresolved         Kind = "unresolved"
	KindCRS                Kind = "crs"
	KindMalformedAttribute Kind = "malformed-attribute"
	KindConflict           Kind = "conflict"
	KindSkippedFeature     Kind = "skipped-feature"
)

// Diagnostic records a single per-entity problem found during a run. None of
// them stop the run.
type Diagnostic struct {
	Stage   string `json:"stage"`
	Kind    Kind   `json:"kind"`
	Entity  string `json:"entity,omitempty"`
	Source  string `json:"source,omitempty"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Entity == "" {
		return fmt.Sprintf("[%s/%s] %s", d.Stage, d.Kind, d.Message)
	}

	return fmt.Sprintf("[%s/%s] %s: %s", d.Stage, d.Kind, d.Entity, d.Message)
}

type List []Diagnostic

func (l *List) Add(stage string, kind Kind, entity string, format string, args ...interface{}) {
	*l = append(*l, Diagnostic{
		Stage:   stage,
		Kind:    kind,
		Entity:  entity,
		Message: fmt.Sprintf(format, args...),
	})
}

func (l *List) Append(other List) {
	*l = append(*l, other...)
}

func (l List) OfKind(kind Kind) List {
	var filtered List
	for _, d := range l {
		if d.Kind == kind {
			filtered = append(filtered, d)
		}
	}

	return filtered
}

// Summary counts diagnostics by kind
func (l List) Summary() map[Kind]int {
	counts := map[Kind]int{}
	for _, d := range l {
		counts[d.Kind]++
	}

	return counts
}

func (l List) Log(logger zerolog.Logger) {
	for _, d := range l {
		logger.Debug().
			Str("stage", d.Stage).
			Str("kind", string(d.Kind)).
			Str("entity", d.Entity).
			Str("source", d.Source).
			Msg(d.Message)
	}
}
