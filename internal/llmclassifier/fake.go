package llmclassifier

import (
	"context"

	"github.com/dronewatch/dronewatch/internal/apierr"
)

// Fake is an in-memory Classifier for tests, grounded on the teacher's
// pattern of hand-written fakes over generated mocks for simple interfaces
// (see discovery-service's fakeScannerClient).
type Fake struct {
	// Verdicts maps title -> canned verdict. Keys are looked up verbatim.
	Verdicts map[string]Verdict
	// Default is returned when title isn't found in Verdicts.
	Default Verdict
	// Unavailable, when true, makes every call return ErrClassifierUnavailable.
	Unavailable bool
}

func (f *Fake) Classify(_ context.Context, title, _, _ string) (Verdict, error) {
	if f.Unavailable {
		return Verdict{}, apierr.ErrClassifierUnavailable
	}
	if v, ok := f.Verdicts[title]; ok {
		return v, nil
	}
	return f.Default, nil
}
