// Package validator implements the four ordered admission layers of
// spec.md §4.3: keyword presence, regional-context exclusion, LLM
// classification, and geographic bounds. Each layer can reject a report
// outright; the first layer to reject wins. Layers 1-3 run on raw text
// alone (Validate) before the Ingest service ever calls the Geocoder;
// layer 4 (CheckBounds) runs separately, once coordinates exist.
package validator

import (
	"context"
	"errors"
	"strings"

	"github.com/dronewatch/dronewatch/internal/apierr"
	"github.com/dronewatch/dronewatch/internal/geo"
	"github.com/dronewatch/dronewatch/internal/llmclassifier"
	"github.com/dronewatch/dronewatch/internal/models"
	"github.com/dronewatch/dronewatch/internal/registry"
)

// Result is what a successful validation yields for the next stage
// (geocoder) to consume.
type Result struct {
	Verdict      llmclassifier.Verdict
	DegradedMode bool // true when layer 3 fell back because the classifier was unreachable
}

// Validator runs a RawReport through the four layers. It depends only on
// the narrow Anchors-style surfaces it actually needs, so it can be tested
// without a live registry or classifier.
type Validator struct {
	classifier llmclassifier.Classifier
}

// New constructs a Validator bound to classifier. Passing a
// *llmclassifier.Fake is the normal way to exercise this in tests.
func New(classifier llmclassifier.Classifier) *Validator {
	return &Validator{classifier: classifier}
}

// Validate runs report through layers 1-3 (keyword, excluded topic/region,
// LLM classifier) in order, short-circuiting on the first rejection. It
// takes no coordinates: layer 4 (geographic bounds) only makes sense once a
// location has been resolved, which for many reports means geocoding —
// expensive enough that the pipeline should only pay for it after the text
// layers have already admitted the report. Callers run CheckBounds
// separately, once coordinates are in hand.
func (v *Validator) Validate(ctx context.Context, report models.RawReport) (Result, error) {
	text := strings.ToLower(report.RawTitle + " " + report.RawBody)

	if !hasAnyKeyword(text, report.Language) {
		return Result{}, apierr.ErrNotAnIncident
	}
	if hasExcludedTopic(text) {
		return Result{}, apierr.ErrNotAnIncident
	}
	if hasExcludedRegion(text) {
		return Result{}, apierr.ErrForeignRegion
	}

	verdict, err := v.classifier.Classify(ctx, report.RawTitle, report.RawBody, report.Language)
	if err != nil {
		if errors.Is(err, apierr.ErrClassifierUnavailable) {
			// Degraded mode: layers 1+2 already passed, so admit on their
			// strength alone rather than blocking ingestion on the model.
			return Result{DegradedMode: true}, nil
		}
		return Result{}, err
	}
	if !verdict.Admit() {
		return Result{}, apierr.ErrNotAnIncident
	}

	return Result{Verdict: verdict}, nil
}

// CheckBounds is the Validator's fourth layer: coordinates must fall
// within the European operating bounds. Run only after a location has been
// established, whether by an explicitly supplied lat/lon or by the
// Geocoder resolving a location hint.
func (v *Validator) CheckBounds(lon, lat float64) error {
	if !geo.European.Contains(lon, lat) {
		return apierr.ErrForeignRegion
	}
	return nil
}

func hasAnyKeyword(text, lang string) bool {
	if words, ok := registry.DroneKeywords[lang]; ok {
		for _, w := range words {
			if strings.Contains(text, w) {
				return true
			}
		}
	}
	// Fall back to scanning every language's keyword set: feed language
	// hints are unreliable (spec.md §4.2), so a mislabeled report should
	// not be rejected purely on that basis.
	for _, words := range registry.DroneKeywords {
		for _, w := range words {
			if strings.Contains(text, w) {
				return true
			}
		}
	}
	return false
}

func hasExcludedTopic(text string) bool {
	for _, w := range registry.ExcludedTopicKeywords {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func hasExcludedRegion(text string) bool {
	for _, w := range registry.ExcludedRegionKeywords {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
