// SPDX-License-Identifier: MIT
//
// File: classify.go
// Role: Phenotype labels, outcome classes and the confusion matrix.

package validation

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultEffectThreshold separates no effect (fold change above it) from a
// deleterious dropout.
const DefaultEffectThreshold = 0.8

// ErrUnknownLabel is returned by ParseLabel.
var ErrUnknownLabel = errors.New("validation: label must be \"no_effect\" or \"deleterious\"")

// Label is a binary growth phenotype.
type Label int

const (
	// NoEffect means growth stays above the effect threshold.
	NoEffect Label = iota
	// Deleterious means growth drops to or below the threshold.
	Deleterious
)

func (l Label) String() string {
	if l == Deleterious {
		return "deleterious"
	}

	return "no_effect"
}

// ParseLabel accepts "no_effect" and "deleterious", case-insensitively.
func ParseLabel(s string) (Label, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "no_effect":
		return NoEffect, nil
	case "deleterious":
		return Deleterious, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, s)
	}
}

// LabelFor is NoEffect when value > threshold, Deleterious otherwise.
func LabelFor(value, threshold float64) Label {
	if value > threshold {
		return NoEffect
	}

	return Deleterious
}

// Outcome is a confusion-matrix cell. The zero value, OutcomeNone, marks an
// unscored component and is never counted.
type Outcome int

const (
	OutcomeNone Outcome = iota
	TruePositive
	TrueNegative
	FalsePositive
	FalseNegative
)

func (o Outcome) String() string {
	switch o {
	case TruePositive:
		return "TP"
	case TrueNegative:
		return "TN"
	case FalsePositive:
		return "FP"
	case FalseNegative:
		return "FN"
	default:
		return "none"
	}
}

// Classify compares an observed and a predicted label. Deleterious is the
// positive class. An observed-deleterious component predicted as no effect
// is a false negative unless excluded, in which case it counts as a true
// negative; exclusion never changes the other cells.
func Classify(observed, predicted Label, excluded bool) Outcome {
	switch {
	case observed == Deleterious && predicted == Deleterious:
		return TruePositive
	case observed == NoEffect && predicted == NoEffect:
		return TrueNegative
	case observed == NoEffect:
		return FalsePositive
	case excluded:
		return TrueNegative
	default:
		return FalseNegative
	}
}

// ConfusionMatrix counts outcomes. Every metric is 0 when its denominator is 0.
type ConfusionMatrix struct {
	TP int `json:"tp" yaml:"tp"`
	TN int `json:"tn" yaml:"tn"`
	FP int `json:"fp" yaml:"fp"`
	FN int `json:"fn" yaml:"fn"`
}

// Add counts one outcome. OutcomeNone is ignored.
func (c *ConfusionMatrix) Add(o Outcome) {
	switch o {
	case TruePositive:
		c.TP++
	case TrueNegative:
		c.TN++
	case FalsePositive:
		c.FP++
	case FalseNegative:
		c.FN++
	}
}

// Merge adds another matrix's counts.
func (c *ConfusionMatrix) Merge(o ConfusionMatrix) {
	c.TP += o.TP
	c.TN += o.TN
	c.FP += o.FP
	c.FN += o.FN
}

// Total returns the number of classified components.
func (c ConfusionMatrix) Total() int { return c.TP + c.TN + c.FP + c.FN }

// Accuracy is (TP+TN)/total.
func (c ConfusionMatrix) Accuracy() float64 { return ratio(c.TP+c.TN, c.Total()) }

// Recall is TP/(TP+FN).
func (c ConfusionMatrix) Recall() float64 { return ratio(c.TP, c.TP+c.FN) }

// Precision is TP/(TP+FP).
func (c ConfusionMatrix) Precision() float64 { return ratio(c.TP, c.TP+c.FP) }

// Specificity is TN/(TN+FP).
func (c ConfusionMatrix) Specificity() float64 { return ratio(c.TN, c.TN+c.FP) }

// FalsePositiveRate is FP/(FP+TN).
func (c ConfusionMatrix) FalsePositiveRate() float64 { return ratio(c.FP, c.FP+c.TN) }

func (c ConfusionMatrix) String() string {
	return fmt.Sprintf("TP=%d TN=%d FP=%d FN=%d accuracy=%.3f recall=%.3f precision=%.3f specificity=%.3f fpr=%.3f",
		c.TP, c.TN, c.FP, c.FN, c.Accuracy(), c.Recall(), c.Precision(), c.Specificity(), c.FalsePositiveRate())
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}

	return float64(num) / float64(den)
}
