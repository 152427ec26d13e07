// SPDX-License-Identifier: MIT

package validation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvflux/validation"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		observed, predicted validation.Label
		excluded            bool
		want                validation.Outcome
	}{
		{validation.Deleterious, validation.Deleterious, false, validation.TruePositive},
		{validation.Deleterious, validation.Deleterious, true, validation.TruePositive},
		{validation.NoEffect, validation.NoEffect, false, validation.TrueNegative},
		{validation.Deleterious, validation.NoEffect, false, validation.FalseNegative},
		{validation.Deleterious, validation.NoEffect, true, validation.TrueNegative},
		{validation.NoEffect, validation.Deleterious, false, validation.FalsePositive},
		{validation.NoEffect, validation.Deleterious, true, validation.FalsePositive},
	}
	for _, c := range cases {
		require.Equal(t, c.want, validation.Classify(c.observed, c.predicted, c.excluded), "%v/%v excluded=%v", c.observed, c.predicted, c.excluded)
	}
}

func TestLabelFor(t *testing.T) {
	require.Equal(t, validation.NoEffect, validation.LabelFor(0.95, 0.8))
	require.Equal(t, validation.Deleterious, validation.LabelFor(0.8, 0.8))
	require.Equal(t, validation.Deleterious, validation.LabelFor(0, 0.8))

	l, err := validation.ParseLabel(" No_Effect ")
	require.NoError(t, err)
	require.Equal(t, validation.NoEffect, l)
	_, err = validation.ParseLabel("maybe")
	require.ErrorIs(t, err, validation.ErrUnknownLabel)
	require.Equal(t, "deleterious", validation.Deleterious.String())
}

func TestConfusionMatrixMetrics(t *testing.T) {
	var cm validation.ConfusionMatrix
	for _, o := range []validation.Outcome{
		validation.TruePositive, validation.TruePositive,
		validation.TrueNegative, validation.TrueNegative, validation.TrueNegative,
		validation.FalsePositive,
	} {
		cm.Add(o)
	}
	require.Equal(t, validation.ConfusionMatrix{TP: 2, TN: 3, FP: 1, FN: 0}, cm)
	require.Equal(t, 6, cm.Total())
	require.InDelta(t, 5.0/6.0, cm.Accuracy(), 1e-12)
	require.InDelta(t, 1.0, cm.Recall(), 1e-12)
	require.InDelta(t, 2.0/3.0, cm.Precision(), 1e-12)
	require.InDelta(t, 0.75, cm.Specificity(), 1e-12)
	require.InDelta(t, 0.25, cm.FalsePositiveRate(), 1e-12)
	require.Contains(t, cm.String(), "TP=2 TN=3 FP=1 FN=0")
}

func TestOutcomeNoneIsNotCounted(t *testing.T) {
	var rec validation.Record
	require.Equal(t, validation.OutcomeNone, rec.Outcome)
	require.Equal(t, "none", rec.Outcome.String())

	var cm validation.ConfusionMatrix
	cm.Add(rec.Outcome)
	require.Zero(t, cm.Total())
	require.Equal(t, "FN", validation.FalseNegative.String())
}

func TestEmptyMatrixMetricsAreZero(t *testing.T) {
	var cm validation.ConfusionMatrix
	require.Zero(t, cm.Accuracy())
	require.Zero(t, cm.Recall())
	require.Zero(t, cm.Precision())
	require.Zero(t, cm.Specificity())
	require.Zero(t, cm.FalsePositiveRate())

	cm.Merge(validation.ConfusionMatrix{FN: 2})
	require.Zero(t, cm.Recall())
	require.Zero(t, cm.Precision())
	require.Equal(t, 2, cm.Total())
}

func TestDefaultProtocols(t *testing.T) {
	ps := validation.DefaultProtocols()
	require.Len(t, ps, 5)
	require.Equal(t, 0.43, ps["DM57"].Floor)
	require.Len(t, ps["DM57"].Exclusions, 27)
	require.True(t, ps["DM57"].Excluded("EX_adn_e"))
	require.Equal(t, 0.31, ps["DM25"].Floor)
	require.Len(t, ps["DM25"].Exclusions, 4)
	require.Equal(t, 0.07, ps["DM16"].Floor)
	require.True(t, ps["DM16"].Excluded("EX_NH4_e"))
	require.Equal(t, 0.11, ps["DM13"].Floor)
	require.Empty(t, ps["DM13"].Exclusions)
	require.Equal(t, 0.11, ps["SUN2019"].Floor)
	require.Equal(t, validation.DefaultEffectThreshold, ps["SUN2019"].EffectThreshold())

	zero := 0.0
	require.Zero(t, validation.Protocol{Threshold: &zero}.EffectThreshold())
}
