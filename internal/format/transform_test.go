package format

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTransform_ClassesAndSubclasses(t *testing.T) {
	raw := RawMatrix{
		Names: []string{"class", "subclass", "f1"},
		Rows: [][]string{
			{"A", "B", "A"},
			{"x", "y", "x"},
			{"1", "2", "3"},
		},
	}

	ds, err := Transform(raw, LabelRequest{Class: At(0), Subclass: At(1)}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 2, 1}, ds.Order)
	assert.Equal(t, []string{"A", "A", "B"}, ds.Labels.Class)
	assert.Equal(t, []string{"x", "x", "y"}, ds.Labels.Subclass)
	assert.Nil(t, ds.Labels.Subject)
	assert.False(t, ds.Labels.SubclassDefaulted)

	assert.Equal(t, map[string]Slice{"A": {0, 2}, "B": {2, 3}}, ds.ClassSlices)
	assert.Equal(t, map[string]Slice{"x": {0, 2}, "y": {2, 3}}, ds.SubclassSlices)
	assert.Equal(t, map[string][]string{"A": {"x"}, "B": {"y"}}, ds.ClassHierarchy)
	assert.Equal(t, []string{"A", "B"}, ds.ClassOrder)

	assert.Equal(t, []string{"f1"}, ds.Features.Names())
	f1, _ := ds.Features.Get("f1")
	assert.Equal(t, []float64{1, 3, 2}, f1)
	assert.Equal(t, NoNormalization, ds.Norm)
}

func TestTransform_DefaultSubclass(t *testing.T) {
	raw := RawMatrix{
		Names: []string{"class", "f"},
		Rows:  [][]string{{"b", "a"}, {"1", "2"}},
	}

	ds, err := Transform(raw, LabelRequest{Class: At(0)}, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, ds.Labels.SubclassDefaulted)
	assert.Equal(t, []string{"a_subcl", "b_subcl"}, ds.Labels.Subclass)
	assert.Equal(t, map[string][]string{"a": {"a_subcl"}, "b": {"b_subcl"}}, ds.ClassHierarchy)
}

func TestTransform_SharedSubclassAndSubject(t *testing.T) {
	raw := RawMatrix{
		Names: []string{"id", "class", "site", "f"},
		Rows: [][]string{
			{"s4", "s3", "s2", "s1"},
			{"B", "A", "B", "A"},
			{"gut", "gut", "gut", "gut"},
			{"4", "3", "2", "1"},
		},
	}
	req := LabelRequest{Class: At(1), Subclass: At(2), Subject: At(0)}

	ds, err := Transform(raw, req, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []int{3, 1, 2, 0}, ds.Order)
	assert.Equal(t, []string{"s1", "s3", "s2", "s4"}, ds.Labels.Subject)
	assert.Equal(t, []string{"A_gut", "A_gut", "B_gut", "B_gut"}, ds.Labels.Subclass)
	assert.Equal(t, Slice{0, 2}, ds.SubclassSlices["A_gut"])
	assert.Equal(t, Slice{2, 4}, ds.SubclassSlices["B_gut"])
	assert.Equal(t, []string{"class", "subclass", "subject"}, ds.Labels.LabelNames())
}

func TestTransform_HierarchyAndNormalization(t *testing.T) {
	raw := RawMatrix{
		Names: []string{"class", "k|p1", "k|p2"},
		Rows: [][]string{
			{"A", "B"},
			{"2", "4"},
			{"6", "8"},
		},
	}
	opts := DefaultOptions()
	opts.Norm = 1

	ds, err := Transform(raw, LabelRequest{Class: At(0)}, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"k.p1", "k.p2", "k"}, ds.Features.Names())
	k, _ := ds.Features.Get("k")
	assert.InDelta(t, 1, k[0], 1e-12)
	assert.InDelta(t, 1, k[1], 1e-12)
	p1, _ := ds.Features.Get("k.p1")
	assert.InDelta(t, 0.25, p1[0], 1e-12)
	assert.InDelta(t, 1.0/3, p1[1], 1e-12)
	assert.Equal(t, 1.0, ds.Norm)
}

func TestTransform_MergeResorts(t *testing.T) {
	raw := RawMatrix{
		Names: []string{"class", "subclass", "f"},
		Rows: [][]string{
			{"A", "A", "A", "A", "A", "A"},
			{"a", "a", "b", "c", "c", "d"},
			{"1", "2", "3", "4", "5", "6"},
		},
	}
	core, logs := observer.New(zapcore.WarnLevel)
	opts := DefaultOptions()
	opts.MergeSmallSubclasses = true
	opts.MinSubclassSize = 2
	opts.Logger = zap.New(core)

	ds, err := Transform(raw, LabelRequest{Class: At(0), Subclass: At(1)}, opts)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 5, 0, 1, 3, 4}, ds.Order)
	assert.Equal(t, []string{"A_other", "A_other", "a", "a", "c", "c"}, ds.Labels.Subclass)
	f, _ := ds.Features.Get("f")
	assert.Equal(t, []float64{3, 6, 1, 2, 4, 5}, f)
	assert.Equal(t, map[string]Slice{"A_other": {0, 2}, "a": {2, 4}, "c": {4, 6}}, ds.SubclassSlices)
	assert.Equal(t, []string{"A_other", "a", "c"}, ds.ClassHierarchy["A"])
	assert.Equal(t, 1, logs.FilterMessage("merged small subclasses").Len())
}

func TestTransform_RenamedSubclassStaysContiguous(t *testing.T) {
	raw := RawMatrix{
		Names: []string{"class", "subclass", "f"},
		Rows: [][]string{
			{"A", "A", "A", "B"},
			{"A_x", "m", "x", "x"},
			{"1", "2", "3", "4"},
		},
	}

	ds, err := Transform(raw, LabelRequest{Class: At(0), Subclass: At(1)}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"A_x", "A_x", "m", "B_x"}, ds.Labels.Subclass)
	assert.Equal(t, []int{0, 2, 1, 3}, ds.Order)
	assert.Equal(t, map[string]Slice{"A_x": {0, 2}, "m": {2, 3}, "B_x": {3, 4}}, ds.SubclassSlices)
	assert.Equal(t, []string{"A_x", "m"}, ds.ClassHierarchy["A"])
	f, _ := ds.Features.Get("f")
	assert.Equal(t, []float64{1, 3, 2, 4}, f)

	covered := 0
	for _, sc := range ds.ClassHierarchy["A"] {
		covered += ds.SubclassSlices[sc].Len()
	}
	assert.Equal(t, ds.ClassSlices["A"].Len(), covered)
}

func TestTransform_ParseErrorNamesInputColumn(t *testing.T) {
	raw := RawMatrix{
		Names: []string{"class", "f"},
		Rows:  [][]string{{"B", "A"}, {"n/a", "1"}},
	}

	_, err := Transform(raw, LabelRequest{Class: At(0)}, DefaultOptions())
	require.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "sample 1")
}

func TestTransform_LabelFallbackIsLogged(t *testing.T) {
	raw := RawMatrix{
		Names: []string{"class", "f"},
		Rows:  [][]string{{"A", "B"}, {"1", "2"}},
	}
	core, logs := observer.New(zapcore.WarnLevel)
	opts := DefaultOptions()
	opts.Logger = zap.New(core)

	ds, err := Transform(raw, LabelRequest{Class: At(7), Subclass: At(9)}, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, ds.Labels.Class)
	assert.Equal(t, 2, logs.FilterMessage("label selection adjusted").Len())
}

func TestTransform_ZeroSampleWarns(t *testing.T) {
	raw := RawMatrix{
		Names: []string{"class", "x"},
		Rows:  [][]string{{"A", "B"}, {"0", "5"}},
	}
	core, logs := observer.New(zapcore.WarnLevel)
	opts := DefaultOptions()
	opts.Norm = 10
	opts.Logger = zap.New(core)

	ds, err := Transform(raw, LabelRequest{Class: At(0)}, opts)
	require.NoError(t, err)

	x, _ := ds.Features.Get("x")
	assert.Equal(t, []float64{0, 10}, x)
	assert.Equal(t, 1, logs.FilterMessage("sample has zero basis total, values set to zero").Len())
}

func TestTransform_Errors(t *testing.T) {
	tests := []struct {
		name  string
		raw   RawMatrix
		stage string
		is    error
	}{
		{
			name: "non-numeric value",
			raw: RawMatrix{
				Names: []string{"class", "f"},
				Rows:  [][]string{{"A", "B"}, {"1", "n/a"}},
			},
			stage: StageParse,
			is:    ErrFormat,
		},
		{
			name: "non-finite value",
			raw: RawMatrix{
				Names: []string{"class", "f1", "f2"},
				Rows:  [][]string{{"A", "B"}, {"NaN", "1"}, {"2", "Inf"}},
			},
			stage: StageParse,
			is:    ErrFormat,
		},
		{
			name: "ragged rows",
			raw: RawMatrix{
				Names: []string{"class", "f"},
				Rows:  [][]string{{"A", "B"}, {"1"}},
			},
			stage: StageValidate,
			is:    ErrFormat,
		},
		{
			name: "no samples",
			raw: RawMatrix{
				Names: []string{"class"},
				Rows:  [][]string{{}},
			},
			stage: StageValidate,
			is:    ErrNoSamples,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Transform(tt.raw, LabelRequest{Class: At(0)}, DefaultOptions())
			require.Error(t, err)
			assert.Nil(t, ds)
			assert.ErrorIs(t, err, tt.is)

			var se *StageError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.stage, se.Stage)
		})
	}
}
