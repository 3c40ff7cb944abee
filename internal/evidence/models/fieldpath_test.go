package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "evidentia/pkg/domain-errors"
)

func TestParseFieldPath(t *testing.T) {
	tests := []struct {
		input   string
		want    FieldPath
		wantErr bool
	}{
		{input: "notes", want: NotesPath()},
		{input: "overallSeverity", want: OverallSeverityPath()},
		{input: "symptoms[Fatigue].severity", want: SymptomSeverityPath("fatigue")},
		{input: "activities[walking].impact", want: ActivityImpactPath("walking")},
		{input: "activities[walking].durationMinutes", want: ActivityDurationPath("walking")},
		{input: "retrospectiveContext.reason", want: RetroReasonPath()},
		{input: "retrospectiveContext.note", want: RetroNotePath()},
		{input: "retrospectiveContext.daysDelayed", wantErr: true},
		{input: "evidenceTimestamp", wantErr: true},
		{input: "symptoms[].severity", wantErr: true},
		{input: "symptoms[a]b].severity", wantErr: true},
		{input: "activities[walking].calories", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFieldPath(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()), "String is the inverse of ParseFieldPath")
		})
	}
}

func mustParse(t *testing.T, s string) FieldPath {
	t.Helper()
	p, err := ParseFieldPath(s)
	require.NoError(t, err)
	return p
}

func TestFieldPathCheckValue(t *testing.T) {
	assert.NoError(t, NotesPath().CheckValue(Absent()))
	assert.NoError(t, SymptomSeverityPath("x").CheckValue(Int(0)))
	assert.NoError(t, SymptomSeverityPath("x").CheckValue(Int(10)))
	assert.Error(t, SymptomSeverityPath("x").CheckValue(Int(-1)))
	assert.Error(t, ActivityImpactPath("x").CheckValue(Int(11)))
	assert.NoError(t, ActivityDurationPath("x").CheckValue(Int(600)))
	assert.Error(t, ActivityDurationPath("x").CheckValue(Int(-5)))
	assert.Error(t, NotesPath().CheckValue(Int(1)))
	assert.NoError(t, RetroReasonPath().CheckValue(Text("no_access")))
	assert.Error(t, RetroReasonPath().CheckValue(Text("lazy")))
	assert.Error(t, FieldPath{}.CheckValue(Absent()))
}

func TestFieldValueJSON(t *testing.T) {
	t.Run("wire forms", func(t *testing.T) {
		for _, tc := range []struct {
			v    FieldValue
			wire string
		}{
			{Absent(), `null`},
			{Text("hi"), `{"text":"hi"}`},
			{Int(0), `{"int":0}`},
		} {
			raw, err := json.Marshal(tc.v)
			require.NoError(t, err)
			assert.JSONEq(t, tc.wire, string(raw))

			var back FieldValue
			require.NoError(t, json.Unmarshal(raw, &back))
			assert.True(t, tc.v.Equal(back))
		}
	})

	t.Run("ambiguous or unknown shapes rejected", func(t *testing.T) {
		for _, raw := range []string{`{}`, `{"text":"a","int":1}`, `{"float":1.5}`, `"bare"`} {
			var v FieldValue
			assert.Error(t, json.Unmarshal([]byte(raw), &v), raw)
		}
	})

	t.Run("zero value equals absent", func(t *testing.T) {
		assert.True(t, FieldValue{}.Equal(Absent()))
		assert.False(t, Int(0).Equal(Absent()))
	})
}

func TestPayloadWith(t *testing.T) {
	p := dailyPayload().Normalize()

	t.Run("setting missing symptom creates entry", func(t *testing.T) {
		got := p.With(SymptomSeverityPath("nausea"), Int(2))
		e, ok := got.Symptom("nausea")
		require.True(t, ok)
		assert.Equal(t, 2, e.Severity)
		_, ok = p.Symptom("nausea")
		assert.False(t, ok, "receiver untouched")
	})

	t.Run("setting activity duration keeps impact", func(t *testing.T) {
		got := p.With(ActivityDurationPath("walking"), Int(45))
		e, _ := got.Activity("walking")
		assert.Equal(t, ActivityEntry{Name: "walking", DurationMinutes: 45, Impact: 4}, e)
	})

	t.Run("absent clears optional fields", func(t *testing.T) {
		got := p.With(OverallSeverityPath(), Absent()).With(NotesPath(), Absent())
		assert.Nil(t, got.OverallSeverity)
		assert.Empty(t, got.Notes)
		assert.True(t, got.Value(NotesPath()).IsAbsent())
	})
}
