package verifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/externgen/internal/models"
)

func TestClassifySelfPermittedForms(t *testing.T) {
	for _, kind := range models.SelfKinds() {
		t.Run(kind.String(), func(t *testing.T) {
			got, ok, err := ClassifySelf(kind.TypeExpr())
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, kind, got)
		})
	}
}

func TestClassifySelf(t *testing.T) {
	tests := []struct {
		expr    string
		want    models.SelfKind
		ok      bool
		wantErr bool
	}{
		{expr: "int", want: models.SelfNone, ok: true},
		{expr: "*bytes.Buffer", want: models.SelfNone, ok: true},
		{expr: "map[string][]int", want: models.SelfNone, ok: true},
		{expr: "func(int) error", want: models.SelfNone, ok: true},
		{expr: "(Self)", want: models.SelfByValue, ok: true},
		{expr: "struct{ Self int }", want: models.SelfNone, ok: true},
		{expr: "pkg.Self", want: models.SelfNone, ok: true},
		{expr: "[]Self"},
		{expr: "**Self"},
		{expr: "map[string]Self"},
		{expr: "func(Self)"},
		{expr: "chan Self"},
		{expr: "Box[Self]"},
		{expr: "Ref[*Self]"},
		{expr: "Ref[Ref[Self]]"},
		{expr: "[2]*Self"},
		{expr: "Ref[int]", wantErr: true},
		{expr: "1 + 2", wantErr: true},
		{expr: "map[", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, ok, err := ClassifySelf(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
