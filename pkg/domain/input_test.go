package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputFromAny_JSONPayloads(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantKind  InputKind
		wantItems []ItemKind
		wantLen   int
	}{
		{"string list", `["8465", " 01 "]`, InputSequence, []ItemKind{ItemString, ItemString}, 2},
		{"mixed list", `["8465", 8465, null]`, InputSequence, []ItemKind{ItemString, ItemOther, ItemOther}, 3},
		{"empty list", `[]`, InputSequence, []ItemKind{}, 0},
		{"scalar string", `"8465"`, InputScalar, nil, 1},
		{"object", `{"code":"8465"}`, InputScalar, nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v any
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &v))

			in := InputFromAny(v)
			assert.Equal(t, tt.wantKind, in.Kind)
			assert.Equal(t, tt.wantLen, in.Len())
			if tt.wantItems != nil {
				kinds := make([]ItemKind, len(in.Items))
				for i, it := range in.Items {
					kinds[i] = it.Kind
				}
				assert.Equal(t, tt.wantItems, kinds)
			}
		})
	}
}

func TestInputFromAny_RawRendering(t *testing.T) {
	in := InputFromAny([]any{"01", float64(8465), nil})
	assert.Equal(t, "01", in.Items[0].Raw)
	assert.Equal(t, "8465", in.Items[1].Raw)
	assert.Equal(t, "null", in.Items[2].Raw)

	scalar := InputFromAny("8465")
	assert.Equal(t, "8465", scalar.Raw)
}

func TestInput_Texts(t *testing.T) {
	in := InputFromAny([]any{" 01", true, "8465"})
	assert.Equal(t, []string{" 01", "8465"}, in.Texts())
	assert.Equal(t, []string{"a", "b"}, Strings("a", "b").Texts())
}
