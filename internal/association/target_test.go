package association

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patchBody struct {
	Personas  TargetSet `json:"personas"`
	Platforms TargetSet `json:"platforms"`
}

func TestTargetSet_Unmarshal(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantTargs []Target
	}{
		{name: "omitted", body: `{}`, wantSet: false},
		{name: "null", body: `{"personas":null}`, wantSet: false},
		{name: "empty list", body: `{"personas":[]}`, wantSet: true, wantTargs: []Target{}},
		{name: "ids", body: `{"personas":[3,1]}`, wantSet: true, wantTargs: []Target{ID(3), ID(1)}},
		{name: "mixed", body: `{"personas":["TikTok",2,{"id":5,"name":"X"}]}`, wantSet: true,
			wantTargs: []Target{Label("TikTok"), ID(2), {ID: 5, Label: "X"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body patchBody
			require.NoError(t, json.Unmarshal([]byte(tt.body), &body))

			assert.Equal(t, tt.wantSet, body.Personas.IsSet())
			assert.False(t, body.Platforms.IsSet())
			if tt.wantSet {
				assert.Equal(t, tt.wantTargs, body.Personas.Targets())
			}
		})
	}
}

func TestTargetSet_Marshal(t *testing.T) {
	b, err := json.Marshal(patchBody{Personas: IDs(1, 2), Platforms: Labels("TikTok")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"personas":[1,2],"platforms":["TikTok"]}`, string(b))

	b, err = json.Marshal(patchBody{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"personas":null,"platforms":null}`, string(b))
}
