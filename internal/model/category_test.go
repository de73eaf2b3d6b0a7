package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryPatchUnmarshal(t *testing.T) {
	tests := []struct {
		wantParent *string
		name       string
		body       string
		wantEmpty  bool
	}{
		{name: "absent parent", body: `{"name":"Food"}`},
		{name: "null parent detaches", body: `{"parentCategory": null}`, wantParent: ptrTo("")},
		{name: "empty parent detaches", body: `{"parentCategory":""}`, wantParent: ptrTo("")},
		{name: "new parent", body: `{"parentCategory":"home"}`, wantParent: ptrTo("home")},
		{name: "empty body", body: `{}`, wantEmpty: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var patch CategoryPatch
			require.NoError(t, json.Unmarshal([]byte(tt.body), &patch))

			assert.Equal(t, tt.wantParent, patch.ParentID)
			assert.Equal(t, tt.wantEmpty, patch.IsEmpty())
		})
	}
}

func TestCategoryPatchUnmarshal_Invalid(t *testing.T) {
	var patch CategoryPatch
	assert.Error(t, json.Unmarshal([]byte(`{"budget":"lots"}`), &patch))
	assert.Error(t, json.Unmarshal([]byte(`[]`), &patch))
}

func ptrTo[T any](v T) *T {
	return &v
}
