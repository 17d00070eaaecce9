package swagger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocListsEveryResource(t *testing.T) {
	var doc struct {
		Paths map[string]map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte((&swaggerDoc{}).ReadDoc()), &doc))

	for _, path := range []string{"/v1/batch", "/v1/students/{id}", "/v1/role", "/health"} {
		assert.Contains(t, doc.Paths, path)
	}
	assert.Contains(t, doc.Paths["/v1/class/{id}"], "delete")
}
