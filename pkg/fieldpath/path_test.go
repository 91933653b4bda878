package fieldpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveNested(t *testing.T) {
	rec := map[string]interface{}{
		"userIdentity": map[string]interface{}{
			"type": "IAMUser",
		},
		"items": []interface{}{
			map[string]interface{}{"id": "a"},
			map[string]interface{}{"id": "b"},
		},
	}

	v, ok := Resolve(rec, "userIdentity.type")
	assert.True(t, ok)
	assert.Equal(t, "IAMUser", v)

	v, ok = Resolve(rec, "items[1].id")
	assert.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestResolveAbsentVsNull(t *testing.T) {
	rec := map[string]interface{}{
		"errorCode": nil,
	}

	v, ok := Resolve(rec, "errorCode")
	assert.True(t, ok)
	assert.Nil(t, v)

	_, ok = Resolve(rec, "missingField")
	assert.False(t, ok)
}

func TestResolveOutOfBoundsIndex(t *testing.T) {
	rec := map[string]interface{}{
		"items": []interface{}{"x"},
	}
	_, ok := Resolve(rec, "items[5]")
	assert.False(t, ok)
}

func TestResolveMismatchedKind(t *testing.T) {
	rec := map[string]interface{}{
		"name": "scalar",
	}
	_, ok := Resolve(rec, "name.sub")
	assert.False(t, ok)

	_, ok = Resolve(rec, "name[0]")
	assert.False(t, ok)
}
