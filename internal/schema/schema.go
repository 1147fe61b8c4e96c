// Package schema derives tool parameter schemas from Go argument structs.
package schema

import (
	"reflect"
	"sync"

	"github.com/invopop/jsonschema"
)

var (
	cache   = make(map[reflect.Type]*jsonschema.Schema)
	cacheMu sync.Mutex
)

// For returns the parameter schema of v's struct type: an object with its
// properties and required list, no $schema or $id. Fields without
// omitempty are required; an empty required list is omitted. Results are
// cached per type and must not be mutated.
func For(v any) *jsonschema.Schema {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if s, ok := cache[t]; ok {
		return s
	}

	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	root := r.ReflectFromType(t)

	s := &jsonschema.Schema{
		Type:       root.Type,
		Properties: root.Properties,
		Required:   root.Required,
	}
	cache[t] = s
	return s
}
