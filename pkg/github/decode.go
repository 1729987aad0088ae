package github

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// knownFields caches the JSON names declared by each record type.
var knownFields sync.Map // reflect.Type -> map[string]struct{}

// decodeWithExtra decodes data into target, a pointer to a struct, and
// stores every top-level key the struct does not declare in extra.
func decodeWithExtra(data []byte, target any, extra *map[string]json.RawMessage) error {
	if err := json.Unmarshal(data, target); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	for name := range fieldNames(reflect.TypeOf(target).Elem()) {
		delete(all, name)
	}
	if len(all) > 0 {
		*extra = all
	} else {
		*extra = nil
	}
	return nil
}

func fieldNames(t reflect.Type) map[string]struct{} {
	if cached, ok := knownFields.Load(t); ok {
		return cached.(map[string]struct{})
	}

	names := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		names[name] = struct{}{}
	}

	knownFields.Store(t, names)
	return names
}
