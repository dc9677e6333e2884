package postman

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Extra holds JSON members of a Postman object that the model does not
// name, so that a fetched collection survives a write-back unchanged.
type Extra map[string]json.RawMessage

// splitExtra returns the members of object b whose names are not in known.
func splitExtra(b []byte, known ...string) (Extra, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return Extra(all), nil
}

// joinExtra appends the extra members to the encoded object known. Extra
// members are written in name order after the modeled ones.
func joinExtra(known []byte, extra Extra) ([]byte, error) {
	if len(extra) == 0 {
		return known, nil
	}

	names := make([]string, 0, len(extra))
	for k := range extra {
		names = append(names, k)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.Write(bytes.TrimSuffix(known, []byte("}")))
	first := bytes.Equal(known, []byte("{}"))
	for _, name := range names {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(extra[name])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Clone returns a deep copy of e.
func (e Extra) Clone() Extra {
	if e == nil {
		return nil
	}
	out := make(Extra, len(e))
	for k, v := range e {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
