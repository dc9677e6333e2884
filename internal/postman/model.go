// Package postman models the Postman v2.1 collection format and converts
// endpoint descriptors into collection items.
package postman

import (
	"bytes"
	"encoding/json"
	"strings"
)

// SchemaURL is the collection format written into new collections.
const SchemaURL = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"

// Envelope is the body exchanged with the Postman API.
type Envelope struct {
	Collection Collection `json:"collection"`
}

// Collection is a Postman collection.
type Collection struct {
	Info  Info   `json:"info"`
	Item  []Item `json:"item"`
	Extra Extra  `json:"-"`
}

// Info carries the collection metadata.
type Info struct {
	PostmanID   string      `json:"_postman_id,omitempty"`
	Name        string      `json:"name"`
	Description Description `json:"description,omitempty"`
	Schema      string      `json:"schema,omitempty"`
	Extra       Extra       `json:"-"`

	// DescriptionMeta holds the members of an object description other than
	// its content. Nil means the description is written as a string.
	DescriptionMeta Extra `json:"-"`
}

// Item is either a request or a folder of items.
type Item struct {
	Name    string   `json:"name"`
	Request *Request `json:"request,omitempty"`
	Items   []Item   `json:"item,omitzero"`
	Extra   Extra    `json:"-"`
}

// Request is the request template of an item.
type Request struct {
	Method      string      `json:"method"`
	Header      Headers     `json:"header,omitzero"`
	URL         *URL        `json:"url,omitempty"`
	Body        *Body       `json:"body,omitempty"`
	Description Description `json:"description,omitempty"`
	Extra       Extra       `json:"-"`

	DescriptionMeta Extra `json:"-"`
}

// Header is one request header.
type Header struct {
	Key         string      `json:"key"`
	Value       string      `json:"value"`
	Description Description `json:"description,omitempty"`
	Disabled    bool        `json:"disabled,omitempty"`
	Extra       Extra       `json:"-"`

	DescriptionMeta Extra `json:"-"`
}

// Headers is the header list of a request. Postman also stores headers as a
// single "Key: value" string, which is split into entries on decode.
type Headers []Header

// URL is the structured request URL. Host, port, protocol and variables are
// kept in Extra.
type URL struct {
	Raw   string   `json:"raw"`
	Path  []string `json:"path,omitzero"`
	Query []Param  `json:"query,omitempty"`
	Extra Extra    `json:"-"`

	// PathMeta parallels Path. An entry is non-nil when the segment was
	// stored as an object and holds its members other than "value".
	PathMeta []Extra `json:"-"`
}

// Param is a key/value entry of a query string or an urlencoded body.
type Param struct {
	Key         string      `json:"key"`
	Value       string      `json:"value"`
	Disabled    bool        `json:"disabled"`
	Description Description `json:"description,omitempty"`
	Extra       Extra       `json:"-"`

	DescriptionMeta Extra `json:"-"`
}

// Body is the request body.
type Body struct {
	Mode       string         `json:"mode,omitempty"`
	Raw        string         `json:"raw,omitempty"`
	URLEncoded []Param        `json:"urlencoded,omitempty"`
	Options    map[string]any `json:"options,omitempty"`
	Extra      Extra          `json:"-"`
}

// Description is a Postman description. Postman stores it either as a
// string or as an object with a "content" member; both decode to the text.
// The containing type keeps the other object members in DescriptionMeta.
type Description string

// IsFolder reports whether the item groups other items.
func (it Item) IsFolder() bool {
	return it.Request == nil && it.Items != nil
}

// IsEmpty reports whether the body carries nothing.
func (b *Body) IsEmpty() bool {
	return b == nil || (b.Mode == "" && b.Raw == "" && len(b.URLEncoded) == 0 && len(b.Options) == 0 && len(b.Extra) == 0)
}

// Keys returns the header keys in order.
func (h Headers) Keys() []string {
	keys := make([]string, len(h))
	for i, header := range h {
		keys[i] = header.Key
	}
	return keys
}

func (c *Collection) UnmarshalJSON(b []byte) error {
	type plain Collection
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	extra, err := splitExtra(b, "info", "item")
	if err != nil {
		return err
	}
	*c = Collection(p)
	c.Extra = extra
	return nil
}

func (c Collection) MarshalJSON() ([]byte, error) {
	type plain Collection
	p := plain(c)
	if p.Item == nil {
		p.Item = []Item{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return joinExtra(b, c.Extra)
}

func (i *Info) UnmarshalJSON(b []byte) error {
	type plain Info
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	extra, err := splitExtra(b, "_postman_id", "name", "description", "schema")
	if err != nil {
		return err
	}
	meta, err := descriptionMeta(b)
	if err != nil {
		return err
	}
	*i = Info(p)
	i.Extra = extra
	i.DescriptionMeta = meta
	return nil
}

func (i Info) MarshalJSON() ([]byte, error) {
	type plain Info
	p := plain(i)
	if p.DescriptionMeta != nil {
		p.Description = ""
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return joinDescribed(b, i.Extra, i.Description, i.DescriptionMeta)
}

func (it *Item) UnmarshalJSON(b []byte) error {
	type plain Item
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	extra, err := splitExtra(b, "name", "request", "item")
	if err != nil {
		return err
	}
	*it = Item(p)
	it.Extra = extra
	return nil
}

func (it Item) MarshalJSON() ([]byte, error) {
	type plain Item
	b, err := json.Marshal(plain(it))
	if err != nil {
		return nil, err
	}
	return joinExtra(b, it.Extra)
}

func (r *Request) UnmarshalJSON(b []byte) error {
	// a request may be stored as a bare URL string
	if s, ok := jsonString(b); ok {
		*r = Request{Method: "GET", URL: &URL{Raw: s}}
		return nil
	}
	type plain Request
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	extra, err := splitExtra(b, "method", "header", "url", "body", "description")
	if err != nil {
		return err
	}
	meta, err := descriptionMeta(b)
	if err != nil {
		return err
	}
	*r = Request(p)
	r.Extra = extra
	r.DescriptionMeta = meta
	return nil
}

func (r Request) MarshalJSON() ([]byte, error) {
	type plain Request
	p := plain(r)
	if p.DescriptionMeta != nil {
		p.Description = ""
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return joinDescribed(b, r.Extra, r.Description, r.DescriptionMeta)
}

func (h *Header) UnmarshalJSON(b []byte) error {
	type plain Header
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	extra, err := splitExtra(b, "key", "value", "description", "disabled")
	if err != nil {
		return err
	}
	meta, err := descriptionMeta(b)
	if err != nil {
		return err
	}
	*h = Header(p)
	h.Extra = extra
	h.DescriptionMeta = meta
	return nil
}

func (h Header) MarshalJSON() ([]byte, error) {
	type plain Header
	p := plain(h)
	if p.DescriptionMeta != nil {
		p.Description = ""
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return joinDescribed(b, h.Extra, h.Description, h.DescriptionMeta)
}

func (pm *Param) UnmarshalJSON(b []byte) error {
	type plain Param
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	extra, err := splitExtra(b, "key", "value", "disabled", "description")
	if err != nil {
		return err
	}
	meta, err := descriptionMeta(b)
	if err != nil {
		return err
	}
	*pm = Param(p)
	pm.Extra = extra
	pm.DescriptionMeta = meta
	return nil
}

func (pm Param) MarshalJSON() ([]byte, error) {
	type plain Param
	p := plain(pm)
	if p.DescriptionMeta != nil {
		p.Description = ""
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return joinDescribed(b, pm.Extra, pm.Description, pm.DescriptionMeta)
}

func (h *Headers) UnmarshalJSON(b []byte) error {
	if s, ok := jsonString(b); ok {
		var out Headers
		for _, line := range strings.Split(s, "\n") {
			key, value, _ := strings.Cut(line, ":")
			if key = strings.TrimSpace(key); key != "" {
				out = append(out, Header{Key: key, Value: strings.TrimSpace(value)})
			}
		}
		*h = out
		return nil
	}
	var list []Header
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*h = list
	return nil
}

func (u *URL) UnmarshalJSON(b []byte) error {
	if s, ok := jsonString(b); ok {
		*u = URL{Raw: s}
		return nil
	}

	var p struct {
		Raw   string          `json:"raw"`
		Path  json.RawMessage `json:"path"`
		Query []Param         `json:"query"`
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	path, meta, err := decodePath(p.Path)
	if err != nil {
		return err
	}
	extra, err := splitExtra(b, "raw", "path", "query")
	if err != nil {
		return err
	}
	*u = URL{Raw: p.Raw, Path: path, Query: p.Query, Extra: extra, PathMeta: meta}
	return nil
}

func (u URL) MarshalJSON() ([]byte, error) {
	type plain URL
	p := plain(u)
	if len(u.PathMeta) != len(u.Path) {
		p.PathMeta = nil
	}
	if p.PathMeta == nil {
		b, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		return joinExtra(b, u.Extra)
	}

	path, err := encodePath(u.Path, u.PathMeta)
	if err != nil {
		return nil, err
	}
	p.Path = nil
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	extra := u.Extra.Clone()
	if extra == nil {
		extra = Extra{}
	}
	extra["path"] = path
	return joinExtra(b, extra)
}

// decodePath accepts a segment list, a list of {"value": ...} segments or a
// single "a/b" string. The returned meta is nil unless a segment was an
// object.
func decodePath(b json.RawMessage) ([]string, []Extra, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil, nil, nil
	}
	if s, ok := jsonString(b); ok {
		return strings.Split(strings.TrimPrefix(s, "/"), "/"), nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, nil, err
	}
	segments := make([]string, 0, len(raw))
	meta := make([]Extra, len(raw))
	objects := false
	for i, seg := range raw {
		if s, ok := jsonString(seg); ok {
			segments = append(segments, s)
			continue
		}
		var obj struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(seg, &obj); err != nil {
			return nil, nil, err
		}
		rest, err := splitExtra(seg, "value")
		if err != nil {
			return nil, nil, err
		}
		if rest == nil {
			rest = Extra{}
		}
		meta[i] = rest
		objects = true
		segments = append(segments, obj.Value)
	}
	if !objects {
		meta = nil
	}
	return segments, meta, nil
}

// encodePath writes object segments back with their stored members.
func encodePath(path []string, meta []Extra) (json.RawMessage, error) {
	raw := make([]json.RawMessage, len(path))
	for i, seg := range path {
		value, err := json.Marshal(seg)
		if err != nil {
			return nil, err
		}
		if meta[i] == nil {
			raw[i] = value
			continue
		}
		obj, err := joinExtra([]byte(`{"value":`+string(value)+`}`), meta[i])
		if err != nil {
			return nil, err
		}
		raw[i] = obj
	}
	return json.Marshal(raw)
}

func (bd *Body) UnmarshalJSON(b []byte) error {
	type plain Body
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	extra, err := splitExtra(b, "mode", "raw", "urlencoded", "options")
	if err != nil {
		return err
	}
	*bd = Body(p)
	bd.Extra = extra
	return nil
}

func (bd Body) MarshalJSON() ([]byte, error) {
	type plain Body
	b, err := json.Marshal(plain(bd))
	if err != nil {
		return nil, err
	}
	return joinExtra(b, bd.Extra)
}

func (d *Description) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*d = ""
		return nil
	}
	if s, ok := jsonString(b); ok {
		*d = Description(s)
		return nil
	}
	var obj struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*d = Description(obj.Content)
	return nil
}

// descriptionMeta returns the members of an object description other than its
// content, or nil when the description is absent or a string.
func descriptionMeta(b []byte) (Extra, error) {
	var p struct {
		Description json.RawMessage `json:"description"`
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	d := bytes.TrimSpace(p.Description)
	if len(d) == 0 || d[0] != '{' {
		return nil, nil
	}
	meta, err := splitExtra(d, "content")
	if err != nil {
		return nil, err
	}
	if meta == nil {
		meta = Extra{}
	}
	return meta, nil
}

// joinDescribed is joinExtra for types with a description. An object
// description is written back as an object with the current content.
func joinDescribed(known []byte, extra Extra, d Description, meta Extra) ([]byte, error) {
	if meta == nil {
		return joinExtra(known, extra)
	}
	content, err := json.Marshal(string(d))
	if err != nil {
		return nil, err
	}
	obj, err := joinExtra([]byte(`{"content":`+string(content)+`}`), meta)
	if err != nil {
		return nil, err
	}
	all := extra.Clone()
	if all == nil {
		all = Extra{}
	}
	all["description"] = obj
	return joinExtra(known, all)
}

func jsonString(b []byte) (string, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return "", false
	}
	return s, true
}
