// Package reconcile folds a batch of endpoint descriptors into an existing
// Postman collection and reports what changed.
package reconcile

import (
	"time"

	"postman-sync/internal/differ"
	"postman-sync/internal/docs"
	"postman-sync/internal/merge"
	"postman-sync/internal/pathkey"
	"postman-sync/internal/postman"
	"postman-sync/internal/types"
)

// Options control a reconciliation run.
type Options struct {
	// PreserveExistingDocs merges generated descriptions into the stored
	// ones instead of replacing them.
	PreserveExistingDocs bool      `json:"preserve_existing_docs"`
	// IncludeDocumentation writes generated documentation into the
	// collection and request descriptions.
	IncludeDocumentation bool      `json:"include_documentation"`
	// Now stamps the collection description. Zero means time.Now.
	Now                  time.Time `json:"-"`
}

// DefaultOptions are the options of a plain sync.
func DefaultOptions() Options {
	return Options{PreserveExistingDocs: true, IncludeDocumentation: true}
}

// Update is an endpoint whose stored item changed.
type Update struct {
	Key  pathkey.Key   `json:"key"`
	Diff differ.Result `json:"diff"`
}

// Report lists every input endpoint exactly once.
type Report struct {
	New       []pathkey.Key `json:"new"`
	Updated   []Update      `json:"updated"`
	Unchanged []pathkey.Key `json:"unchanged"`
}

// Changes is the number of endpoints that will be added or modified.
func (r Report) Changes() int {
	return len(r.New) + len(r.Updated)
}

// Total is the number of endpoints in the report.
func (r Report) Total() int {
	return len(r.New) + len(r.Updated) + len(r.Unchanged)
}

// Result is the replacement collection and the report that produced it.
type Result struct {
	Collection postman.Collection
	Report     Report
}

// Reconcile matches endpoints to the items of c by (method, path) key.
//
// Matched items are replaced in place by the regenerated item, new
// endpoints are appended to the top level in input order, and items no
// endpoint matches are left as they are. Items inside folders are matched
// too. When several items share a key that an endpoint matches, only the
// last one is kept. When several endpoints share a key, the last one wins at
// the position of the first.
//
// c is not modified.
func Reconcile(c postman.Collection, set types.EndpointSet, opts Options) Result {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	endpoints := Dedupe(set.Endpoints)
	out := c
	out.Item = cloneItems(c.Item)

	if opts.IncludeDocumentation {
		fresh := docs.CollectionDescription(types.EndpointSet{Endpoints: endpoints}, opts.Now)
		if opts.PreserveExistingDocs && out.Info.Description != "" {
			fresh = merge.Generated(string(out.Info.Description), fresh, merge.CollectionMarkers)
		}
		out.Info.Description = postman.Description(fresh)
	}

	idx := index(out.Item)
	dropped := make(map[*postman.Item]bool)
	var report Report
	var added []postman.Item

	for _, ep := range endpoints {
		key := pathkey.New(string(ep.Method), ep.Path)
		candidate := postman.Encode(ep, opts.IncludeDocumentation)

		slots, ok := idx[key]
		if !ok {
			report.New = append(report.New, key)
			added = append(added, candidate)
			continue
		}

		slot := slots[len(slots)-1]
		for _, earlier := range slots[:len(slots)-1] {
			dropped[earlier] = true
		}

		existing := *slot
		candidate = carryOver(existing, candidate, opts)
		d := differ.Diff(existing, candidate)
		if d.HasChanges {
			report.Updated = append(report.Updated, Update{Key: key, Diff: d})
		} else {
			report.Unchanged = append(report.Unchanged, key)
		}
		*slot = candidate
	}

	if len(dropped) > 0 {
		out.Item = removeItems(out.Item, dropped)
	}
	out.Item = append(out.Item, added...)

	return Result{Collection: out, Report: report}
}

// Dedupe keeps one endpoint per key: the last one, at the position of the
// first.
func Dedupe(endpoints []types.Endpoint) []types.Endpoint {
	pos := make(map[pathkey.Key]int, len(endpoints))
	out := make([]types.Endpoint, 0, len(endpoints))
	for _, ep := range endpoints {
		key := pathkey.New(string(ep.Method), ep.Path)
		if i, ok := pos[key]; ok {
			out[i] = ep
			continue
		}
		pos[key] = len(out)
		out = append(out, ep)
	}
	return out
}

// carryOver merges the stored description into the candidate and keeps the
// Postman fields the codec does not model, such as ids, scripts, saved
// responses, auth and the object form of the description.
func carryOver(existing, candidate postman.Item, opts Options) postman.Item {
	candidate.Extra = existing.Extra.Clone()
	if existing.Request == nil {
		return candidate
	}

	req := *candidate.Request
	req.Extra = existing.Request.Extra.Clone()
	req.DescriptionMeta = existing.Request.DescriptionMeta.Clone()
	if opts.PreserveExistingDocs {
		req.Description = postman.Description(merge.Generated(
			string(existing.Request.Description),
			string(req.Description),
			merge.RequestMarkers,
		))
	}
	candidate.Request = &req
	return candidate
}

// index maps request keys to their slots, in collection order, descending
// into folders.
func index(items []postman.Item) map[pathkey.Key][]*postman.Item {
	idx := make(map[pathkey.Key][]*postman.Item)
	var walk func([]postman.Item)
	walk = func(items []postman.Item) {
		for i := range items {
			it := &items[i]
			if it.IsFolder() {
				walk(it.Items)
				continue
			}
			if it.Request == nil {
				continue
			}
			key := postman.DecodeKey(*it)
			idx[key] = append(idx[key], it)
		}
	}
	walk(items)
	return idx
}

func cloneItems(items []postman.Item) []postman.Item {
	if items == nil {
		return nil
	}
	out := make([]postman.Item, len(items))
	copy(out, items)
	for i := range out {
		if out[i].Items != nil {
			out[i].Items = cloneItems(out[i].Items)
		}
	}
	return out
}

func removeItems(items []postman.Item, drop map[*postman.Item]bool) []postman.Item {
	out := make([]postman.Item, 0, len(items))
	for i := range items {
		if drop[&items[i]] {
			continue
		}
		if items[i].Items != nil {
			items[i].Items = removeItems(items[i].Items, drop)
		}
		out = append(out, items[i])
	}
	return out
}
