// Package fieldpath resolves dotted, optionally indexed field paths (C2)
// against an arbitrarily nested JSON value: "userIdentity.type",
// "requestParameters.items[0].id". Resolution distinguishes a path that
// does not resolve (absent) from one that resolves to JSON null.
package fieldpath

import (
	"strconv"
	"strings"
)

// segment is either a key lookup or (if isIndex) an array index.
type segment struct {
	key     string
	index   int
	isIndex bool
}

// Path is a parsed field path, ready to be resolved against any number of
// values without re-parsing.
type Path struct {
	segments []segment
}

// Parse splits a dotted path into segments at every '.'; quoting is not
// recognized, so a key that itself contains a '.' cannot be addressed. A
// segment of the form "name[idx]" becomes a name lookup followed by an
// array index.
func Parse(raw string) Path {
	var segs []segment
	for _, part := range strings.Split(raw, ".") {
		if part == "" {
			continue
		}
		name, indices := splitIndices(part)
		if name != "" {
			segs = append(segs, segment{key: name})
		}
		for _, idx := range indices {
			segs = append(segs, segment{index: idx, isIndex: true})
		}
	}
	return Path{segments: segs}
}

// splitIndices pulls trailing "[n]" groups off a path segment, e.g.
// "items[0][1]" -> "items", [0, 1].
func splitIndices(part string) (string, []int) {
	var indices []int
	name := part
	for strings.HasSuffix(name, "]") {
		open := strings.LastIndexByte(name, '[')
		if open < 0 {
			break
		}
		idxStr := name[open+1 : len(name)-1]
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			break
		}
		indices = append([]int{idx}, indices...)
		name = name[:open]
	}
	return name, indices
}

// Resolve walks root by the parsed path and returns (value, true) when the
// path resolves to a present value (including JSON null, represented as a
// nil interface{}), or (nil, false) when any segment is absent. root must
// be a plain map[string]interface{} (a record.Record converts to this for
// free, since it shares the same underlying type).
func (p Path) Resolve(root map[string]interface{}) (interface{}, bool) {
	var cur interface{} = root
	for _, seg := range p.segments {
		if seg.isIndex {
			arr, ok := cur.([]interface{})
			if !ok || seg.index < 0 || seg.index >= len(arr) {
				return nil, false
			}
			cur = arr[seg.index]
			continue
		}
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		val, present := obj[seg.key]
		if !present {
			return nil, false
		}
		cur = val
	}
	return cur, true
}

// Resolve is a convenience wrapper that parses raw and resolves it in one
// call. Prefer Parse+Resolve when the same path is evaluated repeatedly
// (e.g. once per record in a scan).
func Resolve(root map[string]interface{}, raw string) (interface{}, bool) {
	return Parse(raw).Resolve(root)
}

// Walk returns every dotted field path reachable from root, descending into
// nested objects but not into array elements (array-valued fields are
// reported as a single leaf path). Used to build rule-authoring field
// suggestions from a sample of parsed records.
func Walk(root map[string]interface{}) []string {
	var paths []string
	walk(root, "", &paths)
	return paths
}

func walk(v interface{}, prefix string, out *[]string) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		if prefix != "" {
			*out = append(*out, prefix)
		}
		return
	}
	if len(obj) == 0 && prefix != "" {
		*out = append(*out, prefix)
		return
	}
	for key, val := range obj {
		next := key
		if prefix != "" {
			next = prefix + "." + key
		}
		walk(val, next, out)
	}
}

// String reconstructs the dotted/bracketed textual form of the path.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p.segments {
		if seg.isIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.index))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.key)
	}
	return b.String()
}
