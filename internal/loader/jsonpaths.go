package loader

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Path addresses one value inside a JSON record: a sequence of object keys
// and array indexes, e.g. $['user']['id'] or $.items[0].
type Path struct {
	raw      string
	segments []segment
}

type segment struct {
	key   string
	index int
	isIdx bool
}

func (p Path) String() string { return p.raw }

// descriptor is the JSONPaths file format: {"jsonpaths": ["$['artist']", ...]}.
type descriptor struct {
	JSONPaths []string `json:"jsonpaths"`
}

// ReadJSONPaths parses a JSONPaths descriptor.
func ReadJSONPaths(r io.Reader) ([]Path, error) {
	var d descriptor
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("invalid JSONPaths descriptor: %w", err)
	}
	if len(d.JSONPaths) == 0 {
		return nil, fmt.Errorf("JSONPaths descriptor lists no paths")
	}
	paths := make([]Path, len(d.JSONPaths))
	for i, expr := range d.JSONPaths {
		p, err := ParsePath(expr)
		if err != nil {
			return nil, err
		}
		paths[i] = p
	}
	return paths, nil
}

// ParsePath parses one JSONPath expression in bracket or dot notation.
func ParsePath(expr string) (Path, error) {
	s := strings.TrimSpace(expr)
	if !strings.HasPrefix(s, "$") {
		return Path{}, fmt.Errorf("JSONPath %q must start with $", expr)
	}
	s = s[1:]

	var segs []segment
	for len(s) > 0 {
		switch s[0] {
		case '.':
			s = s[1:]
			end := strings.IndexAny(s, ".[")
			if end < 0 {
				end = len(s)
			}
			if end == 0 {
				return Path{}, fmt.Errorf("JSONPath %q has an empty key", expr)
			}
			segs = append(segs, segment{key: s[:end]})
			s = s[end:]
		case '[':
			end := strings.IndexByte(s, ']')
			if end < 0 {
				return Path{}, fmt.Errorf("JSONPath %q has an unterminated bracket", expr)
			}
			inner := strings.TrimSpace(s[1:end])
			s = s[end+1:]
			if n := len(inner); n >= 2 && (inner[0] == '\'' || inner[0] == '"') && inner[n-1] == inner[0] {
				segs = append(segs, segment{key: inner[1 : n-1]})
				continue
			}
			idx, err := strconv.Atoi(inner)
			if err != nil || idx < 0 {
				return Path{}, fmt.Errorf("JSONPath %q has an invalid element %q", expr, inner)
			}
			segs = append(segs, segment{index: idx, isIdx: true})
		default:
			return Path{}, fmt.Errorf("JSONPath %q: unexpected %q", expr, s[0])
		}
	}
	if len(segs) == 0 {
		return Path{}, fmt.Errorf("JSONPath %q selects the whole record", expr)
	}
	return Path{raw: expr, segments: segs}, nil
}

// Lookup returns the value at p, or nil when any segment is absent.
func (p Path) Lookup(record any) any {
	cur := record
	for _, seg := range p.segments {
		switch v := cur.(type) {
		case map[string]any:
			if seg.isIdx {
				return nil
			}
			cur = v[seg.key]
		case []any:
			if !seg.isIdx || seg.index >= len(v) {
				return nil
			}
			cur = v[seg.index]
		default:
			return nil
		}
	}
	return cur
}
