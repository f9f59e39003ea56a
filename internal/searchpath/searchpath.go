// Package searchpath parses the symbol search path configuration string
// into an ordered list of path elements. The mini-language is a
// semicolon-separated list where each segment is either a plain directory
// or a symbol-server descriptor:
//
//	C:\localdir;srv*C:\cache*https://symbols.example.com/;srv*\\share\symbols
//
// A server segment is srv*[<cacheDir>*]<target>; when the cache directory
// is omitted the engine's default cache directory is used.
package searchpath

import "strings"

// Element is one entry of the search path. Exactly one of Dir or Target is
// set: Dir for a local directory element, Target for a symbol-server
// element. Cache is the optional per-server cache override.
type Element struct {
	Dir    string
	Target string
	Cache  string
}

// IsServer reports whether the element is a symbol-server element.
func (e Element) IsServer() bool {
	return e.Target != ""
}

// Parse splits a search path string into ordered elements. Malformed
// segments are skipped, never fatal. An empty string yields no elements,
// which makes every resolution a guaranteed miss after cache checks.
func Parse(s string) []Element {
	var elements []Element

	for _, seg := range strings.Split(s, ";") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}

		if el, ok := parseSegment(seg); ok {
			elements = append(elements, el)
		}
	}

	return elements
}

func parseSegment(seg string) (Element, bool) {
	parts := strings.Split(seg, "*")

	if !strings.EqualFold(parts[0], "srv") {
		// A bare directory must not contain the server separator.
		if len(parts) > 1 {
			return Element{}, false
		}
		return Element{Dir: seg}, true
	}

	switch len(parts) {
	case 2:
		// srv*<target>
		target := strings.TrimSpace(parts[1])
		if target == "" {
			return Element{}, false
		}
		return Element{Target: target}, true
	case 3:
		// srv*<cacheDir>*<target>
		cache := strings.TrimSpace(parts[1])
		target := strings.TrimSpace(parts[2])
		if target == "" {
			return Element{}, false
		}
		return Element{Target: target, Cache: cache}, true
	default:
		return Element{}, false
	}
}
