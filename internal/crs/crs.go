// Package crs parses coordinate reference system identifiers: AUTH:CODE
// references like "EPSG:4326" and the WKT strings found in shapefile .prj
// sidecars and GeoPackage spatial_ref_sys rows.
package crs

import (
	"fmt"
	"strings"
)

// Info describes a coordinate reference system. The zero value means the
// CRS is undefined.
type Info struct {
	Authority  string // e.g. "EPSG"; "Custom" when WKT carries no authority
	Code       string // e.g. "4326"; "Unknown" when WKT carries no authority
	Name       string // WKT name, e.g. "WGS 84"; empty for bare references
	Geographic bool   // true for angular (lat/lon) systems
}

// Defined reports whether the CRS is known at all.
func (i Info) Defined() bool {
	return i.Authority != "" || i.Code != "" || i.Name != ""
}

// String renders the identifier the way descriptions print it:
// "EPSG:4326", or "undefined" for the zero value.
func (i Info) String() string {
	if !i.Defined() {
		return "undefined"
	}
	return i.Authority + ":" + i.Code
}

// geographicCodes lists common geographic (angular) systems so bare
// references can be classified without their WKT.
var geographicCodes = map[string]bool{
	"EPSG:4326": true, // WGS 84
	"EPSG:4269": true, // NAD83
	"EPSG:4267": true, // NAD27
	"EPSG:4258": true, // ETRS89
	"EPSG:4283": true, // GDA94
	"EPSG:4490": true, // CGCS2000
	"OGC:CRS84": true,
}

// wellKnownNames maps ESRI-style WKT names, which often omit the AUTHORITY
// node, to their authority references.
var wellKnownNames = map[string]Info{
	"gcs_wgs_1984":                           {Authority: "EPSG", Code: "4326", Geographic: true},
	"wgs_1984":                               {Authority: "EPSG", Code: "4326", Geographic: true},
	"wgs 84":                                 {Authority: "EPSG", Code: "4326", Geographic: true},
	"gcs_north_american_1983":                {Authority: "EPSG", Code: "4269", Geographic: true},
	"nad83":                                  {Authority: "EPSG", Code: "4269", Geographic: true},
	"wgs_1984_web_mercator_auxiliary_sphere": {Authority: "EPSG", Code: "3857"},
	"wgs 84 / pseudo-mercator":               {Authority: "EPSG", Code: "3857"},
}

// Parse reads a bare "AUTH:CODE" reference such as "EPSG:4326".
func Parse(ref string) (Info, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Info{}, fmt.Errorf("parse crs: empty reference")
	}
	auth, code, ok := strings.Cut(ref, ":")
	if !ok || auth == "" || code == "" {
		return Info{}, fmt.Errorf("parse crs: %q is not an AUTH:CODE reference", ref)
	}
	info := Info{
		Authority: strings.ToUpper(strings.TrimSpace(auth)),
		Code:      strings.TrimSpace(code),
	}
	info.Geographic = geographicCodes[info.String()]
	return info, nil
}

// ParseWKT reads a WKT CRS definition. It extracts the root keyword
// (GEOGCS vs PROJCS and their WKT2 spellings), the name, and the root-level
// AUTHORITY node. ESRI-flavored WKT without an authority is resolved through
// a small well-known-name table; failing that the authority is reported as
// Custom:Unknown.
func ParseWKT(wkt string) (Info, error) {
	wkt = strings.TrimSpace(wkt)
	if wkt == "" {
		return Info{}, fmt.Errorf("parse wkt: empty definition")
	}
	open := strings.IndexAny(wkt, "[(")
	if open < 0 {
		return Info{}, fmt.Errorf("parse wkt: no bracket in definition")
	}
	keyword := strings.ToUpper(strings.TrimSpace(wkt[:open]))

	info := Info{Name: firstQuoted(wkt)}
	switch keyword {
	case "GEOGCS", "GEOGCRS", "GEOGRAPHICCRS":
		info.Geographic = true
	case "PROJCS", "PROJCRS", "PROJECTEDCRS", "GEOCCS", "COMPD_CS", "LOCAL_CS", "ENGCRS", "VERT_CS":
		// projected or otherwise non-angular
	default:
		return Info{}, fmt.Errorf("parse wkt: unrecognized keyword %q", keyword)
	}

	if auth, code, ok := rootAuthority(wkt); ok {
		info.Authority = strings.ToUpper(auth)
		info.Code = code
		return info, nil
	}
	if known, ok := wellKnownNames[strings.ToLower(info.Name)]; ok {
		known.Name = info.Name
		return known, nil
	}
	info.Authority = "Custom"
	info.Code = "Unknown"
	return info, nil
}

// firstQuoted returns the first double-quoted value in the WKT, which is
// the root node's name.
func firstQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// rootAuthority scans for the last AUTHORITY (or WKT2 ID) node at bracket
// depth 1. Nested nodes carry the authorities of datums and nested systems,
// so only the root-level one identifies the CRS itself.
func rootAuthority(wkt string) (auth, code string, ok bool) {
	depth := 0
	inQuote := false
	lastStart := -1

	for i := 0; i < len(wkt); i++ {
		ch := wkt[i]
		if ch == '"' {
			inQuote = !inQuote
			continue
		}
		if inQuote {
			continue
		}
		switch ch {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		default:
			if depth != 1 || !isKeywordStart(wkt, i) {
				continue
			}
			rest := wkt[i:]
			if hasNodePrefix(rest, "AUTHORITY") || hasNodePrefix(rest, "ID") {
				lastStart = i
			}
		}
	}
	if lastStart < 0 {
		return "", "", false
	}

	node := wkt[lastStart:]
	open := strings.IndexAny(node, "[(")
	if open < 0 {
		return "", "", false
	}
	closeIdx := matchingClose(node, open)
	if closeIdx < 0 {
		return "", "", false
	}
	args := splitArgs(node[open+1 : closeIdx])
	if len(args) < 2 {
		return "", "", false
	}
	return unquote(args[0]), unquote(args[1]), true
}

// isKeywordStart reports whether position i begins a word (not the middle
// of an identifier).
func isKeywordStart(s string, i int) bool {
	if !isAlpha(s[i]) {
		return false
	}
	return i == 0 || !isAlpha(s[i-1])
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '_'
}

// hasNodePrefix reports whether s starts with the keyword followed by an
// opening bracket, ignoring case and whitespace before the bracket.
func hasNodePrefix(s, keyword string) bool {
	if len(s) < len(keyword) {
		return false
	}
	if !strings.EqualFold(s[:len(keyword)], keyword) {
		return false
	}
	rest := strings.TrimLeft(s[len(keyword):], " \t")
	return rest != "" && (rest[0] == '[' || rest[0] == '(')
}

// matchingClose returns the index of the bracket closing the one at open.
func matchingClose(s string, open int) int {
	depth := 0
	inQuote := false
	for i := open; i < len(s); i++ {
		ch := s[i]
		if ch == '"' {
			inQuote = !inQuote
			continue
		}
		if inQuote {
			continue
		}
		switch ch {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitArgs splits a node's argument list on top-level commas.
func splitArgs(s string) []string {
	var args []string
	depth := 0
	inQuote := false
	start := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '"' {
			inQuote = !inQuote
			continue
		}
		if inQuote {
			continue
		}
		switch ch {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	args = append(args, strings.TrimSpace(s[start:]))
	return args
}

func unquote(s string) string {
	return strings.Trim(s, `"`)
}
