package gen

import (
	"go/token"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titler = cases.Title(language.Und, cases.NoLower)

// identifiers generated methods and embedded fields already claim on a page type
var pageReserved = map[string]bool{
	"Base":             true,
	"Name":             true,
	"ID":               true,
	"Category":         true,
	"PageID":           true,
	"PageName":         true,
	"SetBase":          true,
	"Descriptor":       true,
	"MarshalDocument":  true,
	"PopulateDocument": true,
}

var valueReserved = map[string]bool{
	"Descriptor":       true,
	"MarshalDocument":  true,
	"PopulateDocument": true,
}

// parameter and local names generated code uses, plus imported package names
// and predeclared identifiers
var paramReserved = map[string]bool{
	"t": true, "out": true, "err": true, "doc": true, "docs": true,
	"ctx": true, "cache": true, "codec": true, "base": true,
	"context": true, "fmt": true, "linkcodec": true, "pagecache": true, "pageutil": true, "schema": true,
	"any": true, "bool": true, "byte": true, "error": true, "float32": true, "float64": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true, "rune": true, "string": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"complex64": true, "complex128": true, "comparable": true,
	"true": true, "false": true, "nil": true, "iota": true,
	"append": true, "cap": true, "clear": true, "close": true, "complex": true, "copy": true,
	"delete": true, "imag": true, "len": true, "make": true, "max": true, "min": true, "new": true,
	"panic": true, "print": true, "println": true, "real": true, "recover": true,
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// GoName turns a descriptor name or field key into an exported Go identifier:
// "first_name" becomes "FirstName", "owner" becomes "Owner". Existing interior
// capitals are kept.
func GoName(s string) string {
	var sb strings.Builder
	for _, w := range splitWords(s) {
		sb.WriteString(titler.String(w))
	}
	out := sb.String()
	if out == "" {
		return "X"
	}
	if unicode.IsDigit([]rune(out)[0]) {
		return "X" + out
	}
	return out
}

func lowerFirst(s string) string {
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// FileName is the snake_case file base name for a type: "WidgetPart" becomes
// "widget_part".
func FileName(goName string) string {
	var sb strings.Builder
	runes := []rune(goName)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				sb.WriteByte('_')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// uniqueNamer hands out names, appending "_" until a name is neither reserved
// nor already used.
type uniqueNamer struct {
	reserved map[string]bool
	used     map[string]bool
}

func newUniqueNamer(reserved ...map[string]bool) *uniqueNamer {
	n := &uniqueNamer{reserved: map[string]bool{}, used: map[string]bool{}}
	for _, m := range reserved {
		for k := range m {
			n.reserved[k] = true
		}
	}
	return n
}

func (n *uniqueNamer) name(s string) string {
	for n.reserved[s] || n.used[s] || token.IsKeyword(s) {
		s += "_"
	}
	n.used[s] = true
	return s
}
