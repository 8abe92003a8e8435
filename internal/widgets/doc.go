// Package widgets is generated from the widget descriptors used in the schema
// tests. It exercises the generated page types against the runtime.
package widgets

//go:generate go run ../../cmd/pagegen generate --schema-dir ../../schema/testdata/widgets --package widgets --out-dir . --samples-dir testdata/samples --object-key url
