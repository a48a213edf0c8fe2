// Package manifest models the browser-extension manifest document and the
// inputs that seed it: build targets, build modes, user-authored partial
// manifests and package.json metadata.
//
// A Manifest is kept as a generic JSON-shaped map so that fields the builder
// does not know about (commands, web_accessible_resources, ...) pass through
// untouched. Serialization sorts keys, which makes the written manifest.json
// deterministic across rebuilds.
//
// The package also validates finished manifests against an embedded JSON
// Schema covering the fields every target requires.
package manifest
