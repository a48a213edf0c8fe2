// Package scanner classifies a source directory against the extension file
// layout conventions: background.ts, popup/index.tsx, contents/*.ts,
// sandboxes/*, devtools panels, page overrides, the side panel and icon
// assets. The result is a Layout that the manifest processors fold into the
// manifest.
//
// Scanning never fails. A missing source directory yields an empty layout and
// I/O errors are logged and treated as "nothing found".
package scanner
