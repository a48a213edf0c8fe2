// Package declarative recovers metadata that entry files export as plain
// literals, such as a content script's `export const config = {matches: [...]}`
// or a popup's `export const title = "..."`, without executing the file.
//
// Sources are normalized to ECMAScript first (TypeScript and JSX are stripped
// with esbuild, single-file components have their <script> block lifted) and
// then parsed into a syntax tree. Only object, array, string, number, boolean
// and null literals are reconstructed. An export whose initializer contains
// anything else (a call, an identifier, a template string, a spread) is
// treated as absent. This restriction is deliberate: the manifest has to be
// computable before any code has run.
package declarative
