// Package bundle compiles an entry map with esbuild and reports, per entry
// name, the files that were emitted.
//
// Every script entry becomes a virtual module that imports its inputs in
// order, so an entry with an injected runtime script still compiles to a
// single bundle named after the entry. HTML entries get a generated page
// shell next to their bundle. Entries without any script or stylesheet
// input, such as icons, are copied into the output directory at their
// source-relative path.
package bundle
