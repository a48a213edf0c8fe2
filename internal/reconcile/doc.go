// Package reconcile patches a normalized manifest with the files a build
// actually emitted and writes manifest.json to the output directory.
package reconcile
