// Package processor holds one processor per manifest feature (background,
// content scripts, popup, options, devtools, sandbox, icons, page overrides,
// side panel). Each processor runs in three phases:
//
//   - Merge folds files discovered by the scanner into the manifest, unless
//     the manifest already declares the feature explicitly.
//   - Read turns the manifest into bundler entry points.
//   - Write patches the manifest with the assets the bundler emitted for an
//     entry.
//
// Before a build, manifest fields hold source paths relative to the source
// directory (popup/index.tsx). After Write they hold output paths (popup.html).
package processor
