// Package normalize turns a partial manifest, package metadata and a source
// tree into a complete manifest for one target and mode.
//
// Normalization runs once per build in three steps:
//
//  1. Seed: manifest_version from the target and name, version, description,
//     author and homepage_url from package.json. The user's partial manifest
//     is laid over the seed, so user values always win.
//  2. Dev augmentation (development mode only): version_name, the scripting
//     permission and a wildcard host permission, each added only when missing.
//  3. Discovery: the source tree is scanned once and every processor merges
//     the files of its feature into fields the user left unset.
//
// Discovery is best effort. A processor that fails is logged and skipped and
// the manifest keeps whatever was seeded. Only Strict validation produces an
// error.
package normalize
