package manifest

import "errors"

// Sentinel errors for the manifest package.
var (
	// ErrUnknownTarget indicates a target selector outside the supported set.
	ErrUnknownTarget = errors.New("unknown build target")

	// ErrUnknownMode indicates a build mode other than development or production.
	ErrUnknownMode = errors.New("unknown build mode")

	// ErrInvalidManifest indicates the manifest failed schema validation.
	ErrInvalidManifest = errors.New("invalid manifest")

	// ErrUnsupportedExt indicates a partial manifest file with an unsupported extension.
	ErrUnsupportedExt = errors.New("unsupported manifest file extension (use .json, .yaml, or .yml)")
)
