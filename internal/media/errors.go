package media

import "errors"

var (
	// ErrAssetTooLarge indicates the payload exceeds the configured max asset size.
	ErrAssetTooLarge = errors.New("media asset too large")
	// ErrNotAnImage indicates the fetched body did not carry an image content type.
	ErrNotAnImage = errors.New("response is not an image")
	// ErrNoUsableCandidate indicates every candidate URL for an item failed.
	ErrNoUsableCandidate = errors.New("no usable candidate URL")
)
