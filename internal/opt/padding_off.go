//go:build slimsync_disable_padding

package opt

// PaddingMult_ is 0: bucket padding force-disabled via the
// slimsync_disable_padding build tag. Use: go build -tags=slimsync_disable_padding
const PaddingMult_ = 0
