//go:build !slimsync_disable_padding

package opt

// PaddingMult_ is 1 when bucket padding is enabled (the default) and 0
// when disabled via the slimsync_disable_padding build tag. parklot
// multiplies its padding array length by this constant so the disabled
// build carries a zero-size padding field instead of a second struct
// definition.
const PaddingMult_ = 1
