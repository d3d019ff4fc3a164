package slimsync

// noCopy may be embedded in structs which must not be copied after first
// use. It is a zero-size marker; embed it (never reference it) so that
// `go vet`'s -copylocks check flags accidental copies of a Mutex or
// SharedMutex without adding to the struct's footprint.
//
// See https://golang.org/issues/8005#issuecomment-190753527 for details.
type noCopy struct{}

// Lock is a no-op used by -copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
