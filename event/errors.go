package event

import "errors"

// Builder-policy sentinel errors. Builder.Sign returns
// ErrNotAuthoritative when a non-empty AuthoritySet is supplied and the
// signatory is not in it; AuthoritySet.Add and AuthoritySet.Remove
// return the other two. Named and
// grouped the way the teacher groups its own sentinel errors near the
// type they describe.
var (
	ErrRemovedAuthorityDoesNotExist = errors.New("event: removed authority does not exist")
	ErrAuthorityNameConflict        = errors.New("event: authority name is already registered with another key")
	ErrNotAuthoritative             = errors.New("event: signatory is not a known authority")
)

// Codec-level sentinel errors.
var (
	ErrSignatureInvalid = errors.New("event: signature does not verify")
)
