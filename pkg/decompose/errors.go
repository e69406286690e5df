package decompose

import "errors"

// ErrInvalidArgument is returned for a target count below 1 or narration
// that is not valid UTF-8. It is the only error Decompose surfaces.
var ErrInvalidArgument = errors.New("decompose: invalid argument")
