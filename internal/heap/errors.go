package heap

import "errors"

var (
	ErrNoTupleWithGivenRID = errors.New("heap: NO_TUPLE_WITH_GIVEN_RID")
	ErrNoMoreTuples        = errors.New("heap: NO_MORE_TUPLES")
)
