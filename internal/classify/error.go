package classify

import "fmt"

// OpError records which operation failed alongside its classification. The
// underlying error stays reachable through errors.Is/As.
type OpError struct {
	Op       string
	Category Category
	Err      error
}

func (e *OpError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Wrap classifies err and names the operation it came from. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Category: Of(err), Err: err}
}
