//go:build !with_cv
// +build !with_cv

package motion

// NewDefault returns the best estimator available in this build.
func NewDefault() Estimator {
	return NewBlockMatching()
}
