//go:build !linux && !windows

package window

// NewBackend reports ErrUnsupported; the session then fails per trigger.
func NewBackend() (Backend, error) {
	return nil, ErrUnsupported
}
