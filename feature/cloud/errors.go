package cloud

import "errors"

var (
	// ErrUnknownCloud is returned for cloud names absent from the registry.
	ErrUnknownCloud = errors.New("unknown cloud")
	// ErrUnsupportedCloudType is returned for cloud types without a connector.
	ErrUnsupportedCloudType = errors.New("unsupported cloud type")
	// ErrNotImplemented is returned by backends that cannot list a resource type yet.
	ErrNotImplemented = errors.New("not implemented for this cloud type")
)
