package mapper

import (
	"errors"
	"fmt"

	"cloudsync/core/fieldmap"
	"cloudsync/core/schema"
)

// MappingResolutionError wraps any failure while translating one provider
// payload. It keeps enough context to log or skip the offending resource.
type MappingResolutionError struct {
	ResourceType string
	Cloud        string
	CloudType    string
	Payload      any
	Err          error
}

func (e *MappingResolutionError) Error() string {
	return fmt.Sprintf("unable to translate %s for cloud %q (%s): %v", e.ResourceType, e.Cloud, e.CloudType, e.Err)
}

func (e *MappingResolutionError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err was caused by a missing or invalid
// field-map entry.
func IsConfigurationError(err error) bool {
	var cfgErr *fieldmap.ConfigurationError
	return errors.As(err, &cfgErr)
}

// IsUnsupportedResourceType reports whether err was caused by a resource type
// without a canonical schema.
func IsUnsupportedResourceType(err error) bool {
	var unsupported *schema.UnsupportedResourceTypeError
	return errors.As(err, &unsupported)
}

var (
	// ErrNoCloud is returned when neither the caller nor the tenancy scope names a cloud.
	ErrNoCloud = errors.New("no cloud in request or tenancy scope")
	// ErrNotMapping is returned for payloads that cannot be viewed as a mapping.
	ErrNotMapping = errors.New("payload is not a mapping")
)
