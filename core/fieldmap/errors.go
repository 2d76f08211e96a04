package fieldmap

import "fmt"

// ConfigurationError reports a field-map table that cannot serve a lookup,
// either because an entry is missing or because the table is malformed.
type ConfigurationError struct {
	CloudType    string
	ResourceType string
	Reason       string
	Err          error
}

func (e *ConfigurationError) Error() string {
	msg := e.Reason
	if e.CloudType != "" || e.ResourceType != "" {
		msg = fmt.Sprintf("field map %s/%s: %s", e.CloudType, e.ResourceType, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
