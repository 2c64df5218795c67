// Package document provides the cumulative analysis result document.
// The document is the only channel through which steps communicate: a step's
// key is either absent or carries that step's fully formed output.
package document

// Reserved top-level keys that are not owned by any catalogue step.
const (
	KeyMetadata = "metadata"
)

// Error marker fields recorded under a step's key when the step fails
// permanently. The rendering layer shows these as "unavailable" and never
// crashes on them.
const (
	FieldError       = "error"
	FieldErrorReason = "error_reason"
)

// Document maps step names (plus reserved keys) to step outputs.
type Document map[string]interface{}

// New creates an empty document.
func New() Document {
	return make(Document)
}

// Merge installs a step's fully computed value under its key. Overwrites any
// prior value for the same key.
func (d Document) Merge(key string, value interface{}) {
	d[key] = value
}

// Has reports whether a key carries a value, failed or not.
func (d Document) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Get returns the value stored under key.
func (d Document) Get(key string) (interface{}, bool) {
	v, ok := d[key]
	return v, ok
}

// MarkFailed records an explicit error marker as the step's value so that
// downstream consumers observe "this step failed" instead of a missing key.
func (d Document) MarkFailed(key, reason string) {
	d[key] = map[string]interface{}{
		FieldError:       true,
		FieldErrorReason: reason,
	}
}

// IsFailed reports whether the value under key is an error marker.
func (d Document) IsFailed(key string) bool {
	entry, ok := d[key].(map[string]interface{})
	if !ok {
		return false
	}
	failed, _ := entry[FieldError].(bool)
	return failed
}

// FailureReason returns the recorded reason for a failed step, if any.
func (d Document) FailureReason(key string) string {
	entry, ok := d[key].(map[string]interface{})
	if !ok {
		return ""
	}
	reason, _ := entry[FieldErrorReason].(string)
	return reason
}

// Usable reports whether key holds a value downstream steps may consume:
// present and not an error marker.
func (d Document) Usable(key string) bool {
	return d.Has(key) && !d.IsFailed(key)
}

// Clone returns a shallow copy. Step outputs are treated as immutable once
// merged, so a shallow copy is sufficient.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
