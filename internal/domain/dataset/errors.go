package dataset

// DomainError represents a pipeline-level error with a stable code.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Common pipeline errors. Configuration, extraction and decryption failures
// abort the whole run; key collisions are a data-quality failure of the
// deduplication contract.
var (
	ErrConfiguration = NewDomainError("CONFIGURATION", "invalid or missing configuration")
	ErrExtraction    = NewDomainError("EXTRACTION", "input source unreachable or empty")
	ErrDecryption    = NewDomainError("DECRYPTION", "protected archive could not be opened")
	ErrKeyCollision  = NewDomainError("KEY_COLLISION", "dataset contains duplicate keys")
	ErrNotFound      = NewDomainError("NOT_FOUND", "resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "resource already registered")
)
