package cartridge

import "fmt"

// FormatError is returned when the buffer does not start with the iNES signature
type FormatError struct {
	Signature []byte
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("not an iNES image: bad signature % X", e.Signature)
}

// TruncatedError is returned when the header declares more data than the
// buffer holds
type TruncatedError struct {
	Section string
	Want    int
	Have    int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated image: %s needs %d bytes, only %d available", e.Section, e.Want, e.Have)
}

// InvalidHeaderError is returned for a header that is well formed but
// describes an impossible cartridge
type InvalidHeaderError struct {
	Field  string
	Reason string
}

func (e *InvalidHeaderError) Error() string {
	return fmt.Sprintf("invalid header field '%s': %s", e.Field, e.Reason)
}
