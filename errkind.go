// Package fuziotdb is an embedded, schema-per-type, SQL-less relational
// store optimized for append-mostly workloads with parallel full-scan
// retrieval. See the subpackages for the engine internals:
//
//   - codec    field value <-> byte payload translation
//   - header   on-disk header encoding
//   - slotfile fixed-size-slot file I/O
//   - rwlock   per-type reader/writer coordination
//   - typedesc per-type schema, lifecycle (Push/Set/Free/Purge), scans
//   - scan     parallel-scan partitioning math
//   - pool     worker-thread pool for parallel scans
//   - db       the database facade
package fuziotdb

import "github.com/dropbox/godropbox/errors"

// Kind classifies the errors FuziotDB reports, per spec §7. None of these
// are swallowed; NewError and WrapError return a kindError that pairs a
// godropbox error (carrying its stack trace) with one of these Kinds.
type Kind int

const (
	// InvalidSchema: empty name, non-ASCII name, too many fields,
	// out-of-range field length, record/field count mismatch.
	InvalidSchema Kind = iota + 1
	// HeaderMismatch: the on-disk header's (name, length) set differs
	// from the declared schema and upgrade was not requested.
	HeaderMismatch
	// NotFound: Set/Free referenced a slot id beyond end-of-file.
	NotFound
	// UnknownField: a scan requested a field name not in the schema.
	UnknownField
	// UsageMismatch: a codec was invoked via the wrong Kind path (fixed
	// vs. flexible), or was handed a host value of the wrong Go type.
	UsageMismatch
	// Io wraps an underlying filesystem error.
	Io
	// Corruption: the header claims field counts or lengths inconsistent
	// with the file's actual length.
	Corruption
)

func (k Kind) String() string {
	switch k {
	case InvalidSchema:
		return "InvalidSchema"
	case HeaderMismatch:
		return "HeaderMismatch"
	case NotFound:
		return "NotFound"
	case UnknownField:
		return "UnknownField"
	case UsageMismatch:
		return "UsageMismatch"
	case Io:
		return "Io"
	case Corruption:
		return "Corruption"
	default:
		return "Unknown"
	}
}

// kindError pairs a godropbox error with the Kind it was constructed with,
// so KindOf can recover it without string matching.
type kindError struct {
	error
	kind Kind
}

// NewError builds a Kind-tagged error carrying a godropbox stack trace.
func NewError(kind Kind, format string, args ...interface{}) error {
	var err error
	if len(args) == 0 {
		err = errors.New(format)
	} else {
		err = errors.Newf(format, args...)
	}
	return &kindError{error: err, kind: kind}
}

// WrapError tags an existing error (typically an *os.PathError from the
// filesystem) with a Kind, preserving its godropbox-wrapped stack trace.
func WrapError(kind Kind, err error, message string) error {
	if err == nil {
		return nil
	}
	return &kindError{error: errors.Wrap(err, message), kind: kind}
}

// KindOf returns the Kind an error was tagged with, and whether it was
// tagged at all (errors from outside this package report ok=false).
func KindOf(err error) (Kind, bool) {
	var ke *kindError
	for err != nil {
		if k, ok := err.(*kindError); ok {
			ke = k
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if ke == nil {
		return 0, false
	}
	return ke.kind, true
}

// Is reports whether err was tagged with the given Kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
