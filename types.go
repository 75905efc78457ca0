package atmos

import (
	"fmt"
	"strings"
)

// Credential identifies a caller. Secret is the base64 encoded shared key.
// Credential is comparable and used as a map key for session tokens.
type Credential struct {
	UID    string `mapstructure:"uid" json:"uid" yaml:"uid"`
	Secret string `mapstructure:"secret" json:"secret" yaml:"secret"`
}

// IsZero reports whether neither uid nor secret is set.
func (c Credential) IsZero() bool {
	return c.UID == "" && c.Secret == ""
}

// OpType is the kind of operation a request performs.
type OpType int

const (
	OpNoop OpType = iota
	OpCreate
	OpRead
	OpUpdate
	OpDelete
)

var opTypeNames = map[OpType]string{
	OpNoop:   "noop",
	OpCreate: "create",
	OpRead:   "read",
	OpUpdate: "update",
	OpDelete: "delete",
}

// String returns the lower case operation name.
func (o OpType) String() string {
	if name, ok := opTypeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("OpType(%d)", int(o))
}

// IsValid reports whether o is one of the known operation types.
func (o OpType) IsValid() bool {
	_, ok := opTypeNames[o]
	return ok
}

// ParseOpType parses the lower or upper case name of an operation type.
func ParseOpType(s string) (OpType, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for op, name := range opTypeNames {
		if name == needle {
			return op, nil
		}
	}
	return 0, fmt.Errorf("invalid operation type: %s (valid types: noop, create, read, update, delete): %w", s, ErrInvalidInput)
}

// Item is the object addressed by an operation.
type Item struct {
	Name string
}

// Operation describes a single data request. It lives for one request only.
type Operation struct {
	Type    OpType
	Item    Item
	SrcPath string
	DstPath string

	// Credential overrides the driver default credential when set.
	Credential *Credential
}

// PathCreation selects how new container paths are produced.
type PathCreation int

const (
	// PathCreationGeneric builds new paths with the generic item path builder.
	PathCreationGeneric PathCreation = iota
	// PathCreationNone means the protocol addresses objects without
	// pre-created paths, so path creation is not available.
	PathCreationNone
)

func (p PathCreation) String() string {
	switch p {
	case PathCreationGeneric:
		return "generic"
	case PathCreationNone:
		return "none"
	default:
		return fmt.Sprintf("PathCreation(%d)", int(p))
	}
}
