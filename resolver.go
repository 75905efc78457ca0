package atmos

import (
	"fmt"
	"net/http"
	"strings"
)

// Resolver maps operations to the HTTP method and URI path of the request
// that performs them. A Resolver is immutable and safe for concurrent use.
type Resolver struct {
	// FSAccess addresses objects by namespace path instead of object id.
	FSAccess bool
	// PathCreation is fixed to PathCreationNone by NewResolver.
	PathCreation PathCreation
}

// NewResolver returns the resolver used by the Atmos driver.
func NewResolver(fsAccess bool) Resolver {
	return Resolver{
		FSAccess:     fsAccess,
		PathCreation: PathCreationNone,
	}
}

// DataMethod returns the HTTP method of a data request.
func (r Resolver) DataMethod(op OpType) (string, error) {
	switch op {
	case OpNoop:
		return http.MethodHead, nil
	case OpCreate:
		return http.MethodPost, nil
	case OpRead:
		return http.MethodGet, nil
	case OpUpdate:
		return http.MethodPut, nil
	case OpDelete:
		return http.MethodDelete, nil
	default:
		return "", fmt.Errorf("data request for %s: %w", op, ErrUnsupportedOperation)
	}
}

// DataPath returns the URI path of a data request. With filesystem access the
// object is addressed through the namespace. Otherwise a create goes to the
// flat objects base since the server assigns the object id.
func (r Resolver) DataPath(op OpType, item Item, srcPath, dstPath string) string {
	if r.FSAccess {
		return NamespaceURIBase + ItemPath(item, srcPath, dstPath)
	}
	if op == OpCreate {
		return ObjectsURIBase
	}
	return ObjectsURIBase + ItemPath(item, srcPath, dstPath)
}

// TokenMethod returns the HTTP method of a subtenant request.
func (r Resolver) TokenMethod(op OpType) (string, error) {
	switch op {
	case OpNoop:
		return http.MethodHead, nil
	case OpCreate:
		return http.MethodPut, nil
	case OpRead:
		return http.MethodGet, nil
	case OpDelete:
		return http.MethodDelete, nil
	default:
		return "", fmt.Errorf("subtenant request for %s: %w", op, ErrUnsupportedOperation)
	}
}

// TokenPath returns the URI path of a subtenant request.
func (r Resolver) TokenPath(op OpType, item Item) string {
	if op == OpCreate {
		return SubtenantURIBase
	}
	return SubtenantURIBase + "/" + item.Name
}

// PathMethod is not provided by Atmos.
func (r Resolver) PathMethod(op OpType) (string, error) {
	return "", fmt.Errorf("path request method for %s: %w", op, ErrNotImplemented)
}

// PathPath is not provided by Atmos.
func (r Resolver) PathPath(op OpType, item Item, srcPath, dstPath string) (string, error) {
	return "", fmt.Errorf("path request uri for %s: %w", op, ErrNotImplemented)
}

// NewPath creates a container path. Atmos objects need no pre-created
// container, so with PathCreationNone this always fails.
func (r Resolver) NewPath(path string) (string, error) {
	switch r.PathCreation {
	case PathCreationGeneric:
		return ItemPath(Item{}, "", path), nil
	default:
		return "", fmt.Errorf("new path %q with %s path creation: %w", path, r.PathCreation, ErrNotImplemented)
	}
}

// ItemPath joins the item directory and name into an absolute URI path.
// The directory is dstPath when set, srcPath otherwise.
//
//	ItemPath(Item{Name: "obj"}, "", "/dir0")  // "/dir0/obj"
//	ItemPath(Item{Name: "obj"}, "dir0/", "") // "/dir0/obj"
//	ItemPath(Item{Name: "obj"}, "", "")      // "/obj"
func ItemPath(item Item, srcPath, dstPath string) string {
	dir := dstPath
	if dir == "" {
		dir = srcPath
	}
	dir = strings.TrimSuffix(dir, "/")
	if dir != "" && !strings.HasPrefix(dir, "/") {
		dir = "/" + dir
	}

	name := strings.TrimPrefix(item.Name, "/")
	if name == "" {
		if dir == "" {
			return "/"
		}
		return dir
	}
	return dir + "/" + name
}
