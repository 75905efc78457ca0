package atmos

import (
	"net/http"
	"strings"
)

// ObjectIDFromLocation returns the object id the server assigned on create.
// Atmos reports it in the Location header as /rest/objects/<id>.
func ObjectIDFromLocation(resp *http.Response) (string, bool) {
	location := resp.Header.Get("Location")
	id, found := strings.CutPrefix(location, ObjectsURIBase+"/")
	if !found || id == "" {
		return "", false
	}
	return id, true
}
