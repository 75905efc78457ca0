package atmos

import (
	"bytes"
	"net/http"
	"sort"
	"strings"
)

// CanonicalString builds the string that x-emc-signature is computed over.
//
// The layout is:
//
//	METHOD
//	\n<value> for each of CanonicalHeaders, empty when absent
//	\n<path>
//	\n<name>:<value> for each x-emc-* header, sorted by lower case name
//
// Standard header values come from headers first, then from shared. For
// x-emc-* headers both sets are merged and headers wins on duplicate names.
// x-emc-signature itself is never included.
func CanonicalString(headers, shared http.Header, method, path string) string {
	var buf bytes.Buffer
	writeCanonical(&buf, headers, shared, method, path)
	return buf.String()
}

func writeCanonical(buf *bytes.Buffer, headers, shared http.Header, method, path string) {
	buf.WriteString(method)

	for _, name := range CanonicalHeaders {
		if values := headers.Values(name); len(values) > 0 {
			for _, v := range values {
				buf.WriteByte('\n')
				buf.WriteString(v)
			}
			continue
		}
		buf.WriteByte('\n')
		if values := shared.Values(name); len(values) > 0 {
			buf.WriteString(values[0])
		}
	}

	buf.WriteByte('\n')
	buf.WriteString(path)

	emc := make(map[string]string)
	collectEMCHeaders(emc, shared)
	collectEMCHeaders(emc, headers)

	names := make([]string, 0, len(emc))
	for name := range emc {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		buf.WriteByte('\n')
		buf.WriteString(name)
		buf.WriteByte(':')
		buf.WriteString(emc[name])
	}
}

// collectEMCHeaders copies x-emc-* headers into dst keyed by lower case name.
// A header with several values contributes its last one.
func collectEMCHeaders(dst map[string]string, h http.Header) {
	for key, values := range h {
		name := strings.ToLower(key)
		if !strings.HasPrefix(name, HeaderPrefix) || name == HeaderSignature || len(values) == 0 {
			continue
		}
		dst[name] = values[len(values)-1]
	}
}
