package atmos

// URI bases of the Atmos REST API.
const (
	ObjectsURIBase   = "/rest/objects"
	NamespaceURIBase = "/rest/namespace"
	SubtenantURIBase = "/rest/subtenant"
)

// Atmos specific header names. Values are lower case since that is how they
// appear in the canonical string.
const (
	HeaderPrefix                  = "x-emc-"
	HeaderUID                     = "x-emc-uid"
	HeaderSignature               = "x-emc-signature"
	HeaderNamespace               = "x-emc-namespace"
	HeaderFilesystemAccessEnabled = "x-emc-filesystem-access-enabled"
	HeaderDate                    = "x-emc-date"

	// HeaderSubtenantID carries the subtenant issued by a bootstrap PUT.
	HeaderSubtenantID = "subtenantID"
)

// SignatureAlgorithm names the keyed hash used for x-emc-signature.
const SignatureAlgorithm = "HmacSHA1"

// CanonicalHeaders lists the standard headers that feed the canonical string,
// in protocol order.
var CanonicalHeaders = [...]string{
	"Content-Type",
	"Range",
	"Date",
}
