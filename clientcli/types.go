package clientcli

// UploadOptions configures an upload operation.
type UploadOptions struct {
	LocalPath string
	// RemotePath is a namespace path with filesystem access, or the id of
	// an existing object when Overwrite is set. Without filesystem access a
	// new object gets its id from the server.
	RemotePath  string
	ContentType string // optional, auto-detect if empty
	Overwrite   bool   // update an existing object instead of creating one
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath   string `json:"local_path"`
	RemotePath  string `json:"remote_path,omitempty"`
	ObjectID    string `json:"object_id,omitempty"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
	Node        string `json:"node"`
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	RemotePath string
	LocalPath  string // empty = derive from remote, "-" = stdout
}

// DownloadResult represents the result of downloading a file.
type DownloadResult struct {
	RemotePath  string `json:"remote_path"`
	LocalPath   string `json:"local_path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
}

// StatResult describes an object without fetching its content.
type StatResult struct {
	RemotePath  string `json:"remote_path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
}

// DeleteOptions configures a delete operation.
type DeleteOptions struct {
	Paths []string
}

// DeleteResult represents the result of deleting a single object.
type DeleteResult struct {
	Path    string `json:"path"`
	Deleted bool   `json:"deleted"`
	Err     error  `json:"-"` // nil on success
}

// SubtenantResult is a subtenant issued to or looked up for a uid.
type SubtenantResult struct {
	UID       string `json:"uid"`
	Subtenant string `json:"subtenant"`
}

// CanonicalOptions describes the request whose canonical string is wanted.
type CanonicalOptions struct {
	Op          string // operation name, see atmos.ParseOpType
	RemotePath  string
	ContentType string
}

// CanonicalResult is the signing input and output of a request.
type CanonicalResult struct {
	Method    string `json:"method"`
	Path      string `json:"path"`
	UID       string `json:"uid"`
	Canonical string `json:"canonical"`
	Signature string `json:"signature"`
}
