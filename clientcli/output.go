package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats results for output.
type Formatter interface {
	FormatUpload(w io.Writer, result *UploadResult) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatStat(w io.Writer, result *StatResult) error
	FormatDelete(w io.Writer, results []DeleteResult) error
	FormatSubtenant(w io.Writer, result *SubtenantResult) error
	FormatCanonical(w io.Writer, result *CanonicalResult) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatUpload formats an upload result as human-readable text.
func (f *HumanFormatter) FormatUpload(w io.Writer, result *UploadResult) error {
	if f.Quiet {
		if result.ObjectID != "" {
			_, _ = fmt.Fprintln(w, result.ObjectID)
		}
		return nil
	}
	target := result.RemotePath
	if target == "" {
		target = result.ObjectID
	}
	_, _ = fmt.Fprintf(w, "Uploaded: %s -> %s (%s)\n", result.LocalPath, target, formatSize(result.Size))
	if result.ObjectID != "" {
		_, _ = fmt.Fprintf(w, "  Object ID: %s\n", result.ObjectID)
	}
	_, _ = fmt.Fprintf(w, "  Node: %s\n", result.Node)
	return nil
}

// FormatDownload formats download result as human-readable text.
func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if !f.Quiet {
		if result.LocalPath == "-" {
			_, _ = fmt.Fprintf(w, "Downloaded: %s (%s)\n", result.RemotePath, formatSize(result.Size))
		} else {
			_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s)\n", result.RemotePath, result.LocalPath, formatSize(result.Size))
		}
	}
	return nil
}

// FormatStat formats object metadata as human-readable text.
func (f *HumanFormatter) FormatStat(w io.Writer, result *StatResult) error {
	_, _ = fmt.Fprintf(w, "Path:         %s\n", result.RemotePath)
	_, _ = fmt.Fprintf(w, "Content-Type: %s\n", result.ContentType)
	_, _ = fmt.Fprintf(w, "Size:         %s\n", formatSize(result.Size))
	return nil
}

// FormatDelete formats delete results as human-readable text.
func (f *HumanFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.Path, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Deleted: %s\n", r.Path)
		}
	}
	return nil
}

// FormatSubtenant formats a subtenant as human-readable text.
func (f *HumanFormatter) FormatSubtenant(w io.Writer, result *SubtenantResult) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, result.Subtenant)
		return nil
	}
	_, _ = fmt.Fprintf(w, "UID:       %s\n", result.UID)
	_, _ = fmt.Fprintf(w, "Subtenant: %s\n", result.Subtenant)
	return nil
}

// FormatCanonical prints the canonical string between markers so trailing
// newlines stay visible.
func (f *HumanFormatter) FormatCanonical(w io.Writer, result *CanonicalResult) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, result.Signature)
		return nil
	}
	_, _ = fmt.Fprintf(w, "%s %s\n", result.Method, result.Path)
	_, _ = fmt.Fprintf(w, "x-emc-uid:       %s\n", result.UID)
	_, _ = fmt.Fprintf(w, "x-emc-signature: %s\n", result.Signature)
	_, _ = fmt.Fprintln(w, "--- canonical ---")
	_, _ = fmt.Fprintln(w, result.Canonical)
	_, _ = fmt.Fprintln(w, "-----------------")
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatUpload formats an upload result as JSON.
func (f *JSONFormatter) FormatUpload(w io.Writer, result *UploadResult) error {
	return writeJSON(w, result)
}

// FormatDownload formats download result as JSON.
func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	return writeJSON(w, result)
}

// FormatStat formats object metadata as JSON.
func (f *JSONFormatter) FormatStat(w io.Writer, result *StatResult) error {
	return writeJSON(w, result)
}

// FormatDelete formats delete results as JSON.
func (f *JSONFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	// Convert errors to strings for JSON output
	type jsonResult struct {
		Path    string `json:"path"`
		Deleted bool   `json:"deleted"`
		Error   string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{
		Results: make([]jsonResult, len(results)),
	}

	for i, r := range results {
		jr := jsonResult{
			Path:    r.Path,
			Deleted: r.Deleted,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		output.Results[i] = jr
	}

	return writeJSON(w, output)
}

// FormatSubtenant formats a subtenant as JSON.
func (f *JSONFormatter) FormatSubtenant(w io.Writer, result *SubtenantResult) error {
	return writeJSON(w, result)
}

// FormatCanonical formats the signing input and output as JSON.
func (f *JSONFormatter) FormatCanonical(w io.Writer, result *CanonicalResult) error {
	return writeJSON(w, result)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	// Calculate column widths
	maxNameLen := 4  // "NAME"
	maxNodesLen := 5 // "NODES"
	for i := range profiles {
		if len(profiles[i].Name) > maxNameLen {
			maxNameLen = len(profiles[i].Name)
		}
		if n := len(strings.Join(profiles[i].Nodes, ",")); n > maxNodesLen {
			maxNodesLen = n
		}
	}
	maxNameLen = min(maxNameLen, 20)
	maxNodesLen = min(maxNodesLen, 50)

	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %s\n", maxNameLen, "NAME", maxNodesLen, "NODES", "UID")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", maxNodesLen), strings.Repeat("-", 20))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := p.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		nodes := strings.Join(p.Nodes, ",")
		if len(nodes) > maxNodesLen {
			nodes = nodes[:maxNodesLen-3] + "..."
		}

		uid := p.UID
		if uid == "" {
			uid = "(not set)"
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %s\n", marker, maxNameLen, name, maxNodesLen, nodes, uid)
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	_, _ = fmt.Fprintf(w, "Name:      %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Nodes:     %s\n", strings.Join(profile.Nodes, ", "))
	if profile.Scheme != "" {
		_, _ = fmt.Fprintf(w, "Scheme:    %s\n", profile.Scheme)
	}
	if profile.Namespace != "" {
		_, _ = fmt.Fprintf(w, "Namespace: %s\n", profile.Namespace)
	}
	_, _ = fmt.Fprintf(w, "FS Access: %t\n", profile.FSAccess)
	_, _ = fmt.Fprintf(w, "UID:       %s\n", profile.UID)
	_, _ = fmt.Fprintf(w, "Secret:    %s\n", maskSecret(profile.Secret, showSecrets))
	if profile.Token != "" {
		_, _ = fmt.Fprintf(w, "Token:     %s\n", profile.Token)
	}
	return nil
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	type jsonProfile struct {
		Name      string   `json:"name"`
		Nodes     []string `json:"nodes"`
		Namespace string   `json:"namespace,omitempty"`
		FSAccess  bool     `json:"fs_access"`
		UID       string   `json:"uid,omitempty"`
		Secret    string   `json:"secret,omitempty"`
		Default   bool     `json:"default,omitempty"`
	}

	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		p := &profiles[i]
		output.Profiles[i] = jsonProfile{
			Name:      p.Name,
			Nodes:     p.Nodes,
			Namespace: p.Namespace,
			FSAccess:  p.FSAccess,
			UID:       p.UID,
			Secret:    maskSecret(p.Secret, showSecrets),
			Default:   p.Name == defaultName,
		}
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	output := struct {
		Name      string   `json:"name"`
		Nodes     []string `json:"nodes"`
		Scheme    string   `json:"scheme,omitempty"`
		Namespace string   `json:"namespace,omitempty"`
		FSAccess  bool     `json:"fs_access"`
		UID       string   `json:"uid"`
		Secret    string   `json:"secret"`
		Token     string   `json:"token,omitempty"`
		Default   bool     `json:"default"`
	}{
		Name:      profile.Name,
		Nodes:     profile.Nodes,
		Scheme:    profile.Scheme,
		Namespace: profile.Namespace,
		FSAccess:  profile.FSAccess,
		UID:       profile.UID,
		Secret:    maskSecret(profile.Secret, showSecrets),
		Token:     profile.Token,
		Default:   isDefault,
	}

	return writeJSON(w, output)
}

// maskSecret masks a secret string, showing only first 4 and last 4 characters.
// If showSecrets is true, returns the original value.
// If the secret is too short, returns all asterisks.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
