package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats results for output.
type Formatter interface {
	FormatList(w io.Writer, result *ListResult) error
	FormatRecord(w io.Writer, action string, rec *Record) error
	FormatGet(w io.Writer, result *GetResult) error
	FormatPut(w io.Writer, result *PutResult) error
	FormatDelete(w io.Writer, results []DeleteResult) error
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

// FormatList formats list results as a table.
func (f *HumanFormatter) FormatList(w io.Writer, result *ListResult) error {
	if len(result.Data) == 0 {
		_, _ = fmt.Fprintln(w, "No records found")
		return nil
	}

	maxNameLen := 4 // "NAME"
	for i := range result.Data {
		if len(result.Data[i].Name) > maxNameLen {
			maxNameLen = len(result.Data[i].Name)
		}
	}
	maxNameLen = min(maxNameLen, 40)

	_, _ = fmt.Fprintf(w, "%-36s  %-10s  %-*s  %s\n", "ID", "TYPE", maxNameLen, "NAME", "UPDATED")
	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s\n",
		strings.Repeat("-", 36), strings.Repeat("-", 10), strings.Repeat("-", maxNameLen), strings.Repeat("-", 19))

	for i := range result.Data {
		rec := &result.Data[i]
		name := rec.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}
		_, _ = fmt.Fprintf(w, "%-36s  %-10s  %-*s  %s\n",
			rec.ID, rec.Type, maxNameLen, name, rec.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	p := result.Pagination
	_, _ = fmt.Fprintf(w, "\n%d of %d record(s)\n", len(result.Data), p.Total)
	if p.HasMore {
		_, _ = fmt.Fprintf(w, "Next page: use --page-start %d\n", p.PageStart+len(result.Data))
	}

	return nil
}

// FormatRecord formats a single record after action ("Created", "Renamed").
func (f *HumanFormatter) FormatRecord(w io.Writer, action string, rec *Record) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, rec.ID)
		return nil
	}
	_, _ = fmt.Fprintf(w, "%s: %s (%s)\n", action, rec.Name, rec.Type)
	_, _ = fmt.Fprintf(w, "  ID:        %s\n", rec.ID)
	_, _ = fmt.Fprintf(w, "  Workspace: %s\n", rec.WorkspaceID)
	if rec.Unconfirmed {
		_, _ = fmt.Fprintln(w, "  Warning:   the server could not read the record back")
	}
	return nil
}

// FormatGet formats a download result.
func (f *HumanFormatter) FormatGet(w io.Writer, result *GetResult) error {
	if f.Quiet {
		return nil
	}
	if result.LocalPath == "-" {
		_, _ = fmt.Fprintf(w, "Downloaded: %s (%s)\n", result.ID, formatSize(result.Size))
	} else {
		_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s)\n", result.ID, result.LocalPath, formatSize(result.Size))
	}
	return nil
}

// FormatPut formats an upload result.
func (f *HumanFormatter) FormatPut(w io.Writer, result *PutResult) error {
	if f.Quiet {
		return nil
	}
	_, _ = fmt.Fprintf(w, "Uploaded: %s -> %s (%s, %s)\n",
		result.LocalPath, result.ID, formatSize(result.Size), result.ContentType)
	if result.ETag != "" {
		_, _ = fmt.Fprintf(w, "  ETag: %s\n", result.ETag)
	}
	return nil
}

// FormatDelete formats delete results as human-readable text.
func (f *HumanFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.ID, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Deleted: %s\n", r.ID)
		}
	}
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	maxNameLen := 4     // "NAME"
	maxEndpointLen := 8 // "ENDPOINT"
	for i := range profiles {
		maxNameLen = max(maxNameLen, len(profiles[i].Name))
		maxEndpointLen = max(maxEndpointLen, len(profiles[i].Endpoint))
	}
	maxNameLen = min(maxNameLen, 20)
	maxEndpointLen = min(maxEndpointLen, 50)

	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %s\n", maxNameLen, "NAME", maxEndpointLen, "ENDPOINT", "TOKEN")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", maxEndpointLen), strings.Repeat("-", 20))

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

		endpoint := p.Endpoint
		if len(endpoint) > maxEndpointLen {
			endpoint = endpoint[:maxEndpointLen-3] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %s\n", marker, maxNameLen, name, maxEndpointLen, endpoint, maskSecret(p.Token, showSecrets))
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	_, _ = fmt.Fprintf(w, "Name:     %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Endpoint: %s\n", profile.Endpoint)
	_, _ = fmt.Fprintf(w, "Token:    %s\n", maskSecret(profile.Token, showSecrets))
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatList formats list results as JSON.
func (f *JSONFormatter) FormatList(w io.Writer, result *ListResult) error {
	return writeJSON(w, result)
}

// FormatRecord formats a single record as JSON. The action is not included.
func (f *JSONFormatter) FormatRecord(w io.Writer, _ string, rec *Record) error {
	return writeJSON(w, rec)
}

// FormatGet formats a download result as JSON.
func (f *JSONFormatter) FormatGet(w io.Writer, result *GetResult) error {
	return writeJSON(w, result)
}

// FormatPut formats an upload result as JSON.
func (f *JSONFormatter) FormatPut(w io.Writer, result *PutResult) error {
	return writeJSON(w, result)
}

// FormatDelete formats delete results as JSON.
func (f *JSONFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	type jsonResult struct {
		ID      string `json:"id"`
		Deleted bool   `json:"deleted"`
		Error   string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{
		Results: make([]jsonResult, len(results)),
	}

	for i, r := range results {
		jr := jsonResult{ID: r.ID, Deleted: r.Deleted}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		output.Results[i] = jr
	}

	return writeJSON(w, output)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	return writeJSON(w, struct {
		Error string `json:"error"`
	}{Error: err.Error()})
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	type jsonProfile struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		Token    string `json:"token,omitempty"`
		Default  bool   `json:"default,omitempty"`
	}

	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		p := &profiles[i]
		output.Profiles[i] = jsonProfile{
			Name:     p.Name,
			Endpoint: p.Endpoint,
			Token:    maskSecret(p.Token, showSecrets),
			Default:  p.Name == defaultName,
		}
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	return writeJSON(w, struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		Token    string `json:"token"`
		Default  bool   `json:"default"`
	}{
		Name:     profile.Name,
		Endpoint: profile.Endpoint,
		Token:    maskSecret(profile.Token, showSecrets),
		Default:  isDefault,
	})
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
	case bytes < 0:
		return "unknown size"
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

// maskSecret shows only the first and last 4 characters of a secret unless showSecrets is set.
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
