package types

import "io"

// FileDescriptor is a candidate attachment as handed over by a file picker or a drop.
type FileDescriptor struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
	// Open returns the payload. Nil when the descriptor is only validated.
	Open func() (io.ReadCloser, error) `json:"-"`
}

// StagedFile is a descriptor that passed validation and waits for submission.
type StagedFile struct {
	FileDescriptor
}

// SameAs reports whether both files share the (name, size) identity.
func (f StagedFile) SameAs(d FileDescriptor) bool {
	return f.Name == d.Name && f.Size == d.Size
}

// StagedFileView is the JSON shape of a staged file for the web UI.
type StagedFileView struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	SizeHuman string `json:"sizeHuman"`
	MimeType  string `json:"mimeType"`
	Kind      string `json:"kind"`
}
