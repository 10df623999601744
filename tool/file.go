package tool

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"github.com/moyoez/ticketpanel-go/types"
)

// DetectMimeType picks the declared type, then the extension, then content sniffing.
// Parameters such as charset are dropped so the result can be matched against an allow list.
func DetectMimeType(fileName, declared string, head []byte) string {
	if t := bareMediaType(declared); t != "" && t != "application/octet-stream" {
		return t
	}
	if t := bareMediaType(mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName)))); t != "" {
		return t
	}
	if len(head) > 0 {
		return bareMediaType(mimetype.Detect(head).String())
	}
	return bareMediaType(declared)
}

func bareMediaType(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return strings.ToLower(value)
	}
	return mediaType
}

// DescriptorFromBytes keeps data in memory so the descriptor outlives the request that carried it.
func DescriptorFromBytes(fileName, declaredType string, data []byte) types.FileDescriptor {
	return types.FileDescriptor{
		Name:     filepath.Base(fileName),
		Size:     int64(len(data)),
		MimeType: DetectMimeType(fileName, declaredType, data),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// DescriptorFromPath stats a local file; the content is read only when Open is called.
func DescriptorFromPath(filePath string) (types.FileDescriptor, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return types.FileDescriptor{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return types.FileDescriptor{}, fmt.Errorf("path is a directory, not a file")
	}

	mimeType := bareMediaType(mime.TypeByExtension(strings.ToLower(filepath.Ext(filePath))))
	if mimeType == "" {
		detected, err := mimetype.DetectFile(filePath)
		if err != nil {
			return types.FileDescriptor{}, fmt.Errorf("failed to detect file type: %w", err)
		}
		mimeType = bareMediaType(detected.String())
	}

	return types.FileDescriptor{
		Name:     filepath.Base(filePath),
		Size:     info.Size(),
		MimeType: mimeType,
		Open: func() (io.ReadCloser, error) {
			return os.Open(filePath)
		},
	}, nil
}

// FormatSize renders bytes the way the attachment list shows them, e.g. "2.5 MiB".
func FormatSize(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.IBytes(uint64(size))
}

// FileKind buckets a MIME type into the icon families of the attachment list.
func FileKind(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case strings.HasPrefix(mimeType, "video/"):
		return "video"
	case mimeType == "application/pdf":
		return "pdf"
	// OOXML types all contain "officedocument", so sheets and slides are matched first.
	case strings.Contains(mimeType, "excel") || strings.Contains(mimeType, "sheet"):
		return "spreadsheet"
	case strings.Contains(mimeType, "powerpoint") || strings.Contains(mimeType, "presentation"):
		return "presentation"
	case strings.Contains(mimeType, "word") || strings.Contains(mimeType, "document"):
		return "document"
	case mimeType == "text/plain":
		return "text"
	default:
		return "file"
	}
}

// StagedFileViews turns staged files into their UI representation.
func StagedFileViews(files []types.StagedFile) []types.StagedFileView {
	views := make([]types.StagedFileView, 0, len(files))
	for i, f := range files {
		views = append(views, types.StagedFileView{
			Index:     i,
			Name:      f.Name,
			Size:      f.Size,
			SizeHuman: FormatSize(f.Size),
			MimeType:  f.MimeType,
			Kind:      FileKind(f.MimeType),
		})
	}
	return views
}
