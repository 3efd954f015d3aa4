package upload

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// allowedTypes maps permitted extensions to their expected MIME prefixes.
var allowedTypes = map[string][]string{
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
	".pdf":  {"application/pdf"},
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Saver stores uploaded documents on disk under Dir.
type Saver struct {
	Dir         string
	MaxSizeByte int64
}

func NewSaver(dir string, maxSizeMB int64) *Saver {
	return &Saver{Dir: dir, MaxSizeByte: maxSizeMB << 20}
}

// Save validates type and size, then writes the file under a timestamped,
// sanitized name. Returns the stored path relative to the upload dir root.
func (s *Saver) Save(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if file.Size > s.MaxSizeByte {
		return "", fmt.Errorf("file exceeds maximum size of %d bytes", s.MaxSizeByte)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	mimes, ok := allowedTypes[ext]
	if !ok {
		return "", fmt.Errorf("allowed file types: jpg, jpeg, png, pdf")
	}

	contentType := file.Header.Get("Content-Type")
	typeOK := false
	for _, m := range mimes {
		if strings.HasPrefix(contentType, m) {
			typeOK = true
			break
		}
	}
	if !typeOK {
		return "", fmt.Errorf("file content type %q does not match extension %s", contentType, ext)
	}

	name := SanitizeFilename(file.Filename)
	stored := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), name, ext)
	dst := filepath.Join(s.Dir, stored)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", fmt.Errorf("save uploaded file: %w", err)
	}
	return stored, nil
}

// SanitizeFilename strips any path component and collapses characters
// outside [a-zA-Z0-9_-] from the base name.
func SanitizeFilename(original string) string {
	base := filepath.Base(original)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = unsafeChars.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "upload"
	}
	return base
}
