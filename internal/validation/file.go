package validation

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"jobboard-backend/internal/utilities"
)

// FileRule constrains an uploaded file field. MIME types are sniffed from the
// content rather than trusted from the client.
type FileRule struct {
	Field     string
	Required  bool
	MaxCount  int
	MIMETypes []string
	MaxBytes  int64
}

// PDF is the MIME type accepted for resumes.
const PDF = "application/pdf"

func checkFiles(c *gin.Context, rule *FileRule, multi bool) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, utilities.AsAppError(err)
		}
		if rule.Required {
			return []string{fmt.Sprintf("%q is required", rule.Field)}, nil
		}
		return nil, nil
	}

	headers := form.File[rule.Field]
	if len(headers) == 0 {
		if rule.Required {
			return []string{fmt.Sprintf("%q is required", rule.Field)}, nil
		}
		return nil, nil
	}

	var messages []string
	if !multi && len(headers) > 1 {
		messages = append(messages, fmt.Sprintf("%q must contain a single file", rule.Field))
	}
	if multi && rule.MaxCount > 0 && len(headers) > rule.MaxCount {
		messages = append(messages, fmt.Sprintf("%q must contain at most %d files", rule.Field, rule.MaxCount))
	}

	for _, fh := range headers {
		if rule.MaxBytes > 0 && fh.Size > rule.MaxBytes {
			messages = append(messages, fmt.Sprintf("%q file %q must be at most %d bytes", rule.Field, fh.Filename, rule.MaxBytes))
		}
		if len(rule.MIMETypes) == 0 {
			continue
		}
		mt, err := sniff(fh)
		if err != nil {
			messages = append(messages, fmt.Sprintf("%q file %q could not be read", rule.Field, fh.Filename))
			continue
		}
		if !allowed(mt, rule.MIMETypes) {
			messages = append(messages, fmt.Sprintf("%q file %q must be of type [%s], got %s",
				rule.Field, fh.Filename, strings.Join(rule.MIMETypes, ", "), mt.String()))
		}
	}
	return messages, nil
}

func sniff(fh *multipart.FileHeader) (*mimetype.MIME, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return mimetype.DetectReader(f)
}

func allowed(mt *mimetype.MIME, types []string) bool {
	for _, t := range types {
		if mt.Is(t) {
			return true
		}
	}
	return false
}
