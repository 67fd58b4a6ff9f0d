package intake

import (
	"fmt"
	"mime"
	"strings"

	"github.com/viant/sfxbot/model/submission"
)

// DefaultMaxFileSize is the largest accepted upload (4 MiB)
const DefaultMaxFileSize = 4 * 1024 * 1024

// DefaultContentTypes lists accepted upload content types
var DefaultContentTypes = []string{"audio/ogg", "audio/mp3", "audio/mpeg"}

// Rules represents upload validation settings
type Rules struct {
	ContentTypes []string
	MaxFileSize  int
}

// DefaultRules returns ogg/mp3 rules with a 4 MiB limit
func DefaultRules() *Rules {
	return &Rules{ContentTypes: append([]string(nil), DefaultContentTypes...), MaxFileSize: DefaultMaxFileSize}
}

// Validate checks attachment and display name, returning an ErrInvalidFile wrapped error
func (r *Rules) Validate(attachment *submission.Attachment, displayName string) error {
	if attachment == nil || attachment.URL == "" {
		return fmt.Errorf("%w: missing attachment", ErrInvalidFile)
	}
	if strings.TrimSpace(displayName) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidFile)
	}
	if attachment.Size < 0 || attachment.Size > r.MaxFileSize {
		return fmt.Errorf("%w: size %d exceeds %d bytes", ErrInvalidFile, attachment.Size, r.MaxFileSize)
	}
	if !r.IsAllowedType(attachment.ContentType) {
		return fmt.Errorf("%w: content type %q", ErrInvalidFile, attachment.ContentType)
	}
	return nil
}

// IsAllowedType matches the media type ignoring case and parameters
func (r *Rules) IsAllowedType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	for _, allowed := range r.ContentTypes {
		if strings.EqualFold(mediaType, allowed) {
			return true
		}
	}
	return false
}
