package cli

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/clipnote/internal/client/models"
)

// Extensions missing from the built-in MIME table on minimal systems.
func init() {
	for ext, typ := range map[string]string{
		".mp4":  "video/mp4",
		".m4v":  "video/mp4",
		".mov":  "video/quicktime",
		".mkv":  "video/x-matroska",
		".mp3":  "audio/mpeg",
		".m4a":  "audio/mp4",
		".wav":  "audio/wav",
		".ogg":  "audio/ogg",
		".jpeg": "image/jpeg",
	} {
		_ = mime.AddExtensionType(ext, typ)
	}
}

// contentType guesses the MIME type of a file from its extension, falling
// back to sniffing the payload. Only media types are returned; anything
// else yields "" and leaves classification to the file name.
func contentType(name string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	t := http.DetectContentType(data)
	for _, prefix := range []string{"video/", "image/", "audio/"} {
		if strings.HasPrefix(t, prefix) {
			return t
		}
	}
	return ""
}

// attach reads a local file and uploads it into the open draft.
func (a *App) attach(ctx context.Context, path string) (models.MediaRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	name := filepath.Base(path)
	return a.notes.UploadMedia(ctx, models.Upload{
		Name:        name,
		ContentType: contentType(name, data),
		Data:        bytes.NewReader(data),
	})
}
