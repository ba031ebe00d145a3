package services

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/clipnote/internal/client/models"
)

var audioExt = regexp.MustCompile(`(?i)^\.(wav|mp3|m4a|ogg|webm)$`)

// Classify picks the media kind of an upload from its content type. Audio
// is also recognized by file extension when the content type is missing or
// generic.
func Classify(contentType, name string) (models.MediaKind, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "video/"):
		return models.MediaVideo, nil
	case strings.HasPrefix(ct, "image/"):
		return models.MediaImage, nil
	case strings.HasPrefix(ct, "audio/"):
		return models.MediaAudio, nil
	}

	generic := ct == "" || ct == "application/octet-stream"
	if generic && audioExt.MatchString(filepath.Ext(name)) {
		return models.MediaAudio, nil
	}
	return "", ErrUnsupportedMedia
}
