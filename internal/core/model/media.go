package model

import "strings"

// MediaKind tags a normalized media reference.
type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaVideo    MediaKind = "video"
	MediaAudio    MediaKind = "audio"
	MediaDocument MediaKind = "document"
	MediaOther    MediaKind = "other"
)

// MediaRef is a media descriptor normalized once at the ingestion
// boundary, so downstream code never has to guess between the loose
// type/mimeType and url/fileUrl field spellings clients send.
type MediaRef struct {
	Kind        MediaKind `json:"kind"`
	URL         string    `json:"url,omitempty"`
	Description string    `json:"description,omitempty"`
}

// RawMedia is the loose wire shape accepted from clients.
type RawMedia struct {
	Type        string `json:"type,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
	URL         string `json:"url,omitempty"`
	FileURL     string `json:"fileUrl,omitempty"`
	Description string `json:"description,omitempty"`
}

// imageMimeTypes are the MIME subtypes eligible for vision analysis.
var imageMimeTypes = map[string]bool{
	"jpeg": true,
	"jpg":  true,
	"png":  true,
	"webp": true,
}

// NormalizeMedia converts loose client media descriptors into MediaRefs.
func NormalizeMedia(raw []RawMedia) []MediaRef {
	refs := make([]MediaRef, 0, len(raw))
	for _, m := range raw {
		url := m.URL
		if url == "" {
			url = m.FileURL
		}
		mime := m.MimeType
		if mime == "" {
			mime = m.Type
		}
		refs = append(refs, MediaRef{
			Kind:        kindFromMime(mime),
			URL:         url,
			Description: strings.TrimSpace(m.Description),
		})
	}
	return refs
}

func kindFromMime(mime string) MediaKind {
	mime = strings.ToLower(strings.TrimSpace(mime))
	main, sub, _ := strings.Cut(mime, "/")
	switch main {
	case "image":
		if imageMimeTypes[sub] {
			return MediaImage
		}
		return MediaOther
	case "video":
		return MediaVideo
	case "audio":
		return MediaAudio
	case "application", "text":
		return MediaDocument
	}
	// Clients sometimes send a bare kind instead of a MIME type.
	switch main {
	case "photo":
		return MediaImage
	}
	return MediaOther
}

// ImageURLs returns the URLs of image-kind refs, capped at max.
func ImageURLs(media []MediaRef, max int) []string {
	urls := make([]string, 0, max)
	for _, m := range media {
		if m.Kind != MediaImage || m.URL == "" {
			continue
		}
		urls = append(urls, m.URL)
		if len(urls) == max {
			break
		}
	}
	return urls
}
