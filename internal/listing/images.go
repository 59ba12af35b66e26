package listing

import (
	"fmt"
	"regexp"
	"strings"
)

// Image URL pattern on the immobiliare CDN:
// https://pwm.im-cdn.it/image/{id}/{size}.jpg
var imageIDRegexp = regexp.MustCompile(`/image/(\d+)/`)

// ImageSize selects a rendition on the CDN.
type ImageSize string

const (
	ImageSizeMobile  ImageSize = "m"
	ImageSizeDesktop ImageSize = "xl"
	DefaultImageSize ImageSize = "xl"
)

// BuildImageURL turns a bare CDN image id back into a fetchable URL.
func BuildImageURL(imageID string, size ImageSize) string {
	if size == "" {
		size = DefaultImageSize
	}
	return fmt.Sprintf("https://pwm.im-cdn.it/image/%s/%s.jpg", imageID, size)
}

// ExtractImageID reduces a CDN URL to its numeric image id. Returns "" when
// the URL doesn't match the CDN path pattern.
func ExtractImageID(url string) string {
	match := imageIDRegexp.FindStringSubmatch(url)
	if match == nil {
		return ""
	}
	return match[1]
}

// NormalizeImageRef stores a recognized CDN URL as its bare id and keeps any
// other reference as-is. Placeholder and inline-data URLs are rejected.
func NormalizeImageRef(url string) string {
	if url == "" || strings.Contains(url, "placeholder") || strings.Contains(url, "data:image") {
		return ""
	}
	if id := ExtractImageID(url); id != "" {
		return id
	}
	return url
}
