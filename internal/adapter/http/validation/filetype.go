// Package validation checks uploaded file content against a video allowlist.
package validation

import (
	"errors"
	"io"
	"net/http"
	"strings"
)

var ErrNotVideoContent = errors.New("file content is not a video")

var allowedVideoTypes = map[string]bool{
	"video/mp4":        true,
	"video/webm":       true,
	"video/quicktime":  true,
	"video/x-matroska": true,
	"video/avi":        true,
	"video/x-msvideo":  true,
}

const sniffLen = 512

// DetectVideoType reads the file's magic bytes, resets the reader and
// returns the detected MIME type plus whether it is an accepted video
// format. The declared multipart content type is never trusted.
func DetectVideoType(reader io.ReadSeeker) (string, bool, error) {
	buf := make([]byte, sniffLen)
	n, err := reader.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return "", false, err
	}
	if n == 0 {
		return "application/octet-stream", false, nil
	}
	buf = buf[:n]

	mime := detectVideoMagic(buf)
	if mime == "" {
		mime = http.DetectContentType(buf)
	}

	return mime, allowedVideoTypes[mime] || strings.HasPrefix(mime, "video/"), nil
}

// detectVideoMagic covers container formats http.DetectContentType does not
// recognize reliably.
func detectVideoMagic(buf []byte) string {
	if len(buf) < 4 {
		return ""
	}

	// Matroska and WebM share the EBML header 1A 45 DF A3. WebM is a
	// Matroska profile, so without parsing the DocType report Matroska.
	if buf[0] == 0x1A && buf[1] == 0x45 && buf[2] == 0xDF && buf[3] == 0xA3 {
		return "video/x-matroska"
	}

	// AVI: RIFF....AVI(space)
	if len(buf) >= 12 &&
		buf[0] == 'R' && buf[1] == 'I' && buf[2] == 'F' && buf[3] == 'F' &&
		buf[8] == 'A' && buf[9] == 'V' && buf[10] == 'I' && buf[11] == ' ' {
		return "video/avi"
	}

	// ISO base media: [size][ftyp][brand]
	if len(buf) >= 12 && buf[4] == 'f' && buf[5] == 't' && buf[6] == 'y' && buf[7] == 'p' {
		if string(buf[8:12]) == "qt  " {
			return "video/quicktime"
		}
		return "video/mp4"
	}

	return ""
}
