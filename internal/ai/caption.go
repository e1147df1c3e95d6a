package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultCaption is used when there is no filename to derive one from.
	DefaultCaption = "Check out my new video! #trending #viral"
	// GeneratedMarker tags captions the service substituted for a missing description.
	GeneratedMarker = " [AI Generated]"

	captionHashtags = "| #trending #viral #reels"
	maxCaptionReply = 1 << 20
)

var (
	fileExtension  = regexp.MustCompile(`\.[^.]+$`)
	wordSeparators = regexp.MustCompile(`[_-]`)
	digitRuns      = regexp.MustCompile(`[0-9]+`)
)

// CaptionFromFilename derives a caption from a video's filename:
// "my_video_123.mp4" becomes "My Video | #trending #viral #reels".
func CaptionFromFilename(filename string) string {
	if filename == "" {
		return DefaultCaption
	}

	clean := fileExtension.ReplaceAllString(filename, "")
	clean = wordSeparators.ReplaceAllString(clean, " ")
	clean = digitRuns.ReplaceAllString(clean, "")

	caser := cases.Title(language.Und)
	var b strings.Builder
	for _, word := range strings.Fields(clean) {
		b.WriteString(caser.String(word))
		b.WriteByte(' ')
	}
	b.WriteString(captionHashtags)
	return strings.TrimSpace(b.String())
}

// GenerateCaption asks the remote caption API when one is configured and
// falls back to CaptionFromFilename on any failure or empty answer. It never
// fails. body may be nil.
func (g *Generator) GenerateCaption(ctx context.Context, filename string, body io.Reader) string {
	if g.cfg.remoteEnabled() {
		caption, err := g.remoteCaption(ctx, filename, body)
		switch {
		case err != nil:
			g.log.WithError(err).WithField("filename", filename).Warn("remote caption failed, using filename caption")
		case caption == "":
			g.log.WithField("filename", filename).Debug("remote caption empty, using filename caption")
		default:
			return caption
		}
	}
	return CaptionFromFilename(filename)
}

func (g *Generator) remoteCaption(ctx context.Context, filename string, body io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("video", filename)
	if err != nil {
		return "", err
	}
	if body != nil {
		if _, err := io.Copy(part, body); err != nil {
			return "", fmt.Errorf("buffer video: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.CaptionAPIURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+g.cfg.CaptionAPIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("caption api returned %s", resp.Status)
	}

	var out struct {
		Caption string `json:"caption"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxCaptionReply)).Decode(&out); err != nil {
		return "", fmt.Errorf("decode caption response: %w", err)
	}
	return strings.TrimSpace(out.Caption), nil
}
