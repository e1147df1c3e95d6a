// Package ai produces placeholder captions and thumbnails for uploaded
// videos. Nothing here runs a model: captions come from the filename (or an
// optional remote caption API) and thumbnails are drawn procedurally.
package ai

import (
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// Config enables the optional remote caption path. The local fallback is
// always available, so the zero value is a valid configuration.
type Config struct {
	CaptionAPIURL string
	CaptionAPIKey string
	Timeout       time.Duration
}

func (c Config) remoteEnabled() bool {
	return c.CaptionAPIURL != "" && c.CaptionAPIKey != ""
}

// EncodeFunc writes img in a compressed format.
type EncodeFunc func(w io.Writer, img image.Image) error

func encodeJPEG(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: 85})
}

// Generator is safe for concurrent use.
type Generator struct {
	cfg        Config
	httpClient *http.Client
	encode     EncodeFunc
	font       *opentype.Font
	log        *logrus.Entry
}

// Option customizes the generator.
type Option func(*Generator)

// WithHTTPClient overrides the client used for the remote caption API.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Generator) {
		if client != nil {
			g.httpClient = client
		}
	}
}

// WithEncoder overrides the thumbnail image encoder.
func WithEncoder(fn EncodeFunc) Option {
	return func(g *Generator) {
		if fn != nil {
			g.encode = fn
		}
	}
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(log *logrus.Logger) Option {
	return func(g *Generator) {
		if log != nil {
			g.log = log.WithField("component", "ai")
		}
	}
}

// New builds a Generator from cfg.
func New(cfg Config, opts ...Option) (*Generator, error) {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse thumbnail font: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	g := &Generator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		encode:     encodeJPEG,
		font:       f,
		log:        logrus.StandardLogger().WithField("component", "ai"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}
