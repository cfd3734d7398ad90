package export

import (
	"context"
	"image"
	"net/http"
	"os"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
)

const (
	richFontSize   = 14
	richMathSize   = 16
	richLineGap    = 6
	richPadding    = 10
	richImageGap   = 8
	imageFetchWait = 10 * time.Second
)

// RasterRenderer converts mixed math/image markup into a raster block
// using a loaded TTF face. When no usable font is configured the renderer
// reports itself unavailable by returning (nil, nil), and documents fall
// back to plain wrapped text.
type RasterRenderer struct {
	fnt    *truetype.Font
	client *http.Client
	logger *zap.Logger
}

// NewRasterRenderer loads the font at fontPath. An empty path produces an
// unavailable renderer instead of an error so the rest of the system
// degrades rather than refusing to start.
func NewRasterRenderer(fontPath string, logger *zap.Logger) *RasterRenderer {
	r := &RasterRenderer{
		client: &http.Client{Timeout: imageFetchWait},
		logger: logger,
	}
	if fontPath == "" {
		logger.Warn("No render font configured, rich content falls back to plain text")
		return r
	}
	data, err := os.ReadFile(fontPath)
	if err != nil {
		logger.Warn("Could not read render font", zap.String("path", fontPath), zap.Error(err))
		return r
	}
	fnt, err := truetype.Parse(data)
	if err != nil {
		logger.Warn("Could not parse render font", zap.String("path", fontPath), zap.Error(err))
		return r
	}
	r.fnt = fnt
	return r
}

// Available reports whether the renderer can produce raster output.
func (r *RasterRenderer) Available() bool {
	return r != nil && r.fnt != nil
}

// Render lays the markup out at the given pixel width and returns the
// rasterized block, or (nil, nil) when the renderer is unavailable.
func (r *RasterRenderer) Render(ctx context.Context, markup string, widthPx int) (image.Image, error) {
	if !r.Available() {
		return nil, nil
	}
	if widthPx <= 2*richPadding {
		widthPx = 2*richPadding + 100
	}

	segs := parseMarkup(markup)
	images := r.fetchImages(ctx, segs, widthPx-2*richPadding)

	textFace := truetype.NewFace(r.fnt, &truetype.Options{Size: richFontSize})
	mathFace := truetype.NewFace(r.fnt, &truetype.Options{Size: richMathSize})

	// First pass measures total height, second pass draws.
	height := r.layout(nil, segs, images, widthPx, textFace, mathFace)
	if height <= 0 {
		return nil, nil
	}

	dc := gg.NewContext(widthPx, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	r.layout(dc, segs, images, widthPx, textFace, mathFace)

	return dc.Image(), nil
}

// layout performs word-wrapped placement of all segments. With a nil
// context it only measures and returns the required height in pixels.
func (r *RasterRenderer) layout(
	dc *gg.Context,
	segs []segment,
	images map[string]image.Image,
	widthPx int,
	textFace, mathFace font.Face,
) int {
	measure := gg.NewContext(1, 1)
	usable := float64(widthPx - 2*richPadding)
	y := float64(richPadding)

	for _, seg := range segs {
		switch seg.kind {
		case segText, segMath:
			face := textFace
			lineHeight := float64(richFontSize) + richLineGap
			if seg.kind == segMath {
				face = mathFace
				lineHeight = float64(richMathSize) + richLineGap
			}
			measure.SetFontFace(face)
			if dc != nil {
				dc.SetFontFace(face)
			}
			lines := measure.WordWrap(seg.text, usable)
			for _, line := range lines {
				y += lineHeight
				if dc != nil {
					dc.DrawString(line, richPadding, y)
				}
			}
		case segImage:
			img, ok := images[seg.url]
			if !ok {
				continue
			}
			b := img.Bounds()
			y += richImageGap
			if dc != nil {
				dc.DrawImage(img, richPadding, int(y))
			}
			y += float64(b.Dy()) + richImageGap
		}
	}

	return int(y) + richPadding
}

// fetchImages resolves every image reference, scaling each to the usable
// width. Failed fetches are logged and skipped; the block renders without
// that image.
func (r *RasterRenderer) fetchImages(ctx context.Context, segs []segment, maxWidth int) map[string]image.Image {
	out := make(map[string]image.Image)
	for _, seg := range segs {
		if seg.kind != segImage || seg.url == "" {
			continue
		}
		if _, done := out[seg.url]; done {
			continue
		}
		img, err := r.fetchImage(ctx, seg.url, maxWidth)
		if err != nil {
			r.logger.Warn("Image fetch failed", zap.String("url", seg.url), zap.Error(err))
			continue
		}
		out[seg.url] = img
	}
	return out
}

func (r *RasterRenderer) fetchImage(ctx context.Context, url string, maxWidth int) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, err
	}
	return scaleToWidth(img, maxWidth), nil
}

func scaleToWidth(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxWidth {
		return img
	}
	ratio := float64(maxWidth) / float64(b.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, int(float64(b.Dy())*ratio)))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
