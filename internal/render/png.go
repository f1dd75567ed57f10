package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"strings"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/park285/othello-trainer/internal/othello"
)

const (
	DefaultPNGSize = 400
	MaxPNGSize     = 1600

	maxCacheEntries = 512
)

var (
	pngCache   = map[string][]byte{}
	pngCacheMu sync.RWMutex
)

// PNG rasterises an SVG document to a size x size PNG.
func PNG(svg []byte, size int) ([]byte, error) {
	if size <= 0 || size > MaxPNGSize {
		return nil, fmt.Errorf("png size %d out of range", size)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg))
	if err != nil {
		return nil, fmt.Errorf("parse board svg: %w", err)
	}
	if icon.ViewBox.W <= 0 {
		icon.ViewBox.W = ImageSize
	}
	if icon.ViewBox.H <= 0 {
		icon.ViewBox.H = ImageSize
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// BoardPNG renders board and caches the encoded result per board, mistakes
// and size.
func BoardPNG(board othello.Board, mistakes []int, size int) ([]byte, error) {
	key := cacheKey(board, mistakes, size)

	pngCacheMu.RLock()
	if data, ok := pngCache[key]; ok {
		pngCacheMu.RUnlock()
		return data, nil
	}
	pngCacheMu.RUnlock()

	data, err := PNG(SVG(board, mistakes), size)
	if err != nil {
		return nil, err
	}

	pngCacheMu.Lock()
	if len(pngCache) >= maxCacheEntries {
		clear(pngCache)
	}
	pngCache[key] = data
	pngCacheMu.Unlock()
	return data, nil
}

func cacheKey(board othello.Board, mistakes []int, size int) string {
	parts := make([]string, 0, len(mistakes))
	for _, m := range mistakes {
		parts = append(parts, strconv.Itoa(m))
	}
	return board.ID() + "|" + strings.Join(parts, ",") + "|" + strconv.Itoa(size)
}
