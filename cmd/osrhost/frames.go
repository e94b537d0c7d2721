package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/bmp"

	"github.com/wippyai/osr-runtime/config"
	"github.com/wippyai/osr-runtime/paint"
	"github.com/wippyai/osr-runtime/surface"
)

// frameInfo is what the TUI shows about the last frame.
type frameInfo struct {
	Dirty  []surface.Rect
	Width  int32
	Height int32
	// Corner is the top-left pixel as 0xAARRGGBB.
	Corner uint32
	Popup  bool
}

type frameStats struct {
	last   frameInfo
	frames int
	popups int
	mu     sync.Mutex
}

func (s *frameStats) OnPaint(e *paint.Event) error {
	info := frameInfo{
		Dirty:  append([]surface.Rect(nil), e.DirtyRects...),
		Width:  e.Width,
		Height: e.Height,
		Popup:  e.Popup,
	}
	if len(e.Buffer) >= 4 {
		b := e.Buffer
		info.Corner = uint32(b[3])<<24 | uint32(b[2])<<16 | uint32(b[1])<<8 | uint32(b[0])
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	if e.Popup {
		s.popups++
	}
	s.last = info
	return nil
}

func (s *frameStats) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *frameStats) Popups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popups
}

func (s *frameStats) Last() frameInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// frameWriter writes each painted frame to its own image file.
type frameWriter struct {
	dir    string
	format string
	n      int
}

func newFrameWriter(dir, format string) *frameWriter {
	return &frameWriter{dir: dir, format: format}
}

func (w *frameWriter) OnPaint(e *paint.Event) error {
	kind := "frame"
	if e.Popup {
		kind = "popup"
	}
	name := filepath.Join(w.dir, fmt.Sprintf("%s-%04d.%s", kind, w.n, w.format))
	w.n++

	img := toRGBA(e.Buffer, int(e.Width), int(e.Height))

	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create frame: %w", err)
	}
	defer f.Close()

	switch w.format {
	case config.FormatBMP:
		err = bmp.Encode(f, img)
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return f.Close()
}

// toRGBA converts a premultiplied BGRA frame to an RGBA image.
func toRGBA(bgra []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	n := min(len(bgra), len(img.Pix))
	for i := 0; i+3 < n; i += 4 {
		img.Pix[i+0] = bgra[i+2]
		img.Pix[i+1] = bgra[i+1]
		img.Pix[i+2] = bgra[i+0]
		img.Pix[i+3] = bgra[i+3]
	}
	return img
}
