// Package asset resolves logical asset paths to decoded RGBA images. Loads
// run asynchronously: a lookup during decode returns render.NotReadyError so
// the scheduler can retry the frame instead of blocking a worker, and
// premounted leaves can start decodes ahead of their first visible frame.
//
// Supported path forms:
//
//	slide.png            still image (png, jpeg)
//	deck.pdf#3           page 3 (zero-based) of a PDF document
//	qr:https://evt.example  generated QR code for the payload
package asset

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gen2brain/go-fitz"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/framecast/framecast/internal/render"
)

const (
	qrScheme = "qr:"
	// pdfDPI matches a 1080p full-bleed page without oversampling.
	pdfDPI = 150
	qrSize = 512
)

// Manager caches decoded assets for the lifetime of a render job.
type Manager struct {
	root string

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	done chan struct{}
	img  *image.RGBA
	err  error
}

// NewManager creates a manager resolving relative paths against root.
func NewManager(root string) *Manager {
	return &Manager{root: root, entries: map[string]*entry{}}
}

// Prefetch starts loading an asset without waiting for it. Premounted leaves
// call this during pre-roll so the image is ready by their first visible
// frame.
func (m *Manager) Prefetch(path string) {
	m.lookup(path)
}

// Image returns the decoded asset, a render.NotReadyError while the decode
// is still running, or the decode failure.
func (m *Manager) Image(path string) (*image.RGBA, error) {
	e := m.lookup(path)
	select {
	case <-e.done:
		return e.img, e.err
	default:
		return nil, &render.NotReadyError{Resource: path}
	}
}

func (m *Manager) lookup(path string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[path]; ok {
		return e
	}
	e := &entry{done: make(chan struct{})}
	m.entries[path] = e
	go func() {
		e.img, e.err = m.load(path)
		close(e.done)
	}()
	return e
}

func (m *Manager) load(path string) (*image.RGBA, error) {
	if strings.HasPrefix(path, qrScheme) {
		return loadQR(strings.TrimPrefix(path, qrScheme))
	}

	file, pdfPage := splitPDFPage(path)
	if !filepath.IsAbs(file) && m.root != "" {
		file = filepath.Join(m.root, file)
	}

	if pdfPage >= 0 {
		return loadPDFPage(file, pdfPage)
	}
	return loadImageFile(file)
}

// splitPDFPage parses "doc.pdf#3" into ("doc.pdf", 3); a path without a
// page fragment returns page -1.
func splitPDFPage(path string) (string, int) {
	idx := strings.LastIndex(path, "#")
	if idx < 0 || !strings.HasSuffix(strings.ToLower(path[:idx]), ".pdf") {
		return path, -1
	}
	page, err := strconv.Atoi(path[idx+1:])
	if err != nil || page < 0 {
		return path, -1
	}
	return path[:idx], page
}

func loadImageFile(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("asset %s: decode: %w", path, err)
	}
	return ToRGBA(img), nil
}

func loadPDFPage(path string, page int) (*image.RGBA, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", path, err)
	}
	defer doc.Close()

	if page >= doc.NumPage() {
		return nil, fmt.Errorf("asset %s: page %d out of range (%d pages)", path, page, doc.NumPage())
	}
	img, err := doc.ImageDPI(page, pdfDPI)
	if err != nil {
		return nil, fmt.Errorf("asset %s: render page %d: %w", path, page, err)
	}
	return ToRGBA(img), nil
}

func loadQR(payload string) (*image.RGBA, error) {
	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("asset qr:%s: %w", payload, err)
	}
	return ToRGBA(code.Image(qrSize)), nil
}

// ToRGBA converts any decoded image into a tightly-packed *image.RGBA
// anchored at the origin, which is what the compositor and the raw-video
// encoder boundary both expect.
func ToRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if ok && rgba.Stride == bounds.Dx()*4 && rgba.Rect.Min.X == 0 && rgba.Rect.Min.Y == 0 {
		return rgba
	}
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)
	return out
}
