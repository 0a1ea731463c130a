package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/image"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/formscout/internal/workbook"
)

// Runner converts a workbook into images inside outDir. Output naming is
// left to the runner; callers locate files with Probe.
type Runner interface {
	Convert(ctx context.Context, input, outDir string) error
}

// Office runs a LibreOffice-compatible binary headless.
type Office struct {
	Config Config
}

// Convert exports input straight to PNG.
func (o *Office) Convert(ctx context.Context, input, outDir string) error {
	return o.convert(ctx, "png", input, outDir)
}

func (o *Office) convert(ctx context.Context, format, input, outDir string) error {
	if timeout := o.Config.TimeoutDuration(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(
		ctx, o.Config.Binary,
		"--headless",
		"--convert-to", format,
		input,
		"--outdir", outDir,
	)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s --convert-to %s: %w: %s", o.Config.Binary, format, err, strings.TrimSpace(out.String()))
	}

	return nil
}

// PDFPages exports the workbook to PDF, then rasterizes each page with
// ImageMagick to {base}-{sheet}.png. The export skips sheets without
// content, so pages are matched to the sheets that have some.
type PDFPages struct {
	Office *Office
	DPI    int
}

// Convert exports input to PDF in a scratch directory and writes one PNG per
// page into outDir, named for the sheet the page belongs to.
func (p *PDFPages) Convert(ctx context.Context, input, outDir string) error {
	scratch, err := os.MkdirTemp("", "formscout-pdf-*")
	if err != nil {
		return fmt.Errorf("create pdf scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	if err := p.Office.convert(ctx, "pdf", input, scratch); err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	pdfPath := filepath.Join(scratch, base+".pdf")

	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return fmt.Errorf("read exported pdf: %w", err)
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return fmt.Errorf("count pdf pages: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("exported pdf has no pages")
	}

	sheets, err := workbook.ContentSheets(input)
	if err != nil {
		return fmt.Errorf("locate content sheets: %w", err)
	}

	return p.rasterize(ctx, pdfPath, pageNames(base, count, sheets), outDir)
}

// pageNames names each PDF page {base}-{sheet}.png, where sheet is the
// 1-based index of the content sheet the page was exported from. When the
// page count does not match the content sheets (a sheet spilled onto a
// second page), pages keep their own numbers.
func pageNames(base string, pages int, sheets []int) []string {
	names := make([]string, pages)
	for i := range names {
		n := i + 1
		if len(sheets) == pages {
			n = sheets[i]
		}
		names[i] = fmt.Sprintf("%s-%d.png", base, n)
	}
	return names
}

func (p *PDFPages) rasterize(ctx context.Context, pdfPath string, names []string, outDir string) error {
	doc, err := document.OpenPDF(pdfPath)
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	pages, err := doc.ExtractAllPages()
	if err != nil {
		return fmt.Errorf("extract pages: %w", err)
	}

	renderer, err := image.NewImageMagickRenderer(config.ImageConfig{
		Format:  "png",
		DPI:     p.DPI,
		Options: map[string]any{"background": "white"},
	})
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(min(runtime.NumCPU(), len(pages)), 1))

	for i, page := range pages {
		if i >= len(names) {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			img, err := page.ToImage(renderer, nil)
			if err != nil {
				return fmt.Errorf("render page %d: %w", i+1, err)
			}

			path := filepath.Join(outDir, names[i])
			if err := os.WriteFile(path, img, 0600); err != nil {
				return fmt.Errorf("write page %d: %w", i+1, err)
			}
			return nil
		})
	}

	return g.Wait()
}

// NewRunner builds the runner selected by cfg.Mode.
func NewRunner(cfg Config) (Runner, error) {
	office := &Office{Config: cfg}

	switch cfg.Mode {
	case ModePNG, "":
		return office, nil
	case ModePDF:
		return &PDFPages{Office: office, DPI: cfg.DPI}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownMode, cfg.Mode)
}
