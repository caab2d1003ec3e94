package pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const defaultChromeTimeout = 30 * time.Second

type ChromedpConfig struct {
	// RemoteURL points at a running Chrome; empty launches a local one.
	RemoteURL string
	Timeout   time.Duration
	NoSandbox bool
}

// ChromedpProvider prints the HTML layout with headless Chrome.
type ChromedpProvider struct {
	cfg         ChromedpConfig
	log         *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

func NewChromedp(cfg ChromedpConfig, log *zap.Logger) *ChromedpProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultChromeTimeout
	}
	p := &ChromedpProvider{cfg: cfg, log: log.Named("pdf.chromedp")}

	if cfg.RemoteURL != "" {
		p.allocCtx, p.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return p
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	p.allocCtx, p.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return p
}

func (p *ChromedpProvider) Engine() string { return "chromedp" }

func (p *ChromedpProvider) RenderBill(ctx context.Context, doc BillDocument) ([]byte, error) {
	html, err := RenderHTML(doc)
	if err != nil {
		return nil, fmt.Errorf("render bill html: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(p.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			p.log.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	// Stop the browser tab when the request context ends.
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	var out []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(mmToInches(210)).
				WithPaperHeight(mmToInches(297)).
				Do(ctx)
			if err != nil {
				return err
			}
			out = data
			return nil
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("chromedp render: %w", ctx.Err())
		}
		p.log.Error("chromedp rendering failed", zap.Error(err))
		return nil, fmt.Errorf("chromedp render: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrEmptyDocument
	}
	return out, nil
}

// Close releases the browser allocator.
func (p *ChromedpProvider) Close() {
	if p.allocCancel != nil {
		p.allocCancel()
	}
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}
