package navigator

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/partsbase/catalog-scraper/internal/pdf"
)

// settleDelay gives the client-side rendering framework time to populate the
// DOM after the network goes idle; "networkidle" alone fires too early on the
// catalog's generated pages.
const settleDelay = 2 * time.Second

const navigationTimeout = 30 * time.Second

// Navigator drives the single shared browser page. Navigation failures are
// deliberately non-fatal: Load returns an empty string and the caller treats
// the page as holding no data.
type Navigator struct {
	page   playwright.Page
	logger *slog.Logger
}

func New(page playwright.Page, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{
		page:   page,
		logger: logger.With("component", "navigator"),
	}
}

// Load navigates to url, waits for the network to settle plus a fixed render
// delay, and returns the page HTML. Any timeout or navigation error yields "".
func (n *Navigator) Load(url string) string {
	_, err := n.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(navigationTimeout.Milliseconds())),
	})
	if err != nil {
		n.logger.Error("navigation failed", "url", url, "error", err)
		return ""
	}

	time.Sleep(settleDelay)

	html, err := n.page.Content()
	if err != nil {
		n.logger.Error("failed to read page content", "url", url, "error", err)
		return ""
	}
	return html
}

// ClickParameterContaining scans the page's parameter-selector tiles for one
// whose text contains the given string and clicks it. Absence is not an
// error; per-tile read failures are skipped.
func (n *Navigator) ClickParameterContaining(text string) (bool, error) {
	params := n.page.Locator("[class*='parameter']")
	count, err := params.Count()
	if err != nil {
		return false, fmt.Errorf("failed to enumerate parameter tiles: %w", err)
	}

	for i := 0; i < count; i++ {
		tile := params.Nth(i)
		inner, err := tile.InnerText()
		if err != nil {
			continue
		}
		if !strings.Contains(inner, text) {
			continue
		}
		if err := tile.Click(); err != nil {
			return false, fmt.Errorf("failed to click parameter tile: %w", err)
		}
		time.Sleep(settleDelay)
		return true, nil
	}
	return false, nil
}

// OpenCADDropdown locates the CAD-file-type control by its accessible label,
// falling back to a generic combo-box button, and opens it.
func (n *Navigator) OpenCADDropdown() (bool, error) {
	btn := n.page.Locator("[aria-label='Select CAD file type']").First()
	count, err := btn.Count()
	if err != nil {
		return false, fmt.Errorf("failed to locate CAD dropdown: %w", err)
	}

	if count == 0 {
		btn = n.page.Locator("button[role='combobox']").First()
		count, err = btn.Count()
		if err != nil {
			return false, fmt.Errorf("failed to locate combo-box fallback: %w", err)
		}
	}
	if count == 0 {
		return false, nil
	}

	if err := btn.Click(); err != nil {
		return false, fmt.Errorf("failed to open CAD dropdown: %w", err)
	}
	time.Sleep(time.Second)
	return true, nil
}

// SelectListItem clicks the dropdown entry with the given text.
func (n *Navigator) SelectListItem(text string) (bool, error) {
	item := n.page.Locator(fmt.Sprintf("li:has-text('%s')", text)).First()
	count, err := item.Count()
	if err != nil {
		return false, fmt.Errorf("failed to locate list item: %w", err)
	}
	if count == 0 {
		return false, nil
	}

	if err := item.Click(); err != nil {
		return false, fmt.Errorf("failed to click list item: %w", err)
	}
	time.Sleep(500 * time.Millisecond)
	return true, nil
}

// TriggerDownload clicks the Download control while waiting for the file
// event, bounded by timeout. A missing control yields (nil, nil).
func (n *Navigator) TriggerDownload(timeout time.Duration) (pdf.Download, error) {
	btn := n.page.Locator("button:has-text('Download')").First()
	count, err := btn.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to locate download control: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	download, err := n.page.ExpectDownload(func() error {
		return btn.Click()
	}, playwright.PageExpectDownloadOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return nil, fmt.Errorf("download did not complete: %w", err)
	}

	return &fileDownload{download: download}, nil
}

// fileDownload adapts a playwright download to the acquisition flow. The
// browser streams the file to a temp path; Bytes reads it into memory.
type fileDownload struct {
	download playwright.Download
}

func (d *fileDownload) Bytes() ([]byte, error) {
	path, err := d.download.Path()
	if err != nil {
		return nil, fmt.Errorf("download has no file path: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read downloaded file: %w", err)
	}
	return data, nil
}
