package pdf

import (
	"log/slog"
	"time"
)

// State tracks progress through the interactive download flow on a product
// page: pick a color variant, open the CAD-format dropdown, select the 2-D
// PDF entry, then click Download while capturing the file event.
type State int

const (
	StateIdle State = iota
	StateColorAttempted
	StateDropdownOpened
	StateFormatSelected
	StateDownloadTriggered
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateColorAttempted:
		return "color_attempted"
	case StateDropdownOpened:
		return "dropdown_opened"
	case StateFormatSelected:
		return "format_selected"
	case StateDownloadTriggered:
		return "download_triggered"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	colorChoice     = "Black"
	formatChoice    = "2-D PDF"
	downloadTimeout = 30 * time.Second
)

// Interactor is the slice of page behavior the flow needs. The boolean result
// reports whether the target element was present; errors are anything the
// page raised while interacting with it.
type Interactor interface {
	ClickParameterContaining(text string) (bool, error)
	OpenCADDropdown() (bool, error)
	SelectListItem(text string) (bool, error)
	TriggerDownload(timeout time.Duration) (Download, error)
}

// Download is a captured file event whose content can be read once the
// download has finished.
type Download interface {
	Bytes() ([]byte, error)
}

// Acquisition drives one download attempt on the product page currently
// loaded in the shared browser session. Failed is an ordinary terminal state:
// many products have no CAD files at all, and the caller just proceeds
// without PDF fields.
type Acquisition struct {
	page     Interactor
	logger   *slog.Logger
	state    State
	download Download
	data     []byte
}

func NewAcquisition(page Interactor, logger *slog.Logger) *Acquisition {
	if logger == nil {
		logger = slog.Default()
	}
	return &Acquisition{
		page:   page,
		logger: logger.With("component", "pdf_acquisition"),
		state:  StateIdle,
	}
}

// Run advances the machine until it reaches a terminal state and returns the
// downloaded bytes on success. It never returns an error: every failure mode
// collapses into the Failed state.
func (a *Acquisition) Run() ([]byte, bool) {
	for {
		switch a.state {
		case StateIdle:
			a.state = a.attemptColor()
		case StateColorAttempted:
			a.state = a.openDropdown()
		case StateDropdownOpened:
			a.state = a.selectFormat()
		case StateFormatSelected:
			a.state = a.triggerDownload()
		case StateDownloadTriggered:
			a.state = a.readBytes()
		case StateComplete:
			return a.data, true
		default:
			return nil, false
		}
	}
}

// State reports the machine's current state, mainly for logging and tests.
func (a *Acquisition) State() State {
	return a.state
}

// attemptColor is best-effort: some products require a color variant to be
// selected before CAD files become available, most do not.
func (a *Acquisition) attemptColor() State {
	clicked, err := a.page.ClickParameterContaining(colorChoice)
	if err != nil {
		a.logger.Debug("color selection failed", "error", err)
		return StateFailed
	}
	if clicked {
		a.logger.Debug("selected color variant", "color", colorChoice)
	}
	return StateColorAttempted
}

func (a *Acquisition) openDropdown() State {
	found, err := a.page.OpenCADDropdown()
	if err != nil {
		a.logger.Debug("opening CAD dropdown failed", "error", err)
		return StateFailed
	}
	if !found {
		// No dropdown means no CAD files for this product.
		a.logger.Debug("no CAD dropdown on page")
		return StateFailed
	}
	return StateDropdownOpened
}

func (a *Acquisition) selectFormat() State {
	found, err := a.page.SelectListItem(formatChoice)
	if err != nil {
		a.logger.Debug("selecting format failed", "error", err)
		return StateFailed
	}
	if !found {
		a.logger.Debug("format not offered", "format", formatChoice)
		return StateFailed
	}
	return StateFormatSelected
}

func (a *Acquisition) triggerDownload() State {
	download, err := a.page.TriggerDownload(downloadTimeout)
	if err != nil {
		a.logger.Debug("download trigger failed", "error", err)
		return StateFailed
	}
	if download == nil {
		a.logger.Debug("no download control on page")
		return StateFailed
	}
	a.download = download
	return StateDownloadTriggered
}

func (a *Acquisition) readBytes() State {
	data, err := a.download.Bytes()
	if err != nil {
		a.logger.Debug("reading downloaded file failed", "error", err)
		return StateFailed
	}
	a.data = data
	a.logger.Debug("downloaded PDF", "bytes", len(data))
	return StateComplete
}
