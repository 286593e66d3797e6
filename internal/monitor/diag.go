package monitor

import (
	"errors"

	"github.com/coreman2200/arcaluminis-lowlevel/internal/strip"
	"github.com/coreman2200/arcaluminis-lowlevel/internal/ws2811"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

func Ready(s *strip.Strip) Diagnostic {
	return Diagnostic{
		Severity: Info,
		Code:     "STRIP.READY",
		Summary:  "Strip initialized",
		Evidence: map[string]any{"driver": s.Driver(), "count": s.Len()},
	}
}

func InitFailed(err error) Diagnostic {
	d := Diagnostic{
		Severity: Err,
		Code:     "STRIP.INIT_FAILED",
		Summary:  "Strip did not initialize",
		Detail:   err.Error(),
	}
	var ie *strip.InitError
	if errors.As(err, &ie) {
		d.Evidence = map[string]any{"status": int(ie.Status)}
		d.LikelyCauses, d.SuggestedFixes = hints(ie.Status)
	}
	return d
}

// RenderFailed describes err, which is usually a *strip.RenderError.
func RenderFailed(err error) Diagnostic {
	d := Diagnostic{
		Severity: Err,
		Code:     "STRIP.RENDER_FAILED",
		Summary:  "Render failed; strip torn down",
		Detail:   err.Error(),
	}
	var re *strip.RenderError
	if errors.As(err, &re) {
		d.Evidence = map[string]any{"status": int(re.Status), "frame": re.Frame}
		d.LikelyCauses, d.SuggestedFixes = hints(re.Status)
	}
	return d
}

func hints(st ws2811.Status) (causes, fixes []string) {
	switch st {
	case ws2811.ErrorSPITransfer, ws2811.ErrorSPISetup:
		return []string{"SPI disabled or busy"},
			[]string{"enable SPI with raspi-config", "check spidev permissions"}
	case ws2811.ErrorMmap, ws2811.ErrorMemLock, ws2811.ErrorOutOfMemory:
		return []string{"not running as root", "DMA channel in use"},
			[]string{"run with sudo", "pick another DMA channel"}
	case ws2811.ErrorHWNotSupported:
		return []string{"unsupported board"}, []string{"use the spi or console driver"}
	}
	return nil, nil
}
