// AngelaMos | 2026
// renderer.go

package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/angelamos/stratiq/internal/config"
)

// ErrRendererUnavailable marks failures of the external PDF renderer.
// An export failure never unwinds review state; it only costs the
// caller a retry (the consumed export credit is not refunded).
var ErrRendererUnavailable = errors.New("pdf renderer unavailable")

// Renderer turns a report document into PDF bytes. The rendering
// itself lives in a separate service; this is only the HTTP boundary.
type Renderer interface {
	RenderPDF(ctx context.Context, report any) ([]byte, error)
}

type httpRenderer struct {
	cfg  config.ExportConfig
	http *http.Client
}

func NewRenderer(cfg config.ExportConfig) Renderer {
	return &httpRenderer{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (r *httpRenderer) RenderPDF(
	ctx context.Context,
	report any,
) ([]byte, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		r.cfg.RendererURL+"/render",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("build render request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf(
			"render pdf: %v: %w",
			err,
			ErrRendererUnavailable,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"render pdf status %d: %w",
			resp.StatusCode,
			ErrRendererUnavailable,
		)
	}

	pdf, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf(
			"read pdf: %v: %w",
			err,
			ErrRendererUnavailable,
		)
	}

	if len(pdf) == 0 {
		return nil, fmt.Errorf(
			"render pdf returned empty body: %w",
			ErrRendererUnavailable,
		)
	}

	return pdf, nil
}
