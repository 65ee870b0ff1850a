package session

import (
	"context"
	"errors"

	"github.com/neilberkman/storycards/internal/core/gateway"
)

// Driver runs a Controller's requests synchronously against a Gateway. The
// interactive TUI dispatches requests itself; Driver serves the headless
// commands and the MCP tools.
type Driver struct {
	ctrl *Controller
	gw   gateway.Gateway
}

// NewDriver wraps ctrl so its requests are sent through gw
func NewDriver(ctrl *Controller, gw gateway.Gateway) *Driver {
	return &Driver{ctrl: ctrl, gw: gw}
}

// Controller returns the driven controller
func (d *Driver) Controller() *Controller {
	return d.ctrl
}

// Generate selects in, uploads it and returns the resulting paragraphs
func (d *Driver) Generate(ctx context.Context, in Input) ([]string, error) {
	d.ctrl.SelectInput(in)

	req := d.ctrl.Submit()
	if req == nil {
		return nil, ErrRejected
	}

	res, err := d.gw.Upload(ctx, *req)
	if err != nil {
		return nil, d.ctrl.UploadFailed(reason(err))
	}
	if err := d.ctrl.UploadSucceeded(res); err != nil {
		return nil, err
	}
	return d.ctrl.Session().Paragraphs, nil
}

// Export requests a slide deck for the current paragraphs
func (d *Driver) Export(ctx context.Context) (Deck, error) {
	req := d.ctrl.RequestExport()
	if req == nil {
		return Deck{}, ErrRejected
	}

	data, err := d.gw.ExportDeck(ctx, *req)
	if err != nil {
		return Deck{}, d.ctrl.ExportFailed(reason(err))
	}
	return d.ctrl.ExportSucceeded(data)
}

// Reset clears the session and deletes the server artifact if there is one.
// The session is cleared even when the returned error is a *ResetError.
func (d *Driver) Reset(ctx context.Context) error {
	if !d.ctrl.CanReset() {
		return ErrRejected
	}

	req := d.ctrl.Reset()
	if req == nil {
		return nil
	}

	if err := d.gw.DeleteArtifact(ctx, req.FilePath); err != nil {
		return d.ctrl.DeleteFailed(req.FilePath, reason(err))
	}
	return d.ctrl.DeleteSucceeded(req.FilePath)
}

// reason extracts the human-readable message carried by gateway failures
func reason(err error) string {
	var f *gateway.Failure
	if errors.As(err, &f) {
		return f.Message
	}
	return err.Error()
}
