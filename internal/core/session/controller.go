package session

import (
	"log/slog"

	"github.com/neilberkman/storycards/internal/core/gateway"
	"github.com/neilberkman/storycards/internal/core/logger"
	"github.com/neilberkman/storycards/internal/core/story"
)

// PromptFunc builds the optional free-text instruction sent with an upload.
// An empty result means no instruction.
type PromptFunc func(Input) string

// Option configures a Controller
type Option func(*Controller)

// WithPrompt sets the instruction attached to every upload
func WithPrompt(fn PromptFunc) Option {
	return func(c *Controller) {
		c.prompt = fn
	}
}

// WithLogger replaces the default component logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// Controller is the state machine for one session. Every user intent and
// every request outcome goes through one of its methods; intents that would
// start a request return the request for the caller to run against a
// gateway.Gateway, and nil when the intent is not allowed right now.
//
// Controller is not safe for concurrent use. Drive it from one goroutine
// (the Bubble Tea update loop, or a Driver).
type Controller struct {
	s      Session
	prompt PromptFunc
	log    *slog.Logger

	// Name of the document sent with the export in flight
	exportName string
	// Server refs with a delete request in flight
	deleting map[string]bool
}

// NewController returns a controller holding an empty session
func NewController(opts ...Option) *Controller {
	c := &Controller{
		deleting: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.ComponentLogger("session")
	}
	return c
}

// Session returns a copy of the current state
func (c *Controller) Session() Session {
	return c.s.clone()
}

// Status returns the request currently in flight
func (c *Controller) Status() Status {
	return c.s.Status
}

// Busy reports whether a request is in flight
func (c *Controller) Busy() bool {
	return c.s.Status != StatusIdle
}

// CanSubmit reports whether Submit would dispatch an upload
func (c *Controller) CanSubmit() bool {
	return c.s.Input != nil && c.s.Status == StatusIdle
}

// CanExport reports whether RequestExport would dispatch an export
func (c *Controller) CanExport() bool {
	return len(c.s.Paragraphs) > 0 && c.s.Status == StatusIdle
}

// CanReset reports whether Reset would be accepted
func (c *Controller) CanReset() bool {
	return c.s.Status == StatusIdle
}

// Current returns the paragraph under the cursor
func (c *Controller) Current() (string, bool) {
	if len(c.s.Paragraphs) == 0 {
		return "", false
	}
	return c.s.Paragraphs[c.s.Cursor], true
}

// Position returns the 1-based card number and the card count. Both are 0
// when there are no cards.
func (c *Controller) Position() (int, int) {
	if len(c.s.Paragraphs) == 0 {
		return 0, 0
	}
	return c.s.Cursor + 1, len(c.s.Paragraphs)
}

// SelectInput records the chosen document. It never touches paragraphs or
// the request status.
func (c *Controller) SelectInput(in Input) {
	c.s.Input = &in
	c.log.Debug("input selected", "name", in.Name, "size", in.Size)
}

// Submit starts an upload of the selected input
func (c *Controller) Submit() *gateway.UploadRequest {
	if !c.CanSubmit() {
		c.log.Debug("submit ignored", "status", c.s.Status, "has_input", c.s.Input != nil)
		return nil
	}

	c.s.Status = StatusUploading
	req := &gateway.UploadRequest{
		Path:     c.s.Input.Path,
		FileName: c.s.Input.Name,
	}
	if c.prompt != nil {
		req.Prompt = c.prompt(*c.s.Input)
	}

	c.log.Info("upload dispatched", "name", req.FileName)
	return req
}

// UploadSucceeded applies a successful upload response
func (c *Controller) UploadSucceeded(res gateway.UploadResult) error {
	if c.s.Status != StatusUploading {
		c.log.Warn("upload result dropped", "status", c.s.Status)
		return ErrStaleOutcome
	}

	c.s.Paragraphs = story.Split(res.Story)
	c.s.Cursor = 0
	c.s.ServerRef = res.FileRef
	c.s.Status = StatusIdle

	c.log.Info("story loaded", "paragraphs", len(c.s.Paragraphs), "ref", res.FileRef)
	return nil
}

// UploadFailed returns the session to idle and reports reason as an
// *UploadError. Paragraphs from an earlier upload are kept.
func (c *Controller) UploadFailed(reason string) error {
	if c.s.Status != StatusUploading {
		c.log.Warn("upload failure dropped", "status", c.s.Status, "reason", reason)
		return ErrStaleOutcome
	}

	c.s.Status = StatusIdle
	c.log.Warn("upload failed", "reason", reason)
	return &UploadError{Reason: reason}
}

// Next moves to the following card. It reports whether the cursor moved.
func (c *Controller) Next() bool {
	if c.s.Cursor >= len(c.s.Paragraphs)-1 {
		return false
	}
	c.s.Cursor++
	return true
}

// Prev moves to the previous card. It reports whether the cursor moved.
func (c *Controller) Prev() bool {
	if c.s.Cursor <= 0 {
		return false
	}
	c.s.Cursor--
	return true
}

// Jump moves to card i (0-based). Out of range is a no-op.
func (c *Controller) Jump(i int) bool {
	if i < 0 || i >= len(c.s.Paragraphs) || i == c.s.Cursor {
		return false
	}
	c.s.Cursor = i
	return true
}

// First moves to the first card
func (c *Controller) First() bool {
	return c.Jump(0)
}

// Last moves to the last card
func (c *Controller) Last() bool {
	return c.Jump(len(c.s.Paragraphs) - 1)
}

// RequestExport starts a slide deck export of the current paragraphs
func (c *Controller) RequestExport() *gateway.ExportRequest {
	if !c.CanExport() {
		c.log.Debug("export ignored", "status", c.s.Status, "paragraphs", len(c.s.Paragraphs))
		return nil
	}

	c.s.Status = StatusExporting
	c.exportName = ""
	if c.s.Input != nil {
		c.exportName = c.s.Input.Name
	}

	c.log.Info("export dispatched", "paragraphs", len(c.s.Paragraphs))
	return &gateway.ExportRequest{
		Paragraphs:   append([]string(nil), c.s.Paragraphs...),
		DocumentName: c.exportName,
	}
}

// ExportSucceeded returns the session to idle and hands the deck back for
// the caller to save
func (c *Controller) ExportSucceeded(data []byte) (Deck, error) {
	if c.s.Status != StatusExporting {
		c.log.Warn("export result dropped", "status", c.s.Status)
		return Deck{}, ErrStaleOutcome
	}

	c.s.Status = StatusIdle
	c.log.Info("export received", "bytes", len(data))
	return Deck{
		SourceName: c.exportName,
		Paragraphs: len(c.s.Paragraphs),
		Data:       data,
	}, nil
}

// ExportFailed returns the session to idle and reports reason as an
// *ExportError
func (c *Controller) ExportFailed(reason string) error {
	if c.s.Status != StatusExporting {
		c.log.Warn("export failure dropped", "status", c.s.Status, "reason", reason)
		return ErrStaleOutcome
	}

	c.s.Status = StatusIdle
	c.log.Warn("export failed", "reason", reason)
	return &ExportError{Reason: reason}
}

// Reset clears the session. When the last upload left an artifact on the
// server, the delete request for it is returned; local state is cleared
// either way and does not wait for the delete. Reset is ignored while a
// request is in flight.
func (c *Controller) Reset() *gateway.DeleteRequest {
	if !c.CanReset() {
		c.log.Debug("reset ignored", "status", c.s.Status)
		return nil
	}

	var req *gateway.DeleteRequest
	if c.s.ServerRef != "" {
		req = &gateway.DeleteRequest{FilePath: c.s.ServerRef}
		c.deleting[c.s.ServerRef] = true
	}

	c.s = Session{}
	c.exportName = ""

	if req != nil {
		c.log.Info("session reset", "delete", req.FilePath)
	} else {
		c.log.Debug("session reset")
	}
	return req
}

// DeleteSucceeded records that the artifact behind ref is gone
func (c *Controller) DeleteSucceeded(ref string) error {
	if !c.deleting[ref] {
		return ErrStaleOutcome
	}
	delete(c.deleting, ref)
	c.log.Info("artifact deleted", "ref", ref)
	return nil
}

// DeleteFailed reports a failed delete as a *ResetError. The session was
// already cleared by Reset and stays cleared.
func (c *Controller) DeleteFailed(ref, reason string) error {
	if !c.deleting[ref] {
		return ErrStaleOutcome
	}
	delete(c.deleting, ref)
	c.log.Warn("artifact delete failed", "ref", ref, "reason", reason)
	return &ResetError{Ref: ref, Reason: reason}
}
