// Package wizard is the top-level entry point for embedding the Waggy
// provider onboarding wizard. It re-exports the pieces most callers need so a
// typical integration imports a single package.
package wizard

import (
	"context"
	"io/fs"

	"github.com/waggy/go-wizard/pkg/client"
	"github.com/waggy/go-wizard/pkg/renderers/html"
	"github.com/waggy/go-wizard/pkg/session"
	pkgwizard "github.com/waggy/go-wizard/pkg/wizard"
)

// Controller drives one provider service through its wizard.
type Controller = pkgwizard.Controller

// Backend is the wizard API the controller talks to.
type Backend = pkgwizard.Backend

// Snapshot is an immutable view of controller state.
type Snapshot = pkgwizard.Snapshot

// Option configures a Controller.
type Option = pkgwizard.Option

// Draft is unsaved step input kept between requests.
type Draft = session.Draft

// NewController returns an idle controller. Call LoadWizard before use.
func NewController(backend Backend, providerServiceID int64, options ...Option) *Controller {
	return pkgwizard.New(backend, providerServiceID, options...)
}

// NewClient returns the HTTP backend for the wizard API at baseURL.
func NewClient(baseURL string, options ...client.Option) (*client.Client, error) {
	return client.New(baseURL, options...)
}

// Start creates a controller for providerServiceID over the API at baseURL
// and loads its current step. The controller is returned even when loading
// fails so callers can Retry.
func Start(ctx context.Context, baseURL string, providerServiceID int64, clientOptions []client.Option, options ...Option) (*Controller, error) {
	backend, err := client.New(baseURL, clientOptions...)
	if err != nil {
		return nil, err
	}
	ctl := pkgwizard.New(backend, providerServiceID, options...)
	return ctl, ctl.LoadWizard(ctx)
}

// NewHTMLRenderer returns the server-side HTML renderer.
func NewHTMLRenderer(options ...html.Option) (*html.Renderer, error) {
	return html.New(options...)
}

// EmbeddedTemplates exposes the built-in page and control templates so
// callers can copy or override them with html.WithTemplatesFS.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// ThemeAssetsFS exposes the default theme stylesheet, served by the HTTP
// frontend under html.AssetsPrefix.
func ThemeAssetsFS() fs.FS {
	return html.AssetsFS()
}
