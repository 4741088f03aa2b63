package wizard_test

import (
	"context"
	"io/fs"
	"net/http/httptest"
	"strings"
	"testing"

	wizard "github.com/waggy/go-wizard"
	"github.com/waggy/go-wizard/pkg/backend/memory"
	"github.com/waggy/go-wizard/pkg/client"
	pkgwizard "github.com/waggy/go-wizard/pkg/wizard"
)

func TestStart_LoadsFirstStepOverHTTP(t *testing.T) {
	backend, err := memory.NewDefault(memory.WithToken("demo"))
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()

	ctl, err := wizard.Start(context.Background(), srv.URL, 5, []client.Option{client.WithToken("demo")})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	snap := ctl.Snapshot()
	if snap.Status != pkgwizard.StatusStepLoaded {
		t.Fatalf("expected step_loaded, got %s", snap.Status)
	}
	if snap.Step.ID != 11 || snap.TotalSteps != 3 {
		t.Fatalf("unexpected step %d of %d", snap.Step.ID, snap.TotalSteps)
	}
}

func TestStart_ReturnsControllerOnFailure(t *testing.T) {
	backend, err := memory.NewDefault(memory.WithToken("demo"))
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()

	ctl, err := wizard.Start(context.Background(), srv.URL, 5, nil)
	if err == nil {
		t.Fatal("expected unauthorized error")
	}
	if ctl == nil || ctl.Status() != pkgwizard.StatusError {
		t.Fatalf("expected controller in error state, got %+v", ctl)
	}
}

func TestEmbeddedFilesystems(t *testing.T) {
	if _, err := fs.ReadFile(wizard.EmbeddedTemplates(), "templates/page.tpl"); err != nil {
		t.Fatalf("expected page template: %v", err)
	}
	css, err := fs.ReadFile(wizard.ThemeAssetsFS(), "wizard.css")
	if err != nil {
		t.Fatalf("expected stylesheet: %v", err)
	}
	if !strings.Contains(string(css), ".wz-wizard") {
		t.Fatal("stylesheet missing wizard rules")
	}
}
