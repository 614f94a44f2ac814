package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/kumar-pratik/create-es-snapshot/internal/bucket"
	"github.com/kumar-pratik/create-es-snapshot/internal/config"
	"github.com/kumar-pratik/create-es-snapshot/internal/elastic"
	"github.com/kumar-pratik/create-es-snapshot/internal/lock"
	"github.com/kumar-pratik/create-es-snapshot/internal/notify"
	"github.com/kumar-pratik/create-es-snapshot/internal/render"
)

// ErrNoMetadata is the single fatal path of a run: nothing loaded, so
// nothing can be rendered or sent.
var ErrNoMetadata = errors.New("metadata did not load; check the yaml file")

// App drives the snapshot pipeline: inject credentials, render the two
// payloads, register the repository, verify it, create the snapshot. Each
// intermediate value is printed to Out as it is produced.
type App struct {
	Meta  *config.Metadata
	Creds config.Credentials
	Log   zerolog.Logger

	// Out defaults to os.Stdout; Now defaults to time.Now. Overridable for
	// tests.
	Out io.Writer
	Now func() time.Time
}

func New(meta *config.Metadata, creds config.Credentials, log zerolog.Logger) *App {
	return &App{Meta: meta, Creds: creds, Log: log}
}

// SnapshotName derives the dated snapshot name. Granularity is one calendar
// day: two runs on the same date produce the same name.
func SnapshotName(t time.Time) string {
	return "snapshot-" + t.Format("2006-01-02")
}

// Run executes the full pipeline. It returns an error only for the fatal
// paths (absent metadata, missing required keys, lock contention); failed
// HTTP stages are logged and surfaced through the printed output.
func (a *App) Run(ctx context.Context) error {
	guard, err := lock.Acquire(a.lockPath())
	if err != nil {
		return err
	}
	defer guard.Release()

	url, repository, name, err := a.prepare()
	if err != nil {
		return err
	}

	start := a.now()
	es := elastic.New(url, a.Meta.Global.HTTPTimeout, a.Log)

	if pf := bucket.FromMetadata(a.Meta); pf != nil {
		if pfErr := pf.Check(ctx, a.Creds); pfErr != nil {
			a.Log.Warn().Err(pfErr).Msg("bucket preflight failed")
		}
	}

	status, regErr := es.RegisterRepository(ctx, repository, a.Meta.Global.BucketPayload)
	if regErr != nil {
		a.Log.Warn().Err(regErr).Str("kind", elastic.KindOf(regErr).String()).Msg("repository registration failed")
	}
	fmt.Fprintln(a.out(), status)

	verifyResp, verifyErr := es.VerifyRepository(ctx, repository)
	if verifyErr != nil {
		a.Log.Warn().Err(verifyErr).Str("kind", elastic.KindOf(verifyErr).String()).Msg("repository verification failed")
	}
	fmt.Fprintln(a.out(), verifyResp)

	snapResp, snapErr := es.CreateSnapshot(ctx, repository, name, a.Meta.Global.SnapshotPayload)
	if snapErr != nil {
		a.Log.Warn().Err(snapErr).Str("kind", elastic.KindOf(snapErr).String()).Msg("snapshot creation failed")
	}
	fmt.Fprintln(a.out(), snapResp)

	a.sendNotifications(ctx, notify.Event{
		Repository:     repository,
		Snapshot:       name,
		Cluster:        url,
		Status:         statusFromErrs(regErr, verifyErr, snapErr),
		RegisterStatus: status,
		StartedAt:      start,
		EndedAt:        a.now(),
		Duration:       a.now().Sub(start).String(),
		Error:          firstErrText(regErr, verifyErr, snapErr),
	})
	return nil
}

// RenderPayloads runs the pipeline up to and including template rendering.
func (a *App) RenderPayloads(ctx context.Context) error {
	_, _, _, err := a.prepare()
	return err
}

// Verify checks reachability and asks the cluster to verify the repository,
// printing the response.
func (a *App) Verify(ctx context.Context) error {
	if a.Meta == nil {
		return ErrNoMetadata
	}
	url, err := a.Meta.URL()
	if err != nil {
		return err
	}
	repository, err := a.Meta.Repository()
	if err != nil {
		return err
	}
	es := elastic.New(url, a.Meta.Global.HTTPTimeout, a.Log)
	resp, err := es.VerifyRepository(ctx, repository)
	if err != nil {
		a.Log.Warn().Err(err).Str("kind", elastic.KindOf(err).String()).Msg("repository verification failed")
	}
	fmt.Fprintln(a.out(), resp)
	return nil
}

// prepare resolves the required metadata keys, injects credentials and the
// snapshot name, and renders both payloads. Prints the snapshot name and
// cluster URL as the first two pipeline outputs.
func (a *App) prepare() (url, repository, name string, err error) {
	if a.Meta == nil {
		a.Log.Error().Msg("metadata did not load; check the yaml file")
		return "", "", "", ErrNoMetadata
	}
	url, err = a.Meta.URL()
	if err != nil {
		return "", "", "", err
	}
	repository, err = a.Meta.Repository()
	if err != nil {
		return "", "", "", err
	}

	name = SnapshotName(a.now())
	fmt.Fprintln(a.out(), name)

	if err = a.Meta.InjectCredentials(a.Creds); err != nil {
		return "", "", "", err
	}
	if err = a.Meta.SetSnapshotName(name); err != nil {
		return "", "", "", err
	}
	fmt.Fprintln(a.out(), url)

	a.renderPayload(a.Meta.Global.BucketTemplate, a.Meta.Global.BucketPayload)
	a.renderPayload(a.Meta.Global.SnapshotTemplate, a.Meta.Global.SnapshotPayload)
	return url, repository, name, nil
}

// renderPayload renders one template. Failures leave the payload unwritten
// and are only warned about; the HTTP stages report them as missing files.
func (a *App) renderPayload(templatePath, outPath string) {
	written, err := render.Payload(templatePath, a.Meta.Values(), outPath)
	if err != nil {
		a.Log.Warn().Err(err).Str("template", templatePath).Msg("payload not rendered")
		return
	}
	if written == 0 {
		a.Log.Warn().Str("template", templatePath).Msg("rendered payload is empty; check the metadata")
		return
	}
	a.Log.Debug().Int("bytes", written).Str("payload", outPath).Msg("payload rendered")
}

func (a *App) sendNotifications(ctx context.Context, event notify.Event) {
	notifier := notify.FromConfig(a.Meta.Notifications)
	if len(notifier.Targets) == 0 {
		return
	}
	if err := notifier.Notify(ctx, event); err != nil {
		a.Log.Warn().Err(err).Msg("notification failed")
	}
}

func (a *App) lockPath() string {
	if a.Meta != nil {
		return a.Meta.Global.LockFile
	}
	return ""
}

func (a *App) out() io.Writer {
	if a.Out != nil {
		return a.Out
	}
	return os.Stdout
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func statusFromErrs(errs ...error) string {
	for _, err := range errs {
		if err != nil {
			return "failed"
		}
	}
	return "success"
}

func firstErrText(errs ...error) string {
	for _, err := range errs {
		if err != nil {
			return err.Error()
		}
	}
	return ""
}
