package chrome

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/instaflow/internal/domain"
	"github.com/bnema/instaflow/internal/ports"
	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureScript = `<script>
window.dismissed = 0;
function dismiss(el) { window.dismissed++; el.remove(); }
function openDialog(items) {
	window.dialogOpened = true;
	const dialog = document.createElement("div");
	dialog.setAttribute("role", "dialog");
	for (const label of items) {
		const button = document.createElement("button");
		button.textContent = label;
		button.onclick = () => { window.confirmed = label; dialog.remove(); };
		dialog.appendChild(button);
	}
	document.body.appendChild(dialog);
}
</script>`

var fixtureProfiles = map[string]string{
	// Not following yet: the follow control flips on click.
	"bob": `<header><button>Message</button></header>
<section><button onclick="this.textContent='Following'">Follow</button></section>`,
	"carol": `<header><button onclick="openDialog(['Unfollow', 'Cancel'])">Following</button></header>
<section><button>Following</button></section>`,
	"dave": `<header><button>Message</button></header>
<section><p>No posts yet</p></section>`,
	"erin": `<header><button onclick="openDialog(['Unfollow'])">Follow</button></header>
<section><button>Follow</button></section>`,
	// Following, but the dialog never offers a confirm control.
	"frank": `<header><button onclick="openDialog(['Cancel'])">Requested</button></header>
<section><button>Requested</button></section>`,
}

type loginCapture struct {
	mu       sync.Mutex
	username string
	password string
}

func (c *loginCapture) get() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username, c.password
}

func newFixtureServer(t *testing.T) (*httptest.Server, *loginCapture) {
	t.Helper()

	capture := &loginCapture{}
	page := func(w http.ResponseWriter, body string) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprintf(w, "<!doctype html><html><body>%s%s</body></html>", fixtureScript, body)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		next := r.URL.Query().Get("next")
		if next == "" {
			next = "/home"
		}
		page(w, fmt.Sprintf(`<form action=%q method="get">
<input name="username"><input name="password" type="password">
<button type="submit">Log in</button></form>`, next))
	})
	mux.HandleFunc("/home", func(w http.ResponseWriter, r *http.Request) {
		capture.mu.Lock()
		capture.username = r.URL.Query().Get("username")
		capture.password = r.URL.Query().Get("password")
		capture.mu.Unlock()
		page(w, `<nav>feed</nav>
<div role="dialog"><button onclick="dismiss(this)">Not Now</button></div>
<button onclick="dismiss(this)">Not now</button>`)
	})
	mux.HandleFunc("/rejected", func(w http.ResponseWriter, _ *http.Request) {
		page(w, `<p>Sorry, your password was incorrect.</p>`)
	})
	mux.HandleFunc("/u/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/u/"), "/")
		body, ok := fixtureProfiles[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		page(w, body)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, capture
}

func chromeOrSkip(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("browser tests are skipped in short mode")
	}
	if path := os.Getenv("CHROME_PATH"); path != "" {
		return path
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell", "chrome"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Skip("no Chrome binary found")
	return ""
}

func newFixtureDriver(t *testing.T, loginURL string, server *httptest.Server, timeout time.Duration) *Driver {
	t.Helper()

	factory := NewFactory(Options{
		Headless:   true,
		Timeout:    timeout,
		LoginURL:   loginURL,
		ProfileURL: server.URL + "/u/%s/",
		ExecPath:   chromeOrSkip(t),
	}, nil)

	driver, err := factory.NewDriver(context.Background(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Release() })

	concrete, ok := driver.(*Driver)
	require.True(t, ok)
	return concrete
}

func evaluate[T any](t *testing.T, d *Driver, expression string) T {
	t.Helper()

	var out T
	require.NoError(t, d.run(context.Background(), 5*time.Second, chromedp.Evaluate(expression, &out)))
	return out
}

func openFixture(t *testing.T, d *Driver, server *httptest.Server, identity string) {
	t.Helper()
	require.NoError(t, d.run(context.Background(), 5*time.Second,
		chromedp.Navigate(fmt.Sprintf(server.URL+"/u/%s/", identity)),
		chromedp.WaitReady("section", chromedp.ByQuery),
	))
}

func TestDriverAuthenticateDismissesInterstitials(t *testing.T) {
	server, capture := newFixtureServer(t)
	driver := newFixtureDriver(t, server.URL+"/login", server, 5*time.Second)

	require.NoError(t, driver.Authenticate(context.Background(), domain.NewCredentials("alice", "s3cret")))

	username, password := capture.get()
	assert.Equal(t, "alice", username)
	assert.Equal(t, "s3cret", password)
	assert.Equal(t, 2, evaluate[int](t, driver, "window.dismissed"))
}

func TestDriverAuthenticateReportsRejectedLogin(t *testing.T) {
	server, _ := newFixtureServer(t)
	driver := newFixtureDriver(t, server.URL+"/login?next=/rejected", server, 5*time.Second)

	err := driver.Authenticate(context.Background(), domain.NewCredentials("alice", "wrong"))
	require.ErrorIs(t, err, domain.ErrAuthenticationFailed)
	assert.ErrorContains(t, err, "wait for home page")
}

func TestDriverAuthenticateStopsOnCancel(t *testing.T) {
	server, _ := newFixtureServer(t)
	driver := newFixtureDriver(t, server.URL+"/login?next=/rejected", server, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := driver.Authenticate(ctx, domain.NewCredentials("alice", "pw"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, domain.ErrAuthenticationFailed)
}

func TestDriverFollow(t *testing.T) {
	server, _ := newFixtureServer(t)
	driver := newFixtureDriver(t, server.URL+"/login", server, 5*time.Second)

	tests := []struct {
		identity string
		want     ports.ControlState
	}{
		{identity: "bob", want: ports.ControlApplied},
		{identity: "carol", want: ports.ControlAlreadyInState},
		{identity: "frank", want: ports.ControlAlreadyInState},
		{identity: "dave", want: ports.ControlNotFound},
	}

	for _, tc := range tests {
		state, err := driver.PerformAction(context.Background(), domain.Target{Identity: tc.identity, Action: domain.ActionFollow})
		require.NoError(t, err, tc.identity)
		assert.Equal(t, tc.want, state, tc.identity)

		if tc.identity == "bob" {
			assert.Equal(t, "Following", evaluate[string](t, driver, `document.querySelector("section button").textContent`))
		}
	}
}

func TestDriverUnfollowConfirmsInDialog(t *testing.T) {
	server, _ := newFixtureServer(t)
	driver := newFixtureDriver(t, server.URL+"/login", server, 5*time.Second)

	state, err := driver.PerformAction(context.Background(), domain.Target{Identity: "carol", Action: domain.ActionUnfollow})
	require.NoError(t, err)
	assert.Equal(t, ports.ControlApplied, state)
	assert.Equal(t, "Unfollow", evaluate[string](t, driver, `window.confirmed || ""`))
}

func TestDriverUnfollowWhenNotFollowingSkipsConfirmation(t *testing.T) {
	server, _ := newFixtureServer(t)
	driver := newFixtureDriver(t, server.URL+"/login", server, 5*time.Second)

	for _, identity := range []string{"erin", "dave"} {
		state, err := driver.PerformAction(context.Background(), domain.Target{Identity: identity, Action: domain.ActionUnfollow})
		require.NoError(t, err, identity)
		assert.Equal(t, ports.ControlAlreadyInState, state, identity)
		assert.False(t, evaluate[bool](t, driver, `window.dialogOpened === true`), identity)
	}
}

func TestDriverUnfollowWithoutConfirmControl(t *testing.T) {
	server, _ := newFixtureServer(t)
	driver := newFixtureDriver(t, server.URL+"/login", server, 5*time.Second)

	state, err := driver.PerformAction(context.Background(), domain.Target{Identity: "frank", Action: domain.ActionUnfollow})
	require.NoError(t, err)
	assert.Equal(t, ports.ControlNotFound, state)
	assert.True(t, evaluate[bool](t, driver, `window.dialogOpened === true`))
	assert.Empty(t, evaluate[string](t, driver, `window.confirmed || ""`))
}

func TestDriverOpenProfileFailsForMissingPage(t *testing.T) {
	server, _ := newFixtureServer(t)
	driver := newFixtureDriver(t, server.URL+"/login", server, 5*time.Second)

	state, err := driver.PerformAction(context.Background(), domain.Target{Identity: "ghost", Action: domain.ActionFollow})
	require.Error(t, err)
	assert.Equal(t, ports.ControlNotFound, state)
	assert.ErrorContains(t, err, "open profile ghost")
}

func TestDriverReleaseIsIdempotent(t *testing.T) {
	server, _ := newFixtureServer(t)
	driver := newFixtureDriver(t, server.URL+"/login", server, 5*time.Second)

	openFixture(t, driver, server, "bob")
	require.NoError(t, driver.Release())
	require.NoError(t, driver.Release())
}
