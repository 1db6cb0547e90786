package browser

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/pingcap/tipocket-sqllab/pkg/core"
)

// LoginForm describes the application's login page.
type LoginForm struct {
	URL              string
	UsernameSelector string
	PasswordSelector string
	SubmitSelector   string
	Username         string
	Password         string
}

// Login submits the login form and waits until the browser has left the
// login page.
func (s *Session) Login(ctx context.Context, form LoginForm) error {
	if err := s.Navigate(ctx, form.URL); err != nil {
		return core.SetupFailed(err, "open login page")
	}
	err := s.locate(ctx, form.UsernameSelector,
		chromedp.WaitVisible(form.UsernameSelector, chromedp.ByQuery),
		chromedp.SendKeys(form.UsernameSelector, form.Username, chromedp.ByQuery),
		chromedp.SendKeys(form.PasswordSelector, form.Password, chromedp.ByQuery),
		chromedp.Click(form.SubmitSelector, chromedp.ByQuery),
	)
	if err != nil {
		return core.SetupFailed(err, "fill login form")
	}

	deadline := time.Now().Add(s.opts.PageLoadTimeout)
	loginPath := loginPathOf(form.URL)
	for {
		loc, err := s.Location(ctx)
		if err != nil {
			return core.SetupFailed(err, "login")
		}
		if !strings.Contains(loc, loginPath) {
			zap.L().Info("logged in", zap.String("user", form.Username), zap.String("location", loc))
			return nil
		}
		if time.Now().After(deadline) {
			return core.SetupFailed(errors.Errorf("still on %s", loc), "login as %s", form.Username)
		}
		select {
		case <-ctx.Done():
			return core.SetupFailed(ctx.Err(), "login")
		case <-time.After(200 * time.Millisecond):
		}
	}
}

func loginPathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}
