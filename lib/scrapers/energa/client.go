// Package energa maintains an authenticated scraping session against the
// Energa MojLicznik portal and exposes its interval consumption data.
package energa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"ppeagent/lib/htmlutil"
	"ppeagent/lib/retry"
	"ppeagent/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const DefaultBaseUrl = "https://mojlicznik.energa-operator.pl"

const (
	loginPath    = "/dp/UserLogin.do"
	logoutPath   = "/dp/UserLogout.do"
	userDataPath = "/dp/UserData.do"
	chartPath    = "/dp/resources/chart"

	tokenField        = "_antixsrf"
	formUsernameField = "j_username"
	formPasswordField = "j_password"
)

const (
	DefaultMaxAttempts = 3
	DefaultTimeout     = time.Second * 10
)

// State tracks where the session is in its lifecycle. The client is the
// single writer; concurrent readers only ever see LoggedIn once request
// handlers are admitted.
type State int

const (
	LoggedOut State = iota
	LoggingIn
	LoggedIn
	LoggingOut
)

// Client owns the one authenticated portal session of the process.
// Login and Logout are the only mutators and are serialized against
// request admission by the caller, so data queries need no locking.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	credentials *Credentials
	meterId     int64
	maxAttempts int
	timeout     time.Duration
	state       State
}

type ClientOptions struct {
	// BaseUrl overrides the production portal origin, mostly for tests.
	BaseUrl     string
	Credentials *Credentials
	// MaxAttempts bounds every retried upstream interaction.
	MaxAttempts int
	// Timeout applies per HTTP call, not across retry attempts.
	Timeout time.Duration
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.Credentials == nil {
		return nil, &ValidationError{Reason: "missing credentials"}
	}
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)

	defaultHost, _ := url.Parse(DefaultBaseUrl)
	if baseUrl.Hostname() == defaultHost.Hostname() {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(client, "scrapers/energa/http")

	return &Client{
		BaseUrl:     baseUrl,
		Http:        client,
		credentials: opts.Credentials,
		maxAttempts: opts.MaxAttempts,
		timeout:     opts.Timeout,
		state:       LoggedOut,
	}, nil
}

func (c *Client) State() State {
	return c.state
}

// MeterId returns the meter point identifier resolved during login,
// zero before the first successful login.
func (c *Client) MeterId() int64 {
	return c.meterId
}

// Login runs the full handshake under the retry policy: scrape the
// anti-forgery token out of the login page, POST the credentials, then
// resolve the account's meter id. Exhaustion leaves the session logged
// out and must prevent the process from serving.
func (c *Client) Login(ctx context.Context) error {
	c.state = LoggingIn
	err := retry.Do(retry.Policy{MaxAttempts: c.maxAttempts}, func() error {
		return c.loginOnce(ctx)
	})
	if err != nil {
		c.state = LoggedOut
		return err
	}
	c.state = LoggedIn
	return nil
}

func (c *Client) loginOnce(ctx context.Context) error {
	slog.InfoContext(ctx, "logging into Energa service")

	res, err := c.Http.R().
		SetContext(ctx).
		Get(loginPath)
	if err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return err
	}

	token := doc.Find(fmt.Sprintf("input[name=%s]", tokenField)).AttrOr("value", "")
	if token == "" {
		return &AuthenticationError{Reason: "missing login token"}
	}

	form := c.credentials.FormData()
	form[tokenField] = token
	res, err = c.Http.R().
		SetContext(ctx).
		SetFormData(form).
		Post(loginPath)
	if err != nil {
		return err
	}
	if !res.IsSuccess() {
		return &AuthenticationError{
			Reason: fmt.Sprintf("login rejected with status %d", res.StatusCode()),
		}
	}

	meterId, err := c.resolveMeterId(ctx)
	if err != nil {
		return err
	}
	c.credentials.ID = meterId
	c.meterId = meterId

	slog.InfoContext(ctx, "successfully logged into Energa service", "meter_id", meterId)
	return nil
}

var meterIdRegex = regexp.MustCompile(`meters\.list\.push\(\{\s+id: (\d+),`)

// resolveMeterId scrapes the meter point id out of the script block the
// user-data page embeds:
//
//	meters.list.push({
//	    id: 12345678,
//	    ...
//	})
//
// It runs under its own retry scope, nested inside the login retry.
func (c *Client) resolveMeterId(ctx context.Context) (int64, error) {
	var meterId int64
	err := retry.Do(retry.Policy{MaxAttempts: c.maxAttempts}, func() error {
		res, err := c.Http.R().
			SetContext(ctx).
			Get(userDataPath)
		if err != nil {
			return err
		}
		if !res.IsSuccess() {
			return &DataUnavailableError{Reason: "user data page", Status: res.StatusCode()}
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
		if err != nil {
			return err
		}

		for _, script := range doc.Find("script").Nodes {
			groups := meterIdRegex.FindStringSubmatch(htmlutil.GetText(script))
			if len(groups) < 2 {
				continue
			}
			meterId, err = strconv.ParseInt(groups[1], 10, 64)
			return err
		}
		return &AuthenticationError{Reason: "missing meter id"}
	})
	return meterId, err
}

// Logout tears the upstream session down and releases the client
// handle. Cancellation is ignored so that repeated interrupts during
// shutdown cannot abort the logout attempt, genuine network failures
// still consume the retry budget.
func (c *Client) Logout(ctx context.Context) error {
	c.state = LoggingOut
	slog.InfoContext(ctx, "logging out from Energa service")

	err := retry.Do(retry.Policy{
		MaxAttempts: c.maxAttempts,
		Ignored: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
	}, func() error {
		_, err := c.Http.R().
			SetContext(ctx).
			Get(logoutPath)
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "successfully logged out from Energa service")
		return nil
	})
	if err != nil {
		return err
	}

	c.Http.GetClient().CloseIdleConnections()
	c.state = LoggedOut
	return nil
}
