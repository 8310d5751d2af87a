package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"
	"github.com/tidwall/gjson"

	"github.com/obiajulum/padipay/internal/common"
	"github.com/obiajulum/padipay/internal/logging"
)

// TokenSource supplies the current session token for authenticated calls.
// An empty token means "no session".
type TokenSource func(ctx context.Context) (string, error)

// ActivityHook is invoked after every successful authenticated call. The
// session controller uses it to stamp the idle-logout activity time.
type ActivityHook func(ctx context.Context)

// Options configures the resty-backed Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Tokens     TokenSource
	OnActivity ActivityHook
	Logger     logging.Logger
}

// RestyClient implements Client over HTTP.
type RestyClient struct {
	http       *resty.Client
	tokens     TokenSource
	onActivity ActivityHook
	log        logging.Logger
}

var _ Client = (*RestyClient)(nil)

func New(opts Options) *RestyClient {
	hc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Content-Type", "application/json")
	if opts.Timeout > 0 {
		hc.SetTimeout(opts.Timeout)
	}
	return &RestyClient{
		http:       hc,
		tokens:     opts.Tokens,
		onActivity: opts.OnActivity,
		log:        opts.Logger,
	}
}

func (c *RestyClient) do(ctx context.Context, method, path string, body any, authed bool) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if authed {
		token, err := c.tokens(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading session token: %w", err)
		}
		if token == "" {
			return nil, common.ErrUnauthorized
		}
		req.SetHeader("Authorization", "Bearer "+token)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, classifyTransport(err)
	}

	if resp.StatusCode() >= 500 {
		return nil, &NetworkError{Kind: NetworkServer, Err: fmt.Errorf("server returned %s", resp.Status())}
	}
	if !resp.IsSuccess() || !gjson.GetBytes(resp.Body(), "success").Bool() {
		return nil, errorFromResponse(resp)
	}

	if authed && c.onActivity != nil {
		c.onActivity(ctx)
	}
	return resp.Body(), nil
}

// getWithRetry performs an idempotent GET, retrying once on connectivity and
// 5xx failures. Timeouts are not retried: the bounded wait has already been
// spent and the caller needs a stable state, not a longer hang.
func (c *RestyClient) getWithRetry(ctx context.Context, path string, authed bool) ([]byte, error) {
	var body []byte
	backoff := retry.WithMaxRetries(1, retry.NewConstant(300*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		b, err := c.do(ctx, http.MethodGet, path, nil, authed)
		if err != nil {
			var ne *NetworkError
			if errors.As(err, &ne) && ne.Kind != NetworkTimeout {
				return retry.RetryableError(err)
			}
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &NetworkError{Kind: NetworkTimeout, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &NetworkError{Kind: NetworkTimeout, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &NetworkError{Kind: NetworkConnect, Err: err}
}

// errorFromResponse maps a non-success envelope to the error taxonomy.
func errorFromResponse(resp *resty.Response) error {
	body := resp.Body()
	message := gjson.GetBytes(body, "message").String()
	code := gjson.GetBytes(body, "data.code").String()

	switch resp.StatusCode() {
	case http.StatusTooManyRequests:
		retryAfter := time.Duration(gjson.GetBytes(body, "data.retryAfterSeconds").Int()) * time.Second
		if retryAfter == 0 {
			if secs, err := strconv.Atoi(resp.Header().Get("Retry-After")); err == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return &RateLimitError{RetryAfter: retryAfter, Message: message}
	case http.StatusUnauthorized:
		return &APIError{Status: http.StatusUnauthorized, Code: code, Message: message}
	}

	if remaining := gjson.GetBytes(body, "data.remainingAttempts"); remaining.Exists() {
		return &PinRejectedError{RemainingAttempts: int(remaining.Int()), Message: message}
	}

	return &APIError{Status: resp.StatusCode(), Code: code, Message: message}
}

func decodeData(body []byte, v any) error {
	data := gjson.GetBytes(body, "data")
	if !data.Exists() {
		return fmt.Errorf("response envelope has no data")
	}
	if err := json.Unmarshal([]byte(data.Raw), v); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}

func (c *RestyClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/auth/login",
		map[string]string{"email": email, "password": password}, false)
	if err != nil {
		return nil, err
	}
	var out LoginResult
	if err := decodeData(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RestyClient) BiometricLogin(ctx context.Context, biometricToken string) (*LoginResult, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/auth/biometric-login",
		map[string]string{"biometricToken": biometricToken}, false)
	if err != nil {
		return nil, err
	}
	var out LoginResult
	if err := decodeData(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RestyClient) BiometricEnroll(ctx context.Context, userID, deviceID string) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/auth/biometric-enroll",
		map[string]string{"userId": userID, "deviceId": deviceID}, true)
	if err != nil {
		return "", err
	}
	var out struct {
		BiometricToken string `json:"biometricToken"`
	}
	if err := decodeData(body, &out); err != nil {
		return "", err
	}
	if out.BiometricToken == "" {
		return "", fmt.Errorf("backend returned empty biometric token")
	}
	return out.BiometricToken, nil
}

func (c *RestyClient) Profile(ctx context.Context) (*User, error) {
	body, err := c.getWithRetry(ctx, "/api/auth/profile", true)
	if err != nil {
		return nil, err
	}
	var out User
	if err := decodeData(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RestyClient) DeleteAccount(ctx context.Context, password string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/auth/delete-account",
		map[string]string{"password": password}, true)
	return err
}

func (c *RestyClient) PinStatus(ctx context.Context) (bool, error) {
	body, err := c.getWithRetry(ctx, "/pin/status", true)
	if err != nil {
		return false, err
	}
	return gjson.GetBytes(body, "data.isPinSet").Bool(), nil
}

func (c *RestyClient) SetupPin(ctx context.Context, pin, confirmPin string) error {
	_, err := c.do(ctx, http.MethodPost, "/pin/setup",
		map[string]string{"pin": pin, "confirmPin": confirmPin}, true)
	return err
}

func (c *RestyClient) VerifyPin(ctx context.Context, pin string) error {
	_, err := c.do(ctx, http.MethodPost, "/pin/verify",
		map[string]string{"pin": pin}, true)
	return err
}

func (c *RestyClient) ChangePin(ctx context.Context, currentPin, newPin string) error {
	_, err := c.do(ctx, http.MethodPost, "/pin/change",
		map[string]string{"currentPin": currentPin, "newPin": newPin}, true)
	return err
}

func (c *RestyClient) ForgotPinRequest(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/pin/forgot/request", nil, true)
	return err
}

func (c *RestyClient) ForgotPinVerify(ctx context.Context, otp string) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/pin/forgot/verify",
		map[string]string{"otp": otp}, true)
	if err != nil {
		return "", err
	}
	var out struct {
		ResetToken string `json:"resetToken"`
	}
	if err := decodeData(body, &out); err != nil {
		return "", err
	}
	return out.ResetToken, nil
}

func (c *RestyClient) ForgotPinReset(ctx context.Context, resetToken, newPin string) error {
	_, err := c.do(ctx, http.MethodPost, "/pin/forgot/reset",
		map[string]string{"resetToken": resetToken, "newPin": newPin}, true)
	return err
}
