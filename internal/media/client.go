package media

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	"github.com/openshelf/catalogd/config"
	"github.com/pkg/errors"
)

// ErrCredentials marks a rejected API key/secret. Callers must not leak the
// upstream response body for this case.
var ErrCredentials = errors.New("media host rejected credentials")

// Client talks the signed upload protocol of the hosted image service.
type Client struct {
	cfg config.MediaConfig
}

func NewClient(cfg config.MediaConfig) *Client {
	return &Client{cfg: cfg}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

type destroyResponse struct {
	Result string `json:"result"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) endpoint(action string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.CloudName, action)
}

// sign produces the request signature: the sorted key=value pairs joined
// with '&', concatenated with the API secret and hashed with SHA-1.
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(params[k])
	}
	sb.WriteString(c.cfg.APISecret)

	sum := sha1.Sum([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// Upload pushes raw image bytes under the configured folder and returns the
// hosted URL plus the opaque identifier for later deletion.
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig := c.sign(map[string]string{
		"folder":    c.cfg.Folder,
		"timestamp": ts,
	})

	var resp uploadResponse
	var code int
	err := gout.POST(c.endpoint("image/upload")).
		WithContext(ctx).
		SetForm(gout.H{
			"file":      gout.FormType{FileName: filename, File: gout.FormMem(data)},
			"api_key":   c.cfg.APIKey,
			"timestamp": ts,
			"folder":    c.cfg.Folder,
			"signature": sig,
		}).
		Code(&code).
		BindJSON(&resp).
		Do()
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return nil, ErrCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "media upload request failed")
	}
	if code >= 400 || resp.Error.Message != "" {
		return nil, errors.Errorf("media upload rejected (%d): %s", code, resp.Error.Message)
	}
	if resp.SecureURL == "" || resp.PublicID == "" {
		return nil, errors.New("media upload returned an incomplete result")
	}
	return &UploadResult{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

// Destroy deletes a previously uploaded image by its opaque identifier.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig := c.sign(map[string]string{
		"public_id": publicID,
		"timestamp": ts,
	})

	var resp destroyResponse
	var code int
	err := gout.POST(c.endpoint("image/destroy")).
		WithContext(ctx).
		SetWWWForm(gout.H{
			"public_id": publicID,
			"api_key":   c.cfg.APIKey,
			"timestamp": ts,
			"signature": sig,
		}).
		Code(&code).
		BindJSON(&resp).
		Do()
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return ErrCredentials
	}
	if err != nil {
		return errors.Wrap(err, "media destroy request failed")
	}
	if code >= 400 || resp.Error.Message != "" {
		return errors.Errorf("media destroy rejected (%d): %s", code, resp.Error.Message)
	}
	if resp.Result != "ok" && resp.Result != "not found" {
		return errors.Errorf("media destroy returned %q", resp.Result)
	}
	return nil
}

// Ping verifies connectivity and credentials against the media host.
func (c *Client) Ping(ctx context.Context) error {
	auth := base64.StdEncoding.EncodeToString([]byte(c.cfg.APIKey + ":" + c.cfg.APISecret))

	var code int
	err := gout.GET(c.endpoint("ping")).
		WithContext(ctx).
		SetHeader(gout.H{"Authorization": "Basic " + auth}).
		Code(&code).
		Do()
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return ErrCredentials
	}
	if err != nil {
		return errors.Wrap(err, "media ping failed")
	}
	if code >= 400 {
		return errors.Errorf("media ping returned status %d", code)
	}
	return nil
}

var _ Store = (*Client)(nil)
