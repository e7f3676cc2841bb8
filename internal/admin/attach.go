package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/netx"
)

// Attacher uploads a scanned prescription through a running MedTrack API:
// it logs in, asks for a presigned upload URL and PUTs the file there.
type Attacher struct {
	BaseURL string
	Client  *http.Client
}

type apiMessage struct {
	Message string `json:"message"`
}

// Login exchanges credentials for a session token.
func (a *Attacher) Login(ctx context.Context, identifier, password string) (string, error) {
	var res struct {
		Token string `json:"token"`
	}
	err := a.post(ctx, "/auth/login", "", map[string]string{
		"identifier": identifier,
		"password":   password,
	}, &res)
	if err != nil {
		return "", err
	}
	return res.Token, nil
}

// Attach uploads data as the scan of prescriptionID and returns its
// storage key.
func (a *Attacher) Attach(ctx context.Context, token, prescriptionID, contentType string, data []byte) (string, error) {
	var up struct {
		UploadURL string `json:"uploadUrl"`
		Key       string `json:"key"`
	}
	path := "/doctor/prescriptions/" + url.PathEscape(prescriptionID) + "/attachment"
	if err := a.post(ctx, path, token, nil, &up); err != nil {
		return "", err
	}

	if err := netx.UploadToPresignedURL(ctx, a.Client, up.UploadURL, contentType, data); err != nil {
		return "", err
	}
	return up.Key, nil
}

func (a *Attacher) post(ctx context.Context, path, token string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(a.BaseURL, "/")+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var m apiMessage
		_ = json.NewDecoder(resp.Body).Decode(&m)
		return fmt.Errorf("%s %s: %s: %s", http.MethodPost, path, resp.Status, m.Message)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
