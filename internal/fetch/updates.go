package fetch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/blackwell-systems/crxledger/internal/config"
)

// xssiGuard prefixes update service answers.
const xssiGuard = ")]}'\n"

type updateApp struct {
	AppID       string   `json:"appid"`
	UpdateCheck struct{} `json:"updatecheck"`
}

type updateRequest struct {
	Request struct {
		AcceptFormat string      `json:"acceptformat"`
		App          []updateApp `json:"app"`
		ProdVersion  string      `json:"prodversion"`
		Protocol     string      `json:"protocol"`
	} `json:"request"`
}

// SplitIDs splits a comma-separated list of extension ids, dropping blanks.
func SplitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// CheckUpdates asks the update service for the latest release of each
// extension and returns its answer as undecoded JSON.
func (c *Client) CheckUpdates(cdn config.CDNConfig, extensionIDs []string) (json.RawMessage, error) {
	var body updateRequest
	body.Request.AcceptFormat = cdn.AcceptFormat
	body.Request.ProdVersion = cdn.ProdVersion
	body.Request.Protocol = "3.1"
	body.Request.App = []updateApp{}
	for _, id := range extensionIDs {
		body.Request.App = append(body.Request.App, updateApp{AppID: id})
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(http.MethodPost, cdn.UpdateURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte(xssiGuard))
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %.200s", ErrMalformedResponse, data)
	}
	return json.RawMessage(data), nil
}
