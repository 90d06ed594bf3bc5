// Package solis talks to the SolisCloud monitoring API and decodes its
// payloads into telemetry samples and metered totals.
package solis

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://www.soliscloud.com:13333"
	contentType    = "application/json"

	EndpointInverterDetail = "/v1/api/inverterDetail"
	EndpointInverterDay    = "/v1/api/inverterDay"
	EndpointInverterMonth  = "/v1/api/inverterMonth"
	EndpointInverterYear   = "/v1/api/inverterYear"
	EndpointInverterList   = "/v1/api/inverterList"
)

var (
	ErrNoCredentials = fmt.Errorf("no solis api credentials")
	ErrHTTP          = fmt.Errorf("solis http error")
	ErrAPI           = fmt.Errorf("solis api error")
)

type Client struct {
	baseURL    string
	apiID      string
	apiSecret  string
	httpClient *http.Client
	now        func() time.Time
}

// Initialize a new SolisCloud client.
func NewClient(baseURL, apiID, apiSecret string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiID:      apiID,
		apiSecret:  apiSecret,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

// ContentMD5 is the base64 MD5 digest of the body.
func ContentMD5(body []byte) string {
	sum := md5.Sum(body)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Sign builds the Authorization header value for a POST.
func Sign(apiID, apiSecret, contentMD5, contentType, date, resource string) string {
	mac := hmac.New(sha1.New, []byte(apiSecret))
	mac.Write([]byte("POST\n" + contentMD5 + "\n" + contentType + "\n" + date + "\n" + resource))
	return "API " + apiID + ":" + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Call posts a signed request and decodes the envelope's data into out.
func (c *Client) Call(ctx context.Context, endpoint string, body any, out any) error {
	if c.apiID == "" || c.apiSecret == "" {
		return ErrNoCredentials
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	digest := ContentMD5(payload)
	date := c.now().UTC().Format(http.TimeFormat)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-MD5", digest)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Date", date)
	req.Header.Set("Authorization", Sign(c.apiID, c.apiSecret, digest, contentType, date, endpoint))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s %s", ErrHTTP, resp.Status, strings.TrimSpace(string(raw)))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if !env.Success && env.Code != "0" {
		return fmt.Errorf("%w: %s - %s", ErrAPI, env.Code, env.Msg)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(env.Data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s data: %w", endpoint, err)
	}
	return nil
}

// InverterDetail returns the detail object with the cumulative counters.
func (c *Client) InverterDetail(ctx context.Context, id, sn string) (Entry, error) {
	var out Entry
	err := c.Call(ctx, EndpointInverterDetail, map[string]string{"id": id, "sn": sn}, &out)
	return out, err
}

// InverterDay returns the 5 minute entries of a day (yyyy-MM-dd).
func (c *Client) InverterDay(ctx context.Context, id, sn, day string, timeZone int) ([]Entry, error) {
	var out []Entry
	err := c.Call(ctx, EndpointInverterDay, map[string]any{
		"id":       id,
		"sn":       sn,
		"money":    "",
		"time":     day,
		"timeZone": timeZone,
	}, &out)
	return out, err
}

// InverterMonth returns the per-day entries of a month (yyyy-MM).
func (c *Client) InverterMonth(ctx context.Context, id, sn, month string) ([]Entry, error) {
	var out []Entry
	err := c.Call(ctx, EndpointInverterMonth, map[string]string{
		"id":    id,
		"sn":    sn,
		"money": "",
		"month": month,
	}, &out)
	return out, err
}

// InverterYear returns the per-month entries of a year (yyyy).
func (c *Client) InverterYear(ctx context.Context, id, sn, year string) ([]Entry, error) {
	var out []Entry
	err := c.Call(ctx, EndpointInverterYear, map[string]string{
		"id":    id,
		"sn":    sn,
		"money": "",
		"year":  year,
	}, &out)
	return out, err
}

// InverterList returns the inverters visible to the account.
func (c *Client) InverterList(ctx context.Context, page, size int) ([]Entry, error) {
	var out pagedRecords
	err := c.Call(ctx, EndpointInverterList, map[string]int{"pageNo": page, "pageSize": size}, &out)
	if len(out.Page.Records) > 0 {
		return out.Page.Records, err
	}
	return out.Records, err
}
