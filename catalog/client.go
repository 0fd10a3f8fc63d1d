/*
Copyright 2025 The QueryComplete Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package catalog

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-resty/resty/v2"
)

// Client implements Catalog over the backend's HTTP metadata API.
type Client struct {
	http *resty.Client
}

// NewClient builds a Client against address, authenticating every
// request with the api/app key pair.
func NewClient(address, apiKey, appKey string) *Client {
	c := resty.New().
		SetBaseURL(address).
		SetHeader("Accept", "application/json").
		SetHeader("X-Api-Key", apiKey).
		SetHeader("X-App-Key", appKey)
	return &Client{http: c}
}

var _ Catalog = &Client{}

type listResponse struct {
	Metrics []string `json:"metrics,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Values  []string `json:"values,omitempty"`
	Facets  []string `json:"facets,omitempty"`
}

func (c *Client) MetricNames(ctx context.Context) ([]string, error) {
	out, err := c.getList(ctx, "/api/v1/metrics", nil)
	return out.Metrics, err
}

func (c *Client) MetricTags(ctx context.Context, metric string) ([]string, error) {
	path := fmt.Sprintf("/api/v1/metrics/%s/tags", url.PathEscape(metric))
	out, err := c.getList(ctx, path, nil)
	return out.Tags, err
}

func (c *Client) TagValues(ctx context.Context, metric, key string) ([]string, error) {
	params := map[string]string{"key": key}
	if metric != "" {
		params["metric"] = metric
	}
	out, err := c.getList(ctx, "/api/v1/tags/values", params)
	return out.Values, err
}

func (c *Client) LogsServices(ctx context.Context) ([]string, error) {
	return c.facetValues(ctx, "service")
}

func (c *Client) LogsSources(ctx context.Context) ([]string, error) {
	return c.facetValues(ctx, "source")
}

func (c *Client) LogsLevels(ctx context.Context) ([]string, error) {
	return c.facetValues(ctx, "status")
}

func (c *Client) LogsFields(ctx context.Context) ([]string, error) {
	out, err := c.getList(ctx, "/api/v2/logs/facets", nil)
	return out.Facets, err
}

func (c *Client) FieldValues(ctx context.Context, field string) ([]string, error) {
	return c.facetValues(ctx, field)
}

func (c *Client) facetValues(ctx context.Context, facet string) ([]string, error) {
	path := fmt.Sprintf("/api/v2/logs/facets/%s/values", url.PathEscape(facet))
	out, err := c.getList(ctx, path, nil)
	return out.Values, err
}

func (c *Client) getList(ctx context.Context, path string, params map[string]string) (listResponse, error) {
	var out listResponse
	req := c.http.R().SetContext(ctx).SetResult(&out)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}
	resp, err := req.Get(path)
	if err != nil {
		return listResponse{}, classifyErr(path, err)
	}
	if resp.IsError() {
		return listResponse{}, classifyStatus(path, resp.StatusCode())
	}
	return out, nil
}

func (c *Client) Complete(ctx context.Context, in CompleteRequest) (CompleteResponse, error) {
	var out CompleteResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(in).
		SetResult(&out).
		Post("/api/v1/complete")
	if err != nil {
		return CompleteResponse{}, classifyErr("/api/v1/complete", err)
	}
	if resp.IsError() {
		return CompleteResponse{}, classifyStatus("/api/v1/complete", resp.StatusCode())
	}
	return out, nil
}
