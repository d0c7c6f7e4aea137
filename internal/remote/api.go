package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/pkg/httpclient"
)

// API calls the non-collection storefront endpoints.
type API struct {
	doer    httpclient.Doer
	baseURL string
}

// NewAPI creates a client for the catalog and auth endpoints under baseURL.
func NewAPI(doer httpclient.Doer, baseURL string) *API {
	return &API{doer: doer, baseURL: strings.TrimRight(baseURL, "/")}
}

// ProductQuery selects a page of products. Zero values use server defaults.
type ProductQuery struct {
	Featured *bool
	Page     int
	Limit    int
}

// Products lists a page of the catalog.
func (a *API) Products(ctx context.Context, q ProductQuery) (catalog.Page, error) {
	params := url.Values{}
	if q.Featured != nil {
		params.Set("featured", strconv.FormatBool(*q.Featured))
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	target := a.baseURL + "/api/products"
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var page catalog.Page
	if err := a.do(ctx, http.MethodGet, target, nil, &page); err != nil {
		return catalog.Page{}, fmt.Errorf("list products: %w", err)
	}
	return page, nil
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// Login signs in to the dashboard. The auth cookie lands in the transport's jar.
func (a *API) Login(ctx context.Context, email, password string, rememberMe bool) error {
	body := loginRequest{Email: email, Password: password, RememberMe: rememberMe}
	if err := a.do(ctx, http.MethodPost, a.baseURL+"/api/auth/login", body, nil); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

func (a *API) do(ctx context.Context, method, target string, body, dst any) error {
	req, err := newJSONRequest(ctx, method, target, body)
	if err != nil {
		return err
	}

	resp, err := a.doer.Do(ctx, req)
	if err != nil {
		var serverErr *httpclient.ServerError
		if errors.As(err, &serverErr) {
			return httpclient.ParseErrorBody(serverErr.Status, serverErr.Body, "storefront")
		}
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp, "storefront")
	}
	defer func() { _ = resp.Body.Close() }()

	if dst == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
