package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/appdata/tables-client/pkg/tables"
	"github.com/appdata/tables-client/pkg/tables/errors"
	"github.com/appdata/tables-client/pkg/tables/etag"
	"github.com/appdata/tables-client/pkg/tables/identifiers"
	"github.com/appdata/tables-client/pkg/tables/sysprops"
	"github.com/appdata/tables-client/pkg/tables/types"
	"github.com/appdata/tables-client/pkg/tables/types/items"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type TableClient interface {
	Insert(ctx context.Context, item types.Item, parameters ...tables.Parameter) (types.Item, error)
	Update(ctx context.Context, item types.Item, parameters ...tables.Parameter) (types.Item, error)
	Delete(ctx context.Context, elementOrID any, parameters ...tables.Parameter) (*tables.DeleteItemResult, error)
	Lookup(ctx context.Context, elementOrID any, parameters ...tables.Parameter) (types.Item, error)
}

func Debug(enabled string) func(*tblClient) {
	return func(c *tblClient) {
		c.debug = (enabled == "true")
	}
}

func ApplicationKey(key string) func(*tblClient) {
	return func(c *tblClient) {
		c.applicationKey = key
	}
}

func AuthToken(token string) func(*tblClient) {
	return func(c *tblClient) {
		c.authToken = token
	}
}

// SystemProperties configures the system properties to request with every
// operation on this table. A caller supplied __systemproperties parameter
// overrides the configured set on a per call basis.
func SystemProperties(properties ...sysprops.Property) func(*tblClient) {
	return func(c *tblClient) {
		c.systemProperties = sysprops.NewSet(properties...)
	}
}

// SystemPropertySet configures an already resolved property set, e.g. one
// loaded from configuration.
func SystemPropertySet(set sysprops.Set) func(*tblClient) {
	return func(c *tblClient) {
		c.systemProperties = set
	}
}

func NewTableClient(serviceURL, tableName string, options ...func(*tblClient)) (TableClient, error) {
	if strings.TrimSpace(tableName) == "" {
		return nil, fmt.Errorf("a table name must not be blank")
	}

	c := &tblClient{
		serviceURL:       strings.TrimSuffix(serviceURL, "/"),
		tableName:        tableName,
		systemProperties: sysprops.Set{},
	}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

const (
	TraceAttributeTableName string = "table-name"
	TraceAttributeItemID    string = "item-id"
)

var tracer = otel.Tracer("tables-client")

type tblClient struct {
	serviceURL string
	tableName  string

	systemProperties sysprops.Set
	applicationKey   string
	authToken        string
	debug            bool
}

func (c tblClient) Insert(ctx context.Context, item types.Item, parameters ...tables.Parameter) (types.Item, error) {
	var err error

	ctx, span := tracer.Start(ctx, "insert-item",
		trace.WithAttributes(attribute.String(TraceAttributeTableName, c.tableName)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if item == nil {
		err = errors.NewMissingIDError("an item cannot be nil")
		return nil, err
	}

	ident, found, err := identifiers.Canonicalize(item)
	if err != nil {
		return nil, err
	}

	var payload types.Item = item

	if found {
		if err = ident.Validate(); err != nil {
			return nil, err
		}

		if ident.IsNumeric() && !ident.IsDefault() {
			err = errors.NewInvalidNumericIDError("an item to insert must not carry a concrete numeric id")
			return nil, err
		}

		// default sentinel ids are omitted from the wire payload so the
		// service assigns one; the caller's item is left untouched
		if ident.IsDefault() {
			payload = item.Clone()
			payload.Remove("id")
		}

		span.SetAttributes(attribute.String(TraceAttributeItemID, ident.String()))
	}

	payload = sysprops.Strip(payload)

	body, err := payload.MarshalJSON()
	if err != nil {
		err = fmt.Errorf("failed to marshal item: %s (%w)", err.Error(), errors.ErrEncoding)
		return nil, err
	}

	response, responseBody, err := c.callService(
		ctx, http.MethodPost, c.tableURL(parameters), bytes.NewBuffer(body), nil,
	)

	if err != nil {
		return nil, err
	}

	if response.StatusCode >= http.StatusBadRequest {
		err = errors.NewErrorFromServiceResponse(response.StatusCode, response.Header.Get("Content-Type"), responseBody)
		return nil, err
	}

	if response.StatusCode != http.StatusCreated && response.StatusCode != http.StatusOK {
		err = fmt.Errorf("unexpected response code %d (%w)", response.StatusCode, errors.ErrInternal)
		return nil, err
	}

	inserted, err := items.NewFromJSON(responseBody)
	if err != nil {
		err = fmt.Errorf("failed to parse response item: %s (%w)", err.Error(), errors.ErrBadResponse)
		return nil, err
	}

	return items.Patch(item, inserted), nil
}

func (c tblClient) Update(ctx context.Context, item types.Item, parameters ...tables.Parameter) (types.Item, error) {
	var err error

	ctx, span := tracer.Start(ctx, "update-item",
		trace.WithAttributes(attribute.String(TraceAttributeTableName, c.tableName)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if item == nil {
		err = errors.NewMissingIDError("an item cannot be nil")
		return nil, err
	}

	ident, err := identifiers.FromItem(item)
	if err != nil {
		return nil, err
	}

	if err = ident.ValidateConcrete(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String(TraceAttributeItemID, ident.String()))

	headers := map[string][]string{}

	if version, ok := sysprops.VersionOf(item); ok {
		headers["If-Match"] = []string{etag.FromValue(version)}
	}

	payload := sysprops.Strip(item)

	body, err := payload.MarshalJSON()
	if err != nil {
		err = fmt.Errorf("failed to marshal item: %s (%w)", err.Error(), errors.ErrEncoding)
		return nil, err
	}

	response, responseBody, err := c.callService(
		ctx, http.MethodPatch, c.itemURL(ident, parameters), bytes.NewBuffer(body), headers,
	)

	if err != nil {
		return nil, err
	}

	if response.StatusCode >= http.StatusBadRequest {
		err = errors.NewErrorFromServiceResponse(response.StatusCode, response.Header.Get("Content-Type"), responseBody)
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		err = fmt.Errorf("unexpected response code %d (%w)", response.StatusCode, errors.ErrInternal)
		return nil, err
	}

	updated, err := items.NewFromJSON(responseBody)
	if err != nil {
		err = fmt.Errorf("failed to parse response item: %s (%w)", err.Error(), errors.ErrBadResponse)
		return nil, err
	}

	patched := items.Patch(item, updated)

	if tag := response.Header.Get("ETag"); tag != "" {
		patched.SetValue(sysprops.VersionPropertyName, etag.ToValue(tag))
	}

	return patched, nil
}

func (c tblClient) Delete(ctx context.Context, elementOrID any, parameters ...tables.Parameter) (*tables.DeleteItemResult, error) {
	var err error

	ctx, span := tracer.Start(ctx, "delete-item",
		trace.WithAttributes(attribute.String(TraceAttributeTableName, c.tableName)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	ident, err := identifiers.Normalize(elementOrID)
	if err != nil {
		return nil, err
	}

	if err = ident.ValidateConcrete(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String(TraceAttributeItemID, ident.String()))

	response, responseBody, err := c.callService(
		ctx, http.MethodDelete, c.itemURL(ident, parameters), nil, nil,
	)

	if err != nil {
		return nil, err
	}

	if response.StatusCode >= http.StatusBadRequest {
		err = errors.NewErrorFromServiceResponse(response.StatusCode, response.Header.Get("Content-Type"), responseBody)
		return nil, err
	}

	if response.StatusCode != http.StatusOK && response.StatusCode != http.StatusNoContent {
		err = fmt.Errorf("unexpected response code %d (%w)", response.StatusCode, errors.ErrInternal)
		return nil, err
	}

	return tables.NewDeleteItemResult(responseBody), nil
}

func (c tblClient) Lookup(ctx context.Context, elementOrID any, parameters ...tables.Parameter) (types.Item, error) {
	var err error

	ctx, span := tracer.Start(ctx, "lookup-item",
		trace.WithAttributes(attribute.String(TraceAttributeTableName, c.tableName)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	ident, err := identifiers.Normalize(elementOrID)
	if err != nil {
		return nil, err
	}

	if err = ident.ValidateConcrete(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String(TraceAttributeItemID, ident.String()))

	response, responseBody, err := c.callService(
		ctx, http.MethodGet, c.itemURL(ident, parameters), nil, nil,
	)

	if err != nil {
		return nil, err
	}

	if response.StatusCode >= http.StatusBadRequest {
		err = errors.NewErrorFromServiceResponse(response.StatusCode, response.Header.Get("Content-Type"), responseBody)
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		err = fmt.Errorf("unexpected response code %d (%w)", response.StatusCode, errors.ErrInternal)
		return nil, err
	}

	found, err := items.NewFromJSON(responseBody)
	if err != nil {
		err = fmt.Errorf("failed to parse response item: %s (%w)", err.Error(), errors.ErrBadResponse)
		return nil, err
	}

	return found, nil
}

func (c tblClient) tableURL(parameters []tables.Parameter) string {
	return c.serviceURL + "/tables/" + url.QueryEscape(c.tableName) + c.encodeQuery(parameters)
}

// itemURL appends the id as the last path segment: string ids verbatim,
// numeric ids in decimal.
func (c tblClient) itemURL(ident identifiers.Identifier, parameters []tables.Parameter) string {
	return c.serviceURL + "/tables/" + url.QueryEscape(c.tableName) + "/" + ident.String() + c.encodeQuery(parameters)
}

func (c tblClient) encodeQuery(parameters []tables.Parameter) string {
	merged := c.systemProperties.MergeIntoParameters(parameters)

	if len(merged) == 0 {
		return ""
	}

	pairs := make([]string, 0, len(merged))

	for _, p := range merged {
		pairs = append(pairs, p.Name+"="+url.QueryEscape(p.Value))
	}

	return "?" + strings.Join(pairs, "&")
}

func (c tblClient) callService(ctx context.Context, method, endpoint string, body io.Reader, headers map[string][]string) (*http.Response, []byte, error) {
	httpClient := http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %s (%w)", err.Error(), errors.ErrEncoding)
	}

	req.Header.Add("Accept", "application/json")

	if body != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	if c.applicationKey != "" {
		req.Header.Add("X-Application-Key", c.applicationKey)
	}

	if c.authToken != "" {
		req.Header.Add("X-Auth-Token", c.authToken)
	}

	for header, headerValue := range headers {
		for _, val := range headerValue {
			req.Header.Add(header, val)
		}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send request: %s (%w)", err.Error(), errors.ErrRequest)
	}

	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %s (%w)", err.Error(), errors.ErrBadResponse)
	}

	if c.debug && resp.StatusCode >= http.StatusBadRequest {
		if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusNotFound {
			reqbytes, _ := httputil.DumpRequest(req, false)
			respbytes, _ := httputil.DumpResponse(resp, false)

			log := logging.GetFromContext(ctx)
			log.Error("request failed", slog.String("request", string(reqbytes)), slog.String("response", string(respbytes)))
		}
	}

	return resp, respBody, nil
}
