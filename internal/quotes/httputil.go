package quotes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// jwget performs an HTTP GET request and decodes the JSON response body into a generic
// document. Numbers are kept as json.Number so prices never go through float64.
func jwget(ctx context.Context, client *http.Client, addr string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return doc, nil
}

// lookup evaluates a JSONPath expression against doc.
func lookup(doc any, path string) (any, error) {
	val, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, err
	}
	// jsonpath returns a list for wildcard and slice expressions, keep the first answer
	if list, ok := val.([]any); ok {
		if len(list) == 0 {
			return nil, fmt.Errorf("no value at %s", path)
		}
		val = list[0]
	}
	if val == nil {
		return nil, fmt.Errorf("null value at %s", path)
	}
	return val, nil
}

// lookupDecimal reads a number at path. Some upstreams send prices as strings.
func lookupDecimal(doc any, path string) (decimal.Decimal, error) {
	val, err := lookup(doc, path)
	if err != nil {
		return decimal.Zero, err
	}
	switch v := val.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Zero, fmt.Errorf("value at %s is not a number: %v", path, val)
	}
}

// lookupString reads a non-empty string at path
func lookupString(doc any, path string) (string, error) {
	val, err := lookup(doc, path)
	if err != nil {
		return "", err
	}
	s, ok := val.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("value at %s is not a string: %v", path, val)
	}
	return s, nil
}

var errNonPositive = errors.New("non-positive price")

func positive(d decimal.Decimal) (decimal.Decimal, error) {
	if !d.IsPositive() {
		return decimal.Zero, errNonPositive
	}
	return d, nil
}
