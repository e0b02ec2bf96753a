package website

import (
	"encoding/json"
	"net/http"
)

// Request bodies bigger than this get cut off mid-decode. Thread bodies cap
// out at a fifth of this, so nothing legitimate comes close.
const maxRequestBodyBytes = 1 * 1024 * 1024

// jsonOK writes the success envelope, merging the given fields in next to
// "ok" at the top level of the response object.
func jsonOK(c *RequestContext, fields map[string]any) ResponseData {
	return jsonStatus(c, http.StatusOK, fields)
}

func jsonStatus(c *RequestContext, status int, fields map[string]any) ResponseData {
	payload := map[string]any{"ok": true}
	for k, v := range fields {
		payload[k] = v
	}

	res := ResponseData{StatusCode: status}
	res.WriteJson(payload, c.Perf)
	return res
}

// decodeBody decodes the request body into dst. Unknown fields and trailing
// garbage are errors, so a typo in a field name fails loudly instead of
// silently doing nothing.
func decodeBody(c *RequestContext, dst any) error {
	body := http.MaxBytesReader(c.Res, c.Req.Body, maxRequestBodyBytes)

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return NewSafeError(err, "the request body must be a valid JSON object: %v", err)
	}
	if dec.More() {
		return NewSafeError(nil, "the request body must contain a single JSON object")
	}

	return nil
}
