package response

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/granite-tools/packmgr/internal/errx"
	"github.com/granite-tools/packmgr/pkg/api"
)

type simpleJSON struct {
	Success bool   `json:"success"`
	Message string `json:"msg"`
	Path    string `json:"path"`
}

type listJSON struct {
	Results *[]listResultJSON `json:"results"`
	Total   *int              `json:"total"`
}

type listResultJSON struct {
	Group       string `json:"group"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	HasSnapshot bool   `json:"hasSnapshot"`
	NeedsRewrap bool   `json:"needsRewrap"`
}

// ParseSimple reads the {success, msg, path} reply of the exec service.
// Missing keys read as false or empty.
func ParseSimple(statusCode int, statusText string, body io.Reader, charset string) (*api.SimpleResponse, error) {
	if err := CheckStatus(statusCode, statusText); err != nil {
		return nil, err
	}
	r, err := decodeCharset(body, charset)
	if err != nil {
		return nil, err
	}

	var in simpleJSON
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, errx.Wrap(ErrDecodeJSON, err)
	}
	return &api.SimpleResponse{Success: in.Success, Message: in.Message, Path: in.Path}, nil
}

// ParseList reads a list reply. Only 200 is accepted, and both results and
// total are required.
func ParseList(statusCode int, statusText string, body io.Reader, charset string) (*api.ListResponse, error) {
	if statusCode != http.StatusOK {
		return nil, errx.With(api.ErrUnexpectedStatus, ": %d %s", statusCode, statusText)
	}
	r, err := decodeCharset(body, charset)
	if err != nil {
		return nil, err
	}

	var in listJSON
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, errx.Wrap(ErrDecodeJSON, err)
	}
	if in.Results == nil || in.Total == nil {
		return nil, errx.With(ErrDecodeJSON, ": results and total are required")
	}

	out := &api.ListResponse{Results: make([]api.ListResult, 0, len(*in.Results)), Total: *in.Total}
	for i, res := range *in.Results {
		id, err := api.NewPackID(res.Group, res.Name, res.Version)
		if err != nil {
			return nil, errx.With(ErrInvalidListResult, " %d: %w", i, err)
		}
		out.Results = append(out.Results, api.ListResult{
			PackID:      *id,
			HasSnapshot: res.HasSnapshot,
			NeedsRewrap: res.NeedsRewrap,
		})
	}
	return out, nil
}
