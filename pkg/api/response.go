package api

import "fmt"

// DetailedResponse is the terminal outcome of an HTML console command.
type DetailedResponse struct {
	Success bool   `json:"success"`
	Message string `json:"msg"`
	// Duration is in milliseconds, -1 when unknown or unsuccessful.
	Duration       int64    `json:"duration"`
	ProgressErrors []string `json:"progressErrors"`
	StackTrace     []string `json:"stackTrace"`
}

// HasErrors reports a failure or any error reported while progressing.
func (r *DetailedResponse) HasErrors() bool {
	return !r.Success || len(r.ProgressErrors) > 0
}

func (r *DetailedResponse) String() string {
	return fmt.Sprintf("{success:%t, msg:%q, duration:%d, hasErrors:%t}",
		r.Success, r.Message, r.Duration, len(r.ProgressErrors) > 0)
}

// SimpleResponse is the JSON reply of the exec service.
type SimpleResponse struct {
	Success bool   `json:"success"`
	Message string `json:"msg"`
	Path    string `json:"path"`
}

func (r *SimpleResponse) String() string {
	return fmt.Sprintf("{success:%t, msg:%q, path:%q}", r.Success, r.Message, r.Path)
}

// ListResult is one package entry of a list reply.
type ListResult struct {
	PackID      PackID `json:"packId"`
	HasSnapshot bool   `json:"hasSnapshot"`
	NeedsRewrap bool   `json:"needsRewrap"`
}

// ListResponse is the reply of the list endpoint.
type ListResponse struct {
	Results []ListResult `json:"results"`
	Total   int          `json:"total"`
}

// DownloadResponse describes a package file written to local disk.
type DownloadResponse struct {
	Length  int64  `json:"length"`
	Content string `json:"content"`
}
