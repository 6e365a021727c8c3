package models

import (
	"net/http"

	"catalogue.onebusaway.org/internal/clock"
)

// ResponseModel is the envelope every API response is wrapped in.
type ResponseModel struct {
	Code        int         `json:"code"`
	CurrentTime int64       `json:"currentTime"`
	Data        interface{} `json:"data,omitempty"`
	Text        string      `json:"text"`
	Version     int         `json:"version"`
}

func ResponseCurrentTime(c clock.Clock) int64 {
	return c.NowUnixMilli()
}

func NewResponse(code int, data interface{}, text string, c clock.Clock) ResponseModel {
	return ResponseModel{
		Code:        code,
		CurrentTime: ResponseCurrentTime(c),
		Data:        data,
		Text:        text,
		Version:     2,
	}
}

func NewOKResponse(data interface{}, c clock.Clock) ResponseModel {
	return NewResponse(http.StatusOK, data, "OK", c)
}

// NewEntryResponse wraps a single entity together with its references.
func NewEntryResponse(entry interface{}, references ReferencesModel, c clock.Clock) ResponseModel {
	data := map[string]interface{}{
		"entry":      entry,
		"references": references,
	}
	return NewOKResponse(data, c)
}

// NewListResponse wraps a list of entities together with their references.
func NewListResponse(list interface{}, references ReferencesModel, limitExceeded bool, c clock.Clock) ResponseModel {
	data := map[string]interface{}{
		"limitExceeded": limitExceeded,
		"list":          list,
		"references":    references,
	}
	return NewOKResponse(data, c)
}
