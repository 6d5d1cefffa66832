package models

import (
	"encoding/json"
	"fmt"
	"io"
)

// ZScoreResponse is the success document. ZScores and Dates are never nil so they
// encode as {} and [] rather than null.
type ZScoreResponse struct {
	ZScores map[string][]float64 `json:"zscores"`
	Dates   []string             `json:"dates"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewZScoreResponse() *ZScoreResponse {
	return &ZScoreResponse{
		ZScores: make(map[string][]float64),
		Dates:   make([]string, 0),
	}
}

// WriteZScoreResponse encodes res as a single line. Map keys come out sorted,
// repeated runs over the same prices are byte identical.
func WriteZScoreResponse(w io.Writer, res *ZScoreResponse) error {
	if res == nil {
		res = NewZScoreResponse()
	}
	if res.ZScores == nil {
		res.ZScores = make(map[string][]float64)
	}
	if res.Dates == nil {
		res.Dates = make([]string, 0)
	}

	if err := json.NewEncoder(w).Encode(res); err != nil {
		return fmt.Errorf("error writing zscore response: %w", err)
	}
	return nil
}

func WriteError(w io.Writer, message string) error {
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		return fmt.Errorf("error writing error response: %w", err)
	}
	return nil
}
