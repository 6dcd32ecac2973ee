package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ServerEnvelope is the raw {code, msg, data} wrapper every endpoint returns
type ServerEnvelope struct {
	Code FlexInt         `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// Envelope is the adapted client-side result: code 200 maps to success
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// DecodeEnvelope adapts a raw response body. Data decoding failures turn the
// envelope into a failure rather than an error so callers have one path.
func DecodeEnvelope[T any](body []byte) (Envelope[T], error) {
	var raw ServerEnvelope
	if err := json.Unmarshal(body, &raw); err != nil {
		return Envelope[T]{}, fmt.Errorf("failed to decode envelope: %w", err)
	}

	env := Envelope[T]{
		Success: raw.Code == 200,
		Message: raw.Msg,
	}
	if !env.Success {
		return env, nil
	}

	data := unwrapNested(raw.Data)
	if isNull(data) {
		return env, nil
	}

	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		env.Success = false
		env.Message = fmt.Sprintf("malformed data: %v", err)
		return env, nil
	}
	env.Data = &payload
	return env, nil
}

// DecodeSummary is the single normalization step for the summary endpoint
func DecodeSummary(body []byte) (Envelope[SchemeSummary], error) {
	env, err := DecodeEnvelope[SchemeSummaryData](body)
	if err != nil {
		return Envelope[SchemeSummary]{}, err
	}

	out := Envelope[SchemeSummary]{Success: env.Success, Message: env.Message}
	if env.Data != nil {
		summary := env.Data.Normalize()
		out.Data = &summary
	}
	return out, nil
}

// DecodePeriod is the single normalization step for the period endpoint
func DecodePeriod(body []byte) (Envelope[SchemePeriod], error) {
	env, err := DecodeEnvelope[SchemePeriodData](body)
	if err != nil {
		return Envelope[SchemePeriod]{}, err
	}

	out := Envelope[SchemePeriod]{Success: env.Success, Message: env.Message}
	if env.Data != nil {
		period := env.Data.Normalize()
		out.Data = &period
	}
	return out, nil
}

// unwrapNested strips one extra {code, msg, data} layer some gateways add.
func unwrapNested(data json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return trimmed
	}

	inner, hasData := fields["data"]
	_, hasCode := fields["code"]
	_, hasMsg := fields["msg"]
	if hasData && (hasCode || hasMsg) {
		return bytes.TrimSpace(inner)
	}
	return trimmed
}

func isNull(data json.RawMessage) bool {
	return len(data) == 0 || bytes.Equal(data, []byte("null"))
}
