package wire

import (
	"encoding/json"

	"fraktile/internal/model"
)

// EncodeEnvelope wraps a payload in the single-key variant envelope the
// wire protocol uses for every message type: {"VariantName": payload}.
func EncodeEnvelope(variant string, payload any) ([]byte, error) {
	return json.Marshal(map[string]any{variant: payload})
}

// hasKey reports whether the JSON object in data has the given top-level
// key, without fully decoding the value under it.
func hasKey(data []byte, key string) (json.RawMessage, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}
	body, ok := raw[key]
	return body, ok
}

// DecodeFragmentResult decodes a {"FragmentResult": {...}} envelope. The
// second return value is false if the header has no FragmentResult key.
func DecodeFragmentResult(header []byte) (model.FragmentResult, bool, error) {
	body, ok := hasKey(header, "FragmentResult")
	if !ok {
		return model.FragmentResult{}, false, nil
	}
	var result model.FragmentResult
	if err := json.Unmarshal(body, &result); err != nil {
		return model.FragmentResult{}, true, protocolErrorf("decoding FragmentResult: %v", err)
	}
	return result, true, nil
}

// DecodeFragmentRequest decodes a {"FragmentRequest": {...}} envelope. The
// second return value is false if the header has no FragmentRequest key.
func DecodeFragmentRequest(header []byte) (model.FragmentRequest, bool, error) {
	body, ok := hasKey(header, "FragmentRequest")
	if !ok {
		return model.FragmentRequest{}, false, nil
	}
	var req model.FragmentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return model.FragmentRequest{}, true, protocolErrorf("decoding FragmentRequest: %v", err)
	}
	return req, true, nil
}

// DecodeFragmentTask decodes a {"FragmentTask": {...}} envelope, used by
// the worker loop to read the server's reply to a FragmentRequest.
func DecodeFragmentTask(header []byte) (model.FragmentTask, error) {
	body, ok := hasKey(header, "FragmentTask")
	if !ok {
		return model.FragmentTask{}, protocolErrorf("header has no FragmentTask key")
	}
	var task model.FragmentTask
	if err := json.Unmarshal(body, &task); err != nil {
		return model.FragmentTask{}, protocolErrorf("decoding FragmentTask: %v", err)
	}
	return task, nil
}

// EncodeFragmentRequest wraps a FragmentRequest in its envelope.
func EncodeFragmentRequest(req model.FragmentRequest) ([]byte, error) {
	return EncodeEnvelope("FragmentRequest", req)
}

// EncodeFragmentTask wraps a FragmentTask in its envelope.
func EncodeFragmentTask(task model.FragmentTask) ([]byte, error) {
	return EncodeEnvelope("FragmentTask", task)
}

// EncodeFragmentResult wraps a FragmentResult in its envelope.
func EncodeFragmentResult(result model.FragmentResult) ([]byte, error) {
	return EncodeEnvelope("FragmentResult", result)
}
