// Package audit records key cache activity as JSON Lines.
//
// When enabled, every sign or decrypt run appends one line to
// <key cache dir>/audit.jsonl noting whether the key pair was generated or
// loaded and its fingerprint. The log never contains payloads or key
// material.
//
//	{"ts":"2026-01-02T03:04:05.000000Z","id":"…","op":"sign","cache":"/keys/jsonsig","key_event":"generated","fingerprint":"SHA256:…"}
package audit
