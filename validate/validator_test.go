package validate

import (
	"reflect"
	"strings"
	"testing"
)

func TestValidatePartialBlocks(t *testing.T) {
	result := Validate(`Sure! Here is your JSON: {"CoreMetrics":{"confidence":0.9}}`)
	if !reflect.DeepEqual(result.BlocksPresent, []string{"CoreMetrics"}) {
		t.Errorf("blocks present = %v", result.BlocksPresent)
	}
	wantMissing := []string{"Dynamics", "Interactions", "KeyEvents", "Patterns", "Quality"}
	if !reflect.DeepEqual(result.BlocksMissing, wantMissing) {
		t.Errorf("blocks missing = %v, want %v", result.BlocksMissing, wantMissing)
	}
	core := result.Data["CoreMetrics"].(map[string]any)
	if core["confidence"] != 0.9 {
		t.Errorf("confidence lost: %v", core["confidence"])
	}
}

func TestValidateNoBraces(t *testing.T) {
	result := Validate("no json here at all")
	if len(result.BlocksPresent) != 0 {
		t.Errorf("blocks present = %v, want none", result.BlocksPresent)
	}
	if len(result.BlocksMissing) != len(CanonicalBlocks) {
		t.Errorf("all six blocks must be listed missing, got %v", result.BlocksMissing)
	}
	if len(result.Data) != 0 {
		t.Errorf("data must be empty, got %v", result.Data)
	}
	if result.ParseError == "" {
		t.Error("parse error must be recorded")
	}
}

func TestValidateLegacyNameRemap(t *testing.T) {
	result := Validate(`{
		"densityCoreMetrics": {"confidence": 0.8},
		"densityDynamics": {"confidence": 0.7},
		"Interactions": {"confidence": 0.6}
	}`)
	for _, block := range []string{"CoreMetrics", "Dynamics", "Interactions"} {
		found := false
		for _, p := range result.BlocksPresent {
			if p == block {
				found = true
			}
		}
		if !found {
			t.Errorf("block %s not present after remap: %v", block, result.BlocksPresent)
		}
	}
}

func TestValidateConfidenceNormalization(t *testing.T) {
	result := Validate(`{
		"CoreMetrics": {"confidence": 1.7},
		"Dynamics": {"confidence": -0.2},
		"Interactions": {"value": 1},
		"KeyEvents": {"confidence": "high"},
		"Patterns": {"confidence": 0.4},
		"Quality": {"confidence": 0}
	}`)
	checks := map[string]float64{
		"CoreMetrics":  1.0,
		"Dynamics":     0.0,
		"Interactions": 0.5,
		"KeyEvents":    0.5,
		"Patterns":     0.4,
		"Quality":      0.0,
	}
	for block, want := range checks {
		obj := result.Data[block].(map[string]any)
		if got := obj["confidence"].(float64); got != want {
			t.Errorf("%s confidence = %v, want %v", block, got, want)
		}
	}
	if result.Warnings != 4 {
		t.Errorf("warnings = %d, want 4", result.Warnings)
	}
}

func TestValidateNeverPanics(t *testing.T) {
	inputs := []string{
		"", "{", "}", "{{{", `{"a": "b"`, "\x00\x01", strings.Repeat("{}", 5000),
		`text {"CoreMetrics": {"confidence": 0.5}} trailing {broken`,
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Validate(%q) panicked: %v", in, r)
				}
			}()
			Validate(in)
		}()
	}
}

func TestExtractBalancedObjectPicksLargest(t *testing.T) {
	s := `small {"a":1} then {"CoreMetrics":{"confidence":0.5},"x":{"y":"}"}}`
	got := extractBalancedObject(s)
	if !strings.Contains(got, "CoreMetrics") {
		t.Errorf("did not pick largest object: %q", got)
	}
	// Braces inside strings must not break balancing
	if !strings.HasSuffix(got, "}") || strings.Contains(got, "small") {
		t.Errorf("extraction malformed: %q", got)
	}
}
