package debuglog

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestIsOn(t *testing.T) {
	for value, want := range map[string]bool{"1": true, " 1 ": true, "": false, "0": false, "true": false} {
		if got := isOn(value); got != want {
			t.Fatalf("isOn(%q) = %v", value, got)
		}
	}
}

func TestPrintfHonoursSwitch(t *testing.T) {
	var buf bytes.Buffer
	prevOut, prevEnabled := log.Writer(), enabled
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		enabled = prevEnabled
	})

	enabled = false
	Printf("hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("printed while disabled: %q", buf.String())
	}
	enabled = true
	Printf("shown %d", 2)
	if !strings.Contains(buf.String(), "shown 2") {
		t.Fatalf("missing output: %q", buf.String())
	}
}
