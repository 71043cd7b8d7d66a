package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestPionLogQuietScope(t *testing.T) {
	var buf bytes.Buffer
	f := NewPionLogger(NewWriter(&buf), int(DebugLevel), "ice")

	ice := f.NewLogger("ice")
	ice.Infof("gathered %v candidates", 3)
	if buf.Len() != 0 {
		t.Errorf("quiet scope logged info: %v", buf.String())
	}
	ice.Warn("no candidates")
	if out := buf.String(); !strings.Contains(out, `"mod":"ice"`) || !strings.Contains(out, "no candidates") {
		t.Errorf("wrong warn output: %v", out)
	}
}

func TestPionLogLevel(t *testing.T) {
	var buf bytes.Buffer
	f := NewPionLogger(NewWriter(&buf), int(ErrorLevel))

	pc := f.NewLogger("pc")
	pc.Warn("skip")
	if buf.Len() != 0 {
		t.Errorf("warn is logged at the error level: %v", buf.String())
	}
	pc.Errorf("closed %v", "pc")
	if out := buf.String(); !strings.Contains(out, `"mod":"pc"`) || !strings.Contains(out, "closed pc") {
		t.Errorf("wrong error output: %v", out)
	}
}
