package capability

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type CapabilitySuite struct {
	suite.Suite
}

func detect(env map[string]string, interactive bool, goos string) Profile {
	return Detect(MapLookup(env), interactive, goos, DefaultPrefix)
}

func (suite *CapabilitySuite) TestNoColorWinsOverForce() {
	p := detect(map[string]string{"NO_COLOR": "1", "FORCE_COLOR": "1"}, true, "linux")
	suite.False(p.Color)

	p = detect(map[string]string{"TCONSOLE_NO_COLOR": "true", "TCONSOLE_FORCE_COLOR": "1"}, true, "linux")
	suite.False(p.Color)
}

func (suite *CapabilitySuite) TestDumbTerminalWinsOverForce() {
	for _, force := range []string{"FORCE_COLOR", "CLICOLOR_FORCE", "TCONSOLE_FORCE_COLOR"} {
		p := detect(map[string]string{"TERM": "dumb", force: "1"}, true, "linux")
		suite.False(p.Color, force)
	}
	suite.True(detect(map[string]string{"TERM": "xterm", "FORCE_COLOR": "1"}, false, "linux").Color)
}

func (suite *CapabilitySuite) TestForceColorOnPipe() {
	p := detect(map[string]string{"FORCE_COLOR": "1"}, false, "linux")
	suite.True(p.Color)

	p = detect(map[string]string{"FORCE_COLOR": "0"}, false, "linux")
	suite.False(p.Color)
}

func (suite *CapabilitySuite) TestColorDefaults() {
	suite.False(detect(nil, false, "linux").Color, "pipes default to no color")
	suite.True(detect(map[string]string{"TERM": "xterm-256color"}, true, "linux").Color)
	suite.False(detect(map[string]string{"TERM": "dumb"}, true, "linux").Color)
	suite.False(detect(nil, true, "windows").Color)
	suite.True(detect(map[string]string{"WT_SESSION": "abc"}, true, "windows").Color)
	suite.True(detect(map[string]string{"GITHUB_ACTIONS": "true"}, false, "linux").Color)
}

func (suite *CapabilitySuite) TestUnicode() {
	suite.True(detect(map[string]string{"LANG": "en_US.UTF-8"}, true, "linux").Unicode)
	suite.False(detect(map[string]string{"LANG": "C"}, true, "linux").Unicode)
	suite.True(detect(map[string]string{"CI": "true"}, false, "linux").Unicode, "CI defaults to unicode")
	suite.False(detect(nil, false, "linux").Unicode)
	suite.False(detect(map[string]string{"LANG": "en_US.UTF-8", "TCONSOLE_NO_UNICODE": "1"}, true, "linux").Unicode)
	suite.True(detect(map[string]string{"TCONSOLE_FORCE_UNICODE": "1"}, false, "linux").Unicode)
	suite.True(detect(map[string]string{"PSModulePath": `C:\x`}, true, "windows").Unicode)
	suite.False(detect(map[string]string{"LANG": "en_US.UTF-8", "TERM": "linux"}, true, "linux").Unicode)
}

func (suite *CapabilitySuite) TestEmojiIsStricterThanUnicode() {
	utf8 := map[string]string{"LANG": "en_US.UTF-8"}
	suite.True(detect(utf8, true, "darwin").Emoji)
	suite.False(detect(utf8, false, "linux").Emoji, "no interactive stream and no signal")

	suite.False(detect(map[string]string{"LANG": "en_US.UTF-8", "NO_COLOR": "1"}, true, "darwin").Emoji)
	suite.False(detect(map[string]string{"LANG": "en_US.UTF-8", "TCONSOLE_NO_EMOJI": "yes"}, true, "darwin").Emoji)
	suite.False(detect(map[string]string{"LANG": "en_US.UTF-8", "NO_EMOJI": "1"}, true, "darwin").Emoji)
	suite.False(detect(map[string]string{"LANG": "C"}, true, "darwin").Emoji)
}

func (suite *CapabilitySuite) TestEmojiOverrides() {
	env := map[string]string{"TCONSOLE_FORCE_EMOJI": "1"}
	suite.True(detect(env, false, "linux").Emoji)

	env["NO_COLOR"] = "1"
	suite.False(detect(env, false, "linux").Emoji, "explicit disable wins over enable")

	suite.True(detect(map[string]string{"TERM_PROGRAM": "vscode"}, false, "windows").Emoji)
	suite.True(detect(map[string]string{"CI": "1"}, false, "linux").Emoji)
}

func (suite *CapabilitySuite) TestCIDetection() {
	suite.False(IsCI(MapLookup(nil), DefaultPrefix))
	suite.True(IsCI(MapLookup(map[string]string{"GITLAB_CI": "true"}), DefaultPrefix))
	suite.True(IsCI(MapLookup(map[string]string{"JENKINS_URL": "http://ci"}), DefaultPrefix))
	suite.False(IsCI(MapLookup(map[string]string{"CI": "false"}), DefaultPrefix))
	suite.False(IsCI(MapLookup(map[string]string{"CI": "1", "TCONSOLE_NO_CI": "1"}), DefaultPrefix))
	suite.True(IsCI(MapLookup(map[string]string{"CI": "1", "MYTOOL_NO_CI": "1"}), DefaultPrefix))
	suite.False(IsCI(MapLookup(map[string]string{"CI": "1", "MYTOOL_NO_CI": "1"}), "MYTOOL_"))
}

func (suite *CapabilitySuite) TestDetectorMemoizesUntilReset() {
	env := map[string]string{}
	calls := 0
	d := &Detector{
		Lookup:     MapLookup(env),
		IsTerminal: func() bool { calls++; return false },
		GOOS:       "linux",
	}

	first := d.Detect()
	suite.False(first.CI)

	env["CI"] = "1"
	suite.False(d.Detect().CI, "cached profile must not change")
	suite.Equal(1, calls)

	d.Reset()
	suite.True(d.Detect().CI)
	suite.Equal(2, calls)
}

func (suite *CapabilitySuite) TestDetectorPrefix() {
	env := map[string]string{"MYTOOL_NO_COLOR": "1", "TCONSOLE_FORCE_COLOR": "1", "TERM": "xterm"}
	d := &Detector{Lookup: MapLookup(env), IsTerminal: func() bool { return true }, GOOS: "linux", Prefix: "MYTOOL_"}
	suite.Equal("MYTOOL_", d.EnvPrefix())
	suite.False(d.Detect().Color)

	suite.Equal(DefaultPrefix, (&Detector{}).EnvPrefix())
}

func (suite *CapabilitySuite) TestBool() {
	lookup := MapLookup(map[string]string{"A": "off", "B": " yes ", "C": "", "D": "whatever"})

	v, set := Bool(lookup, "A")
	suite.True(set)
	suite.False(v)

	v, set = Bool(lookup, "C", "B")
	suite.True(set)
	suite.True(v)

	v, set = Bool(lookup, "D")
	suite.True(set)
	suite.True(v)

	_, set = Bool(lookup, "MISSING")
	suite.False(set)
}

func TestCapabilitySuite(t *testing.T) {
	suite.Run(t, new(CapabilitySuite))
}
