package profile_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/monopole/procpipe"
	. "github.com/monopole/procpipe/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	var tests = map[string]struct {
		yaml    string
		want    *Profile
		errMsgs []string
	}{
		"minimal": {
			yaml: "command: ls\n",
			want: &Profile{Command: "ls", Encoding: DefaultEncoding},
		},
		"everything": {
			yaml: `
name: listing
command: ls
args: [-l, /tmp]
dir: /
env:
  - LC_ALL=C
encoding: IBM850
gracePeriod: 250ms
strict: true
maxLineLen: 4096
`,
			want: &Profile{
				Name:        "listing",
				Command:     "ls",
				Args:        []string{"-l", "/tmp"},
				Dir:         "/",
				Env:         []string{"LC_ALL=C"},
				Encoding:    "IBM850",
				GracePeriod: 250 * time.Millisecond,
				Strict:      true,
				MaxLineLen:  4096,
			},
		},
		"empty": {
			yaml:    "",
			errMsgs: []string{"command is required"},
		},
		"unknownField": {
			yaml:    "command: ls\ncolour: red\n",
			errMsgs: []string{"failed to parse profile", "colour"},
		},
		"badEncoding": {
			yaml:    "command: ls\nencoding: klingon\n",
			errMsgs: []string{"invalid profile", "unknown encoding"},
		},
		"negativeGrace": {
			yaml:    "command: ls\ngracePeriod: -1s\n",
			errMsgs: []string{"gracePeriod -1s is negative"},
		},
		"badEnv": {
			yaml:    "command: ls\nenv: [NOPE]\n",
			errMsgs: []string{`env entry "NOPE" is not KEY=VALUE`},
		},
	}
	for n, tc := range tests {
		t.Run(n, func(t *testing.T) {
			p, err := Parse([]byte(tc.yaml))
			if len(tc.errMsgs) > 0 {
				if assert.Error(t, err) {
					for _, m := range tc.errMsgs {
						assert.Contains(t, err.Error(), m)
					}
				}
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, p)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
command: /bin/sh
args: ["-c", "echo $GREETING"]
env: [GREETING=hi]
encoding: cp1252
gracePeriod: 1s
`), 0o644))
	p, err := Load(path)
	require.NoError(t, err)

	enc, err := p.TextEncoding()
	assert.NoError(t, err)
	assert.Equal(t, procpipe.Windows, enc)

	params := p.Params()
	assert.Equal(t, time.Second, params.GracePeriod)
	assert.False(t, params.Strict)

	cmd := p.Cmd()
	assert.Equal(t, []string{"/bin/sh", "-c", "echo $GREETING"}, cmd.Args)
	assert.Contains(t, cmd.Env, "GREETING=hi")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "failed to read profile")
	}
}
