package linepump

import (
	"fmt"
	"log"
	"os"
)

// VerboseLoggingEnabled can be set true to see detailed logging.
var VerboseLoggingEnabled = false

// AbbrevMaxLen is the longest line echoed verbatim into the log.
const AbbrevMaxLen = 65

func abbrev(x string) string {
	if len(x) > AbbrevMaxLen {
		return x[0:AbbrevMaxLen-1] + "..."
	}
	return x
}

type logSink struct{}

func (l logSink) Write(p []byte) (n int, err error) {
	if //goland:noinspection GoBoolExpressions
	VerboseLoggingEnabled {
		return fmt.Fprint(os.Stderr, string(p))
	}
	return len(p), nil
}

var logger = log.New(&logSink{}, "PUMP: ", log.Ldate|log.Ltime|log.Lshortfile)
