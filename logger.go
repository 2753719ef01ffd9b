package procpipe

import (
	"fmt"
	"log"
	"os"

	"github.com/monopole/procpipe/linepump"
)

// enableLogging can be set to true to see detailed logging.
var enableLogging = false

func abbrev(x string) string {
	if len(x) > linepump.AbbrevMaxLen {
		return x[0:linepump.AbbrevMaxLen-1] + "..."
	}
	return x
}

// VerboseLoggingEnable enables detailed logging.
func VerboseLoggingEnable() {
	enableLogging, linepump.VerboseLoggingEnabled = true, true
}

// VerboseLoggingDisable disables detailed logging.
func VerboseLoggingDisable() {
	enableLogging, linepump.VerboseLoggingEnabled = false, false
}

type logSink struct{}

func (l logSink) Write(p []byte) (n int, err error) {
	if enableLogging {
		return fmt.Fprint(os.Stderr, string(p))
	}
	return len(p), nil
}

var logger = log.New(&logSink{}, "PROC: ", log.Ldate|log.Ltime|log.Lshortfile)
