package zerolog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/goterm/term"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ZerologLogger wraps a configured zerolog root logger.
type ZerologLogger struct {
	*zerolog.Logger
}

// NewZerolog builds a console logger with the given level and timestamp
// layout. With jsonFormat set, the output is raw zerolog JSON instead of
// the formatted console writer.
func NewZerolog(level, dateTimeLayout string, colored, jsonFormat bool) (*ZerologLogger, error) {
	logMode, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(logMode)

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		NoColor:    !colored,
		TimeFormat: dateTimeLayout,
	}

	if !jsonFormat {
		output.FormatLevel = formatLevel
		output.FormatCaller = formatCaller
		output.FormatTimestamp = func(i interface{}) string {
			return formatTimestamp(i, dateTimeLayout)
		}
	}

	logger := log.
		Output(output).
		With().
		CallerWithSkipFrameCount(3).
		Logger()

	return &ZerologLogger{&logger}, nil
}

func formatLevel(i interface{}) string {
	levelStr, ok := i.(string)
	if !ok {
		return "UNKNOWN"
	}

	switch levelStr {
	case zerolog.LevelTraceValue:
		return term.Cyanf("[TRC]")
	case zerolog.LevelDebugValue:
		return term.Cyanf("[DBG]")
	case zerolog.LevelInfoValue:
		return term.Greenf("[INF]")
	case zerolog.LevelWarnValue:
		return term.Yellowf("[WAR]")
	case zerolog.LevelPanicValue:
		return term.Redf("[PAN]")
	case zerolog.LevelFatalValue:
		return term.Redf("[FTL]")
	case zerolog.LevelErrorValue:
		return term.Redf("[ERR]")
	default:
		return term.Whitef("[UNK]")
	}
}

func formatCaller(i interface{}) string {
	const maxFileSize = 18

	fname, ok := i.(string)
	if !ok || len(fname) == 0 {
		return ""
	}

	caller := filepath.Base(fname)
	callerSplit := strings.Split(caller, ":")
	if len(callerSplit) != 2 {
		return caller
	}

	fileBase := callerSplit[0]
	if len(fileBase) > maxFileSize {
		fileBase = fileBase[:maxFileSize]
	} else {
		fileBase = fmt.Sprintf("%-*s", maxFileSize, fileBase)
	}

	return term.Yellowf("[%s:%s]", fileBase, callerSplit[1])
}

func formatTimestamp(i interface{}, timeLayout string) string {
	strTime, ok := i.(string)
	if !ok {
		return term.Cyanf("[%s]", i)
	}

	ts, err := time.ParseInLocation(time.RFC3339, strTime, time.Local)
	if err == nil {
		strTime = ts.In(time.Local).Format(timeLayout)
	}

	return term.Cyanf("[%s]", strTime)
}
