package xbnet

/*------------------------------------------------------------------
 *
 * Purpose:	Package-wide logging, human-readable lines to standard error.
 *
 *---------------------------------------------------------------*/

import (
	"os"

	"github.com/charmbracelet/log"
)

// TraceLevel sits one notch below log.DebugLevel. It carries the
// highest-volume wire chatter (junk bytes before a delimiter, advisory
// 0x8B status frames) that would otherwise drown out ordinary debug output.
const TraceLevel log.Level = log.DebugLevel - 4

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Level:           log.InfoLevel,
})

// EnableTrace switches the package logger to trace level. Called once at
// startup when --debug is given on the command line.
func EnableTrace() {
	logger.SetLevel(TraceLevel)
}

func logTrace(msg interface{}, kv ...interface{}) { logger.Log(TraceLevel, msg, kv...) }
func logDebug(msg interface{}, kv ...interface{}) { logger.Debug(msg, kv...) }
func logInfo(msg interface{}, kv ...interface{})  { logger.Info(msg, kv...) }
func logWarn(msg interface{}, kv ...interface{})  { logger.Warn(msg, kv...) }
func logError(msg interface{}, kv ...interface{}) { logger.Error(msg, kv...) }
