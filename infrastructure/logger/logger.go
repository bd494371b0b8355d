package logger

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Logger is a subsystem logger. All messages are tagged with the subsystem's
// tag and filtered by the logger's level before being handed to the backend.
type Logger struct {
	level     Level
	tag       string
	backend   *Backend
	writeChan chan logEntry
}

type logEntry struct {
	log   []byte
	level Level
}

var (
	subsystemsMutex sync.Mutex
	subsystems      = make(map[string]*Logger)

	// BackendLog is the default backend all subsystem loggers write to.
	BackendLog = NewBackend()
)

// RegisterSubSystem returns a logger for the given subsystem tag, creating it
// on the default backend if it wasn't registered before.
func RegisterSubSystem(subsystem string) *Logger {
	subsystemsMutex.Lock()
	defer subsystemsMutex.Unlock()
	logger, ok := subsystems[subsystem]
	if !ok {
		logger = BackendLog.Logger(subsystem)
		subsystems[subsystem] = logger
	}
	return logger
}

// SetLogLevels sets the logging level for all registered subsystems.
func SetLogLevels(level Level) {
	subsystemsMutex.Lock()
	defer subsystemsMutex.Unlock()
	for _, logger := range subsystems {
		logger.SetLevel(level)
	}
}

// InitLogStdout attaches stdout to the default backend at the given level and
// starts it. Intended for command-line tools.
func InitLogStdout(level Level) error {
	err := BackendLog.AddLogWriter(os.Stdout, level)
	if err != nil {
		return err
	}
	return BackendLog.Run()
}

// InitLog attaches a rotating log file to the default backend in addition to
// stdout and starts it.
func InitLog(logFile string, level Level) error {
	err := BackendLog.AddLogWriter(os.Stdout, level)
	if err != nil {
		return err
	}
	err = BackendLog.AddLogFile(logFile, LevelTrace)
	if err != nil {
		return err
	}
	return BackendLog.Run()
}

// Level returns the current logging level of the logger.
func (l *Logger) Level() Level {
	return l.level
}

// SetLevel changes the logging level of the logger to the passed level.
func (l *Logger) SetLevel(level Level) {
	l.level = level
}

// Backend returns the backend this logger writes to.
func (l *Logger) Backend() *Backend {
	return l.backend
}

func (l *Logger) write(level Level, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	var message string
	if format == "" {
		message = fmt.Sprint(args...)
	} else {
		message = fmt.Sprintf(format, args...)
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	callSite := l.callSite()

	var formatted string
	if callSite == "" {
		formatted = fmt.Sprintf("%s [%s] %s: %s\n", timestamp, level, l.tag, message)
	} else {
		formatted = fmt.Sprintf("%s [%s] %s %s: %s\n", timestamp, level, callSite, l.tag, message)
	}

	if !l.backend.IsRunning() {
		// The backend wasn't started, most likely inside tests. Write
		// directly so messages are not silently lost.
		fmt.Fprint(os.Stderr, formatted)
		return
	}
	l.writeChan <- logEntry{log: []byte(formatted), level: level}
}

// callSite returns the caller's file:line per the backend flags, or empty.
func (l *Logger) callSite() string {
	flag := l.backend.flag
	if flag&(LogFlagShortFile|LogFlagLongFile) == 0 {
		return ""
	}
	_, file, line, ok := runtime.Caller(3)
	if !ok {
		return ""
	}
	if flag&LogFlagShortFile != 0 {
		if i := strings.LastIndexByte(file, '/'); i >= 0 {
			file = file[i+1:]
		}
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// Tracef writes a formatted message at the trace level.
func (l *Logger) Tracef(format string, args ...interface{}) {
	l.write(LevelTrace, format, args...)
}

// Trace writes a message at the trace level.
func (l *Logger) Trace(args ...interface{}) {
	l.write(LevelTrace, "", args...)
}

// Debugf writes a formatted message at the debug level.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.write(LevelDebug, format, args...)
}

// Debug writes a message at the debug level.
func (l *Logger) Debug(args ...interface{}) {
	l.write(LevelDebug, "", args...)
}

// Infof writes a formatted message at the info level.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.write(LevelInfo, format, args...)
}

// Info writes a message at the info level.
func (l *Logger) Info(args ...interface{}) {
	l.write(LevelInfo, "", args...)
}

// Warnf writes a formatted message at the warn level.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.write(LevelWarn, format, args...)
}

// Warn writes a message at the warn level.
func (l *Logger) Warn(args ...interface{}) {
	l.write(LevelWarn, "", args...)
}

// Errorf writes a formatted message at the error level.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.write(LevelError, format, args...)
}

// Error writes a message at the error level.
func (l *Logger) Error(args ...interface{}) {
	l.write(LevelError, "", args...)
}

// Criticalf writes a formatted message at the critical level.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.write(LevelCritical, format, args...)
}

// Critical writes a message at the critical level.
func (l *Logger) Critical(args ...interface{}) {
	l.write(LevelCritical, "", args...)
}
