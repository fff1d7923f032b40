/*
File: formatter.go
Description: Custom log formatter for aflmon. Produces compact single-line
output with a dimmed timestamp, colored level tag, and sorted structured
fields.
*/

package logging

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// CustomFormatter renders compact, colorized single-line log entries.
type CustomFormatter struct {
	Timestamp bool
	Colors    bool
}

// Format renders a single log entry.
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var out strings.Builder

	if f.Timestamp {
		ts := entry.Time.Format("2006-01-02 15:04:05.000")
		if f.Colors {
			out.WriteString(fmt.Sprintf("\033[36m%s\033[0m ", ts))
		} else {
			out.WriteString(ts + " ")
		}
	}

	level := strings.ToUpper(entry.Level.String())
	if f.Colors {
		out.WriteString(fmt.Sprintf("\033[%dm%-5s\033[0m ", f.levelColor(entry.Level), level))
	} else {
		out.WriteString(fmt.Sprintf("%-5s ", level))
	}

	out.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if f.Colors {
				out.WriteString(fmt.Sprintf(" \033[90m%s=\033[0m%v", k, entry.Data[k]))
			} else {
				out.WriteString(fmt.Sprintf(" %s=%v", k, entry.Data[k]))
			}
		}
	}

	out.WriteByte('\n')
	return []byte(out.String()), nil
}

// levelColor maps a level to its ANSI color code.
func (f *CustomFormatter) levelColor(level logrus.Level) int {
	switch level {
	case logrus.DebugLevel, logrus.TraceLevel:
		return 90 // bright black
	case logrus.InfoLevel:
		return 32 // green
	case logrus.WarnLevel:
		return 33 // yellow
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return 31 // red
	default:
		return 37
	}
}
