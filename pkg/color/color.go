package color

import (
	"fmt"
	"hash/fnv"
	"io"

	"github.com/fatih/color"
)

// Predefined color palette for workers
var workerColors = []color.Attribute{
	color.FgHiRed,
	color.FgHiGreen,
	color.FgHiYellow,
	color.FgHiBlue,
	color.FgHiMagenta,
	color.FgHiCyan,
	color.FgRed,
	color.FgGreen,
	color.FgYellow,
	color.FgBlue,
	color.FgMagenta,
	color.FgCyan,
}

var statusColors = map[string]color.Attribute{
	"pending":           color.FgWhite,
	"in_progress":       color.FgCyan,
	"submitted":         color.FgBlue,
	"completed":         color.FgGreen,
	"approved":          color.FgHiGreen,
	"rejected":          color.FgRed,
	"rejected_requeued": color.FgHiBlack,
}

// ForWorker returns a consistent color for the given worker ID.
func ForWorker(workerID string) *color.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(workerID))
	return color.New(workerColors[h.Sum32()%uint32(len(workerColors))])
}

// WorkerPrefix formats the worker prefix with color
func WorkerPrefix(workerID string) string {
	return ForWorker(workerID).Sprintf("[%s]", workerID)
}

func Status(status string) string {
	attr, ok := statusColors[status]
	if !ok {
		return status
	}
	return color.New(attr, color.Bold).Sprint(status)
}

func Warn(format string, args ...any) string {
	return color.New(color.FgYellow, color.Bold).Sprintf(format, args...)
}

func Fail(format string, args ...any) string {
	return color.New(color.FgRed, color.Bold).Sprintf(format, args...)
}

// Fprintf prints formatted text with a colored worker prefix
func Fprintf(w io.Writer, workerID, format string, args ...any) {
	fmt.Fprintf(w, "%s %s", WorkerPrefix(workerID), fmt.Sprintf(format, args...))
}
