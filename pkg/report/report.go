package report

import (
	"fmt"
	"strings"
	"time"
)

// Render formats the final submission report for console output.
func Render(snapshot Snapshot, engineIDs []string) string {
	var b strings.Builder

	b.WriteString("\n=== IndexNow Submission Report ===\n")
	fmt.Fprintf(&b, "URLs found in sitemap:  %d\n", snapshot.URLsFound)
	fmt.Fprintf(&b, "Successful submissions: %d\n", snapshot.SuccessfulSubmissions)
	fmt.Fprintf(&b, "Failed submissions:     %d\n", snapshot.FailedSubmissions)
	fmt.Fprintf(&b, "Retried submissions:    %d\n", snapshot.RetriedSubmissions)
	fmt.Fprintf(&b, "Batches processed:      %d\n", snapshot.BatchesProcessed)
	fmt.Fprintf(&b, "Elapsed:                %s\n", snapshot.Elapsed.Round(time.Millisecond))
	if snapshot.URLsFound > 0 {
		fmt.Fprintf(&b, "Success rate:           %.2f%%\n", snapshot.SuccessRate())
	}
	fmt.Fprintf(&b, "Engines:                %s\n", strings.Join(engineIDs, ", "))
	b.WriteString("==================================\n")

	return b.String()
}
