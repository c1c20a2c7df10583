package tui

import "fmt"

func plural(n int, suffix string) string {
	if n == 1 {
		return ""
	}
	return suffix
}

// Summary reports how many files failed.
func Summary(total, failed int) string {
	return failedStyle.Render(fmt.Sprintf("There were errors quantizing %d file%s out of a total of %d file%s.",
		failed, plural(failed, "s"), total, plural(total, "s")))
}

// Success reports a run without failures.
func Success(total int) string {
	return okStyle.Render(fmt.Sprintf("No errors detected while quantizing %d image%s.", total, plural(total, "s")))
}
