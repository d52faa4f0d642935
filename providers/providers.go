// Package providers registers all inference backends.
// Import this package to make them available via provider.New():
//
//	import _ "github.com/randalmurphal/summarize/providers"
package providers

import (
	_ "github.com/randalmurphal/summarize/command"
	_ "github.com/randalmurphal/summarize/local"
)
