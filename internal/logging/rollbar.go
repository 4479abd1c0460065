package logging

import (
	"github.com/rollbar/rollbar-go"
)

// Reporter forwards unexpected errors to Rollbar. With an empty token it is
// disabled and Report is a no-op.
type Reporter struct {
	enabled bool
}

func NewReporter(token, env, version string) *Reporter {
	rollbar.SetToken(token)
	rollbar.SetEnvironment(env)
	rollbar.SetCodeVersion(version)
	rollbar.SetEnabled(token != "")
	return &Reporter{enabled: token != ""}
}

func (r *Reporter) Report(err error, extras map[string]interface{}) {
	if r == nil || !r.enabled {
		return
	}
	rollbar.Error(err, extras)
}

// Close flushes pending reports.
func (r *Reporter) Close() {
	if r == nil || !r.enabled {
		return
	}
	rollbar.Wait()
}
