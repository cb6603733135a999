package mirror

import (
	"testing"

	"go.uber.org/goleak"
)

// Every dispatch goroutine must have reported by the time a test returns.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
