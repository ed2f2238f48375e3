package global

import (
	"context"
	"testing"
	"time"

	"github.com/nxyyspace/api/internal/configure"
	"github.com/nxyyspace/api/internal/testutil"
)

func TestDerivedContextsShareState(t *testing.T) {
	config := configure.Defaults()

	root := New(context.Background(), &config)

	gCtx, cancel := WithCancel(root)
	tCtx, tCancel := WithTimeout(gCtx, time.Hour)
	defer tCancel()

	testutil.Assert(t, root.Config(), tCtx.Config(), "config is shared")
	testutil.Assert(t, root.Inst(), tCtx.Inst(), "instances are shared")

	cancel()

	<-tCtx.Done()
	testutil.Assert(t, context.Canceled, tCtx.Err(), "cancellation propagates")
}

func TestWithTimeoutExpires(t *testing.T) {
	config := configure.Defaults()

	tCtx, cancel := WithTimeout(New(context.Background(), &config), time.Millisecond*10)
	defer cancel()

	<-tCtx.Done()
	testutil.Assert(t, context.DeadlineExceeded, tCtx.Err(), "deadline")
	testutil.Assert(t, &config, tCtx.Config(), "config kept")
}
