package memory

import (
	"testing"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, New())
}
